// report.go --  This file is part of goHF project.
// Mirzaeva Irina, 2023
//
//	goHF is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
//	You should have received a copy of the GNU General Public License
//	along with this program.  If not, see http://www.gnu.org/licenses/
//
// ------------------------------------------------
package main

import (
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"

	"github.com/mirzaevaiv/gohf/tensor"
)

func printReport(res *Result, mol *Molecule) {
	n := mol.NAtoms()
	printOutputDelimiter()
	OutputLogger.Printf("Orbitals: %d occupied, %d virtual\n", res.Nocc, res.Nvir)
	OutputLogger.Println("Nuclei Repulsion Energy: ", mol.NucNuc(), " a.u.")
	OutputLogger.Printf("SCF energy         = %18.12f a.u. (%d iterations)\n", res.SCFEnergy, res.SCFIterations)
	OutputLogger.Printf("MP2 correlation    = %18.12f a.u.\n", res.CorrelationEnergy)
	OutputLogger.Printf("MP2 total energy   = %18.12f a.u.\n", res.SCFEnergy+res.CorrelationEnergy)
	printOutputDelimiter()

	PrintTensor("SCF gradient", res.SCFGradient.Reshape(n, 3))
	PrintTensor("MP2 correlation gradient", res.CorrelationGradient.Reshape(n, 3))
	PrintTensor("MP2 gradient", res.Gradient.Reshape(n, 3))
	OutputLogger.Printf("Gradient norm = %.10f\n", floats.Norm(res.Gradient.Data(), 2))
	printOutputDelimiter()

	h := res.Hessian
	for _, part := range []struct {
		name string
		t    *tensor.Dense
	}{
		{"NUCLEAR HESSIAN", h.Nuclear},
		{"OVERLAP HESSIAN", h.Overlap},
		{"KINETIC HESSIAN", h.Kinetic},
		{"POTENTIAL HESSIAN", h.Potential},
		{"TEI HESSIAN", h.TwoElectron},
		{"RESPONSE HESSIAN", h.Response},
		{"MP2 HESSIAN", res.Total},
	} {
		PrintTensor(part.name, part.t)
	}

	if res.Frequencies != nil {
		printOutputDelimiter()
		OutputLogger.Println("Harmonic frequencies, cm-1 (negative = imaginary):")
		for i, f := range res.Frequencies {
			OutputLogger.Printf("  %3d %12.2f\n", i+1, f)
		}
	}
	printOutputDelimiter()
}

type yamlReport struct {
	Atoms               []yamlAtom             `yaml:"atoms"`
	Basis               string                 `yaml:"basis"`
	Nocc                int                    `yaml:"nocc"`
	Nvir                int                    `yaml:"nvir"`
	SCFEnergy           float64                `yaml:"scf_energy"`
	CorrelationEnergy   float64                `yaml:"correlation_energy"`
	TotalEnergy         float64                `yaml:"total_energy"`
	SCFGradient         [][]float64            `yaml:"scf_gradient"`
	CorrelationGradient [][]float64            `yaml:"correlation_gradient"`
	Gradient            [][]float64            `yaml:"gradient"`
	Hessian             map[string][][]float64 `yaml:"hessian"`
	Frequencies         []float64              `yaml:"frequencies,omitempty"`
}

type yamlAtom struct {
	Symbol string     `yaml:"symbol"`
	Coords [3]float64 `yaml:"coords_bohr,flow"`
}

func rows(t *tensor.Dense, ncol int) [][]float64 {
	data := t.Data()
	res := make([][]float64, 0, len(data)/ncol)
	for i := 0; i < len(data); i += ncol {
		res = append(res, append([]float64(nil), data[i:i+ncol]...))
	}
	return res
}

func newYAMLReport(res *Result, mol *Molecule) *yamlReport {
	n3 := 3 * mol.NAtoms()
	rep := &yamlReport{
		Basis:               mol.BasisName,
		Nocc:                res.Nocc,
		Nvir:                res.Nvir,
		SCFEnergy:           res.SCFEnergy,
		CorrelationEnergy:   res.CorrelationEnergy,
		TotalEnergy:         res.SCFEnergy + res.CorrelationEnergy,
		SCFGradient:         rows(res.SCFGradient, 3),
		CorrelationGradient: rows(res.CorrelationGradient, 3),
		Gradient:            rows(res.Gradient, 3),
		Hessian: map[string][][]float64{
			"nuclear":      rows(res.Hessian.Nuclear, n3),
			"overlap":      rows(res.Hessian.Overlap, n3),
			"kinetic":      rows(res.Hessian.Kinetic, n3),
			"potential":    rows(res.Hessian.Potential, n3),
			"two_electron": rows(res.Hessian.TwoElectron, n3),
			"response":     rows(res.Hessian.Response, n3),
			"total":        rows(res.Total, n3),
		},
		Frequencies: res.Frequencies,
	}
	for _, a := range mol.Atoms {
		rep.Atoms = append(rep.Atoms, yamlAtom{Symbol: ElemData.Symb[a.Z], Coords: a.Coords})
	}
	return rep
}

func writeYAML(fname string, res *Result, mol *Molecule) error {
	raw, err := yaml.Marshal(newYAMLReport(res, mol))
	if err != nil {
		return errors.Wrap(err, "yaml report")
	}
	if err := os.WriteFile(fname, raw, 0644); err != nil {
		return errors.Wrap(err, "yaml report")
	}
	InfoLogger.Println("YAML report written to", fname)
	return nil
}
