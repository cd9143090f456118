// report_test.go --  This file is part of goHF project.
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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mirzaevaiv/gohf/tensor"
)

func fakeResult(n int) *Result {
	h := func(s float64) *tensor.Dense {
		return tensor.Zeros(3*n, 3*n).Apply(func(idx []int, _ float64) float64 {
			return s * float64(idx[0]+idx[1])
		})
	}
	g := tensor.New([]float64{0.1, 0.2, 0.3, -0.1, -0.2, -0.3}, 6)
	return &Result{
		Space:               Space{Nocc: 1, Nvir: 1, Nmo: 2},
		SCFEnergy:           -1.1,
		CorrelationEnergy:   -0.01,
		SCFGradient:         g,
		CorrelationGradient: g.Clone().Scale(0.1),
		Gradient:            g.Clone().Scale(1.1),
		Hessian: &HessianContributions{
			Nuclear: h(1), Overlap: h(2), Kinetic: h(3),
			Potential: h(4), TwoElectron: h(5), Response: h(6),
		},
		Total:       h(21),
		Frequencies: []float64{-5, 0, 1, 2, 3, 4400},
	}
}

func TestYAMLReport(t *testing.T) {
	mol := testMolecule(t, h2STO3G)
	fname := filepath.Join(t.TempDir(), "h2.yaml")
	require.NoError(t, writeYAML(fname, fakeResult(2), mol))

	raw, err := os.ReadFile(fname)
	require.NoError(t, err)
	var rep yamlReport
	require.NoError(t, yaml.Unmarshal(raw, &rep))

	assert.Equal(t, "sto-3g", rep.Basis)
	require.Len(t, rep.Atoms, 2)
	assert.Equal(t, "H", rep.Atoms[1].Symbol)
	assert.Equal(t, 1.4, rep.Atoms[1].Coords[2])
	assert.InDelta(t, -1.11, rep.TotalEnergy, 1e-12)
	assert.Equal(t, [][]float64{{0.1, 0.2, 0.3}, {-0.1, -0.2, -0.3}}, rep.SCFGradient)
	require.Len(t, rep.Hessian["total"], 6)
	assert.Equal(t, 21.0*7, rep.Hessian["total"][3][4])
	assert.Len(t, rep.Hessian, 7)
	assert.Equal(t, 4400.0, rep.Frequencies[5])
}

func TestPrintReport(t *testing.T) {
	mol := testMolecule(t, h2STO3G)
	assert.NotPanics(t, func() { printReport(fakeResult(2), mol) })
}
