// molecule.go --  This file is part of goHF project.
// Mirzaeva Irina, 2023
//
//  goHF is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty
//  of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//  See the GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with this program.  If not, see http://www.gnu.org/licenses/
//------------------------------------------------
package main

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/mirzaevaiv/gohf/tensor"
)

type Molecule struct {
	Atoms     []Atom
	Charge    int
	BasisName string
}

type Atom struct {
	Z      int
	Name   string
	Coords [3]float64 // bohr
	Basis  []Orbital
}

type Orbital struct {
	n, l, nPrim int
	Funcs       []PrimitiveGauss
}

type PrimitiveGauss struct {
	zeta, preExp float64
}

// addAtoms reads "Symbol x y z" lines; scale converts the coordinates to bohr.
func (m *Molecule) addAtoms(data []string, start int, end int, scale float64) error {
	for i := start; i < end+1; i++ {
		var atm Atom
		words := strings.Fields(data[i])
		if len(words) == 0 {
			continue
		}
		atm.Z = slices.Index(ElemData.Symb, elementSymbol(words[0]))
		if atm.Z <= 0 {
			return errors.Wrapf(ErrInput, "unknown element %q", words[0])
		}
		atm.Name = words[0] + strconv.Itoa(1+i-start)
		if len(words) < 4 {
			return errors.Wrapf(ErrInput, "incorrect format of coordinates for atom %s", atm.Name)
		}
		for k := 0; k < 3; k++ {
			x, err := strconv.ParseFloat(words[k+1], 64)
			if err != nil {
				return errors.Wrapf(ErrInput, "coordinate %q of atom %s", words[k+1], atm.Name)
			}
			atm.Coords[k] = x * scale
		}
		m.Atoms = append(m.Atoms, atm)
	}
	return nil
}

func elementSymbol(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func (m *Molecule) getBasis(bName string) error {
	words := strings.Fields(bName)
	if len(words) == 0 {
		return errors.Wrap(ErrInput, "empty basis name")
	}
	m.BasisName = strings.ToLower(words[0])
	bFile := "data/basis/" + m.BasisName + ".txt"
	data, err := readDataLines(bFile)
	if err != nil {
		return errors.Wrapf(ErrInput, "basis %q: %v", bName, err)
	}
	for i, atm := range m.Atoms {
		m.Atoms[i].Basis = nil
		for j, str := range data {
			words := strings.Fields(str)
			if len(words) > 1 {
				if (len(words[0]) > 2) && (words[1] == strings.ToUpper(ElemData.Symb[atm.Z])) {
					OutputLogger.Println(i+1, "Basis for atom ", atm.Name, ": ", data[j+1])
					if err := m.Atoms[i].getBasis(data, j+2); err != nil {
						return errors.Wrapf(err, "basis %s for atom %s", m.BasisName, atm.Name)
					}
					break
				}
			}
		}
		if len(m.Atoms[i].Basis) == 0 {
			return errors.Wrapf(ErrInput, "no %s basis for atom %s", m.BasisName, atm.Name)
		}
	}
	return nil
}

func (atm *Atom) getBasis(data []string, pos int) error {
	field := func(pos, k int) (string, error) {
		if pos >= len(data) {
			return "", errors.New("unexpected end of basis file")
		}
		words := strings.Fields(data[pos])
		if len(words) <= k {
			return "", errors.Errorf("short basis line %q", data[pos])
		}
		return words[k], nil
	}
	atoi := func(pos, k int) (int, error) {
		s, err := field(pos, k)
		if err != nil {
			return 0, err
		}
		return strconv.Atoi(s)
	}
	atof := func(pos, k int) (float64, error) {
		s, err := field(pos, k)
		if err != nil {
			return 0, err
		}
		return strconv.ParseFloat(s, 64)
	}
	nOrbs, err := atoi(pos, 0)
	if err != nil {
		return err
	}
	pos++
	for k := 0; k < nOrbs; k++ {
		var orb Orbital
		if orb.n, err = atoi(pos, 0); err != nil {
			return err
		}
		if orb.l, err = atoi(pos, 1); err != nil {
			return err
		}
		if orb.nPrim, err = atoi(pos, 2); err != nil {
			return err
		}
		pos++
		for l := 0; l < orb.nPrim; l++ {
			var pg PrimitiveGauss
			if pg.zeta, err = atof(pos, 0); err != nil {
				return err
			}
			if pg.preExp, err = atof(pos, 1); err != nil {
				return err
			}
			orb.Funcs = append(orb.Funcs, pg)
			pos++
		}
		atm.Basis = append(atm.Basis, orb)
	}
	return nil
}

func (m *Molecule) NAtoms() int {
	return len(m.Atoms)
}

func (m *Molecule) Nelec() int {
	result := -m.Charge
	for _, a := range m.Atoms {
		result += a.Z
	}
	return result
}

// Shells builds normalized shells at the current geometry.
func (m *Molecule) Shells() []Shell {
	var res []Shell
	for i, a := range m.Atoms {
		for _, o := range a.Basis {
			res = append(res, newShell(i, a.Coords, o))
		}
	}
	return res
}

func (m *Molecule) NBasis() int {
	n := 0
	for _, a := range m.Atoms {
		for _, o := range a.Basis {
			n += (o.l + 1) * (o.l + 2) / 2
		}
	}
	return n
}

// Displaced returns a copy of m with the given Cartesian shifts (bohr).
// Basis data is shared.
func (m *Molecule) Displaced(shifts ...Shift) *Molecule {
	res := *m
	res.Atoms = append([]Atom(nil), m.Atoms...)
	for _, s := range shifts {
		res.Atoms[s.Atom].Coords[s.Axis] += s.Step
	}
	return &res
}

// Shift moves one atom along one axis.
type Shift struct {
	Perturbation
	Step float64
}

func (m *Molecule) NucNuc() float64 {
	res := 0.0
	for i := range m.Atoms {
		for j := 0; j < i; j++ {
			res += float64(m.Atoms[i].Z) * float64(m.Atoms[j].Z) / distance(m.Atoms[i].Coords, m.Atoms[j].Coords)
		}
	}
	return res
}

func distance(a, b [3]float64) float64 {
	return math.Sqrt((a[0]-b[0])*(a[0]-b[0]) + (a[1]-b[1])*(a[1]-b[1]) + (a[2]-b[2])*(a[2]-b[2]))
}

// NucNucGradient is dVnn/dx for all 3*natoms coordinates.
func (m *Molecule) NucNucGradient() *tensor.Dense {
	n := len(m.Atoms)
	res := tensor.Zeros(3 * n)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			if a == b {
				continue
			}
			r := distance(m.Atoms[a].Coords, m.Atoms[b].Coords)
			zz := float64(m.Atoms[a].Z * m.Atoms[b].Z)
			for x := 0; x < 3; x++ {
				d := m.Atoms[a].Coords[x] - m.Atoms[b].Coords[x]
				res.Set(res.At(3*a+x)-zz*d/(r*r*r), 3*a+x)
			}
		}
	}
	return res
}

// NucNucHessian is the analytic second derivative of Vnn.
func (m *Molecule) NucNucHessian() *tensor.Dense {
	n := len(m.Atoms)
	res := tensor.Zeros(3*n, 3*n)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			if a == b {
				continue
			}
			r := distance(m.Atoms[a].Coords, m.Atoms[b].Coords)
			zz := float64(m.Atoms[a].Z * m.Atoms[b].Z)
			var d [3]float64
			for x := range d {
				d[x] = m.Atoms[a].Coords[x] - m.Atoms[b].Coords[x]
			}
			for x := 0; x < 3; x++ {
				for y := 0; y < 3; y++ {
					v := 3 * d[x] * d[y] / math.Pow(r, 5)
					if x == y {
						v -= 1 / (r * r * r)
					}
					v *= zz
					res.Set(res.At(3*a+x, 3*a+y)+v, 3*a+x, 3*a+y)
					res.Set(res.At(3*a+x, 3*b+y)-v, 3*a+x, 3*b+y)
				}
			}
		}
	}
	return res
}

func (m *Molecule) Masses() []float64 {
	res := make([]float64, len(m.Atoms))
	for i, a := range m.Atoms {
		res[i] = ElemData.Mass[a.Z]
	}
	return res
}

type Mendeleev struct {
	Z          []int
	Symb, Name []string
	Mass       []float64
}

func (m *Mendeleev) build() error {
	data, err := readDataLines("data/mendeleev.csv")
	if err != nil {
		return errors.Wrap(err, "elements database")
	}
	for i, str := range data {
		if i == 0 || strings.TrimSpace(str) == "" {
			continue
		}
		words := strings.Split(str, ",")
		if len(words) < 4 {
			return errors.Errorf("elements database line %d: %q", i+1, str)
		}
		z, err := strconv.Atoi(words[0])
		if err != nil {
			return errors.Wrapf(err, "elements database line %d", i+1)
		}
		mass, err := strconv.ParseFloat(strings.TrimSpace(words[3]), 64)
		if err != nil {
			return errors.Wrapf(err, "elements database line %d", i+1)
		}
		m.Z = append(m.Z, z)
		m.Mass = append(m.Mass, mass)
		m.Symb = append(m.Symb, words[1])
		m.Name = append(m.Name, words[2])
	}
	return nil
}
