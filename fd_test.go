// fd_test.go --  This file is part of goHF project.
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirzaevaiv/gohf/tensor"
)

// applyStencil evaluates sum coeff*f(x+shift) for a function of (x, y).
func applyStencil(pts []fdPoint, f func(x, y float64) float64) float64 {
	res := 0.0
	for _, pt := range pts {
		var d [2]float64
		for _, s := range pt.Shifts {
			d[s.Axis] += s.Step
		}
		res += pt.Coeff * f(0.3+d[0], -0.2+d[1])
	}
	return res
}

func TestStencilsExactOnQuartics(t *testing.T) {
	f := func(x, y float64) float64 {
		return 1 + 2*x - 3*y + x*x*y + 0.5*x*x*x*x - y*y*y*x + 2*x*x*y*y
	}
	x, y := 0.3, -0.2
	px, py := Perturbation{0, AxisX}, Perturbation{0, AxisY}
	h := 0.01

	assert.Len(t, stencil1(px, h), 4)
	assert.InDelta(t, 2+2*x*y+2*x*x*x-y*y*y+4*x*y*y, applyStencil(stencil1(px, h), f), 1e-9)
	assert.InDelta(t, -3+x*x-3*y*y*x+4*x*x*y, applyStencil(stencil1(py, h), f), 1e-9)

	assert.Len(t, stencil2(px, px, h), 5)
	assert.InDelta(t, 2*y+6*x*x+4*y*y, applyStencil(stencil2(px, px, h), f), 1e-7)
	assert.Len(t, stencil2(px, py, h), 16)
	want := 2*x - 3*y*y + 8*x*y
	assert.InDelta(t, want, applyStencil(stencil2(px, py, h), f), 1e-7)
	assert.InDelta(t, want, applyStencil(stencil2(py, px, h), f), 1e-7)
}

func TestNucNucDerivatives(t *testing.T) {
	mol := testMolecule(t, "Units bohr\nAtoms\nO 0 0 0\nH 1.43 1.1 0\nH -1.43 1.1 0.1\nend")
	n := 3 * mol.NAtoms()
	vnn := func(m *Molecule) float64 { return m.NucNuc() }
	fd := func(pts []fdPoint) float64 {
		res := 0.0
		for _, pt := range pts {
			res += pt.Coeff * vnn(mol.Displaced(pt.Shifts...))
		}
		return res
	}

	g := mol.NucNucGradient()
	require.Equal(t, []int{n}, g.Shape())
	for _, p := range perturbations(mol.NAtoms()) {
		assert.InDelta(t, fd(stencil1(p, 1e-3)), g.At(p.Index()), 1e-8, "%s", p)
	}

	H := mol.NucNucHessian()
	assert.Less(t, H.MaxAbsDiff(H.T()), 1e-12)
	for _, p := range perturbations(mol.NAtoms()) {
		for _, q := range perturbations(mol.NAtoms()) {
			assert.InDelta(t, fd(stencil2(p, q, 1e-3)), H.At(p.Index(), q.Index()), 1e-5, "%s %s", p, q)
		}
	}
}

func TestEvalStencil(t *testing.T) {
	mol := testMolecule(t, h2STO3G)
	p := Perturbation{1, AxisZ}
	// a fake integral set that depends quadratically on the H-H distance
	f := func(m *Molecule) (*aoSet, error) {
		r := distance(m.Atoms[0].Coords, m.Atoms[1].Coords)
		one := map[IntegralKind]*tensor.Dense{OverlapInt: tensor.New([]float64{r * r}, 1, 1)}
		return &aoSet{one: one, eri: tensor.New([]float64{3 * r}, 1, 1, 1, 1)}, nil
	}
	d1, err := evalStencil(mol, stencil1(p, 1e-3), f)
	require.NoError(t, err)
	assert.InDelta(t, 2*1.4, d1.one[OverlapInt].At(0, 0), 1e-9)
	assert.InDelta(t, 3.0, d1.eri.At(0, 0, 0, 0), 1e-9)

	d2, err := evalStencil(mol, stencil2(p, p, 1e-3), f)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d2.one[OverlapInt].At(0, 0), 1e-6)
	assert.InDelta(t, 0.0, d2.eri.At(0, 0, 0, 0), 1e-6)
}

func TestMOTransforms(t *testing.T) {
	prov := testProvider(t, testMolecule(t, lihSTO3G), DefaultOptions())
	ref, err := prov.SCF()
	require.NoError(t, err)
	S, err := prov.AOIntegral(OverlapInt)
	require.NoError(t, err)

	Smo := toMO(S, ref.C)
	n := Smo.Dim(0)
	for i := 0; i < n; i++ {
		assert.InDelta(t, 1.0, Smo.At(i, i), 1e-8)
	}

	phys, err := prov.MOERI(ref.C)
	require.NoError(t, err)
	// <pq|rs> = <qp|sr> = <rs|pq>
	assert.Less(t, phys.MaxAbsDiff(phys.Transpose(1, 0, 3, 2)), 1e-10)
	assert.Less(t, phys.MaxAbsDiff(phys.Transpose(2, 3, 0, 1)), 1e-10)
	// (pr|qs) with real orbitals: <pq|rs> = <rq|ps>
	assert.Less(t, phys.MaxAbsDiff(phys.Transpose(2, 1, 0, 3)), 1e-10)
}
