// HF_test.go --  This file is part of goHF project.
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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoys(t *testing.T) {
	assert.InDelta(t, 1.0, boys(0, 0), 1e-15)
	assert.InDelta(t, 1.0/7, boys(0, 3), 1e-15)
	for _, x := range []float64{0.1, 1.5, 12, 40} {
		want := 0.5 * math.Sqrt(math.Pi/x) * math.Erf(math.Sqrt(x))
		assert.InDelta(t, want, boys(x, 0), 1e-12, "x=%g", x)
		f := boysArray(4, x)
		for n := range f {
			assert.InDelta(t, boys(x, n), f[n], 1e-12, "x=%g n=%d", x, n)
		}
	}
	assert.InDelta(t, 1.0/3-1e-13/5, boysArray(1, 1e-13)[1], 1e-15)
}

func TestCartesianOrder(t *testing.T) {
	assert.Equal(t, [][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, cartesian(1))
	assert.Equal(t, [][3]int{{2, 0, 0}, {1, 1, 0}, {1, 0, 1}, {0, 2, 0}, {0, 1, 1}, {0, 0, 2}}, cartesian(2))
}

// Reference values for H2 at 1.4 bohr in STO-3G (Szabo and Ostlund, ch. 3).
func TestH2Integrals(t *testing.T) {
	mol := testMolecule(t, h2STO3G)
	e, err := NewEngine("gaussian", 2)
	require.NoError(t, err)

	S, err := e.OneElectron(OverlapInt, mol)
	require.NoError(t, err)
	T, err := e.OneElectron(KineticInt, mol)
	require.NoError(t, err)
	V, err := e.OneElectron(PotentialInt, mol)
	require.NoError(t, err)
	eri, err := e.ERI(mol)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, S.At(0, 0), 1e-10)
	assert.InDelta(t, 0.6593, S.At(0, 1), 2e-4)
	assert.InDelta(t, 0.7600, T.At(0, 0), 2e-4)
	assert.InDelta(t, 0.2365, T.At(0, 1), 2e-4)
	assert.InDelta(t, -1.1204, T.At(0, 0)+V.At(0, 0), 2e-4)
	assert.InDelta(t, -0.9584, T.At(0, 1)+V.At(0, 1), 2e-4)

	assert.InDelta(t, 0.7746, eri.At(0, 0, 0, 0), 2e-4)
	assert.InDelta(t, 0.5697, eri.At(0, 0, 1, 1), 2e-4)
	assert.InDelta(t, 0.4441, eri.At(1, 0, 0, 0), 2e-4)
	assert.InDelta(t, 0.2970, eri.At(1, 0, 1, 0), 2e-4)
}

func TestIntegralSymmetry(t *testing.T) {
	mol := testMolecule(t, lihSTO3G)
	e, err := NewEngine("gaussian", 3)
	require.NoError(t, err)
	n := mol.NBasis()
	require.Equal(t, 6, n)

	S, err := e.OneElectron(OverlapInt, mol)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		assert.InDelta(t, 1.0, S.At(i, i), 1e-10, "S[%d][%d]", i, i)
	}
	for _, kind := range oneElectronKinds {
		X, err := e.OneElectron(kind, mol)
		require.NoError(t, err)
		assert.Less(t, X.MaxAbsDiff(X.T()), 1e-12, "%s", kind)
	}

	eri, err := e.ERI(mol)
	require.NoError(t, err)
	assert.Less(t, eri.MaxAbsDiff(eri.Transpose(1, 0, 2, 3)), 1e-12)
	assert.Less(t, eri.MaxAbsDiff(eri.Transpose(0, 1, 3, 2)), 1e-12)
	assert.Less(t, eri.MaxAbsDiff(eri.Transpose(2, 3, 0, 1)), 1e-12)
}

func TestIntegralsTranslationInvariant(t *testing.T) {
	mol := testMolecule(t, lihSTO3G)
	moved := mol.Displaced(
		Shift{Perturbation{0, AxisX}, 0.3},
		Shift{Perturbation{1, AxisX}, 0.3},
		Shift{Perturbation{0, AxisY}, -0.2},
		Shift{Perturbation{1, AxisY}, -0.2},
	)
	e, err := NewEngine("gaussian", 1)
	require.NoError(t, err)
	a, err := computeAOSet(e, mol)
	require.NoError(t, err)
	b, err := computeAOSet(e, moved)
	require.NoError(t, err)
	for _, kind := range oneElectronKinds {
		assert.Less(t, a.one[kind].MaxAbsDiff(b.one[kind]), 1e-10, "%s", kind)
	}
	assert.Less(t, a.eri.MaxAbsDiff(b.eri), 1e-10)
	assert.Equal(t, 0.0, mol.Atoms[0].Coords[0])
}
