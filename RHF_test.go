// RHF_test.go --  This file is part of goHF project.
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
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvider(t *testing.T, mol *Molecule, opts Options) *molProvider {
	t.Helper()
	e, err := NewEngine(opts.Engine, opts.Procs)
	require.NoError(t, err)
	return NewProvider(mol, e, opts)
}

func TestRHFEnergies(t *testing.T) {
	for _, tc := range []struct {
		name   string
		deck   string
		energy float64
		tol    float64
	}{
		{"H2", h2STO3G, -1.1167, 1e-4},
		{"He", "Atoms\nHe 0 0 0\nend", -2.807784, 1e-5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			prov := testProvider(t, testMolecule(t, tc.deck), DefaultOptions())
			ref, err := prov.SCF()
			require.NoError(t, err)
			assert.InDelta(t, tc.energy, ref.Energy, tc.tol)
			assert.Greater(t, ref.Iterations, 1)
			assert.True(t, sort.Float64sAreSorted(ref.Eps))

			wf, err := LoadWavefunction(prov)
			if tc.name == "He" {
				assert.ErrorIs(t, err, ErrNoVirtuals)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, checkOrthonormal(wf))
			for p := 0; p < wf.Nmo; p++ {
				assert.InDelta(t, ref.Eps[p], wf.Eps[p], 1e-8)
			}
			// canonical orbitals: F is diagonal in the MO basis
			assert.InDelta(t, 0.0, wf.F.At(0, 1), 1e-8)
		})
	}
}

func TestRHFErrors(t *testing.T) {
	prov := testProvider(t, testMolecule(t, "Atoms\nH 0 0 0\nend"), DefaultOptions())
	_, err := prov.SCF()
	assert.ErrorIs(t, err, ErrOpenShell)

	opts := DefaultOptions()
	opts.MaxIter = 1
	prov = testProvider(t, testMolecule(t, h2STO3G), opts)
	_, err = prov.SCF()
	assert.ErrorIs(t, err, ErrSCFNotConverged)
}

func TestMatrixSqrtInverse(t *testing.T) {
	prov := testProvider(t, testMolecule(t, lihSTO3G), DefaultOptions())
	S, err := prov.AOIntegral(OverlapInt)
	require.NoError(t, err)
	X, err := MatrixSqrtInverse(S)
	require.NoError(t, err)

	n := S.Dim(0)
	Sm := S.Matrix()
	Sm.Mul(X, Sm)
	Sm.Mul(Sm, X)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			assert.InDelta(t, want, Sm.At(i, j), 1e-10)
		}
	}
}
