// tensor_test.go --  This file is part of goHF project.
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
package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func seq(shape ...int) *Dense {
	t := Zeros(shape...)
	for i := range t.data {
		t.data[i] = float64(i%7) - 2.5 + 0.1*float64(i)
	}
	return t
}

func TestSliceAndTranspose(t *testing.T) {
	a := seq(3, 4)
	s := a.Slice(R(1, 3), R(2, -1))
	require.Equal(t, []int{2, 2}, s.Shape())
	assert.Equal(t, a.At(1, 2), s.At(0, 0))
	assert.Equal(t, a.At(2, 3), s.At(1, 1))

	tr := a.T()
	assert.Equal(t, []int{4, 3}, tr.Shape())
	assert.Equal(t, a.At(2, 1), tr.At(1, 2))

	s.Set(42, 0, 1)
	assert.Equal(t, 42.0, a.At(1, 3))
}

func TestCopyIntoView(t *testing.T) {
	a := Zeros(4, 4)
	b := seq(2, 3)
	a.Slice(R(2, 4), R(1, 4)).Copy(b)
	assert.Equal(t, b.At(1, 2), a.At(3, 3))
	assert.Equal(t, 0.0, a.At(0, 0))
	assert.InDelta(t, b.Sum(), a.Sum(), 1e-14)
}

func TestEinsumMatMul(t *testing.T) {
	a := seq(3, 4)
	b := seq(4, 5)
	got := Einsum("ik,kj->ij", a, b)

	var want mat.Dense
	want.Mul(a.Matrix(), b.Matrix())
	assert.True(t, mat.EqualApprox(&want, got.Matrix(), 1e-12))
}

func TestEinsumTransposedOperand(t *testing.T) {
	a := seq(4, 3)
	b := seq(4, 5)
	got := Einsum("ik,kj->ij", a.T(), b)
	want := Einsum("ki,kj->ij", a, b)
	assert.InDelta(t, 0, got.MaxAbsDiff(want), 1e-12)
}

func TestEinsumDiagonalAndTrace(t *testing.T) {
	a := seq(3, 2, 3, 2)
	got := Einsum("pmqm->pq", a)
	for p := 0; p < 3; p++ {
		for q := 0; q < 3; q++ {
			want := a.At(p, 0, q, 0) + a.At(p, 1, q, 1)
			assert.InDelta(t, want, got.At(p, q), 1e-12)
		}
	}
	m := seq(4, 4)
	tr := 0.0
	for i := 0; i < 4; i++ {
		tr += m.At(i, i)
	}
	assert.InDelta(t, tr, Scalar("ii->", m), 1e-12)
}

func TestEinsumChain(t *testing.T) {
	p := seq(3, 3)
	u := seq(3, 3)
	v := seq(3, 3)
	eri := seq(3, 3, 3, 3)
	got := Scalar("pq,tp,vq,tv->", p, u, v, eri.Slice(All, All, R(0, 1), R(0, 1)).Reshape(3, 3))

	want := 0.0
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			for c := 0; c < 3; c++ {
				for d := 0; d < 3; d++ {
					want += p.At(a, b) * u.At(c, a) * v.At(d, b) * eri.At(c, d, 0, 0)
				}
			}
		}
	}
	assert.InDelta(t, want, got, 1e-9)
}

func TestEinsumFourIndex(t *testing.T) {
	a := seq(2, 2, 3, 3)
	b := seq(2, 2, 3, 3)
	got := Einsum("ikab,jkab->ij", a, b)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := 0.0
			for k := 0; k < 2; k++ {
				for x := 0; x < 3; x++ {
					for y := 0; y < 3; y++ {
						want += a.At(i, k, x, y) * b.At(j, k, x, y)
					}
				}
			}
			assert.InDelta(t, want, got.At(i, j), 1e-10)
		}
	}
}

func TestEinsumEmptyAxis(t *testing.T) {
	a := Zeros(2, 0)
	b := Zeros(0, 3)
	got := Einsum("ik,kj->ij", a, b)
	assert.Equal(t, []int{2, 3}, got.Shape())
	assert.Equal(t, 0.0, got.Sum())
}

func TestEinsumBadSpec(t *testing.T) {
	assert.Panics(t, func() { Einsum("ij,jk", seq(2, 2), seq(2, 2)) })
	assert.Panics(t, func() { Einsum("ij,jk->ik", seq(2, 3), seq(2, 2)) })
	assert.Panics(t, func() { Einsum("ij->ix", seq(2, 2)) })
}

func TestArithmetic(t *testing.T) {
	a := seq(2, 3)
	b := seq(2, 3)
	c := a.Clone().AddScaled(2, b).Scale(0.5)
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, 1.5*a.At(i, j), c.At(i, j), 1e-14)
		}
	}
	d := FromDiag([]float64{1, 2, 3})
	assert.Equal(t, []float64{1, 2, 3}, d.Diag())
	assert.Equal(t, 0.0, d.MaxAbsDiff(d.T()))
}
