// dense.go --  This file is part of goHF project.
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

// Package tensor is a small real dense N-d array with strided views and
// an einsum style contraction used by the MP2 response code.
package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Dense is a row-major N-d array. Slice and Transpose return views that
// share the backing data.
type Dense struct {
	shape   []int
	strides []int
	offset  int
	data    []float64
}

// Range selects [Start, End) along one axis. End < 0 means up to the end.
type Range struct {
	Start, End int
}

// All selects a whole axis.
var All = Range{0, -1}

// R is shorthand for Range{start, end}.
func R(start, end int) Range {
	return Range{start, end}
}

func rowMajorStrides(shape []int) []int {
	strides := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

func volume(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Zeros allocates a zero-filled tensor.
func Zeros(shape ...int) *Dense {
	for _, d := range shape {
		if d < 0 {
			panic(fmt.Sprintf("tensor: negative dimension in shape %v", shape))
		}
	}
	return &Dense{
		shape:   append([]int(nil), shape...),
		strides: rowMajorStrides(shape),
		data:    make([]float64, volume(shape)),
	}
}

// New wraps data (row-major) without copying.
func New(data []float64, shape ...int) *Dense {
	if len(data) != volume(shape) {
		panic(fmt.Sprintf("tensor: %d values do not fit shape %v", len(data), shape))
	}
	return &Dense{
		shape:   append([]int(nil), shape...),
		strides: rowMajorStrides(shape),
		data:    data,
	}
}

// FromMatrix copies a gonum matrix into a rank-2 tensor.
func FromMatrix(m mat.Matrix) *Dense {
	r, c := m.Dims()
	t := Zeros(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			t.data[i*c+j] = m.At(i, j)
		}
	}
	return t
}

// FromDiag builds a square matrix with v on the diagonal.
func FromDiag(v []float64) *Dense {
	n := len(v)
	t := Zeros(n, n)
	for i, x := range v {
		t.data[i*n+i] = x
	}
	return t
}

func (t *Dense) Shape() []int { return append([]int(nil), t.shape...) }

func (t *Dense) Rank() int { return len(t.shape) }

// Dim returns the size of axis i.
func (t *Dense) Dim(i int) int { return t.shape[i] }

// Len is the number of elements.
func (t *Dense) Len() int { return volume(t.shape) }

func (t *Dense) index(idx []int) int {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("tensor: %d indices for rank %d", len(idx), len(t.shape)))
	}
	off := t.offset
	for i, v := range idx {
		if v < 0 || v >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %v out of range for shape %v", idx, t.shape))
		}
		off += v * t.strides[i]
	}
	return off
}

func (t *Dense) At(idx ...int) float64 {
	return t.data[t.index(idx)]
}

func (t *Dense) Set(v float64, idx ...int) {
	t.data[t.index(idx)] = v
}

// Slice returns a view restricted to the given ranges. Missing trailing
// ranges select the whole axis.
func (t *Dense) Slice(ranges ...Range) *Dense {
	if len(ranges) > len(t.shape) {
		panic(fmt.Sprintf("tensor: %d ranges for rank %d", len(ranges), len(t.shape)))
	}
	v := &Dense{
		shape:   append([]int(nil), t.shape...),
		strides: append([]int(nil), t.strides...),
		offset:  t.offset,
		data:    t.data,
	}
	for i, r := range ranges {
		end := r.End
		if end < 0 {
			end = t.shape[i]
		}
		if r.Start < 0 || r.Start > end || end > t.shape[i] {
			panic(fmt.Sprintf("tensor: range [%d,%d) out of bounds for axis %d of %v", r.Start, r.End, i, t.shape))
		}
		v.offset += r.Start * t.strides[i]
		v.shape[i] = end - r.Start
	}
	return v
}

// Transpose permutes the axes: axis i of the result is axis axes[i] of t.
// Without arguments the axis order is reversed.
func (t *Dense) Transpose(axes ...int) *Dense {
	n := len(t.shape)
	if len(axes) == 0 {
		axes = make([]int, n)
		for i := range axes {
			axes[i] = n - 1 - i
		}
	}
	if len(axes) != n {
		panic(fmt.Sprintf("tensor: permutation %v for rank %d", axes, n))
	}
	seen := make([]bool, n)
	v := &Dense{
		shape:   make([]int, n),
		strides: make([]int, n),
		offset:  t.offset,
		data:    t.data,
	}
	for i, a := range axes {
		if a < 0 || a >= n || seen[a] {
			panic(fmt.Sprintf("tensor: bad permutation %v", axes))
		}
		seen[a] = true
		v.shape[i] = t.shape[a]
		v.strides[i] = t.strides[a]
	}
	return v
}

// T is the matrix transpose of a rank-2 tensor.
func (t *Dense) T() *Dense {
	if len(t.shape) != 2 {
		panic("tensor: T on non-matrix")
	}
	return t.Transpose(1, 0)
}

// Reshape returns a tensor with a new shape over a contiguous copy of t.
func (t *Dense) Reshape(shape ...int) *Dense {
	if volume(shape) != t.Len() {
		panic(fmt.Sprintf("tensor: cannot reshape %v into %v", t.shape, shape))
	}
	return New(t.Data(), shape...)
}

func (t *Dense) contiguous() bool {
	return t.offset == 0 && len(t.data) == t.Len() && equalInts(t.strides, rowMajorStrides(t.shape))
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Data returns the elements in row-major order. The slice aliases t only
// when t is contiguous.
func (t *Dense) Data() []float64 {
	if t.contiguous() {
		return t.data
	}
	return t.Clone().data
}

// Clone makes a contiguous copy.
func (t *Dense) Clone() *Dense {
	c := Zeros(t.shape...)
	c.Copy(t)
	return c
}

func (t *Dense) mustMatch(o *Dense, op string) {
	if !equalInts(t.shape, o.shape) {
		panic(fmt.Sprintf("tensor: %s shape mismatch %v vs %v", op, t.shape, o.shape))
	}
}

// Copy writes src into t element by element. t may be a view.
func (t *Dense) Copy(src *Dense) *Dense {
	t.mustMatch(src, "Copy")
	iterate2(t, src, func(i, j int) { t.data[i] = src.data[j] })
	return t
}

// Add adds o into t in place.
func (t *Dense) Add(o *Dense) *Dense {
	t.mustMatch(o, "Add")
	iterate2(t, o, func(i, j int) { t.data[i] += o.data[j] })
	return t
}

// AddScaled adds alpha*o into t in place.
func (t *Dense) AddScaled(alpha float64, o *Dense) *Dense {
	t.mustMatch(o, "AddScaled")
	iterate2(t, o, func(i, j int) { t.data[i] += alpha * o.data[j] })
	return t
}

// Sub subtracts o from t in place.
func (t *Dense) Sub(o *Dense) *Dense {
	return t.AddScaled(-1, o)
}

// DivElem divides t by o elementwise in place.
func (t *Dense) DivElem(o *Dense) *Dense {
	t.mustMatch(o, "DivElem")
	iterate2(t, o, func(i, j int) { t.data[i] /= o.data[j] })
	return t
}

// MulElem multiplies t by o elementwise in place.
func (t *Dense) MulElem(o *Dense) *Dense {
	t.mustMatch(o, "MulElem")
	iterate2(t, o, func(i, j int) { t.data[i] *= o.data[j] })
	return t
}

// Scale multiplies every element by alpha in place.
func (t *Dense) Scale(alpha float64) *Dense {
	iterate1(t, func(i int) { t.data[i] *= alpha })
	return t
}

// Apply replaces every element x of t with fn(idx, x).
func (t *Dense) Apply(fn func(idx []int, x float64) float64) *Dense {
	idx := make([]int, len(t.shape))
	if t.Len() == 0 {
		return t
	}
	for {
		off := t.offset
		for a, v := range idx {
			off += v * t.strides[a]
		}
		t.data[off] = fn(idx, t.data[off])
		a := len(idx) - 1
		for ; a >= 0; a-- {
			idx[a]++
			if idx[a] < t.shape[a] {
				break
			}
			idx[a] = 0
		}
		if a < 0 {
			return t
		}
	}
}

// Sum adds up all elements.
func (t *Dense) Sum() float64 {
	s := 0.0
	iterate1(t, func(i int) { s += t.data[i] })
	return s
}

// MaxAbsDiff returns max |t - o|.
func (t *Dense) MaxAbsDiff(o *Dense) float64 {
	t.mustMatch(o, "MaxAbsDiff")
	m := 0.0
	iterate2(t, o, func(i, j int) {
		d := t.data[i] - o.data[j]
		if d < 0 {
			d = -d
		}
		if d > m {
			m = d
		}
	})
	return m
}

// Matrix copies a rank-2 tensor into a gonum matrix.
func (t *Dense) Matrix() *mat.Dense {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("tensor: Matrix on rank %d", len(t.shape)))
	}
	return mat.NewDense(t.shape[0], t.shape[1], append([]float64(nil), t.Data()...))
}

// Diag returns the diagonal of a square matrix.
func (t *Dense) Diag() []float64 {
	if len(t.shape) != 2 || t.shape[0] != t.shape[1] {
		panic(fmt.Sprintf("tensor: Diag on shape %v", t.shape))
	}
	d := make([]float64, t.shape[0])
	for i := range d {
		d[i] = t.data[t.offset+i*(t.strides[0]+t.strides[1])]
	}
	return d
}

func (t *Dense) String() string {
	return fmt.Sprintf("tensor%v%v", t.shape, t.Data())
}

func iterate1(t *Dense, fn func(i int)) {
	if t.Len() == 0 {
		return
	}
	odometer(t.shape, [][]int{t.strides}, []int{t.offset}, func(offs []int) { fn(offs[0]) })
}

func iterate2(t, o *Dense, fn func(i, j int)) {
	if t.Len() == 0 {
		return
	}
	odometer(t.shape, [][]int{t.strides, o.strides}, []int{t.offset, o.offset}, func(offs []int) { fn(offs[0], offs[1]) })
}

// odometer walks every index of shape and keeps one running offset per
// stride set.
func odometer(shape []int, strides [][]int, start []int, fn func(offs []int)) {
	n := len(shape)
	offs := append([]int(nil), start...)
	if n == 0 {
		fn(offs)
		return
	}
	idx := make([]int, n)
	for {
		fn(offs)
		a := n - 1
		for ; a >= 0; a-- {
			idx[a]++
			for k := range offs {
				offs[k] += strides[k][a]
			}
			if idx[a] < shape[a] {
				break
			}
			for k := range offs {
				offs[k] -= strides[k][a] * shape[a]
			}
			idx[a] = 0
		}
		if a < 0 {
			return
		}
	}
}
