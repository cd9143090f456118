// einsum.go --  This file is part of goHF project.
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
	"fmt"
	"strings"
	"sync"
)

type plan struct {
	inputs [][]byte
	output []byte
	// steps[k] holds the letters kept after folding operand k+1 into the
	// running intermediate.
	steps [][]byte
}

var plans sync.Map

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func parse(spec string) *plan {
	if p, ok := plans.Load(spec); ok {
		return p.(*plan)
	}
	s := strings.ReplaceAll(spec, " ", "")
	lhs, rhs, found := strings.Cut(s, "->")
	if !found {
		panic(fmt.Sprintf("tensor: einsum spec %q has no output", spec))
	}
	p := &plan{output: []byte(rhs)}
	present := map[byte]bool{}
	for _, term := range strings.Split(lhs, ",") {
		for i := 0; i < len(term); i++ {
			if !isLetter(term[i]) {
				panic(fmt.Sprintf("tensor: bad index %q in einsum spec %q", term[i], spec))
			}
			present[term[i]] = true
		}
		p.inputs = append(p.inputs, []byte(term))
	}
	seen := map[byte]bool{}
	for _, c := range p.output {
		if !present[c] || seen[c] {
			panic(fmt.Sprintf("tensor: bad output index %q in einsum spec %q", c, spec))
		}
		seen[c] = true
	}
	cur := p.inputs[0]
	for k := 1; k < len(p.inputs); k++ {
		var keep []byte
		if k == len(p.inputs)-1 {
			keep = p.output
		} else {
			needed := map[byte]bool{}
			for _, c := range p.output {
				needed[c] = true
			}
			for _, term := range p.inputs[k+1:] {
				for _, c := range term {
					needed[c] = true
				}
			}
			used := map[byte]bool{}
			for _, c := range append(append([]byte(nil), cur...), p.inputs[k]...) {
				if needed[c] && !used[c] {
					keep = append(keep, c)
					used[c] = true
				}
			}
		}
		p.steps = append(p.steps, keep)
		cur = keep
	}
	plans.Store(spec, p)
	return p
}

// Einsum evaluates a numpy style contraction such as "ik,kj->ij". The
// output must be given explicitly. Operands are folded pairwise from the
// left; an index repeated inside one operand takes its diagonal.
func Einsum(spec string, ops ...*Dense) *Dense {
	p := parse(spec)
	if len(ops) != len(p.inputs) {
		panic(fmt.Sprintf("tensor: einsum %q wants %d operands, got %d", spec, len(p.inputs), len(ops)))
	}
	for i, op := range ops {
		if len(p.inputs[i]) != op.Rank() {
			panic(fmt.Sprintf("tensor: einsum %q operand %d has rank %d", spec, i, op.Rank()))
		}
	}
	if len(ops) == 1 {
		return contract(spec, []*Dense{ops[0]}, [][]byte{p.inputs[0]}, p.output)
	}
	cur, curLetters := ops[0], p.inputs[0]
	for k := 1; k < len(ops); k++ {
		cur = contract(spec, []*Dense{cur, ops[k]}, [][]byte{curLetters, p.inputs[k]}, p.steps[k-1])
		curLetters = p.steps[k-1]
	}
	return cur
}

// Scalar is Einsum with an empty output.
func Scalar(spec string, ops ...*Dense) float64 {
	return Einsum(spec, ops...).data[0]
}

// contract multiplies the operands elementwise over the union of their
// indices and sums everything not in out.
func contract(spec string, ops []*Dense, letters [][]byte, out []byte) *Dense {
	var dims [128]int
	var known [128]bool
	var order []byte
	stride := make([][128]int, len(ops))
	for k, op := range ops {
		for a, c := range letters[k] {
			d := op.shape[a]
			if known[c] && dims[c] != d {
				panic(fmt.Sprintf("tensor: einsum %q index %q has sizes %d and %d", spec, c, dims[c], d))
			}
			if !known[c] {
				known[c] = true
				dims[c] = d
				order = append(order, c)
			}
			stride[k][c] += op.strides[a]
		}
	}
	outShape := make([]int, len(out))
	for i, c := range out {
		outShape[i] = dims[c]
	}
	res := Zeros(outShape...)
	var outStride [128]int
	for i, c := range out {
		outStride[c] = res.strides[i]
	}

	// loop over output indices first, summed indices innermost
	loop := append([]byte(nil), out...)
	for _, c := range order {
		if !contains(out, c) {
			loop = append(loop, c)
		}
	}
	shape := make([]int, len(loop))
	for i, c := range loop {
		shape[i] = dims[c]
		if shape[i] == 0 {
			return res
		}
	}
	strides := make([][]int, len(ops)+1)
	start := make([]int, len(ops)+1)
	for k := range ops {
		strides[k] = make([]int, len(loop))
		for i, c := range loop {
			strides[k][i] = stride[k][c]
		}
		start[k] = ops[k].offset
	}
	strides[len(ops)] = make([]int, len(loop))
	for i, c := range loop {
		strides[len(ops)][i] = outStride[c]
	}

	n := len(ops)
	if n == 1 {
		a := ops[0].data
		odometer(shape, strides, start, func(offs []int) {
			res.data[offs[1]] += a[offs[0]]
		})
		return res
	}
	a, b := ops[0].data, ops[1].data
	odometer(shape, strides, start, func(offs []int) {
		res.data[offs[2]] += a[offs[0]] * b[offs[1]]
	})
	return res
}

func contains(s []byte, c byte) bool {
	for _, x := range s {
		if x == c {
			return true
		}
	}
	return false
}
