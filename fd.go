// fd.go --  This file is part of goHF project.
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
	"github.com/mirzaevaiv/gohf/tensor"
)

// fdPoint is one displaced geometry of a difference formula.
type fdPoint struct {
	Coeff  float64
	Shifts []Shift
}

var (
	fdOffsets = []float64{-2, -1, 1, 2}
	// (f(-2h) - 8f(-h) + 8f(h) - f(2h)) / 12h
	fdFirst = []float64{1, -8, 8, -1}
	// (-f(-2h) + 16f(-h) - 30f(0) + 16f(h) - f(2h)) / 12h^2
	fdSecond = []float64{-1, 16, 16, -1}
)

// stencil1 is the five-point first derivative along p.
func stencil1(p Perturbation, h float64) []fdPoint {
	res := make([]fdPoint, len(fdOffsets))
	for k, o := range fdOffsets {
		res[k] = fdPoint{
			Coeff:  fdFirst[k] / (12 * h),
			Shifts: []Shift{{Perturbation: p, Step: o * h}},
		}
	}
	return res
}

// stencil2 is the second derivative d2/dp dq: the five-point formula on the
// diagonal, the product of two first-derivative stencils otherwise.
func stencil2(p, q Perturbation, h float64) []fdPoint {
	if p == q {
		res := []fdPoint{{Coeff: -30 / (12 * h * h)}}
		for k, o := range fdOffsets {
			res = append(res, fdPoint{
				Coeff:  fdSecond[k] / (12 * h * h),
				Shifts: []Shift{{Perturbation: p, Step: o * h}},
			})
		}
		return res
	}
	var res []fdPoint
	for k, o1 := range fdOffsets {
		for l, o2 := range fdOffsets {
			res = append(res, fdPoint{
				Coeff: fdFirst[k] * fdFirst[l] / (144 * h * h),
				Shifts: []Shift{
					{Perturbation: p, Step: o1 * h},
					{Perturbation: q, Step: o2 * h},
				},
			})
		}
	}
	return res
}

// evalStencil sums coeff*f(displaced geometry) over the points.
func evalStencil(mol *Molecule, pts []fdPoint, f func(*Molecule) (*aoSet, error)) (*aoSet, error) {
	var res *aoSet
	for _, pt := range pts {
		set, err := f(mol.Displaced(pt.Shifts...))
		if err != nil {
			return nil, err
		}
		if res == nil {
			res = &aoSet{one: make(map[IntegralKind]*tensor.Dense, len(set.one))}
			for kind, t := range set.one {
				res.one[kind] = tensor.Zeros(t.Shape()...)
			}
			res.eri = tensor.Zeros(set.eri.Shape()...)
		}
		for kind, t := range set.one {
			res.one[kind].AddScaled(pt.Coeff, t)
		}
		res.eri.AddScaled(pt.Coeff, set.eri)
	}
	return res, nil
}

// toMO transforms a one-electron AO matrix with C.
func toMO(ao, C *tensor.Dense) *tensor.Dense {
	return tensor.Einsum("mp,mn,nq->pq", C, ao, C)
}

// eriToMO transforms chemist AO integrals and returns physicist MO integrals <pq|rs>.
func eriToMO(ao, C *tensor.Dense) *tensor.Dense {
	t := tensor.Einsum("mnls,mp->pnls", ao, C)
	t = tensor.Einsum("pnls,nq->pqls", t, C)
	t = tensor.Einsum("pqls,lr->pqrs", t, C)
	t = tensor.Einsum("pqrs,st->pqrt", t, C)
	return t.Transpose(0, 2, 1, 3).Clone()
}
