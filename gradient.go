// gradient.go --  This file is part of goHF project.
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

// SCFGradient is
// 2 sum_i h^x_ii + sum_ij [2(ii|jj)^x - (ij|ji)^x] - 2 sum_ij F_ij S^x_ij + Vnn^x.
func SCFGradient(wf *Wavefunction, dc *DerivCache, vnn1 *tensor.Dense) *tensor.Dense {
	O := wf.O()
	res := tensor.Zeros(3 * dc.natoms)
	for _, p := range perturbations(dc.natoms) {
		h := dc.First(KineticInt, p).Clone().Add(dc.First(PotentialInt, p))
		tei := dc.TEI1(p).Slice(O, O, O, O)
		g := 2 * tensor.Scalar("ii->", h.Slice(O, O))
		g += 2*tensor.Scalar("iijj->", tei) - tensor.Scalar("ijji->", tei)
		g -= 2 * tensor.Scalar("ij,ij->", wf.F.Slice(O, O), dc.First(OverlapInt, p).Slice(O, O))
		res.Set(g+vnn1.At(p.Index()), p.Index())
	}
	return res
}

// CorrelationGradient differentiates E2 = 2 t_ijab <ij|ab> - t_ijab <ij|ba>
// with the amplitude derivatives and the relaxed integrals.
func CorrelationGradient(wf *Wavefunction, amp *Amplitudes, resp *Response, dT2 []*tensor.Dense, dc *DerivCache) *tensor.Dense {
	A, O, V := tensor.All, wf.O(), wf.V()
	E, t2 := wf.ERI, amp.T2
	Vijab := E.Slice(O, O, V, V)
	res := tensor.Zeros(3 * dc.natoms)
	for _, p := range perturbations(dc.natoms) {
		k := p.Index()
		U := resp.U[k]
		Uo, Uv := U.Slice(A, O), U.Slice(A, V)
		tei := dc.TEI1(p).Slice(O, V, O, V)

		g := 2*tensor.Scalar("ijab,ijab->", dT2[k], Vijab) - tensor.Scalar("ijab,ijba->", dT2[k], Vijab)

		g += 2 * tensor.Scalar("ijab,iajb->", t2, tei)
		g += 2 * tensor.Scalar("ijab,ti,tjab->", t2, Uo, E.Slice(A, O, V, V))
		g += 2 * tensor.Scalar("ijab,tj,itab->", t2, Uo, E.Slice(O, A, V, V))
		g += 2 * tensor.Scalar("ijab,ta,ijtb->", t2, Uv, E.Slice(O, O, A, V))
		g += 2 * tensor.Scalar("ijab,tb,ijat->", t2, Uv, E.Slice(O, O, V, A))

		g -= tensor.Scalar("ijab,ibja->", t2, tei)
		g -= tensor.Scalar("ijab,ti,tjba->", t2, Uo, E.Slice(A, O, V, V))
		g -= tensor.Scalar("ijab,tj,itba->", t2, Uo, E.Slice(O, A, V, V))
		g -= tensor.Scalar("ijab,ta,ijbt->", t2, Uv, E.Slice(O, O, V, A))
		g -= tensor.Scalar("ijab,tb,ijta->", t2, Uv, E.Slice(O, O, A, V))
		res.Set(g, k)
	}
	return res
}
