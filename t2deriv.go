// t2deriv.go --  This file is part of goHF project.
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
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mirzaevaiv/gohf/tensor"
)

// AmplitudeDerivs computes dt_ijab/dx for every coordinate.
func AmplitudeDerivs(ctx context.Context, wf *Wavefunction, amp *Amplitudes, resp *Response, dc *DerivCache, procs int) ([]*tensor.Dense, error) {
	res := make([]*tensor.Dense, len(resp.U))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(procs)
	for _, p := range perturbations(dc.natoms) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			k := p.Index()
			res[k] = amplitudeDeriv(wf, amp, resp.U[k], resp.FGrad[k], dc.First(OverlapInt, p), dc.ERI1(p))
			return nil
		})
	}
	return res, g.Wait()
}

// amplitudeDeriv differentiates t_ijab = <ij|ab>/D_ijab. The numerator
// picks up the skeleton derivative and orbital rotations of <ij|ab>; the
// denominator contributes through the four Fock derivatives f_ac, f_bc,
// f_ki and f_kj, each made of the skeleton part, U.F terms, overlap terms
// and the virtual-occupied response.
func amplitudeDeriv(wf *Wavefunction, amp *Amplitudes, U, Fx, Sx, ERIx *tensor.Dense) *tensor.Dense {
	A, O, V := tensor.All, wf.O(), wf.V()
	E, F, t2 := wf.ERI, wf.F, amp.T2
	Uo, Uv, Uvo := U.Slice(A, O), U.Slice(A, V), U.Slice(V, O)
	Soo := Sx.Slice(O, O)

	dT := ERIx.Slice(O, O, V, V).Clone()
	add := func(c float64, spec string, ops ...*tensor.Dense) {
		dT.AddScaled(c, tensor.Einsum(spec, ops...))
	}

	add(1, "ti,tjab->ijab", Uo, E.Slice(A, O, V, V))
	add(1, "tj,itab->ijab", Uo, E.Slice(O, A, V, V))
	add(1, "ta,ijtb->ijab", Uv, E.Slice(O, O, A, V))
	add(1, "tb,ijat->ijab", Uv, E.Slice(O, O, V, A))

	// f_ac
	add(1, "ijcb,ac->ijab", t2, Fx.Slice(V, V))
	add(1, "ijcb,ta,tc->ijab", t2, Uv, F.Slice(A, V))
	add(1, "ijcb,tc,at->ijab", t2, Uv, F.Slice(V, A))
	add(-2, "ijcb,mn,amcn->ijab", t2, Soo, E.Slice(V, O, V, O))
	add(0.5, "ijcb,mn,acmn->ijab", t2, Soo, E.Slice(V, V, O, O))
	add(0.5, "ijcb,mn,acnm->ijab", t2, Soo, E.Slice(V, V, O, O))
	add(4, "ijcb,dm,adcm->ijab", t2, Uvo, E.Slice(V, V, V, O))
	add(-1, "ijcb,dm,acdm->ijab", t2, Uvo, E.Slice(V, V, V, O))
	add(-1, "ijcb,dm,acmd->ijab", t2, Uvo, E.Slice(V, V, O, V))

	// f_bc
	add(1, "ijac,bc->ijab", t2, Fx.Slice(V, V))
	add(1, "ijac,tb,tc->ijab", t2, Uv, F.Slice(A, V))
	add(1, "ijac,tc,bt->ijab", t2, Uv, F.Slice(V, A))
	add(-2, "ijac,mn,bmcn->ijab", t2, Soo, E.Slice(V, O, V, O))
	add(0.5, "ijac,mn,bcmn->ijab", t2, Soo, E.Slice(V, V, O, O))
	add(0.5, "ijac,mn,bcnm->ijab", t2, Soo, E.Slice(V, V, O, O))
	add(4, "ijac,dm,bdcm->ijab", t2, Uvo, E.Slice(V, V, V, O))
	add(-1, "ijac,dm,bcdm->ijab", t2, Uvo, E.Slice(V, V, V, O))
	add(-1, "ijac,dm,bcmd->ijab", t2, Uvo, E.Slice(V, V, O, V))

	// f_ki
	add(-1, "kjab,ki->ijab", t2, Fx.Slice(O, O))
	add(-1, "kjab,tk,ti->ijab", t2, Uo, F.Slice(A, O))
	add(-1, "kjab,ti,kt->ijab", t2, Uo, F.Slice(O, A))
	add(2, "kjab,mn,kmin->ijab", t2, Soo, E.Slice(O, O, O, O))
	add(-0.5, "kjab,mn,kimn->ijab", t2, Soo, E.Slice(O, O, O, O))
	add(-0.5, "kjab,mn,kinm->ijab", t2, Soo, E.Slice(O, O, O, O))
	add(-4, "kjab,dm,kdim->ijab", t2, Uvo, E.Slice(O, V, O, O))
	add(1, "kjab,dm,kidm->ijab", t2, Uvo, E.Slice(O, O, V, O))
	add(1, "kjab,dm,kimd->ijab", t2, Uvo, E.Slice(O, O, O, V))

	// f_kj
	add(-1, "ikab,kj->ijab", t2, Fx.Slice(O, O))
	add(-1, "ikab,tk,tj->ijab", t2, Uo, F.Slice(A, O))
	add(-1, "ikab,tj,kt->ijab", t2, Uo, F.Slice(O, A))
	add(2, "ikab,mn,kmjn->ijab", t2, Soo, E.Slice(O, O, O, O))
	add(-0.5, "ikab,mn,kjmn->ijab", t2, Soo, E.Slice(O, O, O, O))
	add(-0.5, "ikab,mn,kjnm->ijab", t2, Soo, E.Slice(O, O, O, O))
	add(-4, "ikab,dm,kdjm->ijab", t2, Uvo, E.Slice(O, V, O, O))
	add(1, "ikab,dm,kjdm->ijab", t2, Uvo, E.Slice(O, O, V, O))
	add(1, "ikab,dm,kjmd->ijab", t2, Uvo, E.Slice(O, O, O, V))

	return dT.DivElem(amp.D)
}
