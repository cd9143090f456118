// hessian.go --  This file is part of goHF project.
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
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mirzaevaiv/gohf/tensor"
)

// HessianContributions are the 3N x 3N pieces of the MP2 Hessian.
// The total contracts the relaxed densities with second derivative integrals
// and adds the orbital response, but leaves out the terms carrying
// derivatives of the densities themselves. It is therefore not the exact
// second derivative of the MP2 energy. With zero amplitudes it reduces to the
// exact RHF Hessian.
type HessianContributions struct {
	Nuclear     *tensor.Dense
	Overlap     *tensor.Dense
	Kinetic     *tensor.Dense
	Potential   *tensor.Dense
	TwoElectron *tensor.Dense
	Response    *tensor.Dense
}

func (h *HessianContributions) parts() []*tensor.Dense {
	return []*tensor.Dense{h.Nuclear, h.Overlap, h.Kinetic, h.Potential, h.TwoElectron, h.Response}
}

func (h *HessianContributions) Total() *tensor.Dense {
	res := tensor.Zeros(h.Nuclear.Shape()...)
	for _, t := range h.parts() {
		res.Add(t)
	}
	return res
}

// fillSymmetric evaluates f on the lower triangle r >= c and mirrors it.
func fillSymmetric(ctx context.Context, n, procs int, f func(r, c int) (float64, error)) (*tensor.Dense, error) {
	res := tensor.Zeros(n, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(procs)
	for r := 0; r < n; r++ {
		for c := 0; c <= r; c++ {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				v, err := f(r, c)
				if err != nil {
					return err
				}
				// distinct cells, no lock needed
				res.Set(v, r, c)
				res.Set(v, c, r)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

type hessianBuilder struct {
	wf    *Wavefunction
	dens  *Densities
	lag   *Lagrangian
	resp  *Response
	dc    *DerivCache
	procs int
}

func BuildHessian(ctx context.Context, wf *Wavefunction, dens *Densities, lag *Lagrangian, resp *Response, dc *DerivCache, vnn2 *tensor.Dense, procs int) (*HessianContributions, error) {
	hb := &hessianBuilder{wf: wf, dens: dens, lag: lag, resp: resp, dc: dc, procs: procs}
	n := 3 * dc.natoms
	h := &HessianContributions{Nuclear: vnn2.Clone()}

	steps := []struct {
		name string
		dst  **tensor.Dense
		f    func(p, q Perturbation) (float64, error)
	}{
		{"Overlap", &h.Overlap, hb.oneElectron(OverlapInt, lag.I)},
		{"Kinetic", &h.Kinetic, hb.oneElectron(KineticInt, dens.Relaxed)},
		{"Potential", &h.Potential, hb.oneElectron(PotentialInt, dens.Relaxed)},
		{"Two-electron", &h.TwoElectron, hb.twoElectron},
		{"Response", &h.Response, hb.response},
	}
	for _, s := range steps {
		tstart := time.Now()
		t, err := fillSymmetric(ctx, n, procs, func(r, c int) (float64, error) {
			return s.f(perturbationAt(r), perturbationAt(c))
		})
		if err != nil {
			return nil, err
		}
		*s.dst = t
		InfoLogger.Println(s.name, "Hessian done...", time.Since(tstart))
	}
	return h, nil
}

// oneElectron contracts a density with the second derivative of one
// kind of one-electron integrals.
func (hb *hessianBuilder) oneElectron(kind IntegralKind, D *tensor.Dense) func(p, q Perturbation) (float64, error) {
	return func(p, q Perturbation) (float64, error) {
		one, _, err := hb.dc.SecondAt(p, q)
		if err != nil {
			return 0, err
		}
		return tensor.Scalar("pq,pq->", D, one[kind]), nil
	}
}

func (hb *hessianBuilder) twoElectron(p, q Perturbation) (float64, error) {
	_, eri, err := hb.dc.SecondAt(p, q)
	if err != nil {
		return 0, err
	}
	A, O := tensor.All, hb.wf.O()
	P := hb.dens.Relaxed
	tei := eri.Transpose(0, 2, 1, 3)
	v := 2 * tensor.Scalar("pq,pqmm->", P, tei.Slice(A, A, O, O))
	v -= tensor.Scalar("pq,pmmq->", P, tei.Slice(A, O, O, A))
	v += tensor.Scalar("pqrs,prqs->", hb.dens.TPDM, tei)
	return v, nil
}

// response collects the terms in which the orbital response U of one
// coordinate meets a first derivative or the U of the other coordinate.
// Every term appears in both orders of (p, q).
func (hb *hessianBuilder) response(p, q Perturbation) (float64, error) {
	A, O := tensor.All, hb.wf.O()
	I, P, TP, E, F := hb.lag.I, hb.dens.Relaxed, hb.dens.TPDM, hb.wf.ERI, hb.wf.F
	dc, resp := hb.dc, hb.resp

	v := 0.0
	sum := func(c float64, spec string, ops ...*tensor.Dense) {
		v += c * tensor.Scalar(spec, ops...)
	}

	for _, pair := range [2][2]Perturbation{{p, q}, {q, p}} {
		k1, k2 := pair[0].Index(), pair[1].Index()
		U1, U2 := resp.U[k1], resp.U[k2]
		U1o, U2o := U1.Slice(A, O), U2.Slice(A, O)
		F2 := resp.FGrad[k2]
		S1, S2 := dc.First(OverlapInt, pair[0]), dc.First(OverlapInt, pair[1])
		T2 := dc.TEI1(pair[1])

		// energy-weighted density
		sum(1, "pq,pt,qt->", I, U1, U2)
		sum(-1, "pq,pt,qt->", I, S2, S1)

		// one-particle density with the Fock derivative
		sum(1, "pq,tp,tq->", P, U1, F2)
		sum(1, "pq,tq,pt->", P, U1, F2)

		sum(2, "pq,tm,pqmt->", P, U1o, T2.Slice(A, A, O, A))
		sum(-1, "pq,tm,ptmq->", P, U1o, T2.Slice(A, A, O, A))
		sum(2, "pq,tm,pqtm->", P, U1o, T2.Slice(A, A, A, O))
		sum(-1, "pq,tm,pmtq->", P, U1o, T2.Slice(A, O, A, A))

		// one-particle density with two orbital responses
		sum(1, "pq,tp,vq,tv->", P, U1, U2, F)

		sum(2, "pq,tp,vm,tmqv->", P, U1, U2o, E.Slice(A, O, A, A))
		sum(-1, "pq,tp,vm,tmvq->", P, U1, U2o, E.Slice(A, O, A, A))
		sum(2, "pq,tp,vm,tvqm->", P, U1, U2o, E.Slice(A, A, A, O))
		sum(-1, "pq,tp,vm,tvmq->", P, U1, U2o, E.Slice(A, A, O, A))

		sum(2, "pq,tq,vm,pmtv->", P, U1, U2o, E.Slice(A, O, A, A))
		sum(-1, "pq,tq,vm,pmvt->", P, U1, U2o, E.Slice(A, O, A, A))
		sum(2, "pq,tq,vm,pvtm->", P, U1, U2o, E.Slice(A, A, A, O))
		sum(-1, "pq,tq,vm,pvmt->", P, U1, U2o, E.Slice(A, A, O, A))

		sum(1, "pq,tm,vm,ptqv->", P, U1o, U2o, E)
		sum(-0.5, "pq,tm,vm,ptvq->", P, U1o, U2o, E)
		sum(1, "pq,tm,vm,pvqt->", P, U1o, U2o, E)
		sum(-0.5, "pq,tm,vm,pvtq->", P, U1o, U2o, E)

		// two-particle density with the integral derivative
		sum(1, "pqrs,tp,trqs->", TP, U1, T2)
		sum(1, "pqrs,tq,prts->", TP, U1, T2)
		sum(1, "pqrs,tr,ptqs->", TP, U1, T2)
		sum(1, "pqrs,ts,prqt->", TP, U1, T2)

		// two-particle density with two orbital responses
		sum(1, "pqrs,tp,vq,tvrs->", TP, U1, U2, E)
		sum(1, "pqrs,tp,vr,tqvs->", TP, U1, U2, E)
		sum(1, "pqrs,tp,vs,tqrv->", TP, U1, U2, E)
		sum(1, "pqrs,tq,vr,ptvs->", TP, U1, U2, E)
		sum(1, "pqrs,tq,vs,ptrv->", TP, U1, U2, E)
		sum(1, "pqrs,tr,vs,pqtv->", TP, U1, U2, E)
	}
	return v, nil
}
