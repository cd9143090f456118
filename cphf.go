// cphf.go --  This file is part of goHF project.
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

// Response holds the per-coordinate CPHF quantities, indexed by Perturbation.Index.
type Response struct {
	FGrad []*tensor.Dense // skeleton Fock derivative
	B     []*tensor.Dense // nvir x nocc right-hand side
	U     []*tensor.Dense // orbital response, C^x = C U
}

func SolveCPHF(ctx context.Context, wf *Wavefunction, lag *Lagrangian, dc *DerivCache, procs int) (*Response, error) {
	tstart := time.Now()
	n := 3 * dc.natoms
	res := &Response{
		FGrad: make([]*tensor.Dense, n),
		B:     make([]*tensor.Dense, n),
		U:     make([]*tensor.Dense, n),
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(procs)
	for _, p := range perturbations(dc.natoms) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			k := p.Index()
			res.FGrad[k] = fockDeriv(wf, dc, p)
			res.B[k] = cphfRHS(wf, dc, p, res.FGrad[k])
			res.U[k] = orbitalResponse(wf, lag, dc.First(OverlapInt, p), res.B[k])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	InfoLogger.Println("CPHF done...", time.Since(tstart))
	return res, nil
}

// fockDeriv is F^x_pq = h^x_pq + sum_m [2(pq|mm)^x - (pm|mq)^x].
func fockDeriv(wf *Wavefunction, dc *DerivCache, p Perturbation) *tensor.Dense {
	A, O := tensor.All, wf.O()
	tei := dc.TEI1(p)
	F := dc.First(KineticInt, p).Clone().Add(dc.First(PotentialInt, p))
	F.AddScaled(2, tensor.Einsum("pqmm->pq", tei.Slice(A, A, O, O)))
	F.Sub(tensor.Einsum("pmmq->pq", tei.Slice(A, O, O, A)))
	return F
}

// cphfRHS is B_ai = S^x_ai F_ii - F^x_ai + sum_mn S^x_mn (2<am|in> - <am|ni>).
func cphfRHS(wf *Wavefunction, dc *DerivCache, p Perturbation, Fx *tensor.Dense) *tensor.Dense {
	O, V := wf.O(), wf.V()
	Sx := dc.First(OverlapInt, p)
	Vooo := wf.ERI.Slice(V, O, O, O)
	B := tensor.Einsum("ai,ii->ai", Sx.Slice(V, O), wf.F.Slice(O, O))
	B.Sub(Fx.Slice(V, O))
	B.AddScaled(2, tensor.Einsum("amin,mn->ai", Vooo, Sx.Slice(O, O)))
	B.Sub(tensor.Einsum("amni,mn->ai", Vooo, Sx.Slice(O, O)))
	return B
}

// orbitalResponse assembles U: -S/2 in the occupied-occupied and
// virtual-virtual blocks, G^-1 B in the virtual-occupied block and
// -(U_ai + S_ai) transposed in the occupied-virtual block.
func orbitalResponse(wf *Wavefunction, lag *Lagrangian, Sx, B *tensor.Dense) *tensor.Dense {
	O, V := wf.O(), wf.V()
	U := tensor.Zeros(wf.Nmo, wf.Nmo)
	U.Slice(O, O).AddScaled(-0.5, Sx.Slice(O, O))
	U.Slice(V, V).AddScaled(-0.5, Sx.Slice(V, V))
	Uvo := lag.solveU(B)
	U.Slice(V, O).Copy(Uvo)
	U.Slice(O, V).Copy(Uvo.Add(Sx.Slice(V, O)).T()).Scale(-1)
	return U
}
