// lagrangian.go --  This file is part of goHF project.
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

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/mirzaevaiv/gohf/tensor"
)

type Lagrangian struct {
	Ip  *tensor.Dense // I'
	Ipp *tensor.Dense // I''
	X   *tensor.Dense // nvir x nocc
	Z   *tensor.Dense // nvir x nocc
	I   *tensor.Dense

	// G is the electronic Hessian over (i*nvir+a, j*nvir+b).
	G    *mat.Dense
	Ginv *mat.Dense
	lu   mat.LU
}

// BuildLagrangian forms I', solves the Z-vector equations, relaxes the
// OPDM into dens.Relaxed and builds the energy-weighted density I.
func BuildLagrangian(wf *Wavefunction, dens *Densities, opts Options) (*Lagrangian, error) {
	lag := &Lagrangian{}
	lag.buildIp(wf, dens)

	O, V := wf.O(), wf.V()
	lag.Ipp = lag.Ip.Clone()
	lag.Ipp.Slice(V, O).Copy(lag.Ip.Slice(O, V).T())
	lag.X = lag.Ip.Slice(O, V).T().Clone().Sub(lag.Ip.Slice(V, O))

	lag.G = electronicHessian(wf)
	if err := lag.factorize(opts.MaxCondition); err != nil {
		return nil, err
	}

	var err error
	if lag.Z, err = lag.solveZ(wf.Space); err != nil {
		return nil, err
	}

	dens.Relaxed = dens.OPDM.Clone()
	dens.Relaxed.Slice(O, V).Copy(lag.Z.T()).Scale(-1)
	dens.Relaxed.Slice(V, O).Copy(lag.Z).Scale(-1)

	lag.buildI(wf)
	return lag, nil
}

func (lag *Lagrangian) buildIp(wf *Wavefunction, dens *Densities) {
	A, O := tensor.All, wf.O()
	F, P, TP, ERI := wf.F, dens.OPDM, dens.TPDM, wf.ERI

	Ip := tensor.Einsum("pr,rq->pq", F, P)
	Ip.Add(tensor.Einsum("qr,rp->pq", P, F))

	Ip.Add(tensor.Einsum("qrst,prst->pq", TP, ERI))
	Ip.Add(tensor.Einsum("rqst,rpst->pq", TP, ERI))
	Ip.Add(tensor.Einsum("rsqt,rspt->pq", TP, ERI))
	Ip.Add(tensor.Einsum("rstq,rstp->pq", TP, ERI))

	occ := Ip.Slice(A, O)
	occ.AddScaled(4, tensor.Einsum("rs,rpsq->pq", P, ERI.Slice(A, A, A, O)))
	occ.Sub(tensor.Einsum("rs,rpqs->pq", P, ERI.Slice(A, A, O, A)))
	occ.Sub(tensor.Einsum("rs,rqps->pq", P, ERI.Slice(A, O, A, A)))

	lag.Ip = Ip.Scale(-0.5)
}

// electronicHessian builds
// G_ia,jb = (e_a - e_i) d_ij d_ab + 4<ij|ab> - <ij|ba> - <ia|jb>.
func electronicHessian(wf *Wavefunction) *mat.Dense {
	no, nv := wf.Nocc, wf.Nvir
	n := no * nv
	ERI := wf.ERI
	G := mat.NewDense(n, n, nil)
	for i := 0; i < no; i++ {
		for a := 0; a < nv; a++ {
			for j := 0; j < no; j++ {
				for b := 0; b < nv; b++ {
					A, B := no+a, no+b
					v := 4*ERI.At(i, j, A, B) - ERI.At(i, j, B, A) - ERI.At(i, A, j, B)
					if i == j && a == b {
						v += wf.Eps[A] - wf.Eps[i]
					}
					G.Set(i*nv+a, j*nv+b, v)
				}
			}
		}
	}
	return G
}

func (lag *Lagrangian) factorize(maxCond float64) error {
	lag.lu.Factorize(lag.G)
	if c := lag.lu.Cond(); math.IsInf(c, 0) || math.IsNaN(c) || c > maxCond {
		return errors.Wrapf(ErrSingularHessian, "condition number %.3e", c)
	}
	n, _ := lag.G.Dims()
	var inv mat.Dense
	if err := lag.lu.SolveTo(&inv, false, eye(n)); err != nil {
		return errors.Wrap(ErrSingularHessian, err.Error())
	}
	lag.Ginv = &inv
	return nil
}

func eye(n int) *mat.Dense {
	res := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		res.Set(i, i, 1)
	}
	return res
}

// packOV flattens an nvir x nocc tensor into the (i*nvir+a) ordering of G.
func packOV(t *tensor.Dense) *mat.VecDense {
	nv, no := t.Dim(0), t.Dim(1)
	v := mat.NewVecDense(no*nv, nil)
	for i := 0; i < no; i++ {
		for a := 0; a < nv; a++ {
			v.SetVec(i*nv+a, t.At(a, i))
		}
	}
	return v
}

func unpackOV(v mat.Vector, nv, no int) *tensor.Dense {
	t := tensor.Zeros(nv, no)
	for i := 0; i < no; i++ {
		for a := 0; a < nv; a++ {
			t.Set(v.AtVec(i*nv+a), a, i)
		}
	}
	return t
}

// solveZ solves G^T z = X.
func (lag *Lagrangian) solveZ(sp Space) (*tensor.Dense, error) {
	var z mat.VecDense
	if err := lag.lu.SolveVecTo(&z, true, packOV(lag.X)); err != nil {
		return nil, errors.Wrap(ErrSingularHessian, err.Error())
	}
	return unpackOV(&z, sp.Nvir, sp.Nocc), nil
}

// solveU returns U_ai = sum_bj Ginv_ai,bj B_bj. Safe for concurrent use.
func (lag *Lagrangian) solveU(B *tensor.Dense) *tensor.Dense {
	var u mat.VecDense
	u.MulVec(lag.Ginv, packOV(B))
	return unpackOV(&u, B.Dim(0), B.Dim(1))
}

func (lag *Lagrangian) buildI(wf *Wavefunction) {
	O, V := wf.O(), wf.V()
	Z := lag.Z
	Vooo := wf.ERI.Slice(V, O, O, O)

	I := lag.Ipp.Clone()
	Ioo := I.Slice(O, O)
	Ioo.AddScaled(2, tensor.Einsum("ak,aikj->ij", Z, Vooo))
	Ioo.Sub(tensor.Einsum("ak,aijk->ij", Z, Vooo))
	Ioo.AddScaled(2, tensor.Einsum("ak,ajki->ij", Z, Vooo))
	Ioo.Sub(tensor.Einsum("ak,ajik->ij", Z, Vooo))

	eo := wf.Eps[:wf.Nocc]
	ZF := Z.Clone().Apply(func(idx []int, x float64) float64 { return x * eo[idx[1]] })
	I.Slice(V, O).Add(ZF)
	I.Slice(O, V).Add(ZF.T())
	lag.I = I
}

// checkSymmetric reports the largest asymmetry of G.
func (lag *Lagrangian) checkSymmetric(tol float64) error {
	var d float64
	n, _ := lag.G.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			d = math.Max(d, math.Abs(lag.G.At(i, j)-lag.G.At(j, i)))
		}
	}
	if d > tol {
		return errors.Errorf("electronic Hessian is not symmetric, max deviation %.2e", d)
	}
	return nil
}
