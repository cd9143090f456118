// density.go --  This file is part of goHF project.
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
	"gonum.org/v1/gonum/floats"

	"github.com/mirzaevaiv/gohf/tensor"
)

type Densities struct {
	Ref  *tensor.Dense // reference OPDM
	OPDM *tensor.Dense // unrelaxed MP2 OPDM
	TPDM *tensor.Dense
	// Relaxed is set by BuildLagrangian
	Relaxed *tensor.Dense
}

func BuildDensities(wf *Wavefunction, amp *Amplitudes) *Densities {
	O, V := wf.O(), wf.V()
	C := wf.Ref.C
	Cocc := C.Slice(tensor.All, O)
	Dao := tensor.Einsum("ui,vi->uv", Cocc, Cocc).Scale(2)
	ref := tensor.Einsum("ui,uv,vw,wx,xj->ij", C, wf.S.T(), Dao, wf.S, C)

	t2, t2t := amp.T2, amp.T2Tilde
	P := ref.Clone()
	Pij := P.Slice(O, O)
	Pij.Sub(tensor.Einsum("ikab,jkab->ij", t2, t2t))
	Pij.Sub(tensor.Einsum("jkab,ikab->ij", t2, t2t))
	Pab := P.Slice(V, V)
	Pab.Add(tensor.Einsum("ijac,ijbc->ab", t2, t2t))
	Pab.Add(tensor.Einsum("ijbc,ijac->ab", t2, t2t))

	tpdm := tensor.Einsum("pr,qs->pqrs", ref, ref).Scale(2)
	tpdm.Sub(tensor.Einsum("ps,qr->pqrs", ref, ref))
	tpdm.Scale(-0.25)
	tpdm.Slice(O, O, V, V).Add(t2t)
	tpdm.Slice(V, V, O, O).Add(t2t.Transpose())

	return &Densities{Ref: ref, OPDM: P, TPDM: tpdm}
}

// checkOPDM tests symmetry of P and that its trace is the electron count.
func checkOPDM(P *tensor.Dense, nelec int, tol float64) error {
	if d := P.MaxAbsDiff(P.T()); d > tol {
		return errors.Errorf("OPDM is not symmetric, max deviation %.2e", d)
	}
	tr := floats.Sum(P.Diag())
	if math.Abs(tr-float64(nelec)) > 1e3*tol {
		return errors.Errorf("OPDM trace %.10f, expected %d", tr, nelec)
	}
	return nil
}
