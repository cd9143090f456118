// amplitudes.go --  This file is part of goHF project.
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

	"github.com/mirzaevaiv/gohf/tensor"
)

type Amplitudes struct {
	D       *tensor.Dense // e_i + e_j - e_a - e_b
	T2      *tensor.Dense // <ij|ab> / D
	T2Tilde *tensor.Dense // 2 t_ijab - t_ijba
	Ecorr   float64
}

func BuildAmplitudes(wf *Wavefunction) *Amplitudes {
	no, nv := wf.Nocc, wf.Nvir
	eo, ev := wf.Eps[:no], wf.Eps[no:]
	D := tensor.Zeros(no, no, nv, nv).Apply(func(idx []int, _ float64) float64 {
		return eo[idx[0]] + eo[idx[1]] - ev[idx[2]] - ev[idx[3]]
	})
	V := wf.ERI.Slice(wf.O(), wf.O(), wf.V(), wf.V())
	t2 := V.Clone().DivElem(D)
	t2t := t2.Clone().Scale(2).Sub(t2.Transpose(0, 1, 3, 2))
	return &Amplitudes{
		D:       D,
		T2:      t2,
		T2Tilde: t2t,
		Ecorr:   correlationEnergy(t2, V),
	}
}

// correlationEnergy is 2 t_ijab <ij|ab> - t_ijab <ij|ba>.
func correlationEnergy(t2, V *tensor.Dense) float64 {
	return 2*tensor.Scalar("ijab,ijab->", t2, V) - tensor.Scalar("ijab,ijba->", t2, V)
}

// checkEnergy compares the correlation energy with t~_ijab <ij|ab>.
func (amp *Amplitudes) checkEnergy(wf *Wavefunction, tol float64) error {
	V := wf.ERI.Slice(wf.O(), wf.O(), wf.V(), wf.V())
	alt := tensor.Scalar("ijab,ijab->", amp.T2Tilde, V)
	if d := math.Abs(alt - amp.Ecorr); d > tol {
		return errors.Errorf("correlation energy %.12f differs from %.12f by %.2e", amp.Ecorr, alt, d)
	}
	return nil
}
