// wavefunction.go --  This file is part of goHF project.
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
	"github.com/pkg/errors"

	"github.com/mirzaevaiv/gohf/tensor"
)

// Space is the occupied/virtual partition of the MOs, occupied first.
type Space struct {
	Nocc, Nvir, Nmo int
}

func (s Space) O() tensor.Range { return tensor.R(0, s.Nocc) }
func (s Space) V() tensor.Range { return tensor.R(s.Nocc, s.Nmo) }

// Wavefunction is the RHF reference in the MO basis.
type Wavefunction struct {
	Space
	Ref *Reference
	S   *tensor.Dense // AO overlap
	H   *tensor.Dense // core Hamiltonian
	ERI *tensor.Dense // <pq|rs>
	F   *tensor.Dense
	Eps []float64 // diagonal of F
}

func LoadWavefunction(prov Provider) (*Wavefunction, error) {
	ref, err := prov.SCF()
	if err != nil {
		return nil, errors.Wrap(err, "reference")
	}
	nmo := ref.C.Dim(1)
	wf := &Wavefunction{
		Space: Space{Nocc: ref.Nocc, Nvir: nmo - ref.Nocc, Nmo: nmo},
		Ref:   ref,
	}
	if wf.Nocc == 0 {
		return nil, errors.Wrap(ErrInput, "no occupied orbitals")
	}
	if wf.Nvir == 0 {
		return nil, errors.Wrapf(ErrNoVirtuals, "%d orbitals, all occupied", nmo)
	}

	if wf.S, err = prov.AOIntegral(OverlapInt); err != nil {
		return nil, err
	}
	T, err := prov.AOIntegral(KineticInt)
	if err != nil {
		return nil, err
	}
	V, err := prov.AOIntegral(PotentialInt)
	if err != nil {
		return nil, err
	}
	wf.H = toMO(T.Clone().Add(V), ref.C)
	if wf.ERI, err = prov.MOERI(ref.C); err != nil {
		return nil, err
	}

	O, A := wf.O(), tensor.All
	wf.F = wf.H.Clone()
	wf.F.AddScaled(2, tensor.Einsum("pmqm->pq", wf.ERI.Slice(A, O, A, O)))
	wf.F.Sub(tensor.Einsum("pmmq->pq", wf.ERI.Slice(A, O, O, A)))
	wf.Eps = wf.F.Diag()
	return wf, nil
}
