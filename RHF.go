// RHF.go --  This file is part of goHF project.
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
	"sync"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/mirzaevaiv/gohf/tensor"
)

type RHF struct {
	Occupied        int
	NBasis          int
	S, H1           *mat.Dense
	ERI             *tensor.Dense // AO, chemist order
	Vnn             float64
	S2Inv           *mat.Dense
	Cij, DensMat, G *mat.Dense
	Eps             []float64
	F_list, DIIS_R  []*mat.Dense
	opts            Options
	Iterations      int
}

// aoSet holds AO integrals of one geometry.
type aoSet struct {
	one map[IntegralKind]*tensor.Dense
	eri *tensor.Dense
}

func computeAOSet(engine AOEngine, mol *Molecule) (*aoSet, error) {
	res := &aoSet{one: make(map[IntegralKind]*tensor.Dense, len(oneElectronKinds))}
	for _, kind := range oneElectronKinds {
		t, err := engine.OneElectron(kind, mol)
		if err != nil {
			return nil, errors.Wrapf(err, "%s integrals", kind)
		}
		res.one[kind] = t
	}
	eri, err := engine.ERI(mol)
	if err != nil {
		return nil, errors.Wrap(err, "2e integrals")
	}
	res.eri = eri
	return res, nil
}

func (m *Molecule) RHFinit(ao *aoSet, opts Options) (*RHF, error) {
	nel := m.Nelec()
	if nel%2 != 0 {
		return nil, errors.Wrapf(ErrOpenShell, "%d electrons", nel)
	}
	if nel <= 0 {
		return nil, errors.Wrap(ErrInput, "no electrons")
	}
	result := &RHF{opts: opts, Occupied: nel / 2, NBasis: m.NBasis()}
	if result.Occupied > result.NBasis {
		return nil, errors.Wrapf(ErrInput, "%d occupied orbitals in %d basis functions", result.Occupied, result.NBasis)
	}
	InfoLogger.Println("Initializing RHF structure...")

	result.S = ao.one[OverlapInt].Matrix()
	result.H1 = ao.one[KineticInt].Matrix()
	result.H1.Add(result.H1, ao.one[PotentialInt].Matrix())
	result.ERI = ao.eri
	result.Vnn = m.NucNuc()

	var err error
	if result.S2Inv, err = MatrixSqrtInverse(ao.one[OverlapInt]); err != nil {
		return nil, err
	}
	if err := result.BuildInitialGuess(); err != nil {
		return nil, err
	}
	result.BuildDensMat()
	return result, nil
}

// diagonalize solves FC = SCe in the symmetric orthogonalized basis.
func (rhf *RHF) diagonalize(F *mat.Dense) (*mat.Dense, []float64, error) {
	n_basis := rhf.NBasis
	var Ft mat.Dense
	Ft.Mul(rhf.S2Inv, F)
	Ft.Mul(&Ft, rhf.S2Inv)
	// symmetrize away the rounding noise of the two products
	FSym := mat.NewSymDense(n_basis, nil)
	for i := 0; i < n_basis; i++ {
		for j := i; j < n_basis; j++ {
			FSym.SetSym(i, j, 0.5*(Ft.At(i, j)+Ft.At(j, i)))
		}
	}
	var eigsym mat.EigenSym
	if ok := eigsym.Factorize(FSym, true); !ok {
		return nil, nil, errors.New("transformed Fock matrix eigendecomposition failed")
	}
	var ev mat.Dense
	eigsym.VectorsTo(&ev)
	var C mat.Dense
	C.Mul(rhf.S2Inv, &ev)
	return &C, eigsym.Values(nil), nil
}

func (rhf *RHF) BuildInitialGuess() error {
	C, eps, err := rhf.diagonalize(rhf.H1)
	if err != nil {
		return errors.Wrap(err, "core guess")
	}
	rhf.Cij, rhf.Eps = C, eps
	return nil
}

func (rhf *RHF) BuildDensMat() {
	n_basis := rhf.NBasis
	Cocc := rhf.Cij.Slice(0, n_basis, 0, rhf.Occupied)
	rhf.DensMat = mat.NewDense(n_basis, n_basis, nil)
	rhf.DensMat.Mul(Cocc, Cocc.T())
}

// BuildG forms G_pq = sum_rs D_rs [2(pq|rs) - (pr|qs)], rows split among goroutines.
func (rhf *RHF) BuildG() {
	n := rhf.NBasis
	eri := rhf.ERI.Data()
	D := rhf.DensMat.RawMatrix().Data
	rhf.G = mat.NewDense(n, n, nil)
	G := rhf.G.RawMatrix().Data

	maxGoroutines := rhf.opts.Procs
	if maxGoroutines < 1 || maxGoroutines > n {
		maxGoroutines = n
	}
	var wg sync.WaitGroup
	for w := 0; w < maxGoroutines; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for p := w; p < n; p += maxGoroutines {
				for q := 0; q < n; q++ {
					res := 0.0
					for r := 0; r < n; r++ {
						coul := eri[((p*n+q)*n+r)*n:]
						exch := eri[((p*n+r)*n+q)*n:]
						for s := 0; s < n; s++ {
							res += D[r*n+s] * (2*coul[s] - exch[s])
						}
					}
					G[p*n+q] = res
				}
			}
		}(w)
	}
	wg.Wait()
}

func (rhf *RHF) CalcEnergy() float64 {
	n_basis := rhf.NBasis
	res := 0.0
	for i := 0; i < n_basis; i++ {
		for j := 0; j < n_basis; j++ {
			res += rhf.DensMat.At(i, j) * (2*rhf.H1.At(i, j) + rhf.G.At(i, j))
		}
	}
	return res + rhf.Vnn
}

func (rhf *RHF) BuildDIIS_R(F *mat.Dense) {
	var term1, term2 mat.Dense
	term1.Mul(F, rhf.DensMat)
	term1.Mul(&term1, rhf.S)
	term2.Mul(rhf.S, rhf.DensMat)
	term2.Mul(&term2, F)
	term1.Sub(&term1, &term2)
	term1.Mul(rhf.S2Inv, &term1)
	term1.Mul(&term1, rhf.S2Inv)
	rhf.DIIS_R = append(rhf.DIIS_R, &term1) //DIIS Residual: diis_r = A.dot(F.dot(D).dot(S) - S.dot(D).dot(F)).dot(A)
}

func (rhf *RHF) CalcdRMS() float64 {
	res := mat.DenseCopyOf(rhf.DIIS_R[len(rhf.DIIS_R)-1])
	res.MulElem(res, res)
	return math.Sqrt(stat.Mean(res.RawMatrix().Data, nil))
}

func (rhf *RHF) BuildB() *mat.Dense {
	B_dim := len(rhf.F_list) + 1
	result := mat.NewDense(B_dim, B_dim, nil)

	for i := 0; i < (B_dim - 1); i++ {
		result.Set(i, B_dim-1, -1)
		result.Set(B_dim-1, i, -1)
	}

	var b mat.Dense
	for i := range rhf.F_list {
		for j := range rhf.F_list {
			b.MulElem(rhf.DIIS_R[i], rhf.DIIS_R[j])
			result.Set(i, j, mat.Sum(&b))
		}
	}
	return result
}

// extrapolate returns the DIIS combination of the stored Fock matrices, or
// nil when the B system cannot be solved.
func (rhf *RHF) extrapolate() *mat.Dense {
	n_basis := rhf.NBasis
	bmat := rhf.BuildB()
	rhs := mat.NewVecDense(len(rhf.F_list)+1, nil)
	rhs.SetVec(len(rhf.F_list), -1)

	var lu mat.LU
	lu.Factorize(bmat)
	var coefs mat.VecDense
	if err := lu.SolveVecTo(&coefs, false, rhs); err != nil {
		return nil
	}
	F := mat.NewDense(n_basis, n_basis, nil)
	var fpart mat.Dense
	for j := range rhf.F_list {
		fpart.Scale(coefs.AtVec(j), rhf.F_list[j])
		F.Add(F, &fpart)
	}
	return F
}

// SCF_DIIS iterates to self-consistency and leaves canonical orbitals of
// the converged Fock matrix in Cij and Eps.
func (rhf *RHF) SCF_DIIS() (float64, error) {
	tstart := time.Now()
	res, E_prev, dRMS := 0.0, 0.0, 0.0

	for i := 0; i < rhf.opts.MaxIter; i++ {
		E_prev = res
		rhf.BuildG()
		res = rhf.CalcEnergy()

		F := mat.DenseCopyOf(rhf.G)
		F.Add(F, rhf.H1)

		rhf.F_list = append(rhf.F_list, mat.DenseCopyOf(F))
		rhf.BuildDIIS_R(F)
		if len(rhf.F_list) > rhf.opts.DIISSize {
			rhf.F_list = rhf.F_list[1:]
			rhf.DIIS_R = rhf.DIIS_R[1:]
		}
		dRMS = rhf.CalcdRMS()

		OutputLogger.Printf("Iteration %3d. Energy = %.12f, dE = %.3e, dRMS = %.3e\n", i+1, res, E_prev-res, dRMS)
		if i > 0 && math.Abs(E_prev-res) < rhf.opts.EConvergence && dRMS < rhf.opts.DConvergence {
			rhf.Iterations = i + 1
			C, eps, err := rhf.diagonalize(F)
			if err != nil {
				return res, err
			}
			rhf.Cij, rhf.Eps = C, eps
			rhf.BuildDensMat()
			OutputLogger.Println("SCF converged after step ", i+1)
			InfoLogger.Println("SCF done...", time.Since(tstart))
			return res, nil
		}

		if i > 0 {
			if Fx := rhf.extrapolate(); Fx != nil {
				F = Fx
			}
		}
		C, eps, err := rhf.diagonalize(F)
		if err != nil {
			return res, err
		}
		rhf.Cij, rhf.Eps = C, eps
		rhf.BuildDensMat()
	}

	OutputLogger.Println("Warning! SCF NOT converged after step ", rhf.opts.MaxIter)
	return res, errors.Wrapf(ErrSCFNotConverged, "%d iterations, dRMS %.3e", rhf.opts.MaxIter, dRMS)
}
