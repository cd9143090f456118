// provider.go --  This file is part of goHF project.
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
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
	"gonum.org/v1/gonum/mat"

	"github.com/mirzaevaiv/gohf/tensor"
)

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	return [...]string{"x", "y", "z"}[a]
}

// Perturbation is one nuclear Cartesian coordinate.
type Perturbation struct {
	Atom int
	Axis Axis
}

// Index is the row of the perturbation in gradients and Hessians.
func (p Perturbation) Index() int {
	return 3*p.Atom + int(p.Axis)
}

func (p Perturbation) String() string {
	return fmt.Sprintf("%d%s", p.Atom+1, p.Axis)
}

func perturbationAt(index int) Perturbation {
	return Perturbation{Atom: index / 3, Axis: Axis(index % 3)}
}

func perturbations(natoms int) []Perturbation {
	res := make([]Perturbation, 0, 3*natoms)
	for i := 0; i < 3*natoms; i++ {
		res = append(res, perturbationAt(i))
	}
	return res
}

// Reference is a converged closed-shell RHF state.
type Reference struct {
	Energy     float64
	C          *tensor.Dense // AO x MO
	Eps        []float64
	Nocc       int
	Iterations int
}

// Provider supplies the reference wavefunction and MO-basis integrals with
// their nuclear derivatives. Two-electron quantities are physicist ordered.
// Second-derivative components are indexed 3*p+q for axes p of atom1 and q
// of atom2.
type Provider interface {
	NAtoms() int
	SCF() (*Reference, error)
	AOIntegral(kind IntegralKind) (*tensor.Dense, error)
	MOERI(C *tensor.Dense) (*tensor.Dense, error)
	OneElectronDeriv1(kind IntegralKind, atom int, C *tensor.Dense) ([3]*tensor.Dense, error)
	ERIDeriv1(atom int, C *tensor.Dense) ([3]*tensor.Dense, error)
	OneElectronDeriv2(kind IntegralKind, atom1, atom2 int, C *tensor.Dense) ([9]*tensor.Dense, error)
	ERIDeriv2(atom1, atom2 int, C *tensor.Dense) ([9]*tensor.Dense, error)
	NuclearRepulsionDeriv1() (*tensor.Dense, error)
	NuclearRepulsionDeriv2() (*tensor.Dense, error)
}

// molProvider computes everything from a Molecule with an AOEngine;
// integral derivatives are finite differences of the AO integrals
// transformed with fixed orbitals.
type molProvider struct {
	mol    *Molecule
	engine AOEngine
	opts   Options

	aoOnce sync.Once
	ao     *aoSet
	aoErr  error

	mu       sync.Mutex
	orbitals []*tensor.Dense // index is the orbital-set id used in block keys
	blocks   map[string]*derivBlock
	group    singleflight.Group
}

// derivBlock holds the MO derivative integrals of one atom (3 components)
// or one atom pair (9 components).
type derivBlock struct {
	one map[IntegralKind][]*tensor.Dense
	eri []*tensor.Dense
}

func newDerivBlock(n int) *derivBlock {
	blk := &derivBlock{one: make(map[IntegralKind][]*tensor.Dense), eri: make([]*tensor.Dense, n)}
	for _, kind := range oneElectronKinds {
		blk.one[kind] = make([]*tensor.Dense, n)
	}
	return blk
}

func (blk *derivBlock) put(k int, set *aoSet, C *tensor.Dense) {
	for kind, t := range set.one {
		blk.one[kind][k] = toMO(t, C)
	}
	blk.eri[k] = eriToMO(set.eri, C)
}

func (blk *derivBlock) alias(dst, src int) {
	for kind := range blk.one {
		blk.one[kind][dst] = blk.one[kind][src]
	}
	blk.eri[dst] = blk.eri[src]
}

func NewProvider(mol *Molecule, engine AOEngine, opts Options) *molProvider {
	return &molProvider{mol: mol, engine: engine, opts: opts, blocks: make(map[string]*derivBlock)}
}

func (p *molProvider) NAtoms() int {
	return p.mol.NAtoms()
}

func (p *molProvider) aoIntegrals() (*aoSet, error) {
	p.aoOnce.Do(func() {
		tstart := time.Now()
		p.ao, p.aoErr = computeAOSet(p.engine, p.mol)
		InfoLogger.Println("AO integrals done...", time.Since(tstart))
	})
	return p.ao, p.aoErr
}

func (p *molProvider) SCF() (*Reference, error) {
	ao, err := p.aoIntegrals()
	if err != nil {
		return nil, err
	}
	rhf, err := p.mol.RHFinit(ao, p.opts)
	if err != nil {
		return nil, err
	}
	energy, err := rhf.SCF_DIIS()
	if err != nil {
		return nil, err
	}
	return &Reference{
		Energy:     energy,
		C:          tensor.FromMatrix(rhf.Cij),
		Eps:        rhf.Eps,
		Nocc:       rhf.Occupied,
		Iterations: rhf.Iterations,
	}, nil
}

func (p *molProvider) AOIntegral(kind IntegralKind) (*tensor.Dense, error) {
	ao, err := p.aoIntegrals()
	if err != nil {
		return nil, err
	}
	t, ok := ao.one[kind]
	if !ok {
		return nil, errors.Errorf("no %s integrals", kind)
	}
	return t, nil
}

func (p *molProvider) MOERI(C *tensor.Dense) (*tensor.Dense, error) {
	ao, err := p.aoIntegrals()
	if err != nil {
		return nil, err
	}
	return eriToMO(ao.eri, C), nil
}

func (p *molProvider) checkAtom(atoms ...int) error {
	for _, a := range atoms {
		if a < 0 || a >= p.mol.NAtoms() {
			return errors.Wrapf(ErrInput, "atom index %d out of range", a)
		}
	}
	return nil
}

// orbitalSetID numbers each distinct orbital tensor the provider has seen.
// The tensor is retained so its identity is never reused for another set.
func (p *molProvider) orbitalSetID(C *tensor.Dense) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.orbitals {
		if c == C {
			return id
		}
	}
	p.orbitals = append(p.orbitals, C)
	return len(p.orbitals) - 1
}

// memo computes a derivative block once per key, also under concurrent requests.
func (p *molProvider) memo(key string, build func() (*derivBlock, error)) (*derivBlock, error) {
	p.mu.Lock()
	blk, ok := p.blocks[key]
	p.mu.Unlock()
	if ok {
		return blk, nil
	}
	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		p.mu.Lock()
		blk, ok := p.blocks[key]
		p.mu.Unlock()
		if ok {
			return blk, nil
		}
		blk, err := build()
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.blocks[key] = blk
		p.mu.Unlock()
		return blk, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*derivBlock), nil
}

func (p *molProvider) displacedAO(mol *Molecule) (*aoSet, error) {
	return computeAOSet(p.engine, mol)
}

func (p *molProvider) first(atom int, C *tensor.Dense) (*derivBlock, error) {
	if err := p.checkAtom(atom); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%d/1/%d", p.orbitalSetID(C), atom)
	return p.memo(key, func() (*derivBlock, error) {
		tstart := time.Now()
		blk := newDerivBlock(3)
		for ax := AxisX; ax <= AxisZ; ax++ {
			set, err := evalStencil(p.mol, stencil1(Perturbation{atom, ax}, p.opts.FDStep1), p.displacedAO)
			if err != nil {
				return nil, errors.Wrapf(err, "first derivatives of atom %d", atom+1)
			}
			blk.put(int(ax), set, C)
		}
		InfoLogger.Printf("First derivative integrals of atom %d done... %v\n", atom+1, time.Since(tstart))
		return blk, nil
	})
}

func (p *molProvider) second(atom1, atom2 int, C *tensor.Dense) (*derivBlock, error) {
	if err := p.checkAtom(atom1, atom2); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%d/2/%d/%d", p.orbitalSetID(C), atom1, atom2)
	return p.memo(key, func() (*derivBlock, error) {
		tstart := time.Now()
		blk := newDerivBlock(9)
		for x := AxisX; x <= AxisZ; x++ {
			for y := AxisX; y <= AxisZ; y++ {
				if atom1 == atom2 && y < x {
					blk.alias(3*int(x)+int(y), 3*int(y)+int(x))
					continue
				}
				pts := stencil2(Perturbation{atom1, x}, Perturbation{atom2, y}, p.opts.FDStep2)
				set, err := evalStencil(p.mol, pts, p.displacedAO)
				if err != nil {
					return nil, errors.Wrapf(err, "second derivatives of atoms %d,%d", atom1+1, atom2+1)
				}
				blk.put(3*int(x)+int(y), set, C)
			}
		}
		InfoLogger.Printf("Second derivative integrals of atoms %d,%d done... %v\n", atom1+1, atom2+1, time.Since(tstart))
		return blk, nil
	})
}

func (p *molProvider) OneElectronDeriv1(kind IntegralKind, atom int, C *tensor.Dense) ([3]*tensor.Dense, error) {
	var res [3]*tensor.Dense
	blk, err := p.first(atom, C)
	if err != nil {
		return res, err
	}
	copy(res[:], blk.one[kind])
	return res, nil
}

func (p *molProvider) ERIDeriv1(atom int, C *tensor.Dense) ([3]*tensor.Dense, error) {
	var res [3]*tensor.Dense
	blk, err := p.first(atom, C)
	if err != nil {
		return res, err
	}
	copy(res[:], blk.eri)
	return res, nil
}

func (p *molProvider) OneElectronDeriv2(kind IntegralKind, atom1, atom2 int, C *tensor.Dense) ([9]*tensor.Dense, error) {
	var res [9]*tensor.Dense
	blk, err := p.second(atom1, atom2, C)
	if err != nil {
		return res, err
	}
	copy(res[:], blk.one[kind])
	return res, nil
}

func (p *molProvider) ERIDeriv2(atom1, atom2 int, C *tensor.Dense) ([9]*tensor.Dense, error) {
	var res [9]*tensor.Dense
	blk, err := p.second(atom1, atom2, C)
	if err != nil {
		return res, err
	}
	copy(res[:], blk.eri)
	return res, nil
}

func (p *molProvider) NuclearRepulsionDeriv1() (*tensor.Dense, error) {
	return p.mol.NucNucGradient(), nil
}

func (p *molProvider) NuclearRepulsionDeriv2() (*tensor.Dense, error) {
	return p.mol.NucNucHessian(), nil
}

// overlapMO is C^T S C, used to check orbital orthonormality.
func overlapMO(S, C *tensor.Dense) *mat.Dense {
	return toMO(S, C).Matrix()
}
