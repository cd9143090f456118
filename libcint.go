// libcint.go --  This file is part of goHF project.
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

//go:build libcint

package main

/*
#cgo CFLAGS: -g -Wall
#cgo LDFLAGS: -lcint -lm
#include <stdlib.h>
int cint1e_kin_cart(double *buf, int *shls, int *atm, int natm, int *bas, int nbas, double *env);
int cint1e_nuc_cart(double *buf, int *shls, int *atm, int natm, int *bas, int nbas, double *env);
int cint1e_ovlp_cart(double *buf, int *shls, int *atm, int natm, int *bas, int nbas, double *env);
int cint2e_cart(double *buf, int *shls, int *atm, int natm, int *bas, int nbas, double *env, void *opt);
*/
import "C"

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/mirzaevaiv/gohf/tensor"
)

func init() {
	registerEngine("libcint", func(procs int) AOEngine { return &cintEngine{procs: procs} })
}

const (
	cintAtmSlots = 6
	cintBasSlots = 8
	cintEnvStart = 20
)

type cintEngine struct {
	procs int
}

// cintData is the atm/bas/env layout libcint expects for one geometry.
type cintData struct {
	shells     []Shell
	offs       []int
	nao        int
	atm, bas   []C.int
	env        []C.double
	natm, nbas C.int
}

func newCintData(mol *Molecule) *cintData {
	d := &cintData{shells: mol.Shells()}
	d.offs, d.nao = shellOffsets(d.shells)
	d.env = make([]C.double, cintEnvStart)
	for _, a := range mol.Atoms {
		ptr := len(d.env)
		for _, x := range a.Coords {
			d.env = append(d.env, C.double(x))
		}
		d.atm = append(d.atm, C.int(a.Z), C.int(ptr), 0, 0, 0, 0)
	}
	for _, sh := range d.shells {
		ptrExp := len(d.env)
		for _, e := range sh.Exps {
			d.env = append(d.env, C.double(e))
		}
		ptrCoef := len(d.env)
		for _, c := range sh.Coefs {
			d.env = append(d.env, C.double(c))
		}
		d.bas = append(d.bas, C.int(sh.Atom), C.int(sh.L), C.int(len(sh.Exps)), 1, 0, C.int(ptrExp), C.int(ptrCoef), 0)
	}
	d.natm = C.int(len(d.atm) / cintAtmSlots)
	d.nbas = C.int(len(d.bas) / cintBasSlots)
	return d
}

func (d *cintData) oneElectron(kind IntegralKind) *tensor.Dense {
	res := tensor.Zeros(d.nao, d.nao)
	for i := range d.shells {
		for j := 0; j <= i; j++ {
			di, dj := d.shells[i].NFuncs(), d.shells[j].NFuncs()
			buf := make([]C.double, di*dj)
			shls := [2]C.int{C.int(i), C.int(j)}
			switch kind {
			case OverlapInt:
				C.cint1e_ovlp_cart(&buf[0], &shls[0], &d.atm[0], d.natm, &d.bas[0], d.nbas, &d.env[0])
			case KineticInt:
				C.cint1e_kin_cart(&buf[0], &shls[0], &d.atm[0], d.natm, &d.bas[0], d.nbas, &d.env[0])
			case PotentialInt:
				C.cint1e_nuc_cart(&buf[0], &shls[0], &d.atm[0], d.natm, &d.bas[0], d.nbas, &d.env[0])
			}
			c := 0
			for b := 0; b < dj; b++ {
				for a := 0; a < di; a++ {
					v := float64(buf[c])
					res.Set(v, d.offs[i]+a, d.offs[j]+b)
					res.Set(v, d.offs[j]+b, d.offs[i]+a)
					c++
				}
			}
		}
	}
	return res
}

// norms rescales libcint's Cartesian components to unit self-overlap.
func (d *cintData) norms() []float64 {
	S := d.oneElectron(OverlapInt)
	res := make([]float64, d.nao)
	for i := range res {
		res[i] = 1 / math.Sqrt(S.At(i, i))
	}
	return res
}

func scaleOne(t *tensor.Dense, n []float64) *tensor.Dense {
	return t.Apply(func(idx []int, x float64) float64 { return x * n[idx[0]] * n[idx[1]] })
}

func (e *cintEngine) OneElectron(kind IntegralKind, mol *Molecule) (*tensor.Dense, error) {
	if kind != OverlapInt && kind != KineticInt && kind != PotentialInt {
		return nil, errors.Errorf("libcint: unsupported integral kind %s", kind)
	}
	d := newCintData(mol)
	return scaleOne(d.oneElectron(kind), d.norms()), nil
}

func (e *cintEngine) ERI(mol *Molecule) (*tensor.Dense, error) {
	d := newCintData(mol)
	n := d.norms()
	ns := len(d.shells)
	res := tensor.Zeros(d.nao, d.nao, d.nao, d.nao)

	var g errgroup.Group
	if e.procs > 0 {
		g.SetLimit(e.procs)
	}
	for i := 0; i < ns; i++ {
		g.Go(func() error {
			for j := 0; j <= i; j++ {
				ij := i*(i+1)/2 + j
				for k := 0; k <= i; k++ {
					for l := 0; l <= k; l++ {
						if k*(k+1)/2+l > ij {
							break
						}
						dims := [4]int{d.shells[i].NFuncs(), d.shells[j].NFuncs(), d.shells[k].NFuncs(), d.shells[l].NFuncs()}
						buf := make([]C.double, dims[0]*dims[1]*dims[2]*dims[3])
						shls := [4]C.int{C.int(i), C.int(j), C.int(k), C.int(l)}
						C.cint2e_cart(&buf[0], &shls[0], &d.atm[0], d.natm, &d.bas[0], d.nbas, &d.env[0], nil)

						// libcint buffers run first index fastest
						block := tensor.Zeros(dims[:]...)
						c := 0
						for dl := 0; dl < dims[3]; dl++ {
							for dk := 0; dk < dims[2]; dk++ {
								for dj := 0; dj < dims[1]; dj++ {
									for di := 0; di < dims[0]; di++ {
										block.Set(float64(buf[c]), di, dj, dk, dl)
										c++
									}
								}
							}
						}
						scatterQuartet(res, block, [4]int{d.offs[i], d.offs[j], d.offs[k], d.offs[l]})
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res.Apply(func(idx []int, x float64) float64 {
		return x * n[idx[0]] * n[idx[1]] * n[idx[2]] * n[idx[3]]
	}), nil
}
