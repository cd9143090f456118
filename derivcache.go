// derivcache.go --  This file is part of goHF project.
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
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/mirzaevaiv/gohf/tensor"
)

// DerivCache holds MO integral derivatives for one set of orbitals.
// First derivatives are loaded up front, second derivatives on demand.
type DerivCache struct {
	prov   Provider
	C      *tensor.Dense
	natoms int

	one map[IntegralKind][]*tensor.Dense // by Perturbation.Index
	eri []*tensor.Dense                  // physicist

	mu     sync.Mutex
	second map[[2]int]*secondDerivs
	group  singleflight.Group
}

// secondDerivs is one atom pair; components are indexed 3*p+q.
type secondDerivs struct {
	one map[IntegralKind][9]*tensor.Dense
	eri [9]*tensor.Dense
}

func NewDerivCache(ctx context.Context, prov Provider, C *tensor.Dense, procs int) (*DerivCache, error) {
	tstart := time.Now()
	n := prov.NAtoms()
	c := &DerivCache{
		prov:   prov,
		C:      C,
		natoms: n,
		one:    make(map[IntegralKind][]*tensor.Dense),
		eri:    make([]*tensor.Dense, 3*n),
		second: make(map[[2]int]*secondDerivs),
	}
	for _, kind := range oneElectronKinds {
		c.one[kind] = make([]*tensor.Dense, 3*n)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(procs)
	var mu sync.Mutex
	for atom := 0; atom < n; atom++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			eri, err := prov.ERIDeriv1(atom, C)
			if err != nil {
				return err
			}
			ones := make(map[IntegralKind][3]*tensor.Dense)
			for _, kind := range oneElectronKinds {
				if ones[kind], err = prov.OneElectronDeriv1(kind, atom, C); err != nil {
					return err
				}
			}
			mu.Lock()
			defer mu.Unlock()
			for ax := 0; ax < 3; ax++ {
				c.eri[3*atom+ax] = eri[ax]
				for kind, t := range ones {
					c.one[kind][3*atom+ax] = t[ax]
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	InfoLogger.Println("First derivative integrals done...", time.Since(tstart))
	return c, nil
}

func (c *DerivCache) First(kind IntegralKind, p Perturbation) *tensor.Dense {
	return c.one[kind][p.Index()]
}

// ERI1 is d<pq|rs>/dp.
func (c *DerivCache) ERI1(p Perturbation) *tensor.Dense {
	return c.eri[p.Index()]
}

// TEI1 is the chemist view d(pq|rs)/dp of ERI1.
func (c *DerivCache) TEI1(p Perturbation) *tensor.Dense {
	return c.eri[p.Index()].Transpose(0, 2, 1, 3)
}

// Second returns the atom-pair block; concurrent callers share one fetch.
func (c *DerivCache) Second(atom1, atom2 int) (*secondDerivs, error) {
	key := [2]int{atom1, atom2}
	c.mu.Lock()
	blk, ok := c.second[key]
	c.mu.Unlock()
	if ok {
		return blk, nil
	}
	v, err, _ := c.group.Do(fmt.Sprint(atom1, ":", atom2), func() (interface{}, error) {
		c.mu.Lock()
		blk, ok := c.second[key]
		c.mu.Unlock()
		if ok {
			return blk, nil
		}
		blk = &secondDerivs{one: make(map[IntegralKind][9]*tensor.Dense)}
		var err error
		if blk.eri, err = c.prov.ERIDeriv2(atom1, atom2, c.C); err != nil {
			return nil, err
		}
		for _, kind := range oneElectronKinds {
			if blk.one[kind], err = c.prov.OneElectronDeriv2(kind, atom1, atom2, c.C); err != nil {
				return nil, err
			}
		}
		c.mu.Lock()
		c.second[key] = blk
		c.mu.Unlock()
		return blk, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*secondDerivs), nil
}

// SecondAt returns the derivatives for coordinates (p, q).
func (c *DerivCache) SecondAt(p, q Perturbation) (map[IntegralKind]*tensor.Dense, *tensor.Dense, error) {
	blk, err := c.Second(p.Atom, q.Atom)
	if err != nil {
		return nil, nil, err
	}
	k := 3*int(p.Axis) + int(q.Axis)
	one := make(map[IntegralKind]*tensor.Dense, len(blk.one))
	for kind, t := range blk.one {
		one[kind] = t[k]
	}
	return one, blk.eri[k], nil
}

// PrefetchSecond loads every atom pair block (atom1 >= atom2) in parallel.
func (c *DerivCache) PrefetchSecond(ctx context.Context, procs int) error {
	tstart := time.Now()
	pairs := make([][2]int, 0, c.natoms*(c.natoms+1)/2)
	for a := 0; a < c.natoms; a++ {
		pairs = append(pairs, [2]int{a, a})
	}
	if c.natoms > 1 {
		for _, ab := range combin.Combinations(c.natoms, 2) {
			pairs = append(pairs, [2]int{ab[1], ab[0]})
		}
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(procs)
	for _, pair := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := c.Second(pair[0], pair[1])
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	InfoLogger.Println("Second derivative integrals done...", time.Since(tstart))
	return nil
}
