// engine.go --  This file is part of goHF project.
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
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/mirzaevaiv/gohf/tensor"
)

type IntegralKind int

const (
	OverlapInt IntegralKind = iota
	KineticInt
	PotentialInt
)

var oneElectronKinds = []IntegralKind{OverlapInt, KineticInt, PotentialInt}

func (k IntegralKind) String() string {
	switch k {
	case OverlapInt:
		return "OVERLAP"
	case KineticInt:
		return "KINETIC"
	case PotentialInt:
		return "POTENTIAL"
	}
	return "UNKNOWN"
}

// AOEngine computes AO-basis integrals over the Cartesian Gaussian shells
// of a molecule. ERI returns chemist-ordered (mn|ls).
type AOEngine interface {
	OneElectron(kind IntegralKind, mol *Molecule) (*tensor.Dense, error)
	ERI(mol *Molecule) (*tensor.Dense, error)
}

type engineFactory func(procs int) AOEngine

var (
	enginesMu sync.RWMutex
	engines   = map[string]engineFactory{}
)

func registerEngine(name string, f engineFactory) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	engines[name] = f
}

// NewEngine looks up a registered integral engine by name.
func NewEngine(name string, procs int) (AOEngine, error) {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	f, ok := engines[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEngine, "%q (available: %v)", name, engineNamesLocked())
	}
	return f(procs), nil
}

func engineNamesLocked() []string {
	var names []string
	for n := range engines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
