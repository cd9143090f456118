// options.go --  This file is part of goHF project.
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
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Options struct {
	EConvergence float64
	DConvergence float64
	MaxIter      int
	DIISSize     int

	// finite-difference steps (bohr) for first and second integral derivatives
	FDStep1 float64
	FDStep2 float64

	// G is rejected above this condition number
	MaxCondition float64

	// AdvisoryChecks turns failed density, energy and symmetry checks into warnings.
	AdvisoryChecks bool

	Engine string
	Procs  int
}

func DefaultOptions() Options {
	return Options{
		EConvergence: 1e-10,
		DConvergence: 1e-8,
		MaxIter:      100,
		DIISSize:     8,
		FDStep1:      2e-3,
		FDStep2:      5e-3,
		MaxCondition: 1e12,
		Engine:       "gaussian",
		Procs:        runtime.GOMAXPROCS(-1),
	}
}

// parseOptionsBlock reads "key value" lines of an Options ... end block.
func (o *Options) parseOptionsBlock(lines []string) error {
	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 || strings.HasPrefix(words[0], "#") {
			continue
		}
		if len(words) < 2 {
			return errors.Wrapf(ErrInput, "option %q has no value", words[0])
		}
		key, val := strings.ToLower(words[0]), words[1]
		var err error
		switch key {
		case "e_convergence":
			o.EConvergence, err = strconv.ParseFloat(val, 64)
		case "d_convergence":
			o.DConvergence, err = strconv.ParseFloat(val, 64)
		case "max_iter":
			o.MaxIter, err = strconv.Atoi(val)
		case "diis_size":
			o.DIISSize, err = strconv.Atoi(val)
		case "fd_step1":
			o.FDStep1, err = strconv.ParseFloat(val, 64)
		case "fd_step2":
			o.FDStep2, err = strconv.ParseFloat(val, 64)
		case "max_condition":
			o.MaxCondition, err = strconv.ParseFloat(val, 64)
		case "advisory_checks":
			o.AdvisoryChecks, err = strconv.ParseBool(val)
		case "engine":
			o.Engine = strings.ToLower(val)
		default:
			return errors.Wrapf(ErrInput, "unknown option %q", words[0])
		}
		if err != nil {
			return errors.Wrapf(ErrInput, "option %s: %v", key, err)
		}
	}
	return o.validate()
}

func (o *Options) validate() error {
	switch {
	case o.EConvergence <= 0 || o.DConvergence <= 0:
		return errors.Wrap(ErrInput, "convergence thresholds must be positive")
	case o.MaxIter < 1:
		return errors.Wrap(ErrInput, "max_iter must be at least 1")
	case o.DIISSize < 2:
		return errors.Wrap(ErrInput, "diis_size must be at least 2")
	case o.FDStep1 <= 0 || o.FDStep2 <= 0:
		return errors.Wrap(ErrInput, "finite-difference steps must be positive")
	case o.Procs < 1:
		return errors.Wrap(ErrInput, "nprocs must be at least 1")
	}
	return nil
}

// check applies the self-check policy to the outcome of one check.
func (o Options) check(name string, err error) error {
	if err == nil {
		InfoLogger.Println(name, "check passed")
		return nil
	}
	if o.AdvisoryChecks {
		WarningLogger.Println(name, "check failed:", err)
		return nil
	}
	return errors.Wrapf(ErrCheckFailed, "%s: %v", name, err)
}
