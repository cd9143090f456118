// errors.go --  This file is part of goHF project.
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

import "github.com/pkg/errors"

var (
	ErrInput           = errors.New("invalid input")
	ErrUnknownEngine   = errors.New("unknown integral engine")
	ErrOpenShell       = errors.New("odd number of electrons, closed shell RHF required")
	ErrNoVirtuals      = errors.New("no virtual orbitals")
	ErrSCFNotConverged = errors.New("SCF not converged")
	ErrSingularHessian = errors.New("electronic hessian is singular or ill-conditioned")
	ErrCheckFailed     = errors.New("self-consistency check failed")
)
