// freq.go --  This file is part of goHF project.
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
	"gonum.org/v1/gonum/mat"

	"github.com/mirzaevaiv/gohf/tensor"
)

// sqrt(Eh / (bohr^2 amu)) in cm-1
const auToWavenumber = 5140.4871

// HarmonicFrequencies diagonalizes the mass-weighted Hessian (masses in amu).
// Imaginary modes are returned as negative wavenumbers, lowest first.
func HarmonicFrequencies(H *tensor.Dense, masses []float64) ([]float64, error) {
	n := H.Dim(0)
	if n != 3*len(masses) {
		return nil, errors.Errorf("Hessian of size %d for %d atoms", n, len(masses))
	}
	mw := mat.NewSymDense(n, nil)
	for r := 0; r < n; r++ {
		for c := r; c < n; c++ {
			v := 0.5 * (H.At(r, c) + H.At(c, r))
			mw.SetSym(r, c, v/math.Sqrt(masses[r/3]*masses[c/3]))
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(mw, false); !ok {
		return nil, errors.New("mass-weighted Hessian eigendecomposition failed")
	}
	vals := eig.Values(nil)
	res := make([]float64, n)
	for i, l := range vals {
		res[i] = math.Copysign(math.Sqrt(math.Abs(l)), l) * auToWavenumber
	}
	return res, nil
}
