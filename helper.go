// helper.go --  This file is part of goHF project.
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
	"bufio"
	"bytes"
	"embed"
	"io"
	"math"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/mirzaevaiv/gohf/tensor"
)

//go:embed data
var dataFS embed.FS

func ReadFileLines(fname string) ([]string, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return scanLines(file)
}

func readDataLines(name string) ([]string, error) {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return scanLines(bytes.NewReader(raw))
}

func scanLines(r io.Reader) ([]string, error) {
	var result []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		result = append(result, scanner.Text())
	}
	return result, scanner.Err()
}

func PrintDense(name string, D mat.Matrix) {
	OutputLogger.Println(name + ":")
	fa := mat.Formatted(D, mat.Prefix("    "), mat.Squeeze())
	OutputLogger.Printf("    %.10f\n", fa)
}

func PrintTensor(name string, t *tensor.Dense) {
	PrintDense(name, t.Matrix())
}

// MatrixSqrtInverse returns S^-1/2 = U diag(1/sqrt(l)) U^T.
func MatrixSqrtInverse(S *tensor.Dense) (*mat.Dense, error) {
	n := S.Dim(0)
	Smat := mat.NewSymDense(n, append([]float64(nil), S.Data()...))
	var eigsym mat.EigenSym
	if ok := eigsym.Factorize(Smat, true); !ok {
		return nil, errors.New("overlap eigendecomposition failed")
	}
	var ev mat.Dense
	eigsym.VectorsTo(&ev)
	vals := eigsym.Values(nil)
	inv := make([]float64, n)
	for i, v := range vals {
		if v <= 0 {
			return nil, errors.Errorf("overlap matrix is not positive definite (eigenvalue %g)", v)
		}
		inv[i] = 1 / math.Sqrt(v)
	}
	var res mat.Dense
	res.Mul(&ev, mat.NewDiagDense(n, inv))
	res.Mul(&res, ev.T())
	return &res, nil
}

func MyMemDebug() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	InfoLogger.Printf("Alloc: %d bytes, TotalAlloc: %d bytes, HeapSys: %d bytes\n",
		memStats.Alloc, memStats.TotalAlloc, memStats.HeapSys)
}
