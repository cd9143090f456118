// freq_test.go --  This file is part of goHF project.
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirzaevaiv/gohf/tensor"
)

func TestHarmonicFrequenciesSpring(t *testing.T) {
	k := 0.37
	masses := []float64{1.0, 15.995}
	H := tensor.Zeros(6, 6)
	H.Set(k, 2, 2)
	H.Set(k, 5, 5)
	H.Set(-k, 2, 5)
	H.Set(-k, 5, 2)

	f, err := HarmonicFrequencies(H, masses)
	require.NoError(t, err)
	require.Len(t, f, 6)
	mu := masses[0] * masses[1] / (masses[0] + masses[1])
	assert.InDelta(t, math.Sqrt(k/mu)*auToWavenumber, f[5], 1e-6)
	for _, x := range f[:5] {
		assert.InDelta(t, 0.0, x, 1e-4)
	}
}

func TestHarmonicFrequenciesImaginary(t *testing.T) {
	H := tensor.FromDiag([]float64{-0.04, 0.09, 0.01})
	f, err := HarmonicFrequencies(H, []float64{4})
	require.NoError(t, err)
	assert.InDelta(t, -0.1*auToWavenumber, f[0], 1e-8)
	assert.InDelta(t, 0.05*auToWavenumber, f[1], 1e-8)
	assert.InDelta(t, 0.15*auToWavenumber, f[2], 1e-8)

	_, err = HarmonicFrequencies(H, []float64{1, 1})
	assert.Error(t, err)
}
