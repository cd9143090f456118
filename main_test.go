// main_test.go --  This file is part of goHF project.
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
	"bytes"
	"io"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	InfoLogger = log.New(io.Discard, "", 0)
	WarningLogger = log.New(io.Discard, "", 0)
	ErrorLogger = log.New(io.Discard, "", 0)
	OutputLogger = log.New(io.Discard, "", 0)
	os.Exit(m.Run())
}

func inputLines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

// testMolecule parses an input deck and fails the test on error.
func testMolecule(t *testing.T, deck string) *Molecule {
	t.Helper()
	mol, _, err := processInput(inputLines(deck), DefaultOptions())
	require.NoError(t, err)
	return mol
}

const h2STO3G = `
Units bohr
Atoms
H 0.0 0.0 0.0
H 0.0 0.0 1.4
end
`

const h2631G = `
Units bohr
Basis
6-31g
end
Atoms
H 0.0 0.0 -0.7
H 0.0 0.0 0.7
end
`

const lihSTO3G = `
Units bohr
Atoms
Li 0.0 0.0 0.0
H  0.0 0.0 3.015
end
`

func TestProcessInput(t *testing.T) {
	deck := `
# comment lines are ignored
Charge 0
nprocs 3
Basis
sto-3g
end
Options
e_convergence 1e-9
max_iter 60
advisory_checks true
end
Atoms
O  0.000  0.000  0.000
H  0.757  0.586  0.000
h -0.757  0.586  0.000
end
`
	mol, opts, err := processInput(inputLines(deck), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 3, mol.NAtoms())
	assert.Equal(t, 8, mol.Atoms[0].Z)
	assert.Equal(t, 1, mol.Atoms[2].Z)
	assert.InDelta(t, 0.757/a_B, mol.Atoms[1].Coords[0], 1e-12)
	assert.Equal(t, 10, mol.Nelec())
	assert.Equal(t, 7, mol.NBasis())
	assert.Equal(t, 3, opts.Procs)
	assert.Equal(t, 60, opts.MaxIter)
	assert.InDelta(t, 1e-9, opts.EConvergence, 1e-20)
	assert.True(t, opts.AdvisoryChecks)
}

func TestProcessInputUnitsAndCharge(t *testing.T) {
	mol := testMolecule(t, "Units bohr\nCharge 1\nAtoms\nHe 0 0 0\nH 0 0 1.46\nend")
	assert.Equal(t, 1.46, mol.Atoms[1].Coords[2])
	assert.Equal(t, 2, mol.Nelec())
}

func TestProcessInputErrors(t *testing.T) {
	for name, deck := range map[string]string{
		"no atoms":        "Basis\nsto-3g\nend",
		"unclosed atoms":  "Atoms\nH 0 0 0",
		"unknown element": "Atoms\nXx 0 0 0\nend",
		"short atom line": "Atoms\nH 0 0\nend",
		"bad units":       "Units parsec\nAtoms\nH 0 0 0\nend",
		"unknown basis":   "Basis\ncc-pv9z\nend\nAtoms\nH 0 0 0\nend",
		"unknown option":  "Options\nfoo 1\nend\nAtoms\nH 0 0 0\nend",
		"bad nprocs":      "nprocs zero\nAtoms\nH 0 0 0\nend",
		"blank basis":     "Basis\n   \nend\nAtoms\nH 0 0 0\nend",
	} {
		t.Run(name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() {
				_, _, err = processInput(inputLines(deck), DefaultOptions())
			})
			assert.ErrorIs(t, err, ErrInput)
		})
	}
}

func TestBasisNameWhitespace(t *testing.T) {
	mol := testMolecule(t, "Atoms\nH 0 0 0\nend")
	for _, name := range []string{"", " ", "\t  "} {
		assert.ErrorIs(t, mol.getBasis(name), ErrInput, "%q", name)
	}
	require.NoError(t, mol.getBasis("  STO-3G  "))
	assert.Equal(t, "sto-3g", mol.BasisName)
}

func TestAppInfo(t *testing.T) {
	var buf bytes.Buffer
	saved := OutputLogger
	OutputLogger = log.New(&buf, "", 0)
	defer func() { OutputLogger = saved }()

	appInfo()
	assert.Contains(t, buf.String(), "Have Fun!!!")
	assert.False(t, strings.HasSuffix(buf.String(), "\n\n\n"))
}

func TestParseOptionsBlock(t *testing.T) {
	opts := DefaultOptions()
	require.NoError(t, opts.parseOptionsBlock([]string{
		"fd_step1 1e-3",
		"",
		"fd_step2 2e-3",
		"diis_size 6",
		"engine Gaussian",
		"max_condition 1e10",
	}))
	assert.Equal(t, 1e-3, opts.FDStep1)
	assert.Equal(t, 2e-3, opts.FDStep2)
	assert.Equal(t, 6, opts.DIISSize)
	assert.Equal(t, "gaussian", opts.Engine)
	assert.Equal(t, 1e10, opts.MaxCondition)

	assert.ErrorIs(t, opts.parseOptionsBlock([]string{"max_iter many"}), ErrInput)
	assert.ErrorIs(t, opts.parseOptionsBlock([]string{"diis_size 1"}), ErrInput)
	assert.ErrorIs(t, opts.parseOptionsBlock([]string{"fd_step1"}), ErrInput)
}

func TestCheckPolicy(t *testing.T) {
	opts := DefaultOptions()
	assert.NoError(t, opts.check("ok", nil))
	assert.ErrorIs(t, opts.check("bad", assert.AnError), ErrCheckFailed)
	opts.AdvisoryChecks = true
	assert.NoError(t, opts.check("bad", assert.AnError))
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "water.out", outputName("water.inp"))
	assert.Equal(t, "dir/h2.out", outputName("dir/h2"))
}

func TestNewEngine(t *testing.T) {
	e, err := NewEngine("gaussian", 2)
	require.NoError(t, err)
	assert.NotNil(t, e)
	_, err = NewEngine("nope", 1)
	assert.ErrorIs(t, err, ErrUnknownEngine)
}
