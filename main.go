// main.go --  This file is part of goHF project.
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
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Loggers write to stderr until initLog redirects them to the output file.
var (
	WarningLogger = log.New(os.Stderr, "WARNING: ", log.Ldate|log.Ltime)
	InfoLogger    = log.New(os.Stderr, "INFO: ", log.Ldate|log.Ltime)
	ErrorLogger   = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	OutputLogger  = log.New(os.Stderr, "", 0)
)

var ElemData Mendeleev

var a_B = 0.52917720859

func init() {
	if err := ElemData.build(); err != nil {
		log.Fatal(err)
	}
}

func initLog(fname string) (io.Closer, error) {
	file, err := os.OpenFile(fname, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	InfoLogger = log.New(file, "INFO: ", log.Ldate|log.Ltime)
	WarningLogger = log.New(file, "WARNING: ", log.Ldate|log.Ltime)
	ErrorLogger = log.New(file, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	OutputLogger = log.New(file, "", 0)
	return file, nil
}

func appInfo() {
	OutputLogger.Print("\n              __  __  ____      |\n             /\\ \\/\\ \\/\\  __\\    |" +
		" Author: Mirzaeva Irina Valerievna\n   __     ___\\ \\ \\_\\ \\ \\ \\_/    | email: dairdre@gmail.com\n" +
		" /'_ `\\  / __`\\ \\  _  \\ \\  _\\   | Nikolaev Institute of Inorganic Chemistry SB RAS" +
		" (http://niic.nsc.ru/)\n/\\ \\L\\ \\/\\ \\L\\ \\ \\ \\ \\ \\ \\ \\/   | Novosibirsk, Russia" +
		"\n\\ \\____ \\ \\____/\\ \\_\\ \\_\\ \\_\\   | HF stands for Himicheskaya Fizika\n \\/___L\\" +
		" \\/___/  \\/_/\\/_/\\/_/   | Have Fun!!!\n   /\\____/                      |\n   \\_/__/                       |\n\n")
}

func printOutputDelimiter() {
	OutputLogger.Println(strings.Repeat("-", 70))
}

// processInput builds the molecule and applies the input-file options on top of opts.
func processInput(data []string, opts Options) (*Molecule, Options, error) {
	var atoms bool
	var atom_start, atom_end int
	basisName := "sto-3g"
	scale := 1 / a_B
	mol := &Molecule{}
	for i := 0; i < len(data); i++ {
		words := strings.Fields(data[i])
		if len(words) == 0 {
			continue
		}
		var err error
		switch strings.ToLower(words[0]) {
		case "atoms":
			atoms = true
			atom_start = i
			if atom_end, err = findBlockEnd(i, data, "Atoms"); err != nil {
				return nil, opts, err
			}
			OutputLogger.Print("Parsing input. Atoms block found at lines ", atom_start, " -- ", atom_end, ".")
			i = atom_end
		case "basis":
			end, err := findBlockEnd(i, data, "Basis")
			if err != nil {
				return nil, opts, err
			}
			if end == i+1 {
				return nil, opts, errors.Wrap(ErrInput, "empty Basis block")
			}
			basisName = data[i+1]
			OutputLogger.Print("Parsing input. Basis block found. ", basisName)
			i = end
		case "options":
			end, err := findBlockEnd(i, data, "Options")
			if err != nil {
				return nil, opts, err
			}
			if err := opts.parseOptionsBlock(data[i+1 : end]); err != nil {
				return nil, opts, err
			}
			OutputLogger.Print("Parsing input. Options block found.")
			i = end
		case "units":
			if len(words) < 2 {
				return nil, opts, errors.Wrap(ErrInput, "Units without value")
			}
			switch strings.ToLower(words[1]) {
			case "bohr", "au":
				scale = 1
			case "angstrom", "ang":
				scale = 1 / a_B
			default:
				return nil, opts, errors.Wrapf(ErrInput, "unknown units %q", words[1])
			}
		case "charge":
			if len(words) < 2 {
				return nil, opts, errors.Wrap(ErrInput, "Charge without value")
			}
			if mol.Charge, err = strconv.Atoi(words[1]); err != nil {
				return nil, opts, errors.Wrapf(ErrInput, "charge %q", words[1])
			}
		case "nprocs":
			if len(words) < 2 {
				return nil, opts, errors.Wrap(ErrInput, "nprocs without value")
			}
			if opts.Procs, err = strconv.Atoi(words[1]); err != nil || opts.Procs < 1 {
				return nil, opts, errors.Wrapf(ErrInput, "nprocs %q", words[1])
			}
			OutputLogger.Print("Parsing input. Number of threads set to " + words[1] + ".")
		}
	}
	if !atoms {
		return nil, opts, errors.Wrap(ErrInput, "no Atoms block")
	}
	if err := mol.addAtoms(data, atom_start+1, atom_end-1, scale); err != nil {
		return nil, opts, err
	}
	if len(mol.Atoms) == 0 {
		return nil, opts, errors.Wrap(ErrInput, "empty Atoms block")
	}
	if err := mol.getBasis(basisName); err != nil {
		return nil, opts, err
	}
	return mol, opts, nil
}

func findBlockEnd(n int, data []string, bname string) (int, error) {
	for i := n + 1; i < len(data); i++ {
		words := strings.Fields(data[i])
		if len(words) > 0 {
			if strings.ToLower(words[0]) == "end" {
				return i, nil
			}
		}
	}
	return 0, errors.Wrapf(ErrInput, "no end of block %s", bname)
}

type cliFlags struct {
	engine   string
	nprocs   int
	yamlFile string
	advisory bool
}

var flags cliFlags

var rootCmd = &cobra.Command{
	Use:   "goHF <input>",
	Short: "Analytic MP2 nuclear Hessian for closed-shell molecules",
	Long: `goHF reads a molecule from the input file, runs RHF and MP2, and
computes the MP2 gradient, the analytic MP2 Hessian and harmonic frequencies.
Results are written to <input>.out.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args[0])
	},
}

func init() {
	rootCmd.Flags().StringVar(&flags.engine, "engine", "gaussian", "AO integral engine")
	rootCmd.Flags().IntVar(&flags.nprocs, "nprocs", 0, "number of parallel workers (default from input or all CPUs)")
	rootCmd.Flags().StringVar(&flags.yamlFile, "yaml", "", "also write the results as YAML to this file")
	rootCmd.Flags().BoolVar(&flags.advisory, "advisory-checks", false, "report failed self-checks as warnings")
}

func outputName(inpFname string) string {
	return strings.TrimSuffix(inpFname, filepath.Ext(inpFname)) + ".out"
}

func run(cmd *cobra.Command, inpFname string) error {
	outFname := outputName(inpFname)
	fmt.Println("Output file: ", outFname)
	closer, err := initLog(outFname)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := calculate(cmd, inpFname); err != nil {
		ErrorLogger.Println(err)
		return err
	}
	fmt.Println("goHF done.")
	return nil
}

func calculate(cmd *cobra.Command, inpFname string) error {
	tstart := time.Now()
	InfoLogger.Println("Starting goHF...")
	appInfo()
	WarningLogger.Println("This is an experimental program on an early stage of development.")

	OutputLogger.Println("Input file content:")
	printOutputDelimiter()
	inpData, err := ReadFileLines(inpFname)
	if err != nil {
		return errors.Wrap(err, "cannot read input file")
	}
	for _, i := range inpData {
		OutputLogger.Println(i)
	}
	printOutputDelimiter()

	mol, opts, err := processInput(inpData, DefaultOptions())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("engine") {
		opts.Engine = flags.engine
	}
	if cmd.Flags().Changed("nprocs") {
		opts.Procs = flags.nprocs
	}
	if cmd.Flags().Changed("advisory-checks") {
		opts.AdvisoryChecks = flags.advisory
	}
	if err := opts.validate(); err != nil {
		return err
	}

	engine, err := NewEngine(opts.Engine, opts.Procs)
	if err != nil {
		return err
	}
	OutputLogger.Printf("Integral engine: %s, workers: %d, basis functions: %d\n", opts.Engine, opts.Procs, mol.NBasis())
	prov := NewProvider(mol, engine, opts)

	res, err := RunMP2Hessian(context.Background(), prov, mol.Masses(), opts)
	if err != nil {
		return err
	}
	printReport(res, mol)
	if flags.yamlFile != "" {
		if err := writeYAML(flags.yamlFile, res, mol); err != nil {
			return err
		}
	}

	MyMemDebug()
	InfoLogger.Println("Exiting goHF...", time.Since(tstart))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "goHF:", err)
		os.Exit(1)
	}
}
