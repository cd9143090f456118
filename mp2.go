// mp2.go --  This file is part of goHF project.
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
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/mirzaevaiv/gohf/tensor"
)

const checkTol = 1e-10

type Result struct {
	Space
	SCFEnergy           float64
	SCFIterations       int
	CorrelationEnergy   float64
	SCFGradient         *tensor.Dense
	CorrelationGradient *tensor.Dense
	Gradient            *tensor.Dense
	Hessian             *HessianContributions
	Total               *tensor.Dense
	Frequencies         []float64 // nil when no masses are given
}

// RunMP2Hessian drives the whole calculation. masses (amu, one per atom)
// may be nil to skip the harmonic analysis.
func RunMP2Hessian(ctx context.Context, prov Provider, masses []float64, opts Options) (*Result, error) {
	tstart := time.Now()
	wf, err := LoadWavefunction(prov)
	if err != nil {
		return nil, err
	}
	InfoLogger.Printf("Reference: nocc=%d nvir=%d nmo=%d\n", wf.Nocc, wf.Nvir, wf.Nmo)
	if err := opts.check("Orbital orthonormality", checkOrthonormal(wf)); err != nil {
		return nil, err
	}

	amp := BuildAmplitudes(wf)
	if err := opts.check("Energy", amp.checkEnergy(wf, checkTol)); err != nil {
		return nil, err
	}

	dens := BuildDensities(wf, amp)
	if err := opts.check("OPDM", checkOPDM(dens.OPDM, 2*wf.Nocc, checkTol)); err != nil {
		return nil, err
	}

	lag, err := BuildLagrangian(wf, dens, opts)
	if err != nil {
		return nil, err
	}
	if err := opts.check("Electronic Hessian symmetry", lag.checkSymmetric(checkTol)); err != nil {
		return nil, err
	}
	if err := opts.check("Relaxed OPDM", checkOPDM(dens.Relaxed, 2*wf.Nocc, checkTol)); err != nil {
		return nil, err
	}

	dc, err := NewDerivCache(ctx, prov, wf.Ref.C, opts.Procs)
	if err != nil {
		return nil, errors.Wrap(err, "first derivative integrals")
	}
	resp, err := SolveCPHF(ctx, wf, lag, dc, opts.Procs)
	if err != nil {
		return nil, err
	}
	dT2, err := AmplitudeDerivs(ctx, wf, amp, resp, dc, opts.Procs)
	if err != nil {
		return nil, err
	}

	vnn1, err := prov.NuclearRepulsionDeriv1()
	if err != nil {
		return nil, err
	}
	res := &Result{
		Space:               wf.Space,
		SCFEnergy:           wf.Ref.Energy,
		SCFIterations:       wf.Ref.Iterations,
		CorrelationEnergy:   amp.Ecorr,
		SCFGradient:         SCFGradient(wf, dc, vnn1),
		CorrelationGradient: CorrelationGradient(wf, amp, resp, dT2, dc),
	}
	res.Gradient = res.SCFGradient.Clone().Add(res.CorrelationGradient)

	vnn2, err := prov.NuclearRepulsionDeriv2()
	if err != nil {
		return nil, err
	}
	if err := dc.PrefetchSecond(ctx, opts.Procs); err != nil {
		return nil, errors.Wrap(err, "second derivative integrals")
	}
	if res.Hessian, err = BuildHessian(ctx, wf, dens, lag, resp, dc, vnn2, opts.Procs); err != nil {
		return nil, err
	}
	res.Total = res.Hessian.Total()

	if masses != nil {
		if res.Frequencies, err = HarmonicFrequencies(res.Total, masses); err != nil {
			return nil, err
		}
	}
	InfoLogger.Println("MP2 Hessian done...", time.Since(tstart))
	return res, nil
}

func checkOrthonormal(wf *Wavefunction) error {
	M := overlapMO(wf.S, wf.Ref.C)
	n, _ := M.Dims()
	d := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			d = math.Max(d, math.Abs(M.At(i, j)-want))
		}
	}
	if d > 1e-8 {
		return errors.Errorf("C^T S C deviates from identity by %.2e", d)
	}
	return nil
}
