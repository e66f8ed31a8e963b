// Package nuclear tests whether a transient's detections are positionally
// consistent with its host galaxy's center.
package nuclear

import (
	"fmt"
	"math"

	"gonuclear/domain/coords"
	"gonuclear/domain/core"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// PValueThreshold is the significance level of the test. A p-value above it
// fails to reject the null hypothesis "the transient sits on the nucleus".
const PValueThreshold = 0.05

// Result is the verdict for one (detections, galaxy center, sigma) triple.
type Result struct {
	Chi2      float64 `json:"chi2"`
	PValue    float64 `json:"p_value"`
	IsNuclear bool    `json:"is_nuclear"`
}

// Test runs a chi-square hypothesis test for positional coincidence.
//
// The transient's point estimate is the per-axis median of the detections
// (robust against outlier positions). Its offset from the galaxy center,
// normalized by the isotropic 1-sigma uncertainty sigmaArcsec, forms a
// 2-degree-of-freedom chi-square statistic.
//
// sigmaArcsec = 0 is degenerate: when the median offset is exactly zero the
// result is {0, 1, true}; otherwise the displacement is infinitely
// significant and the result is {+Inf, 0, false}. Both branches are
// deterministic, never NaN.
func Test(ras, decs []float64, galaxyRA, galaxyDec, sigmaArcsec float64) (Result, error) {
	if math.IsNaN(sigmaArcsec) || math.IsInf(sigmaArcsec, 0) {
		return Result{}, core.NewValidationError("sigmaArcsec", "value is not finite")
	}
	if sigmaArcsec < 0 {
		return Result{}, core.NewValidationError("sigmaArcsec",
			fmt.Sprintf("must be >= 0, got %v", sigmaArcsec))
	}

	if err := coords.ValidateDetections(ras, decs); err != nil {
		return Result{}, err
	}

	medRA, err := stats.Median(ras)
	if err != nil {
		return Result{}, core.NewValidationError("ras", err.Error())
	}
	medDec, err := stats.Median(decs)
	if err != nil {
		return Result{}, core.NewValidationError("decs", err.Error())
	}

	dRA, dDec, err := coords.Offsets([]float64{medRA}, []float64{medDec}, galaxyRA, galaxyDec)
	if err != nil {
		return Result{}, err
	}

	if sigmaArcsec == 0 {
		if dRA[0] == 0 && dDec[0] == 0 {
			return Result{Chi2: 0, PValue: 1, IsNuclear: true}, nil
		}
		return Result{Chi2: math.Inf(1), PValue: 0, IsNuclear: false}, nil
	}

	chi2 := (dRA[0]/sigmaArcsec)*(dRA[0]/sigmaArcsec) + (dDec[0]/sigmaArcsec)*(dDec[0]/sigmaArcsec)

	// Upper tail of chi-square with 2 d.o.f.; equals exp(-chi2/2).
	dist := distuv.ChiSquared{K: 2}
	pValue := 1 - dist.CDF(chi2)

	return Result{
		Chi2:      chi2,
		PValue:    pValue,
		IsNuclear: pValue > PValueThreshold,
	}, nil
}
