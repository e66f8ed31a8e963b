// Package separation estimates the true transient/galaxy offset from a
// sample of separation magnitudes.
//
// A 2D Gaussian positional error with true offset nu, reduced to its radial
// magnitude, follows a Rice distribution; at nu = 0 it degenerates to a
// Rayleigh distribution. Because the magnitude is non-negative, naively
// averaging separations overstates a near-zero true offset, so the point
// estimate must be de-biased before it is reported.
package separation

import (
	"fmt"
	"math"

	"gonuclear/domain/core"

	"github.com/montanaflynn/stats"
)

// Defaults for the caller-tunable parameters.
const (
	DefaultConfidence   = 0.95
	DefaultSNRThreshold = 3.0
)

// Estimate describes the separation sample's underlying true-offset
// distribution. All fields are finite and non-negative.
type Estimate struct {
	// Mean is the point estimate in arcsec. Below the SNR threshold it is
	// the raw sample mean, reported as a measured scale rather than a
	// detection; at or above the threshold it is the Rice-de-biased
	// true-offset estimate.
	Mean     float64 `json:"mean"`
	LowerErr float64 `json:"lower_err"`
	UpperErr float64 `json:"upper_err"`
	// SNR is sampleMean / sigma, the detectability proxy.
	SNR float64 `json:"snr"`
	// UpperLimit is the one-sided Rayleigh bound at the requested
	// confidence: the radius enclosing that probability mass under pure
	// noise. Reported in both regimes for comparability.
	UpperLimit float64 `json:"upper_limit"`
}

// Statistics fits a Rice-aware estimate to a separation sample.
//
// seps are separation magnitudes in arcsec (all >= 0), sigmaArcsec is the
// expected per-axis measurement noise, confidence is the interval and
// upper-limit level in (0,1), snrThreshold separates the detected regime
// from the upper-limit regime.
//
// The computation is fully deterministic: no resampling is involved.
func Statistics(seps []float64, sigmaArcsec, confidence, snrThreshold float64) (Estimate, error) {
	if err := validate(seps, sigmaArcsec, confidence, snrThreshold); err != nil {
		return Estimate{}, err
	}

	mean, err := stats.Mean(seps)
	if err != nil {
		return Estimate{}, core.NewValidationError("seps", err.Error())
	}
	spread, err := stats.StandardDeviation(seps)
	if err != nil {
		return Estimate{}, core.NewValidationError("seps", err.Error())
	}

	snr := mean / sigmaArcsec
	upperLimit := RayleighQuantile(sigmaArcsec, confidence)

	if snr < snrThreshold {
		// Statistically undetected: the sample mean is an upper bound on
		// the measured scale, not a detection.
		return Estimate{
			Mean:       mean,
			LowerErr:   spread,
			UpperErr:   spread,
			SNR:        snr,
			UpperLimit: upperLimit,
		}, nil
	}

	nu := riceDebiasedOffset(seps, sigmaArcsec)

	// Asymmetric interval from the empirical sample quantiles at the
	// requested level, anchored on the de-biased estimate.
	tail := (1 - confidence) / 2 * 100
	lo, err := stats.Percentile(seps, tail)
	if err != nil {
		return Estimate{}, core.NewValidationError("seps", err.Error())
	}
	hi, err := stats.Percentile(seps, 100-tail)
	if err != nil {
		return Estimate{}, core.NewValidationError("seps", err.Error())
	}

	return Estimate{
		Mean:       nu,
		LowerErr:   math.Max(nu-lo, 0),
		UpperErr:   math.Max(hi-nu, 0),
		SNR:        snr,
		UpperLimit: upperLimit,
	}, nil
}

// DefaultStatistics runs Statistics with the default confidence level and
// SNR threshold.
func DefaultStatistics(seps []float64, sigmaArcsec float64) (Estimate, error) {
	return Statistics(seps, sigmaArcsec, DefaultConfidence, DefaultSNRThreshold)
}

// RayleighQuantile returns the radius enclosing fraction c of probability
// mass for a zero-true-offset radial distribution with per-axis noise
// sigma: sigma * sqrt(-2 ln(1-c)).
func RayleighQuantile(sigma, c float64) float64 {
	return sigma * math.Sqrt(-2*math.Log(1-c))
}

// riceDebiasedOffset estimates the true offset nu from the second moment of
// the sample. For Rice-distributed magnitudes E[r^2] = nu^2 + 2 sigma^2, so
// nu = sqrt(mean(r^2) - 2 sigma^2), floored at zero. The correction vanishes
// as SNR grows and is material near the detection threshold. In the detected
// regime mean(r^2) >= mean(r)^2 >= (t*sigma)^2 > 2 sigma^2 for t >= 3, so
// the floor never actually engages there.
func riceDebiasedOffset(seps []float64, sigma float64) float64 {
	var sumSq float64
	for _, r := range seps {
		sumSq += r * r
	}
	meanSq := sumSq / float64(len(seps))
	return math.Sqrt(math.Max(meanSq-2*sigma*sigma, 0))
}

func validate(seps []float64, sigma, confidence, snrThreshold float64) error {
	if len(seps) == 0 {
		return core.NewValidationError("seps", "at least one separation required")
	}
	for i, r := range seps {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return core.NewValidationError("seps",
				fmt.Sprintf("element %d is not finite", i))
		}
		if r < 0 {
			return core.NewValidationError("seps",
				fmt.Sprintf("element %d is negative (%v); magnitudes must be >= 0", i, r))
		}
	}
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma <= 0 {
		return core.NewValidationError("sigmaArcsec",
			fmt.Sprintf("must be a finite positive value, got %v", sigma))
	}
	if math.IsNaN(confidence) || confidence <= 0 || confidence >= 1 {
		return core.NewValidationError("confidence",
			fmt.Sprintf("must be in (0,1), got %v", confidence))
	}
	if math.IsNaN(snrThreshold) || math.IsInf(snrThreshold, 0) || snrThreshold <= 0 {
		return core.NewValidationError("snrThreshold",
			fmt.Sprintf("must be a finite positive value, got %v", snrThreshold))
	}
	return nil
}
