// Package coords converts repeated sky-position measurements into angular
// offsets from a reference point, in arcseconds.
//
// All computations use a flat-sky tangent-plane approximation: the right
// ascension axis is scaled by cos(dec) evaluated at the reference
// declination. This is accurate at the arcsecond-to-few-arcsecond scales
// this system targets and degrades as |dec| approaches 90 degrees; callers
// working near the celestial poles need proper great-circle geometry, which
// this package deliberately does not provide.
package coords

import (
	"fmt"
	"math"

	"gonuclear/domain/core"
)

// ArcsecPerDeg converts degrees to arcseconds.
const ArcsecPerDeg = 3600.0

// Offsets computes per-detection signed offsets against one shared
// reference point. Results are in arcseconds:
//
//	dRA[i]  = (ras[i] - refRA) * cos(refDec) * 3600
//	dDec[i] = (decs[i] - refDec) * 3600
func Offsets(ras, decs []float64, refRA, refDec float64) (dRA, dDec []float64, err error) {
	if err := validateDetections(ras, decs); err != nil {
		return nil, nil, err
	}
	if err := validateReference(refRA, refDec); err != nil {
		return nil, nil, err
	}

	cosDec := math.Cos(refDec * math.Pi / 180)
	dRA = make([]float64, len(ras))
	dDec = make([]float64, len(ras))
	for i := range ras {
		dRA[i] = (ras[i] - refRA) * cosDec * ArcsecPerDeg
		dDec[i] = (decs[i] - refDec) * ArcsecPerDeg
	}
	return dRA, dDec, nil
}

// OffsetsPerRef computes per-detection offsets where each detection is
// compared against its own reference row. Used when re-centering
// per-object computations. All four slices must have equal length.
func OffsetsPerRef(ras, decs, refRAs, refDecs []float64) (dRA, dDec []float64, err error) {
	if err := validateDetections(ras, decs); err != nil {
		return nil, nil, err
	}
	if len(refRAs) != len(ras) || len(refDecs) != len(ras) {
		return nil, nil, core.NewValidationError("refs",
			fmt.Sprintf("reference length %d/%d does not match %d detections",
				len(refRAs), len(refDecs), len(ras)))
	}
	if err := validateSeries("refRAs", refRAs); err != nil {
		return nil, nil, err
	}
	if err := validateSeries("refDecs", refDecs); err != nil {
		return nil, nil, err
	}

	dRA = make([]float64, len(ras))
	dDec = make([]float64, len(ras))
	for i := range ras {
		cosDec := math.Cos(refDecs[i] * math.Pi / 180)
		dRA[i] = (ras[i] - refRAs[i]) * cosDec * ArcsecPerDeg
		dDec[i] = (decs[i] - refDecs[i]) * ArcsecPerDeg
	}
	return dRA, dDec, nil
}

// Separations computes the per-detection offset magnitude
// sqrt(dRA^2 + dDec^2) in arcseconds against one shared reference point.
// Every element is >= 0 by construction.
func Separations(ras, decs []float64, refRA, refDec float64) ([]float64, error) {
	dRA, dDec, err := Offsets(ras, decs, refRA, refDec)
	if err != nil {
		return nil, err
	}
	return magnitudes(dRA, dDec), nil
}

// SeparationsPerRef is the per-row-reference counterpart of Separations.
func SeparationsPerRef(ras, decs, refRAs, refDecs []float64) ([]float64, error) {
	dRA, dDec, err := OffsetsPerRef(ras, decs, refRAs, refDecs)
	if err != nil {
		return nil, err
	}
	return magnitudes(dRA, dDec), nil
}

func magnitudes(dRA, dDec []float64) []float64 {
	seps := make([]float64, len(dRA))
	for i := range dRA {
		seps[i] = math.Hypot(dRA[i], dDec[i])
	}
	return seps
}

// ValidateDetections checks that a detection set is usable: at least one
// position, equal-length axes, every value finite.
func ValidateDetections(ras, decs []float64) error {
	return validateDetections(ras, decs)
}

func validateDetections(ras, decs []float64) error {
	if len(ras) == 0 {
		return core.NewValidationError("ras", "at least one detection required")
	}
	if len(ras) != len(decs) {
		return core.NewValidationError("decs",
			fmt.Sprintf("length %d does not match %d ras", len(decs), len(ras)))
	}
	if err := validateSeries("ras", ras); err != nil {
		return err
	}
	return validateSeries("decs", decs)
}

func validateReference(refRA, refDec float64) error {
	if !isFinite(refRA) {
		return core.NewValidationError("refRA", "value is not finite")
	}
	if !isFinite(refDec) {
		return core.NewValidationError("refDec", "value is not finite")
	}
	return nil
}

func validateSeries(name string, vals []float64) error {
	for i, v := range vals {
		if !isFinite(v) {
			return core.NewValidationError(name,
				fmt.Sprintf("element %d is not finite", i))
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
