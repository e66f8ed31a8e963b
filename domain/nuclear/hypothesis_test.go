package nuclear

import (
	"math"
	"testing"

	"gonuclear/domain/core"
)

func TestTest_OnNucleus(t *testing.T) {
	// Detections scattered symmetrically around the galaxy center: the
	// median offset is zero, so chi2 = 0 and p = 1.
	ras := []float64{150.0001, 149.9999, 150.0}
	decs := []float64{2.0001, 1.9999, 2.0}

	res, err := Test(ras, decs, 150.0, 2.0, 0.5)
	if err != nil {
		t.Fatalf("Test returned error: %v", err)
	}
	if res.Chi2 > 1e-12 {
		t.Errorf("chi2 = %v, want ~0", res.Chi2)
	}
	if math.Abs(res.PValue-1.0) > 1e-12 {
		t.Errorf("p = %v, want 1", res.PValue)
	}
	if !res.IsNuclear {
		t.Error("expected nuclear classification")
	}
}

func TestTest_OffsetSource(t *testing.T) {
	// Median sits 3.6 arcsec from the center with sigma 0.5: chi2 = 51.84,
	// p well below 0.05.
	res, err := Test([]float64{100.001}, []float64{0.0}, 100.0, 0.0, 0.5)
	if err != nil {
		t.Fatalf("Test returned error: %v", err)
	}
	if math.Abs(res.Chi2-51.84) > 1e-6 {
		t.Errorf("chi2 = %v, want 51.84", res.Chi2)
	}
	if res.IsNuclear {
		t.Error("expected non-nuclear classification")
	}
}

func TestTest_PValueClosedForm(t *testing.T) {
	// For 2 d.o.f. the upper tail is exp(-chi2/2).
	res, err := Test([]float64{100.0002}, []float64{0.0001}, 100.0, 0.0, 1.0)
	if err != nil {
		t.Fatalf("Test returned error: %v", err)
	}
	want := math.Exp(-res.Chi2 / 2)
	if math.Abs(res.PValue-want) > 1e-9 {
		t.Errorf("p = %v, want exp(-chi2/2) = %v", res.PValue, want)
	}
}

func TestTest_MonotoneInOffset(t *testing.T) {
	var prevChi2, prevP float64
	prevP = 1.1
	for i, off := range []float64{0.0, 0.0001, 0.0003, 0.001, 0.003} {
		res, err := Test([]float64{100.0 + off}, []float64{0.0}, 100.0, 0.0, 1.0)
		if err != nil {
			t.Fatalf("Test returned error at step %d: %v", i, err)
		}
		if res.Chi2 < prevChi2 {
			t.Errorf("chi2 decreased at step %d: %v < %v", i, res.Chi2, prevChi2)
		}
		if res.PValue > prevP {
			t.Errorf("p increased at step %d: %v > %v", i, res.PValue, prevP)
		}
		// The classification flips exactly where p crosses the threshold.
		if res.IsNuclear != (res.PValue > PValueThreshold) {
			t.Errorf("classification inconsistent with p-value at step %d", i)
		}
		prevChi2, prevP = res.Chi2, res.PValue
	}
}

func TestTest_MedianRobustToOutlier(t *testing.T) {
	// One wild detection must not move the median centroid off the nucleus.
	ras := []float64{150.0, 150.0, 150.0, 150.5}
	decs := []float64{2.0, 2.0, 2.0, 2.5}

	res, err := Test(ras, decs, 150.0, 2.0, 0.3)
	if err != nil {
		t.Fatalf("Test returned error: %v", err)
	}
	if !res.IsNuclear {
		t.Errorf("outlier flipped the verdict: chi2=%v p=%v", res.Chi2, res.PValue)
	}
}

func TestTest_ZeroSigma(t *testing.T) {
	// Zero offset with zero sigma resolves to a perfect match.
	res, err := Test([]float64{100.0}, []float64{0.0}, 100.0, 0.0, 0)
	if err != nil {
		t.Fatalf("Test returned error: %v", err)
	}
	if res.Chi2 != 0 || res.PValue != 1 || !res.IsNuclear {
		t.Errorf("got %+v, want {0, 1, true}", res)
	}

	// Nonzero offset with zero sigma is infinitely significant.
	res, err = Test([]float64{100.001}, []float64{0.0}, 100.0, 0.0, 0)
	if err != nil {
		t.Fatalf("Test returned error: %v", err)
	}
	if !math.IsInf(res.Chi2, 1) || res.PValue != 0 || res.IsNuclear {
		t.Errorf("got %+v, want {+Inf, 0, false}", res)
	}
}

func TestTest_Validation(t *testing.T) {
	if _, err := Test(nil, nil, 100, 0, 1); !core.IsValidationError(err) {
		t.Errorf("empty detections: expected validation error, got %v", err)
	}
	if _, err := Test([]float64{1}, []float64{1}, 100, 0, -1); !core.IsValidationError(err) {
		t.Errorf("negative sigma: expected validation error, got %v", err)
	}
	if _, err := Test([]float64{math.NaN()}, []float64{1}, 100, 0, 1); !core.IsValidationError(err) {
		t.Errorf("NaN input: expected validation error, got %v", err)
	}
	if _, err := Test([]float64{1}, []float64{1}, 100, 0, math.NaN()); !core.IsValidationError(err) {
		t.Errorf("NaN sigma: expected validation error, got %v", err)
	}
}

func TestTest_Deterministic(t *testing.T) {
	ras := []float64{150.0003, 150.0001, 149.9998}
	decs := []float64{2.0002, 1.9999, 2.0001}

	r1, err := Test(ras, decs, 150.0, 2.0, 0.4)
	if err != nil {
		t.Fatalf("Test returned error: %v", err)
	}
	r2, _ := Test(ras, decs, 150.0, 2.0, 0.4)
	if r1 != r2 {
		t.Fatal("identical inputs must produce identical results")
	}
}
