package models

import (
	"time"
)

// Verdict is one persisted classification outcome: the chi-square test and
// the Rice-aware separation estimate for a single transient against one
// galaxy center.
type Verdict struct {
	ID string `db:"id" json:"id"`

	// Object identity. Either name may be empty when the target was given
	// as raw coordinates.
	IAUName string `db:"iau_name" json:"iau_name,omitempty"`
	ZTFName string `db:"ztf_name" json:"ztf_name,omitempty"`

	// Galaxy center hypothesis, degrees and arcsec.
	GalaxyRA    float64 `db:"galaxy_ra" json:"galaxy_ra"`
	GalaxyDec   float64 `db:"galaxy_dec" json:"galaxy_dec"`
	GalaxySigma float64 `db:"galaxy_sigma" json:"galaxy_sigma_arcsec"`

	NDetections int `db:"n_detections" json:"n_detections"`

	// Chi-square test. Chi2 is capped at MaxFloat64 when the test returns
	// +Inf (zero sigma, nonzero offset) because JSON cannot carry Inf.
	Chi2      float64 `db:"chi2" json:"chi2"`
	PValue    float64 `db:"p_value" json:"p_value"`
	IsNuclear bool    `db:"is_nuclear" json:"is_nuclear"`

	// Rice-aware separation estimate, arcsec.
	MeanSeparation float64 `db:"mean_separation" json:"mean_separation"`
	LowerErr       float64 `db:"lower_err" json:"lower_err"`
	UpperErr       float64 `db:"upper_err" json:"upper_err"`
	SNR            float64 `db:"snr" json:"snr"`
	UpperLimit     float64 `db:"upper_limit" json:"upper_limit"`

	// Parameters the estimate was computed with.
	Confidence   float64 `db:"confidence" json:"confidence"`
	SNRThreshold float64 `db:"snr_threshold" json:"snr_threshold"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DisplayName returns the most specific name available for reports.
func (v *Verdict) DisplayName() string {
	switch {
	case v.IAUName != "":
		return v.IAUName
	case v.ZTFName != "":
		return v.ZTFName
	default:
		return v.ID
	}
}
