package app

import (
	"context"
	"math"
	"strings"
	"time"

	"gonuclear/domain/coords"
	"gonuclear/domain/core"
	"gonuclear/domain/nuclear"
	"gonuclear/domain/separation"
	"gonuclear/internal"
	"gonuclear/internal/errors"
	"gonuclear/models"
	"gonuclear/ports"

	"golang.org/x/sync/semaphore"
)

// GalaxyCenter is the candidate nuclear position, degrees plus isotropic
// 1-sigma uncertainty in arcsec.
type GalaxyCenter struct {
	RA          float64 `json:"ra"`
	Dec         float64 `json:"dec"`
	SigmaArcsec float64 `json:"sigma_arcsec"`
}

// Target identifies one transient to classify: an IAU or ZTF name, or raw
// coordinates in degrees. Galaxy may be supplied by the caller; when nil
// the catalog's aggregate object position and scatter stand in for it.
type Target struct {
	Name string   `json:"name,omitempty"`
	RA   *float64 `json:"ra,omitempty"`
	Dec  *float64 `json:"dec,omitempty"`

	Galaxy *GalaxyCenter `json:"galaxy,omitempty"`

	// Zero values select the domain defaults.
	Confidence   float64 `json:"confidence,omitempty"`
	SNRThreshold float64 `json:"snr_threshold,omitempty"`
}

// BatchResult carries the outcome for one target of a batch; exactly one of
// Verdict and Err is set.
type BatchResult struct {
	Target  Target
	Verdict *models.Verdict
	Err     error
}

// ClassifyService orchestrates name resolution, detection retrieval, the
// chi-square nuclear test and the Rice-aware separation estimate, then
// persists the verdict.
type ClassifyService struct {
	resolver   ports.NameResolver
	source     ports.DetectionSource
	verdicts   ports.VerdictRepository
	coneRadius float64
	log        *internal.Logger
}

// NewClassifyService creates a classify service. resolver may be nil when
// TNS credentials are not configured (IAU names then fail with a config
// error); verdicts may be nil to skip persistence.
func NewClassifyService(resolver ports.NameResolver, source ports.DetectionSource,
	verdicts ports.VerdictRepository, coneRadiusArcsec float64) *ClassifyService {
	return &ClassifyService{
		resolver:   resolver,
		source:     source,
		verdicts:   verdicts,
		coneRadius: coneRadiusArcsec,
		log:        internal.DefaultLogger,
	}
}

// Classify runs the full pipeline for one target.
func (s *ClassifyService) Classify(ctx context.Context, target Target) (*models.Verdict, error) {
	iauName, ztfName, err := s.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	ras, decs, err := s.source.Detections(ctx, ztfName)
	if err != nil {
		return nil, err
	}
	s.log.Debug("object %s: %d detections", ztfName, len(ras))

	galaxy, err := s.galaxyCenter(ctx, target, ztfName)
	if err != nil {
		return nil, err
	}

	confidence := target.Confidence
	if confidence == 0 {
		confidence = separation.DefaultConfidence
	}
	snrThreshold := target.SNRThreshold
	if snrThreshold == 0 {
		snrThreshold = separation.DefaultSNRThreshold
	}

	testResult, err := nuclear.Test(ras, decs, galaxy.RA, galaxy.Dec, galaxy.SigmaArcsec)
	if err != nil {
		return nil, err
	}

	seps, err := coords.Separations(ras, decs, galaxy.RA, galaxy.Dec)
	if err != nil {
		return nil, err
	}
	estimate, err := separation.Statistics(seps, galaxy.SigmaArcsec, confidence, snrThreshold)
	if err != nil {
		return nil, err
	}

	chi2 := testResult.Chi2
	if math.IsInf(chi2, 1) {
		// JSON cannot carry +Inf; the p-value already pins the verdict.
		chi2 = math.MaxFloat64
	}

	verdict := &models.Verdict{
		ID:             core.NewVerdictID().String(),
		IAUName:        iauName,
		ZTFName:        ztfName,
		GalaxyRA:       galaxy.RA,
		GalaxyDec:      galaxy.Dec,
		GalaxySigma:    galaxy.SigmaArcsec,
		NDetections:    len(ras),
		Chi2:           chi2,
		PValue:         testResult.PValue,
		IsNuclear:      testResult.IsNuclear,
		MeanSeparation: estimate.Mean,
		LowerErr:       estimate.LowerErr,
		UpperErr:       estimate.UpperErr,
		SNR:            estimate.SNR,
		UpperLimit:     estimate.UpperLimit,
		Confidence:     confidence,
		SNRThreshold:   snrThreshold,
		CreatedAt:      time.Now().UTC(),
	}

	if s.verdicts != nil {
		if err := s.verdicts.Save(ctx, verdict); err != nil {
			return nil, errors.Wrap(err, "failed to persist verdict")
		}
	}

	s.log.Info("classified %s: nuclear=%v chi2=%.3f p=%.4f snr=%.2f",
		verdict.DisplayName(), verdict.IsNuclear, verdict.Chi2, verdict.PValue, verdict.SNR)
	return verdict, nil
}

// ClassifyBatch classifies targets concurrently with at most maxParallel in
// flight. Failures are captured per target; one bad object never aborts
// the batch.
func (s *ClassifyService) ClassifyBatch(ctx context.Context, targets []Target, maxParallel int64) []BatchResult {
	if maxParallel < 1 {
		maxParallel = 1
	}
	sem := semaphore.NewWeighted(maxParallel)
	results := make([]BatchResult, len(targets))

	for i, target := range targets {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = BatchResult{Target: target, Err: err}
			continue
		}
		go func(idx int, t Target) {
			defer sem.Release(1)
			verdict, err := s.Classify(ctx, t)
			if err != nil {
				s.log.Warn("classification failed for %q: %v", t.Name, err)
			}
			results[idx] = BatchResult{Target: t, Verdict: verdict, Err: err}
		}(i, target)
	}

	// Draining the full weight waits for every worker.
	if err := sem.Acquire(context.Background(), maxParallel); err == nil {
		sem.Release(maxParallel)
	}
	return results
}

// resolveTarget maps a target onto (iauName, ztfObjectID). ZTF names pass
// through; IAU names go through TNS with a cone-search fallback for the
// cross-id; raw coordinates cone-search directly.
func (s *ClassifyService) resolveTarget(ctx context.Context, target Target) (string, string, error) {
	switch {
	case strings.HasPrefix(target.Name, "ZTF"):
		return "", target.Name, nil

	case target.Name != "":
		if s.resolver == nil {
			return "", "", errors.ConfigInvalid("IAU name resolution requires TNS credentials")
		}
		ra, dec, ztfName, err := s.resolver.Resolve(ctx, target.Name)
		if err != nil {
			return "", "", err
		}
		if ztfName == "" {
			ztfName, err = s.source.ObjectAt(ctx, ra, dec, s.coneRadius)
			if err != nil {
				return "", "", err
			}
		}
		return target.Name, ztfName, nil

	case target.RA != nil && target.Dec != nil:
		ztfName, err := s.source.ObjectAt(ctx, *target.RA, *target.Dec, s.coneRadius)
		if err != nil {
			return "", "", err
		}
		return "", ztfName, nil

	default:
		return "", "", core.NewValidationError("target",
			"either a name or both ra and dec are required")
	}
}

// galaxyCenter returns the caller-supplied center or, when absent, the
// catalog's aggregate position and scatter for the object.
func (s *ClassifyService) galaxyCenter(ctx context.Context, target Target, ztfName string) (GalaxyCenter, error) {
	if target.Galaxy != nil {
		g := *target.Galaxy
		if g.SigmaArcsec < 0 {
			return GalaxyCenter{}, core.NewValidationError("galaxy.sigma_arcsec", "must be >= 0")
		}
		return g, nil
	}

	summary, err := s.source.Object(ctx, ztfName)
	if err != nil {
		return GalaxyCenter{}, err
	}
	sigma := summary.SigmaArcsec()
	if sigma <= 0 {
		return GalaxyCenter{}, core.NewDegenerateError(
			"catalog reports zero positional scatter; supply an explicit galaxy center")
	}
	return GalaxyCenter{RA: summary.MeanRA, Dec: summary.MeanDec, SigmaArcsec: sigma}, nil
}
