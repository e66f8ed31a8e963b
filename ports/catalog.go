package ports

import (
	"context"
)

// ObjectSummary is a catalog's aggregate view of one object: its mean
// position in degrees with per-axis scatter, and the detection count.
type ObjectSummary struct {
	ObjectID   string
	MeanRA     float64
	MeanDec    float64
	SigmaRA    float64 // degrees
	SigmaDec   float64 // degrees
	Detections int
}

// SigmaArcsec reduces the per-axis scatter to one isotropic arcsec scale.
func (s ObjectSummary) SigmaArcsec() float64 {
	return (s.SigmaRA + s.SigmaDec) / 2 * 3600
}

// NameResolver turns a survey-agnostic transient name into coordinates.
// Implemented by the TNS adapter.
type NameResolver interface {
	// Resolve returns the catalog position in degrees and the survey
	// cross-identification (empty when the catalog has none). A miss is a
	// core.ErrNotFound error, not a zero result.
	Resolve(ctx context.Context, name string) (ra, dec float64, surveyName string, err error)
}

// DetectionSource supplies repeated position measurements of one transient.
// Implemented by the Alerce/ZTF adapter.
type DetectionSource interface {
	// ObjectAt cone-searches for an object id near (ra, dec) degrees
	// within radiusArcsec.
	ObjectAt(ctx context.Context, ra, dec, radiusArcsec float64) (string, error)

	// Detections returns every measured position of the object, degrees.
	Detections(ctx context.Context, objectID string) (ras, decs []float64, err error)

	// Object returns the aggregate summary for the object.
	Object(ctx context.Context, objectID string) (ObjectSummary, error)
}

// CutoutService retrieves a reference image centered on a position, for
// report figures. Retrieval only; rendering and display live elsewhere.
type CutoutService interface {
	// Cutout returns encoded image bytes covering sizeArcsec on a side.
	Cutout(ctx context.Context, ra, dec, sizeArcsec float64) ([]byte, error)
}
