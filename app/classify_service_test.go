package app

import (
	"context"
	"testing"

	"gonuclear/domain/core"
	"gonuclear/internal/testkit"
	"gonuclear/models"
	"gonuclear/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations for testing
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, name string) (float64, float64, string, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(float64), args.Get(1).(float64), args.String(2), args.Error(3)
}

type MockDetectionSource struct {
	mock.Mock
}

func (m *MockDetectionSource) ObjectAt(ctx context.Context, ra, dec, radiusArcsec float64) (string, error) {
	args := m.Called(ctx, ra, dec, radiusArcsec)
	return args.String(0), args.Error(1)
}

func (m *MockDetectionSource) Detections(ctx context.Context, objectID string) ([]float64, []float64, error) {
	args := m.Called(ctx, objectID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]float64), args.Get(1).([]float64), args.Error(2)
}

func (m *MockDetectionSource) Object(ctx context.Context, objectID string) (ports.ObjectSummary, error) {
	args := m.Called(ctx, objectID)
	return args.Get(0).(ports.ObjectSummary), args.Error(1)
}

type MockVerdictRepository struct {
	mock.Mock
}

func (m *MockVerdictRepository) Save(ctx context.Context, v *models.Verdict) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVerdictRepository) Get(ctx context.Context, id string) (*models.Verdict, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Verdict), args.Error(1)
}

func (m *MockVerdictRepository) List(ctx context.Context, limit, offset int) ([]*models.Verdict, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Verdict), args.Error(1)
}

func (m *MockVerdictRepository) FindByObject(ctx context.Context, name string) ([]*models.Verdict, error) {
	args := m.Called(ctx, name)
	return args.Get(0).([]*models.Verdict), args.Error(1)
}

func nuclearDetections() ([]float64, []float64) {
	// Scatter of 0.3 arcsec around the galaxy center at (150, 2).
	gen := testkit.NewScatter(21)
	return gen.Detections(30, 150.0, 2.0, 0.3)
}

func TestClassify_NuclearByZTFName(t *testing.T) {
	ras, decs := nuclearDetections()

	source := new(MockDetectionSource)
	source.On("Detections", mock.Anything, "ZTF18acpdvos").Return(ras, decs, nil)

	repo := new(MockVerdictRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	svc := NewClassifyService(nil, source, repo, 3.0)
	verdict, err := svc.Classify(context.Background(), Target{
		Name:   "ZTF18acpdvos",
		Galaxy: &GalaxyCenter{RA: 150.0, Dec: 2.0, SigmaArcsec: 0.5},
	})
	require.NoError(t, err)

	assert.True(t, verdict.IsNuclear)
	assert.Equal(t, "ZTF18acpdvos", verdict.ZTFName)
	assert.Equal(t, 30, verdict.NDetections)
	assert.Equal(t, 0.95, verdict.Confidence)
	assert.Equal(t, 3.0, verdict.SNRThreshold)
	assert.NotEmpty(t, verdict.ID)
	source.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestClassify_IAUNameViaResolver(t *testing.T) {
	ras, decs := nuclearDetections()

	resolver := new(MockResolver)
	resolver.On("Resolve", mock.Anything, "2018hyz").Return(150.0, 2.0, "ZTF18acpdvos", nil)

	source := new(MockDetectionSource)
	source.On("Detections", mock.Anything, "ZTF18acpdvos").Return(ras, decs, nil)

	svc := NewClassifyService(resolver, source, nil, 3.0)
	verdict, err := svc.Classify(context.Background(), Target{
		Name:   "2018hyz",
		Galaxy: &GalaxyCenter{RA: 150.0, Dec: 2.0, SigmaArcsec: 0.5},
	})
	require.NoError(t, err)

	assert.Equal(t, "2018hyz", verdict.IAUName)
	assert.Equal(t, "ZTF18acpdvos", verdict.ZTFName)
	resolver.AssertExpectations(t)
}

func TestClassify_ConeSearchFallbackForMissingCrossID(t *testing.T) {
	ras, decs := nuclearDetections()

	resolver := new(MockResolver)
	resolver.On("Resolve", mock.Anything, "2016iet").Return(150.0, 2.0, "", nil)

	source := new(MockDetectionSource)
	source.On("ObjectAt", mock.Anything, 150.0, 2.0, 3.0).Return("ZTF16xyz", nil)
	source.On("Detections", mock.Anything, "ZTF16xyz").Return(ras, decs, nil)

	svc := NewClassifyService(resolver, source, nil, 3.0)
	verdict, err := svc.Classify(context.Background(), Target{
		Name:   "2016iet",
		Galaxy: &GalaxyCenter{RA: 150.0, Dec: 2.0, SigmaArcsec: 0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, "ZTF16xyz", verdict.ZTFName)
	source.AssertExpectations(t)
}

func TestClassify_RawCoordinates(t *testing.T) {
	ras, decs := nuclearDetections()
	ra, dec := 150.0, 2.0

	source := new(MockDetectionSource)
	source.On("ObjectAt", mock.Anything, ra, dec, 3.0).Return("ZTF18acpdvos", nil)
	source.On("Detections", mock.Anything, "ZTF18acpdvos").Return(ras, decs, nil)
	source.On("Object", mock.Anything, "ZTF18acpdvos").Return(ports.ObjectSummary{
		ObjectID: "ZTF18acpdvos",
		MeanRA:   150.0, MeanDec: 2.0,
		SigmaRA: 0.0001, SigmaDec: 0.0001,
		Detections: 30,
	}, nil)

	svc := NewClassifyService(nil, source, nil, 3.0)
	verdict, err := svc.Classify(context.Background(), Target{RA: &ra, Dec: &dec})
	require.NoError(t, err)

	// Without an explicit galaxy center the catalog summary stands in.
	assert.InDelta(t, 0.36, verdict.GalaxySigma, 0.001)
	assert.True(t, verdict.IsNuclear)
}

func TestClassify_OffsetSourceIsNotNuclear(t *testing.T) {
	// Detections 2.5 arcsec away from the claimed galaxy center with a
	// 0.3 arcsec uncertainty: clearly off-nuclear.
	gen := testkit.NewScatter(5)
	ras, decs := gen.Detections(30, 150.0, 2.0, 0.2)

	source := new(MockDetectionSource)
	source.On("Detections", mock.Anything, "ZTF20offn").Return(ras, decs, nil)

	svc := NewClassifyService(nil, source, nil, 3.0)
	verdict, err := svc.Classify(context.Background(), Target{
		Name:   "ZTF20offn",
		Galaxy: &GalaxyCenter{RA: 150.0, Dec: 2.0 + 2.5/3600.0, SigmaArcsec: 0.3},
	})
	require.NoError(t, err)
	assert.False(t, verdict.IsNuclear)
	assert.Greater(t, verdict.SNR, 3.0)
}

func TestClassify_TargetValidation(t *testing.T) {
	source := new(MockDetectionSource)
	svc := NewClassifyService(nil, source, nil, 3.0)

	_, err := svc.Classify(context.Background(), Target{})
	assert.True(t, core.IsValidationError(err))

	// IAU name without a configured resolver is a configuration error.
	_, err = svc.Classify(context.Background(), Target{Name: "2018hyz"})
	assert.Error(t, err)
}

func TestClassifyBatch_IsolatesFailures(t *testing.T) {
	ras, decs := nuclearDetections()

	source := new(MockDetectionSource)
	source.On("Detections", mock.Anything, "ZTF18good").Return(ras, decs, nil)
	source.On("Detections", mock.Anything, "ZTF18gone").
		Return(nil, nil, core.NewNotFoundError("detections for object", "ZTF18gone"))

	svc := NewClassifyService(nil, source, nil, 3.0)
	galaxy := &GalaxyCenter{RA: 150.0, Dec: 2.0, SigmaArcsec: 0.5}
	results := svc.ClassifyBatch(context.Background(), []Target{
		{Name: "ZTF18good", Galaxy: galaxy},
		{Name: "ZTF18gone", Galaxy: galaxy},
		{Name: "ZTF18good", Galaxy: galaxy},
	}, 2)

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Verdict)
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Verdict)
	assert.NoError(t, results[2].Err)
}
