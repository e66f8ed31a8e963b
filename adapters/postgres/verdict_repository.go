package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gonuclear/domain/core"
	"gonuclear/models"
	"gonuclear/ports"

	"github.com/jmoiron/sqlx"
)

// VerdictRepositoryImpl implements ports.VerdictRepository for PostgreSQL
type VerdictRepositoryImpl struct {
	db *sqlx.DB
}

// NewVerdictRepository creates a new PostgreSQL verdict repository
func NewVerdictRepository(db *sqlx.DB) ports.VerdictRepository {
	return &VerdictRepositoryImpl{db: db}
}

// Save upserts a verdict by id
func (r *VerdictRepositoryImpl) Save(ctx context.Context, v *models.Verdict) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO verdicts (
			id, iau_name, ztf_name, galaxy_ra, galaxy_dec, galaxy_sigma,
			n_detections, chi2, p_value, is_nuclear,
			mean_separation, lower_err, upper_err, snr, upper_limit,
			confidence, snr_threshold, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO UPDATE SET
			iau_name = EXCLUDED.iau_name,
			ztf_name = EXCLUDED.ztf_name,
			galaxy_ra = EXCLUDED.galaxy_ra,
			galaxy_dec = EXCLUDED.galaxy_dec,
			galaxy_sigma = EXCLUDED.galaxy_sigma,
			n_detections = EXCLUDED.n_detections,
			chi2 = EXCLUDED.chi2,
			p_value = EXCLUDED.p_value,
			is_nuclear = EXCLUDED.is_nuclear,
			mean_separation = EXCLUDED.mean_separation,
			lower_err = EXCLUDED.lower_err,
			upper_err = EXCLUDED.upper_err,
			snr = EXCLUDED.snr,
			upper_limit = EXCLUDED.upper_limit,
			confidence = EXCLUDED.confidence,
			snr_threshold = EXCLUDED.snr_threshold`,
		v.ID, v.IAUName, v.ZTFName, v.GalaxyRA, v.GalaxyDec, v.GalaxySigma,
		v.NDetections, v.Chi2, v.PValue, v.IsNuclear,
		v.MeanSeparation, v.LowerErr, v.UpperErr, v.SNR, v.UpperLimit,
		v.Confidence, v.SNRThreshold, v.CreatedAt)
	return err
}

// Get retrieves a verdict by id
func (r *VerdictRepositoryImpl) Get(ctx context.Context, id string) (*models.Verdict, error) {
	var v models.Verdict
	err := r.db.GetContext(ctx, &v, `SELECT * FROM verdicts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("verdict", id)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns verdicts newest first
func (r *VerdictRepositoryImpl) List(ctx context.Context, limit, offset int) ([]*models.Verdict, error) {
	if limit <= 0 {
		limit = 50
	}
	var verdicts []*models.Verdict
	err := r.db.SelectContext(ctx, &verdicts, `
		SELECT * FROM verdicts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return verdicts, nil
}

// FindByObject returns all verdicts recorded for an IAU or ZTF name
func (r *VerdictRepositoryImpl) FindByObject(ctx context.Context, name string) ([]*models.Verdict, error) {
	var verdicts []*models.Verdict
	err := r.db.SelectContext(ctx, &verdicts, `
		SELECT * FROM verdicts
		WHERE iau_name = $1 OR ztf_name = $1
		ORDER BY created_at DESC`, name)
	if err != nil {
		return nil, err
	}
	return verdicts, nil
}
