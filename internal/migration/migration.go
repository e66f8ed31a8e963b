package migration

import (
	"context"

	"gonuclear/internal/errors"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.0.0"}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createVerdictsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create verdicts table")
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

func (r *MigrationRunner) createVerdictsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS verdicts (
			id UUID PRIMARY KEY,
			iau_name TEXT NOT NULL DEFAULT '',
			ztf_name TEXT NOT NULL DEFAULT '',
			galaxy_ra DOUBLE PRECISION NOT NULL,
			galaxy_dec DOUBLE PRECISION NOT NULL,
			galaxy_sigma DOUBLE PRECISION NOT NULL,
			n_detections INTEGER NOT NULL,
			chi2 DOUBLE PRECISION NOT NULL,
			p_value DOUBLE PRECISION NOT NULL,
			is_nuclear BOOLEAN NOT NULL,
			mean_separation DOUBLE PRECISION NOT NULL,
			lower_err DOUBLE PRECISION NOT NULL,
			upper_err DOUBLE PRECISION NOT NULL,
			snr DOUBLE PRECISION NOT NULL,
			upper_limit DOUBLE PRECISION NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			snr_threshold DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_verdicts_iau_name ON verdicts (iau_name)`,
		`CREATE INDEX IF NOT EXISTS idx_verdicts_ztf_name ON verdicts (ztf_name)`,
		`CREATE INDEX IF NOT EXISTS idx_verdicts_created_at ON verdicts (created_at DESC)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
