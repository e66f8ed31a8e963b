package ports

import (
	"context"

	"gonuclear/models"
)

// VerdictRepository persists classification verdicts.
type VerdictRepository interface {
	Save(ctx context.Context, verdict *models.Verdict) error
	Get(ctx context.Context, id string) (*models.Verdict, error)
	List(ctx context.Context, limit, offset int) ([]*models.Verdict, error)
	FindByObject(ctx context.Context, name string) ([]*models.Verdict, error)
}
