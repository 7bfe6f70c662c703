package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/wizard"
)

// DraftRepository persists wizard drafts between requests
type DraftRepository interface {
	Save(ctx context.Context, draft *wizard.Draft) error
	// Get returns nil, nil when no draft exists
	Get(ctx context.Context, tenantID, id uuid.UUID) (*wizard.Draft, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// AcquireCommit marks a commit in flight. It returns false when another
	// commit of the same draft already holds the mark.
	AcquireCommit(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	ReleaseCommit(ctx context.Context, tenantID, id uuid.UUID) error
}
