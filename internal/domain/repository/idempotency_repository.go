package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey returns the unexpired key for the tenant and user, or nil
	GetByKey(ctx context.Context, key string, tenantID, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Save stores a key, replacing an expired one in the same scope
	Save(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteExpired removes expired idempotency keys (for cleanup)
	DeleteExpired(ctx context.Context) error
}
