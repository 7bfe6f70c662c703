package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	domainRepo "github.com/sangkips/quotebuilder-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

// GetByKey ignores keys past their expiry even before they are purged
func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, tenantID, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	return firstOrNil[entity.IdempotencyKey](r.db.WithContext(ctx).
		Where("key = ? AND tenant_id = ? AND user_id = ? AND expires_at > ?", key, tenantID, userID, time.Now()))
}

// Save stores the response for a key, replacing an expired entry with the
// same key in the same scope.
func (r *idempotencyRepository) Save(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return wrapDBError(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}, {Name: "tenant_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"endpoint", "response_code", "response_body", "expires_at"}),
	}).Create(ikey).Error)
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) error {
	return wrapDBError(r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&entity.IdempotencyKey{}).Error)
}
