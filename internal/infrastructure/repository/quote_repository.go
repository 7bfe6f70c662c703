package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	"github.com/sangkips/quotebuilder-api/internal/domain/enum"
	domainRepo "github.com/sangkips/quotebuilder-api/internal/domain/repository"
	"github.com/sangkips/quotebuilder-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var quoteSortColumns = map[string]string{
	"created_at":   "created_at",
	"quote_number": "quote_number",
	"total":        "total",
	"valid_until":  "valid_until",
}

// statusTimestamps names the column stamped when a quote enters a status
var statusTimestamps = map[enum.QuoteStatus]string{
	enum.QuoteStatusSent:     "sent_at",
	enum.QuoteStatusViewed:   "viewed_at",
	enum.QuoteStatusAccepted: "accepted_at",
	enum.QuoteStatusRejected: "rejected_at",
}

type quoteRepository struct {
	db *gorm.DB
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(db *gorm.DB) domainRepo.QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) CreateWithItems(ctx context.Context, quote *entity.Quote, numberPrefix string) error {
	items := quote.Items
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextQuoteNumber(tx, quote.TenantID)
		if err != nil {
			return fmt.Errorf("allocate quote number: %w", err)
		}
		quote.QuoteNumber = fmt.Sprintf("%s%06d", numberPrefix, next)

		if err := tx.Omit(clause.Associations).Create(quote).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].QuoteID = quote.ID
			items[i].TenantID = quote.TenantID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		quote.QuoteNumber = ""
		return wrapDBError(err)
	}
	quote.Items = items
	return nil
}

// nextQuoteNumber bumps the tenant's counter row. The UPDATE holds a row lock
// until the surrounding transaction ends, so concurrent inserts serialize and
// a rollback gives the number back.
func nextQuoteNumber(tx *gorm.DB, tenantID uuid.UUID) (int64, error) {
	seq := entity.QuoteSequence{TenantID: tenantID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
		return 0, err
	}

	err := tx.Model(&entity.QuoteSequence{}).
		Where("tenant_id = ?", tenantID).
		Updates(map[string]interface{}{
			"last_value": gorm.Expr("last_value + 1"),
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return 0, err
	}

	var current entity.QuoteSequence
	if err := tx.First(&current, "tenant_id = ?", tenantID).Error; err != nil {
		return 0, err
	}
	return current.LastValue, nil
}

func (r *quoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	return firstOrNil[entity.Quote](r.db.WithContext(ctx).Scopes(TenantScope(ctx)).Where("id = ?", id))
}

func (r *quoteRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	return firstOrNil[entity.Quote](r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Customer", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("id = ?", id))
}

func (r *quoteRepository) List(ctx context.Context, params *domainRepo.QuoteFilterParams) ([]entity.Quote, int64, error) {
	var quotes []entity.Quote
	var total int64

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}

	query := r.db.WithContext(ctx).Model(&entity.Quote{}).Scopes(TenantScope(ctx))

	if params.Status != nil {
		status := *params.Status
		switch {
		case status == enum.QuoteStatusExpired:
			query = query.Where("status IN ? AND valid_until IS NOT NULL AND valid_until < ?",
				[]int{int(enum.QuoteStatusSent), int(enum.QuoteStatusViewed)}, now)
		case status.CanExpire():
			query = query.Where("status = ? AND (valid_until IS NULL OR valid_until >= ?)", int(status), now)
		default:
			query = query.Where("status = ?", int(status))
		}
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if params.Search != "" {
		pattern := likePattern(params.Search)
		query = query.Where("(LOWER(quote_number) LIKE ? ESCAPE '\\' OR LOWER(title) LIKE ? ESCAPE '\\')", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err)
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order(orderClause(params.SortBy, params.SortOrder, quoteSortColumns, "created_at DESC")).
		Find(&quotes).Error
	if err != nil {
		return nil, 0, wrapDBError(err)
	}

	for i := range quotes {
		quotes[i].DisplayStatus = quotes[i].EffectiveStatus(now)
	}
	return quotes, total, nil
}

func (r *quoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enum.QuoteStatus, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     int(to),
		"updated_at": at,
	}
	if column, ok := statusTimestamps[to]; ok {
		updates[column] = at
	}

	result := r.db.WithContext(ctx).Model(&entity.Quote{}).
		Scopes(TenantScope(ctx)).
		Where("id = ? AND status = ?", id, int(from)).
		Updates(updates)
	if result.Error != nil {
		return false, wrapDBError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Delete removes items explicitly so the cascade holds even where the
// database does not enforce foreign keys.
func (r *quoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return wrapDBError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(TenantScope(ctx)).
			Where("quote_id = ?", id).
			Delete(&entity.QuoteLineItem{}).Error; err != nil {
			return err
		}
		return tx.Scopes(TenantScope(ctx)).
			Where("id = ?", id).
			Delete(&entity.Quote{}).Error
	}))
}
