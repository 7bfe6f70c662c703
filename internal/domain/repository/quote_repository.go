package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	"github.com/sangkips/quotebuilder-api/internal/domain/enum"
	"github.com/sangkips/quotebuilder-api/pkg/pagination"
)

// QuoteRepository defines the interface for quote data operations
type QuoteRepository interface {
	// CreateWithItems allocates the next tenant quote number and inserts the
	// quote and its items in one transaction.
	CreateWithItems(ctx context.Context, quote *entity.Quote, numberPrefix string) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Quote, error)
	// GetWithItems loads the quote with its customer and ordered items
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Quote, error)
	List(ctx context.Context, params *QuoteFilterParams) ([]entity.Quote, int64, error)
	// UpdateStatus moves a quote from one stored status to another and stamps
	// the matching timestamp. Returns false when the quote was not in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enum.QuoteStatus, at time.Time) (bool, error)
	// Delete removes the quote and its items
	Delete(ctx context.Context, id uuid.UUID) error
}

// QuoteFilterParams contains filtering parameters for quote queries
type QuoteFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	// Status filters by displayed status. Expired matches sent or viewed
	// quotes whose validity ended before Now.
	Status     *enum.QuoteStatus
	CustomerID *uuid.UUID
	Now        time.Time
	SortBy     string
	SortOrder  string
}
