package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sangkips/quotebuilder-api/pkg/apperror"
	"gorm.io/gorm"
)

// wrapDBError classifies storage failures. Failures worth retrying become
// TransientStorageError; everything else passes through unchanged.
func wrapDBError(err error) error {
	if err == nil || apperror.IsAppError(err) {
		return err
	}
	if isTransient(err) {
		return apperror.NewTransientStorageError(err)
	}
	return err
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"): // connection exception
			return true
		case pgErr.Code == "40001", pgErr.Code == "40P01": // serialization failure, deadlock
			return true
		case pgErr.Code == "53300", pgErr.Code == "57P01", pgErr.Code == "57P03": // too many connections, shutdown
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return pgconn.Timeout(err) || pgconn.SafeToRetry(err)
}

// likePattern lowercases q and escapes LIKE wildcards for use with
// "LOWER(col) LIKE ? ESCAPE '\'".
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(q))) + "%"
}

// orderClause maps a requested sort onto a whitelisted column
func orderClause(sortBy, sortOrder string, allowed map[string]string, fallback string) string {
	column, ok := allowed[sortBy]
	if !ok {
		return fallback
	}
	if strings.EqualFold(sortOrder, "asc") {
		return column + " ASC"
	}
	return column + " DESC"
}

// firstOrNil returns the first row matched by q, or nil when there is none
func firstOrNil[T any](q *gorm.DB) (*T, error) {
	var row T
	err := q.First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBError(err)
	}
	return &row, nil
}
