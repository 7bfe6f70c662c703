package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	"github.com/sangkips/quotebuilder-api/internal/infrastructure/database"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

// newTenant inserts a tenant and returns a context scoped to it
func newTenant(t *testing.T, db *gorm.DB, name string) (context.Context, *entity.Tenant) {
	t.Helper()

	tenant := &entity.Tenant{Name: name, Slug: uuid.NewString(), Settings: entity.DefaultTenantSettings()}
	require.NoError(t, NewTenantRepository(db).Create(context.Background(), tenant))
	return WithTenant(context.Background(), tenant.ID), tenant
}

func newCustomer(t *testing.T, db *gorm.DB, ctx context.Context, tenantID uuid.UUID, name, email string) *entity.Customer {
	t.Helper()

	c := &entity.Customer{TenantID: tenantID, Name: name, Email: email}
	require.NoError(t, NewCustomerRepository(db).Create(ctx, c))
	return c
}
