package store

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rosaarteira/storefront/internal/kvstore"
	"github.com/rosaarteira/storefront/internal/models"
	"github.com/rosaarteira/storefront/internal/session"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	kv, err := kvstore.Open(db)
	require.NoError(t, err)

	return New(kv)
}

func testSession() session.Session {
	return session.Session{UserID: "user-1", Name: "Maria", Email: "maria@example.com", Role: models.RoleUser}
}

func seedProduct(t *testing.T, s *Store, name string, price string, stock *int) models.Product {
	t.Helper()

	p, err := s.Catalog.Create(context.Background(), testSession(), CreateProductInput{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	require.NoError(t, err)
	return *p
}

func intPtr(v int) *int { return &v }
