package session

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rosaarteira/storefront/internal/kvstore"
	"github.com/rosaarteira/storefront/internal/models"
)

func newTestSessionStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	kv, err := kvstore.Open(db)
	require.NoError(t, err)
	return NewStore(kv)
}

func TestSaveAndCurrent(t *testing.T) {
	st := newTestSessionStore(t)
	ctx := context.Background()

	cur, err := st.Current(ctx)
	require.NoError(t, err)
	require.Nil(t, cur)

	sess := Session{UserID: "user-1", Name: "Maria", Email: "maria@example.com", Role: models.RoleUser}
	require.NoError(t, st.Save(ctx, sess))

	cur, err = st.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, &sess, cur)
}

func TestClear(t *testing.T) {
	st := newTestSessionStore(t)
	ctx := context.Background()

	sess := Session{UserID: "user-1", Name: "Maria"}
	require.NoError(t, st.Save(ctx, sess))
	require.NoError(t, st.Clear(ctx))

	cur, err := st.Current(ctx)
	require.NoError(t, err)
	require.Nil(t, cur)
}

func TestFromUserDropsPasswordHash(t *testing.T) {
	u := models.User{
		ID:           "user-1",
		Name:         "Maria",
		Email:        "maria@example.com",
		PasswordHash: "$2a$10$secret",
		Role:         models.RoleAdmin,
	}

	sess := FromUser(u)
	require.Equal(t, Session{UserID: "user-1", Name: "Maria", Email: "maria@example.com", Role: models.RoleAdmin}, sess)
	require.True(t, sess.IsAdmin())
}
