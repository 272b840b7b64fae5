package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rosaarteira/storefront/internal/hash"
	"github.com/rosaarteira/storefront/internal/models"
)

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Users.Register(ctx, "Ana", "a@x.com", "password1")
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, first.Role)
	require.NotEqual(t, "password1", first.PasswordHash)

	_, err = s.Users.Register(ctx, "Outra Ana", "a@x.com", "password2")
	require.ErrorIs(t, err, ErrDuplicateEmail)
	require.EqualError(t, err, "Email já cadastrado")

	users, err := s.Users.All(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestAuthenticate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Users.Register(ctx, "Ana", "ana@x.com", "secret123")
	require.NoError(t, err)

	user, err := s.Users.Authenticate(ctx, "ana@x.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, "Ana", user.Name)

	_, err = s.Users.Authenticate(ctx, "ana@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Users.Authenticate(ctx, "nobody@x.com", "secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPromoteToAdmin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ana, err := s.Users.Register(ctx, "Ana", "ana@x.com", "secret123")
	require.NoError(t, err)
	bia, err := s.Users.Register(ctx, "Bia", "bia@x.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, s.Users.PromoteToAdmin(ctx, ana.ID))

	promoted, err := s.Users.ByID(ctx, ana.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, promoted.Role)

	other, err := s.Users.ByID(ctx, bia.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, other.Role)
}

func TestPromoteToAdminUnknownID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Users.Register(ctx, "Ana", "ana@x.com", "secret123")
	require.NoError(t, err)

	before, err := s.Users.All(ctx)
	require.NoError(t, err)

	err = s.Users.PromoteToAdmin(ctx, "missing-id")
	require.ErrorIs(t, err, ErrUserNotFound)

	after, err := s.Users.All(ctx)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestEnsureDefaultAdminIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users.EnsureDefaultAdmin(ctx, "admin123"))
	require.NoError(t, s.Users.EnsureDefaultAdmin(ctx, "admin123"))

	users, err := s.Users.All(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, DefaultAdminEmail, users[0].Email)
	require.Equal(t, models.RoleAdmin, users[0].Role)
	require.True(t, hash.CheckPassword(users[0].PasswordHash, "admin123"))
}

func TestDeleteUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ana, err := s.Users.Register(ctx, "Ana", "ana@x.com", "secret123")
	require.NoError(t, err)
	_, err = s.Users.Register(ctx, "Bia", "bia@x.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, s.Users.Delete(ctx, ana.ID))

	users, err := s.Users.All(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "Bia", users[0].Name)

	require.ErrorIs(t, s.Users.Delete(ctx, ana.ID), ErrUserNotFound)
}
