package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rosaarteira/storefront/internal/hash"
	"github.com/rosaarteira/storefront/internal/kvstore"
	"github.com/rosaarteira/storefront/internal/logging"
	"github.com/rosaarteira/storefront/internal/models"
)

// DefaultAdminEmail is the seeded back-office account, created at
// startup when absent.
const DefaultAdminEmail = "admin@rosaarteira.com"

type Users struct {
	kv *kvstore.Store
}

func (u *Users) All(ctx context.Context) ([]models.User, error) {
	return kvstore.Get[[]models.User](ctx, u.kv, kvstore.KeyUsers)
}

func (u *Users) ByID(ctx context.Context, id string) (*models.User, error) {
	users, err := u.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// Register creates a new account with role "user". The email must not
// already be taken (exact, case-sensitive match).
func (u *Users) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	passwordHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	newUser := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = kvstore.Update(ctx, u.kv, kvstore.KeyUsers, func(users []models.User) ([]models.User, error) {
		for _, existing := range users {
			if existing.Email == email {
				return nil, ErrDuplicateEmail
			}
		}
		return append(users, newUser), nil
	})
	if err != nil {
		return nil, err
	}
	return &newUser, nil
}

// Authenticate matches email and password against the directory.
func (u *Users) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	users, err := u.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email && hash.CheckPassword(users[i].PasswordHash, password) {
			return &users[i], nil
		}
	}
	return nil, ErrInvalidCredentials
}

// PromoteToAdmin elevates an existing user. All other records are left
// untouched; an unknown id fails without writing.
func (u *Users) PromoteToAdmin(ctx context.Context, id string) error {
	_, err := kvstore.Update(ctx, u.kv, kvstore.KeyUsers, func(users []models.User) ([]models.User, error) {
		for i := range users {
			if users[i].ID == id {
				users[i].Role = models.RoleAdmin
				return users, nil
			}
		}
		return nil, ErrUserNotFound
	})
	return err
}

func (u *Users) Delete(ctx context.Context, id string) error {
	_, err := kvstore.Update(ctx, u.kv, kvstore.KeyUsers, func(users []models.User) ([]models.User, error) {
		kept := users[:0]
		found := false
		for _, usr := range users {
			if usr.ID == id {
				found = true
				continue
			}
			kept = append(kept, usr)
		}
		if !found {
			return nil, ErrUserNotFound
		}
		return kept, nil
	})
	return err
}

// Replace overwrites the whole directory, the bulk-update path of the
// back-office user management screen.
func (u *Users) Replace(ctx context.Context, users []models.User) error {
	return kvstore.Put(ctx, u.kv, kvstore.KeyUsers, users)
}

// EnsureDefaultAdmin seeds the fixed admin account if it is absent.
// Idempotent, run on every launch.
func (u *Users) EnsureDefaultAdmin(ctx context.Context, password string) error {
	passwordHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}

	created := false
	_, err = kvstore.Update(ctx, u.kv, kvstore.KeyUsers, func(users []models.User) ([]models.User, error) {
		for _, existing := range users {
			if existing.Email == DefaultAdminEmail {
				return users, nil
			}
		}
		created = true
		return append(users, models.User{
			ID:           uuid.NewString(),
			Name:         "Administrador",
			Email:        DefaultAdminEmail,
			PasswordHash: passwordHash,
			Role:         models.RoleAdmin,
			CreatedAt:    time.Now().UTC(),
		}), nil
	})
	if err != nil {
		return err
	}
	if created {
		logging.FromContext(ctx).Info("default admin created", "email", DefaultAdminEmail)
	}
	return nil
}
