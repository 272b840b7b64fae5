// Package session holds the identity of the currently authenticated
// user. The data layer never reads it as ambient state: callers pass a
// Session value into every operation that needs an actor.
package session

import (
	"context"

	"github.com/rosaarteira/storefront/internal/kvstore"
	"github.com/rosaarteira/storefront/internal/models"
)

type Session struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func FromUser(u models.User) Session {
	return Session{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (s Session) IsAdmin() bool { return s.Role == models.RoleAdmin }

// Store persists one session slot so a relaunch can restore the logged
// in user. The password hash never enters the slot.
type Store struct {
	kv *kvstore.Store
}

func NewStore(kv *kvstore.Store) *Store {
	return &Store{kv: kv}
}

func (st *Store) Save(ctx context.Context, sess Session) error {
	return kvstore.Put(ctx, st.kv, kvstore.KeySession, sess)
}

// Current returns nil when nobody is logged in.
func (st *Store) Current(ctx context.Context) (*Session, error) {
	sess, err := kvstore.Get[Session](ctx, st.kv, kvstore.KeySession)
	if err != nil {
		return nil, err
	}
	if sess.UserID == "" {
		return nil, nil
	}
	return &sess, nil
}

func (st *Store) Clear(ctx context.Context) error {
	return st.kv.Delete(ctx, kvstore.KeySession)
}
