package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rosaarteira/storefront/internal/kvstore"
	"github.com/rosaarteira/storefront/internal/session"
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 7 * 24 * time.Hour

	recordsKey = "refresh_tokens"
)

type Service struct {
	KV            *kvstore.Store
	JWTSecret     []byte
	RefreshSecret []byte
}

// Record is one issued refresh token. Revoked records stay around
// until their expiry sweep.
type Record struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	ExpiresAt int64  `json:"expires_at"`
	Revoked   bool   `json:"revoked"`
}

func claimsFor(sess session.Session, ttl time.Duration) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   sess.UserID,
		"name":  sess.Name,
		"email": sess.Email,
		"role":  sess.Role,
		"exp":   time.Now().Add(ttl).Unix(),
	}
}

func (s *Service) SignAccess(sess session.Session) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claimsFor(sess, accessTTL))
	return t.SignedString(s.JWTSecret)
}

// SignRefresh issues a refresh token and persists its record so it can
// be revoked. The jti claim keeps tokens issued in the same second
// distinct.
func (s *Service) SignRefresh(ctx context.Context, sess session.Session) (string, error) {
	claims := claimsFor(sess, refreshTTL)
	claims["typ"] = "refresh"
	claims["jti"] = uuid.NewString()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := t.SignedString(s.RefreshSecret)
	if err != nil {
		return "", err
	}

	exp := time.Now().Add(refreshTTL).Unix()
	_, err = kvstore.Update(ctx, s.KV, recordsKey, func(records []Record) ([]Record, error) {
		now := time.Now().Unix()
		kept := records[:0]
		for _, r := range records {
			if r.ExpiresAt > now {
				kept = append(kept, r)
			}
		}
		return append(kept, Record{Token: raw, UserID: sess.UserID, ExpiresAt: exp}), nil
	})
	if err != nil {
		return "", err
	}
	return raw, nil
}

func (s *Service) Revoke(ctx context.Context, rawToken string) error {
	_, err := kvstore.Update(ctx, s.KV, recordsKey, func(records []Record) ([]Record, error) {
		for i := range records {
			if records[i].Token == rawToken {
				records[i].Revoked = true
			}
		}
		return records, nil
	})
	return err
}

// ParseAccess validates an access token and rebuilds the session it
// carries.
func (s *Service) ParseAccess(raw string) (*session.Session, error) {
	claims, err := parse(raw, s.JWTSecret)
	if err != nil {
		return nil, err
	}
	return sessionFrom(claims)
}

// Rotate exchanges a live refresh token for a fresh access/refresh
// pair and revokes the presented token, so each refresh token is
// usable exactly once.
func (s *Service) Rotate(ctx context.Context, rawRefresh string) (string, string, *session.Session, error) {
	claims, err := parse(rawRefresh, s.RefreshSecret)
	if err != nil {
		return "", "", nil, fmt.Errorf("invalid refresh token: %w", err)
	}
	if typ, ok := claims["typ"]; !ok || typ != "refresh" {
		return "", "", nil, errors.New("not a refresh token")
	}

	records, err := kvstore.Get[[]Record](ctx, s.KV, recordsKey)
	if err != nil {
		return "", "", nil, err
	}
	found := false
	for _, r := range records {
		if r.Token == rawRefresh {
			if r.Revoked {
				return "", "", nil, errors.New("refresh token revoked")
			}
			if time.Now().Unix() > r.ExpiresAt {
				return "", "", nil, errors.New("refresh token expired")
			}
			found = true
			break
		}
	}
	if !found {
		return "", "", nil, errors.New("refresh token not found")
	}

	sess, err := sessionFrom(claims)
	if err != nil {
		return "", "", nil, err
	}

	newAccess, err := s.SignAccess(*sess)
	if err != nil {
		return "", "", nil, err
	}
	newRefresh, err := s.SignRefresh(ctx, *sess)
	if err != nil {
		return "", "", nil, err
	}
	if err := s.Revoke(ctx, rawRefresh); err != nil {
		return "", "", nil, err
	}
	return newAccess, newRefresh, sess, nil
}

func parse(raw string, secret []byte) (jwt.MapClaims, error) {
	t, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !t.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("cannot parse claims")
	}
	return claims, nil
}

func sessionFrom(claims jwt.MapClaims) (*session.Session, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("invalid subject claim")
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return &session.Session{UserID: sub, Name: name, Email: email, Role: role}, nil
}
