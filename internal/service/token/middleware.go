package token

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rosaarteira/storefront/internal/session"
)

const sessionContextKey = "session"

func CreateCookie(name string, value string, path string, expTime time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionFrom returns the session the middleware attached, or nil.
func SessionFrom(c echo.Context) *session.Session {
	if sess, ok := c.Get(sessionContextKey).(*session.Session); ok {
		return sess
	}
	return nil
}

// checkCookie validates the access cookie, rotating through the
// refresh cookie when the access token expired.
func (s *Service) checkCookie(c echo.Context) (*session.Session, error) {
	if cookie, err := c.Cookie("accessToken"); err == nil && cookie.Value != "" {
		if sess, err := s.ParseAccess(cookie.Value); err == nil {
			return sess, nil
		}
	}

	rfCookie, err := c.Cookie("refreshToken")
	if err != nil || rfCookie.Value == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing auth cookie")
	}

	newAccess, newRefresh, sess, err := s.Rotate(c.Request().Context(), rfCookie.Value)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	c.SetCookie(CreateCookie("accessToken", newAccess, "/", time.Now().Add(accessTTL)))
	c.SetCookie(CreateCookie("refreshToken", newRefresh, "/", time.Now().Add(refreshTTL)))
	return sess, nil
}

// RequireLogin attaches the caller's session or rejects the request.
func (s *Service) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := s.checkCookie(c)
		if err != nil {
			return err
		}
		c.Set(sessionContextKey, sess)
		return next(c)
	}
}

// RequireAdmin is RequireLogin plus a role gate.
func (s *Service) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := s.checkCookie(c)
		if err != nil {
			return err
		}
		if !sess.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
		c.Set(sessionContextKey, sess)
		return next(c)
	}
}
