package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rosaarteira/storefront/internal/mykafka"
	"github.com/rosaarteira/storefront/internal/session"
	"github.com/rosaarteira/storefront/internal/service/token"
	"github.com/rosaarteira/storefront/internal/store"
)

type AuthHandler struct {
	Store    *store.Store
	Sessions *session.Store
	Tokens   *token.Service
	Producer *mykafka.Producer
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.Store.Users.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}

	h.publish(c, user.ID, map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusOK, Result{Success: true, Message: "Usuário criado com sucesso"})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	User    userResponse `json:"user"`
	Message string       `json:"message"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.Store.Users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, Result{Success: false, Message: err.Error()})
		}
		return fail(c, err)
	}

	sess := session.FromUser(*user)
	access, err := h.Tokens.SignAccess(sess)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	refresh, err := h.Tokens.SignRefresh(ctx, sess)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.SetCookie(token.CreateCookie("accessToken", access, "/", time.Now().Add(15*time.Minute)))
	c.SetCookie(token.CreateCookie("refreshToken", refresh, "/", time.Now().Add(7*24*time.Hour)))

	if err := h.Sessions.Save(ctx, sess); err != nil {
		c.Logger().Errorf("session save error: %v", err)
	}

	h.publish(c, user.ID, map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusOK, loginResponse{
		Success: true,
		User:    toUserResponse(*user),
		Message: "Login realizado",
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if rfCookie, err := c.Cookie("refreshToken"); err == nil && rfCookie.Value != "" {
		if err := h.Tokens.Revoke(ctx, rfCookie.Value); err != nil {
			c.Logger().Errorf("refresh revoke error: %v", err)
		}
	}

	if err := h.Sessions.Clear(ctx); err != nil {
		c.Logger().Errorf("session clear error: %v", err)
	}

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(token.CreateCookie("accessToken", "", "/", expired))
	c.SetCookie(token.CreateCookie("refreshToken", "", "/", expired))

	return c.JSON(http.StatusOK, Result{Success: true, Message: "Logout realizado"})
}

// Session returns the caller's own session, the restore-on-launch
// path of the app shell. The route runs behind RequireLogin, so the
// persisted slot is never served to anonymous clients.
func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"session": token.SessionFrom(c)})
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	if err := h.Producer.PublishEvent(c.Request().Context(), mykafka.TopicUserEvents, key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
