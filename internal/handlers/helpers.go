package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rosaarteira/storefront/internal/models"
	"github.com/rosaarteira/storefront/internal/store"
)

// Result is the shape the screens consume for mutations.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func statusFor(err error) int {
	var stockErr *store.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return http.StatusConflict
	case errors.Is(err, store.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrEmptyCart),
		errors.Is(err, store.ErrNoPaymentMethod),
		errors.Is(err, store.ErrInvalidTransition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail translates a data-layer error: business failures surface their
// message, storage faults are logged and hidden behind a generic one.
func fail(c echo.Context, err error) error {
	if store.IsBusinessError(err) {
		return c.JSON(statusFor(err), Result{Success: false, Message: err.Error()})
	}
	c.Logger().Errorf("storage error: %v", err)
	return c.JSON(http.StatusInternalServerError, Result{Success: false, Message: "Erro interno"})
}
