package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rosaarteira/storefront/internal/models"
	"github.com/rosaarteira/storefront/internal/service/token"
	"github.com/rosaarteira/storefront/internal/store"
)

type AddressHandler struct {
	Store *store.Store
}

func (h *AddressHandler) List(c echo.Context) error {
	sess := token.SessionFrom(c)
	addresses, err := h.Store.Addresses.List(c.Request().Context(), sess.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, addresses)
}

type saveAddressRequest struct {
	Street       string `json:"street" validate:"required"`
	Number       string `json:"number" validate:"required"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood" validate:"required"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	ZipCode      string `json:"zip_code" validate:"required"`
	IsDefault    bool   `json:"is_default"`
}

func (h *AddressHandler) Save(c echo.Context) error {
	var req saveAddressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sess := token.SessionFrom(c)
	addr, err := h.Store.Addresses.Save(c.Request().Context(), sess.UserID, models.Address{
		Street:       req.Street,
		Number:       req.Number,
		Complement:   req.Complement,
		Neighborhood: req.Neighborhood,
		City:         req.City,
		State:        req.State,
		ZipCode:      req.ZipCode,
		IsDefault:    req.IsDefault,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, addr)
}

func (h *AddressHandler) SetDefault(c echo.Context) error {
	sess := token.SessionFrom(c)
	if err := h.Store.Addresses.SetDefault(c.Request().Context(), sess.UserID, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Default returns the address checkout pre-selects, null when the
// address book is empty.
func (h *AddressHandler) Default(c echo.Context) error {
	sess := token.SessionFrom(c)
	addr, err := h.Store.Addresses.Default(c.Request().Context(), sess.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"address": addr})
}
