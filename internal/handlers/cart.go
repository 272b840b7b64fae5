package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rosaarteira/storefront/internal/mykafka"
	"github.com/rosaarteira/storefront/internal/service/token"
	"github.com/rosaarteira/storefront/internal/store"
)

type CartHandler struct {
	Store    *store.Store
	Producer *mykafka.Producer
}

func (h *CartHandler) GetCart(c echo.Context) error {
	sess := token.SessionFrom(c)
	cart, err := h.Store.Carts.Get(c.Request().Context(), sess.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

type addToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// AddToCart runs the advisory stock check the product screen would,
// then adds one unit.
func (h *CartHandler) AddToCart(c echo.Context) error {
	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sess := token.SessionFrom(c)
	ctx := c.Request().Context()

	ok, err := h.Store.Carts.CanAdd(ctx, req.ProductID, 1)
	if err != nil {
		return fail(c, err)
	}
	if !ok {
		return c.JSON(http.StatusConflict, Result{Success: false, Message: "Produto sem estoque"})
	}

	if err := h.Store.Carts.Add(ctx, sess.UserID, req.ProductID); err != nil {
		return fail(c, err)
	}

	h.publish(c, sess.UserID, map[string]any{
		"type":      "cart_item_added",
		"userID":    sess.UserID,
		"productID": req.ProductID,
	})

	cart, err := h.Store.Carts.Get(ctx, sess.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) RemoveOneFromCart(c echo.Context) error {
	sess := token.SessionFrom(c)
	ctx := c.Request().Context()
	productID := c.Param("productID")

	if err := h.Store.Carts.RemoveOne(ctx, sess.UserID, productID); err != nil {
		return fail(c, err)
	}

	h.publish(c, sess.UserID, map[string]any{
		"type":      "cart_item_removed",
		"userID":    sess.UserID,
		"productID": productID,
	})

	cart, err := h.Store.Carts.Get(ctx, sess.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	sess := token.SessionFrom(c)
	if err := h.Store.Carts.Clear(c.Request().Context(), sess.UserID); err != nil {
		return fail(c, err)
	}

	h.publish(c, sess.UserID, map[string]any{
		"type":   "cart_cleared",
		"userID": sess.UserID,
	})
	return c.NoContent(http.StatusNoContent)
}

// CartTotal prices the cart line by line for the checkout screen.
func (h *CartHandler) CartTotal(c echo.Context) error {
	sess := token.SessionFrom(c)
	total, err := h.Store.Carts.Total(c.Request().Context(), sess.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, total)
}

func (h *CartHandler) publish(c echo.Context, key string, event map[string]any) {
	if err := h.Producer.PublishEvent(c.Request().Context(), mykafka.TopicOrderEvents, key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
