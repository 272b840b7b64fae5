package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rosaarteira/storefront/internal/models"
	"github.com/rosaarteira/storefront/internal/mykafka"
	"github.com/rosaarteira/storefront/internal/service/token"
	"github.com/rosaarteira/storefront/internal/store"
)

type OrderHandler struct {
	Store    *store.Store
	Producer *mykafka.Producer
}

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method"`
	AddressID     string `json:"address_id"`
}

type checkoutResponse struct {
	OK     bool          `json:"ok"`
	Order  *models.Order `json:"order,omitempty"`
	Reason string        `json:"reason,omitempty"`
}

// Checkout finalizes the purchase against the checkout's selected
// address, falling back to the default one.
func (h *OrderHandler) Checkout(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sess := token.SessionFrom(c)
	ctx := c.Request().Context()

	var shipping *models.Address
	if req.AddressID != "" {
		addresses, err := h.Store.Addresses.List(ctx, sess.UserID)
		if err != nil {
			return fail(c, err)
		}
		for i := range addresses {
			if addresses[i].ID == req.AddressID {
				shipping = &addresses[i]
				break
			}
		}
	} else {
		var err error
		shipping, err = h.Store.Addresses.Default(ctx, sess.UserID)
		if err != nil {
			return fail(c, err)
		}
	}
	if shipping == nil {
		return c.JSON(http.StatusBadRequest, checkoutResponse{OK: false, Reason: "Endereço de entrega não informado"})
	}

	order, err := h.Store.FinalizePurchase(ctx, *sess, req.PaymentMethod, *shipping)
	if err != nil {
		if store.IsBusinessError(err) {
			return c.JSON(statusFor(err), checkoutResponse{OK: false, Reason: err.Error()})
		}
		c.Logger().Errorf("checkout error: %v", err)
		return c.JSON(http.StatusInternalServerError, checkoutResponse{OK: false, Reason: "Erro interno ao finalizar compra"})
	}

	h.publish(c, order.ID, map[string]any{
		"type":    "order_created",
		"orderID": order.ID,
		"userID":  order.UserID,
		"total":   order.Total,
	})

	return c.JSON(http.StatusOK, checkoutResponse{OK: true, Order: order})
}

// MyOrders lists the caller's orders.
func (h *OrderHandler) MyOrders(c echo.Context) error {
	sess := token.SessionFrom(c)
	orders, err := h.Store.Orders.ByUser(c.Request().Context(), sess.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) publish(c echo.Context, key string, event map[string]any) {
	if err := h.Producer.PublishEvent(c.Request().Context(), mykafka.TopicOrderEvents, key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
