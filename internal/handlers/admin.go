package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rosaarteira/storefront/internal/mykafka"
	"github.com/rosaarteira/storefront/internal/store"
)

type AdminHandler struct {
	Store    *store.Store
	Producer *mykafka.Producer
}

// Stats feeds the back-office dashboard.
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.Store.AdminStats(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.Store.Users.All(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) PromoteUser(c echo.Context) error {
	id := c.Param("id")
	if err := h.Store.Users.PromoteToAdmin(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}

	h.publish(c, id, map[string]any{
		"type":   "user_promoted",
		"userID": id,
	})
	return c.JSON(http.StatusOK, Result{Success: true, Message: "Usuário promovido a admin"})
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id := c.Param("id")
	if err := h.Store.Users.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}

	h.publish(c, id, map[string]any{
		"type":   "user_deleted",
		"userID": id,
	})
	return c.NoContent(http.StatusNoContent)
}

// ListOrders joins orders with their users for the back-office list.
func (h *AdminHandler) ListOrders(c echo.Context) error {
	orders, err := h.Store.Orders.WithUsers(c.Request().Context(), h.Store.Users)
	if err != nil {
		return fail(c, err)
	}

	// user records in the join still carry hashes; strip them
	type orderRow struct {
		store.OrderWithUser
		User *userResponse `json:"user,omitempty"`
	}
	rows := make([]orderRow, 0, len(orders))
	for _, o := range orders {
		row := orderRow{OrderWithUser: o}
		if o.User != nil {
			u := toUserResponse(*o.User)
			row.User = &u
		}
		row.OrderWithUser.User = nil
		rows = append(rows, row)
	}
	return c.JSON(http.StatusOK, rows)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.Store.Orders.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return fail(c, err)
	}

	if err := h.Producer.PublishEvent(c.Request().Context(), mykafka.TopicOrderEvents, order.ID, map[string]any{
		"type":    "order_status_changed",
		"orderID": order.ID,
		"status":  order.Status,
	}); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *AdminHandler) publish(c echo.Context, key string, event map[string]any) {
	if err := h.Producer.PublishEvent(c.Request().Context(), mykafka.TopicUserEvents, key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
