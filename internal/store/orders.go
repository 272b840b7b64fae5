package store

import (
	"context"

	"github.com/rosaarteira/storefront/internal/kvstore"
	"github.com/rosaarteira/storefront/internal/models"
)

type Orders struct {
	kv *kvstore.Store
}

// statusRank orders the lifecycle; transitions may only move forward.
var statusRank = map[string]int{
	models.OrderStatusPending:   0,
	models.OrderStatusPreparing: 1,
	models.OrderStatusShipped:   2,
	models.OrderStatusDelivered: 3,
}

func (o *Orders) All(ctx context.Context) ([]models.Order, error) {
	return kvstore.Get[[]models.Order](ctx, o.kv, kvstore.KeyOrders)
}

func (o *Orders) ByUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := o.All(ctx)
	if err != nil {
		return nil, err
	}
	mine := orders[:0]
	for _, ord := range orders {
		if ord.UserID == userID {
			mine = append(mine, ord)
		}
	}
	return mine, nil
}

func (o *Orders) ByID(ctx context.Context, id string) (*models.Order, error) {
	orders, err := o.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, ErrOrderNotFound
}

// Append persists a finalized order. Orders enter only through
// checkout; there is no other creation path.
func (o *Orders) Append(ctx context.Context, order models.Order) error {
	_, err := kvstore.Update(ctx, o.kv, kvstore.KeyOrders, func(orders []models.Order) ([]models.Order, error) {
		return append(orders, order), nil
	})
	return err
}

// UpdateStatus advances an order. Moving backwards or to an unknown
// status is rejected; there is no cancellation state.
func (o *Orders) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	newRank, ok := statusRank[status]
	if !ok {
		return nil, ErrInvalidTransition
	}

	var updated models.Order
	_, err := kvstore.Update(ctx, o.kv, kvstore.KeyOrders, func(orders []models.Order) ([]models.Order, error) {
		for i := range orders {
			if orders[i].ID != id {
				continue
			}
			if newRank <= statusRank[orders[i].Status] {
				return nil, ErrInvalidTransition
			}
			orders[i].Status = status
			updated = orders[i]
			return orders, nil
		}
		return nil, ErrOrderNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

type OrderWithUser struct {
	models.Order
	User *models.User `json:"user,omitempty"`
}

// WithUsers joins orders against the user directory for the
// back-office order list. Orders of deleted users keep a nil User.
func (o *Orders) WithUsers(ctx context.Context, users *Users) ([]OrderWithUser, error) {
	orders, err := o.All(ctx)
	if err != nil {
		return nil, err
	}
	all, err := users.All(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.User, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}

	result := make([]OrderWithUser, 0, len(orders))
	for _, ord := range orders {
		result = append(result, OrderWithUser{Order: ord, User: byID[ord.UserID]})
	}
	return result, nil
}
