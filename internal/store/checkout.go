package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rosaarteira/storefront/internal/kvstore"
	"github.com/rosaarteira/storefront/internal/models"
	"github.com/rosaarteira/storefront/internal/session"
)

const deliveryEstimate = 7 * 24 * time.Hour

// FinalizePurchase turns the session's cart into an order: it checks
// requested quantities against tracked stock, decrements stock floored
// at zero, writes one sold history record per cart line, prices the
// order at current catalog prices, persists it as pending and clears
// the cart. Everything runs inside one store transaction, so a failure
// at any step leaves stock, catalog, orders and cart untouched.
func (s *Store) FinalizePurchase(ctx context.Context, sess session.Session, paymentMethod string, shipping models.Address) (*models.Order, error) {
	if strings.TrimSpace(paymentMethod) == "" {
		return nil, ErrNoPaymentMethod
	}

	var order models.Order

	err := s.kv.Txn(ctx, func(tx *kvstore.Store) error {
		cart, err := kvstore.Get[[]models.CartEntry](ctx, tx, kvstore.CartKey(sess.UserID))
		if err != nil {
			return err
		}
		if len(cart) == 0 {
			return ErrEmptyCart
		}

		products, err := kvstore.Get[[]models.Product](ctx, tx, kvstore.KeyProducts)
		if err != nil {
			return err
		}

		byID := make(map[string]*models.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		requested := make(map[string]int, len(cart))
		for _, entry := range cart {
			requested[entry.ProductID] += entry.Quantity
		}

		for _, entry := range cart {
			p, ok := byID[entry.ProductID]
			if !ok || p.Stock == nil {
				continue
			}
			if *p.Stock < entry.Quantity {
				return &InsufficientStockError{ProductName: p.Name, Available: *p.Stock}
			}
		}

		now := time.Now().UTC()
		orderID := uuid.NewString()

		for id, qty := range requested {
			p, ok := byID[id]
			if !ok || p.Stock == nil {
				continue
			}
			left := *p.Stock - qty
			if left < 0 {
				left = 0
			}
			p.Stock = &left
		}

		total := decimal.Zero
		for _, entry := range cart {
			p, ok := byID[entry.ProductID]
			if !ok {
				continue
			}
			price := p.Price
			prepend(p, models.ProductHistory{
				Type: models.HistorySold,
				Date: now,
				By:   sess.UserID,
				Details: &models.HistoryDetails{
					OrderID:      orderID,
					Quantity:     entry.Quantity,
					Price:        &price,
					CustomerName: sess.Name,
				},
			})
			total = total.Add(price.Mul(decimal.NewFromInt(int64(entry.Quantity))))
		}

		if err := kvstore.Put(ctx, tx, kvstore.KeyProducts, products); err != nil {
			return err
		}

		estimated := now.Add(deliveryEstimate)
		order = models.Order{
			ID:                orderID,
			Date:              now,
			Total:             total,
			PaymentMethod:     paymentMethod,
			Items:             cart,
			UserID:            sess.UserID,
			Status:            models.OrderStatusPending,
			CustomerName:      sess.Name,
			CustomerEmail:     sess.Email,
			ShippingAddress:   shipping,
			EstimatedDelivery: &estimated,
		}

		orders := &Orders{kv: tx}
		if err := orders.Append(ctx, order); err != nil {
			return err
		}

		return tx.Delete(ctx, kvstore.CartKey(sess.UserID))
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}
