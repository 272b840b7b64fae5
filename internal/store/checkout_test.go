package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rosaarteira/storefront/internal/models"
)

func shippingAddress() models.Address {
	return models.Address{
		Street:       "Rua das Flores",
		Number:       "100",
		Neighborhood: "Centro",
		City:         "Curitiba",
		State:        "PR",
		ZipCode:      "80000-000",
		IsDefault:    true,
	}
}

func TestFinalizePurchaseRequiresPaymentMethod(t *testing.T) {
	s := newTestStore(t)

	_, err := s.FinalizePurchase(context.Background(), testSession(), "  ", shippingAddress())
	require.ErrorIs(t, err, ErrNoPaymentMethod)
}

func TestFinalizePurchaseEmptyCart(t *testing.T) {
	s := newTestStore(t)

	_, err := s.FinalizePurchase(context.Background(), testSession(), "pix", shippingAddress())
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestFinalizePurchaseInsufficientStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sess := testSession()

	p := seedProduct(t, s, "Caneca", "25.00", intPtr(1))
	require.NoError(t, s.Carts.Add(ctx, sess.UserID, p.ID))
	require.NoError(t, s.Carts.Add(ctx, sess.UserID, p.ID))

	_, err := s.FinalizePurchase(ctx, sess, "pix", shippingAddress())
	require.EqualError(t, err, "Estoque insuficiente para Caneca (tem 1)")

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 1, stockErr.Available)

	// the failed attempt must leave everything untouched
	after, err := s.Catalog.ByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 1, *after.Stock)
	require.Zero(t, after.TotalSold)

	cart, err := s.Carts.Get(ctx, sess.UserID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	require.Equal(t, 2, cart[0].Quantity)

	orders, err := s.Orders.All(ctx)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestFinalizePurchaseSuccess(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sess := testSession()

	tracked := seedProduct(t, s, "Caneca", "25.50", intPtr(5))
	untracked := seedProduct(t, s, "Quadro", "120.00", nil)

	require.NoError(t, s.Carts.Add(ctx, sess.UserID, tracked.ID))
	require.NoError(t, s.Carts.Add(ctx, sess.UserID, tracked.ID))
	require.NoError(t, s.Carts.Add(ctx, sess.UserID, untracked.ID))

	order, err := s.FinalizePurchase(ctx, sess, "pix", shippingAddress())
	require.NoError(t, err)
	require.NotEmpty(t, order.ID)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.Equal(t, "pix", order.PaymentMethod)
	require.Equal(t, sess.UserID, order.UserID)
	require.Equal(t, sess.Name, order.CustomerName)
	require.Equal(t, "171", order.Total.String())
	require.NotNil(t, order.EstimatedDelivery)
	require.Equal(t, "Curitiba", order.ShippingAddress.City)

	// order items snapshot the cart as it was at checkout
	require.Len(t, order.Items, 2)
	require.Equal(t, tracked.ID, order.Items[0].ProductID)
	require.Equal(t, 2, order.Items[0].Quantity)

	// cart is cleared
	cart, err := s.Carts.Get(ctx, sess.UserID)
	require.NoError(t, err)
	require.Empty(t, cart)

	// tracked stock decremented, untracked stays untracked
	afterTracked, err := s.Catalog.ByID(ctx, tracked.ID)
	require.NoError(t, err)
	require.Equal(t, 3, *afterTracked.Stock)
	require.Equal(t, 2, afterTracked.TotalSold)
	require.NotNil(t, afterTracked.LastSoldAt)

	afterUntracked, err := s.Catalog.ByID(ctx, untracked.ID)
	require.NoError(t, err)
	require.Nil(t, afterUntracked.Stock)
	require.Equal(t, 1, afterUntracked.TotalSold)

	// a sold record lands newest-first with the order correlation
	sold := afterTracked.History[0]
	require.Equal(t, models.HistorySold, sold.Type)
	require.Equal(t, sess.UserID, sold.By)
	require.Equal(t, order.ID, sold.Details.OrderID)
	require.Equal(t, 2, sold.Details.Quantity)
	require.Equal(t, "25.5", sold.Details.Price.String())
	require.Equal(t, sess.Name, sold.Details.CustomerName)

	// the order is persisted and visible to its owner
	mine, err := s.Orders.ByUser(ctx, sess.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, order.ID, mine[0].ID)
}

func TestFinalizePurchaseFloorsOversoldStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sess := testSession()

	p := seedProduct(t, s, "Caneca", "25.00", intPtr(3))
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Carts.Add(ctx, sess.UserID, p.ID))
	}

	_, err := s.FinalizePurchase(ctx, sess, "cartao", shippingAddress())
	require.NoError(t, err)

	after, err := s.Catalog.ByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 0, *after.Stock)
}
