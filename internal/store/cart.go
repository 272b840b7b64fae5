package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rosaarteira/storefront/internal/kvstore"
	"github.com/rosaarteira/storefront/internal/models"
)

// Carts holds one ordered entry list per user. Entries are removed
// when their quantity reaches zero, never left at zero.
type Carts struct {
	kv *kvstore.Store
}

func (c *Carts) Get(ctx context.Context, userID string) ([]models.CartEntry, error) {
	return kvstore.Get[[]models.CartEntry](ctx, c.kv, kvstore.CartKey(userID))
}

// Add puts one more unit of the product in the cart, appending a new
// entry at quantity 1 when absent. Stock checks are advisory and live
// in CanAdd; this never blocks on stock.
func (c *Carts) Add(ctx context.Context, userID, productID string) error {
	_, err := kvstore.Update(ctx, c.kv, kvstore.CartKey(userID), func(cart []models.CartEntry) ([]models.CartEntry, error) {
		for i := range cart {
			if cart[i].ProductID == productID {
				cart[i].Quantity++
				return cart, nil
			}
		}
		return append(cart, models.CartEntry{ProductID: productID, Quantity: 1}), nil
	})
	return err
}

// RemoveOne takes one unit out, dropping the entry at zero. Removing a
// product that is not in the cart is a no-op.
func (c *Carts) RemoveOne(ctx context.Context, userID, productID string) error {
	_, err := kvstore.Update(ctx, c.kv, kvstore.CartKey(userID), func(cart []models.CartEntry) ([]models.CartEntry, error) {
		for i := range cart {
			if cart[i].ProductID != productID {
				continue
			}
			if cart[i].Quantity > 1 {
				cart[i].Quantity--
			} else {
				cart = append(cart[:i], cart[i+1:]...)
			}
			break
		}
		return cart, nil
	})
	return err
}

func (c *Carts) Clear(ctx context.Context, userID string) error {
	return c.kv.Delete(ctx, kvstore.CartKey(userID))
}

// CanAdd is the advisory pre-check the product screens run before Add.
// Untracked products can always be added.
func (c *Carts) CanAdd(ctx context.Context, productID string, quantity int) (bool, error) {
	products, err := kvstore.Get[[]models.Product](ctx, c.kv, kvstore.KeyProducts)
	if err != nil {
		return false, err
	}
	for _, p := range products {
		if p.ID == productID {
			if p.Stock != nil {
				return *p.Stock >= quantity, nil
			}
			return true, nil
		}
	}
	return true, nil
}

type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type CartTotal struct {
	Total decimal.Decimal `json:"total"`
	Lines []CartLine      `json:"lines"`
}

// Total prices the cart line by line against current catalog prices.
// Entries whose product vanished from the catalog price at zero.
func (c *Carts) Total(ctx context.Context, userID string) (*CartTotal, error) {
	cart, err := c.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	products, err := kvstore.Get[[]models.Product](ctx, c.kv, kvstore.KeyProducts)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	result := &CartTotal{Total: decimal.Zero, Lines: make([]CartLine, 0, len(cart))}
	for _, entry := range cart {
		line := CartLine{ProductID: entry.ProductID, Price: decimal.Zero, Quantity: entry.Quantity}
		if p, ok := byID[entry.ProductID]; ok {
			line.Name = p.Name
			line.Price = p.Price
		}
		result.Lines = append(result.Lines, line)
		result.Total = result.Total.Add(line.Price.Mul(decimal.NewFromInt(int64(entry.Quantity))))
	}
	return result, nil
}
