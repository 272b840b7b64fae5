package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rosaarteira/storefront/internal/kvstore"
	"github.com/rosaarteira/storefront/internal/models"
	"github.com/rosaarteira/storefront/internal/session"
)

type Catalog struct {
	kv *kvstore.Store
}

type CreateProductInput struct {
	Name        string
	Price       decimal.Decimal
	Description string
	Category    string
	Images      []string
	Stock       *int
}

type UpdateProductInput struct {
	Name        *string
	Price       *decimal.Decimal
	Description *string
	Category    *string
	Images      []string
	Stock       *int
}

func (c *Catalog) All(ctx context.Context) ([]models.Product, error) {
	return kvstore.Get[[]models.Product](ctx, c.kv, kvstore.KeyProducts)
}

func (c *Catalog) ByID(ctx context.Context, id string) (*models.Product, error) {
	products, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, ErrProductNotFound
}

// Create appends a catalog entry with its opening audit record.
func (c *Catalog) Create(ctx context.Context, sess session.Session, input CreateProductInput) (*models.Product, error) {
	now := time.Now().UTC()
	price := input.Price
	product := models.Product{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		Category:    input.Category,
		Images:      input.Images,
		Stock:       input.Stock,
		CreatedBy:   sess.UserID,
		CreatedAt:   now,
		History: []models.ProductHistory{{
			Type: models.HistoryCreated,
			Date: now,
			By:   sess.UserID,
			Details: &models.HistoryDetails{
				Price:    &price,
				NewStock: input.Stock,
			},
		}},
		TotalSold: 0,
	}

	_, err := kvstore.Update(ctx, c.kv, kvstore.KeyProducts, func(products []models.Product) ([]models.Product, error) {
		return append(products, product), nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Patch applies partial changes and appends the matching audit record:
// a stock change logs stock_updated with the previous and new values,
// any other change logs updated with the changed fields.
func (c *Catalog) Patch(ctx context.Context, sess session.Session, id string, input UpdateProductInput) (*models.Product, error) {
	var updated models.Product

	_, err := kvstore.Update(ctx, c.kv, kvstore.KeyProducts, func(products []models.Product) ([]models.Product, error) {
		idx := -1
		for i := range products {
			if products[i].ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, ErrProductNotFound
		}

		p := &products[idx]
		now := time.Now().UTC()
		changes := map[string]any{}

		if input.Name != nil && *input.Name != p.Name {
			changes["name"] = *input.Name
			p.Name = *input.Name
		}
		if input.Price != nil && !input.Price.Equal(p.Price) {
			changes["price"] = input.Price.String()
			p.Price = *input.Price
		}
		if input.Description != nil && *input.Description != p.Description {
			changes["description"] = *input.Description
			p.Description = *input.Description
		}
		if input.Category != nil && *input.Category != p.Category {
			changes["category"] = *input.Category
			p.Category = *input.Category
		}
		if input.Images != nil {
			changes["images"] = input.Images
			p.Images = input.Images
		}

		if input.Stock != nil {
			previous := p.Stock
			p.Stock = input.Stock
			prepend(p, models.ProductHistory{
				Type: models.HistoryStockUpdated,
				Date: now,
				By:   sess.UserID,
				Details: &models.HistoryDetails{
					PreviousStock: previous,
					NewStock:      input.Stock,
				},
			})
		}
		if len(changes) > 0 {
			prepend(p, models.ProductHistory{
				Type:    models.HistoryUpdated,
				Date:    now,
				By:      sess.UserID,
				Details: &models.HistoryDetails{Changes: changes},
			})
		}

		updated = *p
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	_, err := kvstore.Update(ctx, c.kv, kvstore.KeyProducts, func(products []models.Product) ([]models.Product, error) {
		kept := products[:0]
		for _, p := range products {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		return kept, nil
	})
	return err
}

// Replace overwrites the stored catalog wholesale.
func (c *Catalog) Replace(ctx context.Context, products []models.Product) error {
	return kvstore.Put(ctx, c.kv, kvstore.KeyProducts, products)
}

// AppendHistory prepends an audit record. A sold record also bumps the
// running counter and the last-sale timestamp; the history log itself
// stays append-only.
func (c *Catalog) AppendHistory(ctx context.Context, id string, entry models.ProductHistory) error {
	_, err := kvstore.Update(ctx, c.kv, kvstore.KeyProducts, func(products []models.Product) ([]models.Product, error) {
		for i := range products {
			if products[i].ID != id {
				continue
			}
			if entry.Date.IsZero() {
				entry.Date = time.Now().UTC()
			}
			prepend(&products[i], entry)
			return products, nil
		}
		return nil, ErrProductNotFound
	})
	return err
}

func prepend(p *models.Product, entry models.ProductHistory) {
	p.History = append([]models.ProductHistory{entry}, p.History...)
	if entry.Type == models.HistorySold && entry.Details != nil && entry.Details.Quantity > 0 {
		p.TotalSold += entry.Details.Quantity
		soldAt := entry.Date
		p.LastSoldAt = &soldAt
	}
}

// ByCreation lists the catalog newest first.
func (c *Catalog) ByCreation(ctx context.Context) ([]models.Product, error) {
	products, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

// TopSelling returns up to limit products with sales, best sellers first.
func (c *Catalog) TopSelling(ctx context.Context, limit int) ([]models.Product, error) {
	products, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	sold := products[:0]
	for _, p := range products {
		if p.TotalSold > 0 {
			sold = append(sold, p)
		}
	}
	sort.Slice(sold, func(i, j int) bool { return sold[i].TotalSold > sold[j].TotalSold })
	if limit > 0 && len(sold) > limit {
		sold = sold[:limit]
	}
	return sold, nil
}

// RecentlySold returns up to limit products ordered by last sale.
func (c *Catalog) RecentlySold(ctx context.Context, limit int) ([]models.Product, error) {
	products, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	recent := products[:0]
	for _, p := range products {
		if p.LastSoldAt != nil {
			recent = append(recent, p)
		}
	}
	sort.Slice(recent, func(i, j int) bool { return recent[i].LastSoldAt.After(*recent[j].LastSoldAt) })
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	return recent, nil
}
