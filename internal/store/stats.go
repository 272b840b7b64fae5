package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rosaarteira/storefront/internal/models"
)

type AdminStats struct {
	TotalUsers         int             `json:"total_users"`
	TotalProducts      int             `json:"total_products"`
	TotalOrders        int             `json:"total_orders"`
	TotalSales         decimal.Decimal `json:"total_sales"`
	PendingOrders      int             `json:"pending_orders"`
	PreparingOrders    int             `json:"preparing_orders"`
	AvailableProducts  int             `json:"available_products"`
	OutOfStockProducts int             `json:"out_of_stock_products"`
}

// AdminStats recomputes the dashboard counters from a full scan on
// every call. Untracked products count as neither available nor out of
// stock.
func (s *Store) AdminStats(ctx context.Context) (*AdminStats, error) {
	users, err := s.Users.All(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.Catalog.All(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.Orders.All(ctx)
	if err != nil {
		return nil, err
	}

	stats := &AdminStats{
		TotalUsers:    len(users),
		TotalProducts: len(products),
		TotalOrders:   len(orders),
		TotalSales:    decimal.Zero,
	}

	for _, ord := range orders {
		stats.TotalSales = stats.TotalSales.Add(ord.Total)
		switch ord.Status {
		case models.OrderStatusPending:
			stats.PendingOrders++
		case models.OrderStatusPreparing:
			stats.PreparingOrders++
		}
	}

	for _, p := range products {
		if p.Stock == nil {
			continue
		}
		if *p.Stock > 0 {
			stats.AvailableProducts++
		} else {
			stats.OutOfStockProducts++
		}
	}

	return stats, nil
}
