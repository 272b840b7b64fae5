package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	HistoryCreated      = "created"
	HistorySold         = "sold"
	HistoryUpdated      = "updated"
	HistoryStockUpdated = "stock_updated"
)

type HistoryDetails struct {
	OrderID       string           `json:"order_id,omitempty"`
	Quantity      int              `json:"quantity,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	CustomerName  string           `json:"customer_name,omitempty"`
	PreviousStock *int             `json:"previous_stock,omitempty"`
	NewStock      *int             `json:"new_stock,omitempty"`
	Changes       map[string]any   `json:"changes,omitempty"`
}

// ProductHistory is an audit record attached to a product. Entries are
// prepended, newest first, and never removed.
type ProductHistory struct {
	Type    string          `json:"type"`
	Date    time.Time       `json:"date"`
	By      string          `json:"by"`
	Details *HistoryDetails `json:"details,omitempty"`
}

// Product is a catalog entry. Stock == nil means untracked inventory:
// the product is always purchasable and exempt from stock checks.
type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Price       decimal.Decimal  `json:"price"`
	Description string           `json:"description,omitempty"`
	Category    string           `json:"category,omitempty"`
	Images      []string         `json:"images,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	CreatedBy   string           `json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
	History     []ProductHistory `json:"history"`
	TotalSold   int              `json:"total_sold"`
	LastSoldAt  *time.Time       `json:"last_sold_at,omitempty"`
}

type CartEntry struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
)

type Order struct {
	ID                string          `json:"id"`
	Date              time.Time       `json:"date"`
	Total             decimal.Decimal `json:"total"`
	PaymentMethod     string          `json:"payment_method"`
	Items             []CartEntry     `json:"items"`
	UserID            string          `json:"user_id"`
	Status            string          `json:"status"`
	CustomerName      string          `json:"customer_name,omitempty"`
	CustomerEmail     string          `json:"customer_email,omitempty"`
	ShippingAddress   Address         `json:"shipping_address"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty"`
	TrackingCode      string          `json:"tracking_code,omitempty"`
}

type Address struct {
	ID           string `json:"id"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
	IsDefault    bool   `json:"is_default"`
}
