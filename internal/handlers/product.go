package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/rosaarteira/storefront/internal/mykafka"
	"github.com/rosaarteira/storefront/internal/service/search"
	"github.com/rosaarteira/storefront/internal/service/token"
	"github.com/rosaarteira/storefront/internal/store"
	"github.com/rosaarteira/storefront/internal/util"
)

type ProductHandler struct {
	Store    *store.Store
	Producer *mykafka.Producer
	Search   *search.Service
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// GetProducts lists the catalog. sort=created|top|recent returns the
// dashboard orderings; the plain listing is paginated.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	limit := parseIntDefault(c.QueryParam("limit"), 10)

	switch c.QueryParam("sort") {
	case "created":
		products, err := h.Store.Catalog.ByCreation(ctx)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"data": products})
	case "top":
		products, err := h.Store.Catalog.TopSelling(ctx, limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"data": products})
	case "recent":
		products, err := h.Store.Catalog.RecentlySold(ctx, limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"data": products})
	}

	products, err := h.Store.Catalog.All(ctx)
	if err != nil {
		return fail(c, err)
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total := len(products)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": products[offset:end],
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + limit - 1) / limit,
			"has_prev":    page > 1,
			"has_next":    end < total,
		},
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	product, err := h.Store.Catalog.ByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

type createProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
	Stock       *int            `json:"stock"`
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !req.Price.IsPositive() {
		return echo.NewHTTPError(http.StatusBadRequest, "price must be positive")
	}

	sess := token.SessionFrom(c)

	product, err := h.Store.Catalog.Create(c.Request().Context(), *sess, store.CreateProductInput{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
		Images:      req.Images,
		Stock:       req.Stock,
	})
	if err != nil {
		return fail(c, err)
	}

	h.syncIndex(c, product.ID)
	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
		"userID":    sess.UserID,
	})

	return c.JSON(http.StatusCreated, product)
}

type updateProductRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Images      []string         `json:"images"`
	Stock       *int             `json:"stock"`
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Price != nil && !req.Price.IsPositive() {
		return echo.NewHTTPError(http.StatusBadRequest, "price must be positive")
	}

	sess := token.SessionFrom(c)

	product, err := h.Store.Catalog.Patch(c.Request().Context(), *sess, c.Param("id"), store.UpdateProductInput{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
		Images:      req.Images,
		Stock:       req.Stock,
	})
	if err != nil {
		return fail(c, err)
	}

	h.syncIndex(c, product.ID)
	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
		"name":      product.Name,
		"userID":    sess.UserID,
	})

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id := c.Param("id")
	if err := h.Store.Catalog.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}

	if err := h.Search.DeleteProduct(c.Request().Context(), id); err != nil {
		c.Logger().Errorf("search delete error: %v", err)
	}
	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) syncIndex(c echo.Context, id string) {
	if !h.Search.Enabled() {
		return
	}
	product, err := h.Store.Catalog.ByID(c.Request().Context(), id)
	if err != nil {
		c.Logger().Errorf("search sync read error: %v", err)
		return
	}
	if err := h.Search.IndexProduct(c.Request().Context(), *product); err != nil {
		c.Logger().Errorf("search index error: %v", err)
	}
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	key, _ := event["productID"].(string)
	if err := h.Producer.PublishEvent(c.Request().Context(), mykafka.TopicProductEvents, key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
