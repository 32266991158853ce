package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avdeyev/webshop/internal/es"
	"github.com/avdeyev/webshop/internal/models"
	"github.com/avdeyev/webshop/internal/mykafka"
	"github.com/avdeyev/webshop/internal/repo"
	"github.com/avdeyev/webshop/internal/util"
)

type ProductHandler struct {
	Products repo.ProductStore
	Producer *mykafka.Producer
	Indexer  *es.Indexer
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ProductHandler) index(c echo.Context, p *models.Product) {
	if err := h.Indexer.IndexProduct(c.Request().Context(), p); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	product, err := h.Products.ByID(c.Request().Context(), id)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	items, total, err := h.Products.List(c.Request().Context(), offset, limit)
	if err != nil {
		return storeError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": pageMeta(page, limit, offset, total),
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Price       int64  `json:"price"`
		Stock       int64  `json:"stock"`
		Category    string `json:"category"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name required")
	}
	if req.Price < 0 || req.Stock < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price and stock must be >= 0")
	}

	prod := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
	}
	if err := h.Products.Create(c.Request().Context(), &prod); err != nil {
		return storeError(err)
	}

	h.index(c, &prod)
	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	// Stock is deliberately absent: availability changes only through the
	// relative adjustment path, never an absolute overwrite from a patch.
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Price       *int64  `json:"price"`
		Category    *string `json:"category"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	prod, err := h.Products.ByID(c.Request().Context(), id)
	if err != nil {
		return storeError(err)
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "price must be >= 0")
		}
		prod.Price = *req.Price
	}
	if req.Category != nil {
		prod.Category = *req.Category
	}

	if err := h.Products.Save(c.Request().Context(), prod); err != nil {
		return storeError(err)
	}

	h.index(c, prod)
	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Products.Delete(c.Request().Context(), id); err != nil {
		return storeError(err)
	}

	if err := h.Indexer.DeleteProduct(c.Request().Context(), id); err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
	}
	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})

	return c.NoContent(http.StatusNoContent)
}
