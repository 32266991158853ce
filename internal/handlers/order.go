package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avdeyev/webshop/internal/models"
	"github.com/avdeyev/webshop/internal/mykafka"
	"github.com/avdeyev/webshop/internal/repo"
	"github.com/avdeyev/webshop/internal/service/inventory"
	"github.com/avdeyev/webshop/internal/service/token"
	"github.com/avdeyev/webshop/internal/util"
)

type OrderHandler struct {
	Inventory *inventory.Service
	Orders    repo.OrderStore
	Lines     repo.OrderLineStore
	Producer  *mykafka.Producer
}

type OrderResponse struct {
	Order models.Order       `json:"order"`
	Lines []models.OrderLine `json:"lines"`
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["orderID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, err := token.UserIDFrom(c)
	if err != nil {
		return err
	}

	var req struct {
		Status bool                    `json:"status"`
		Lines  []inventory.LineRequest `json:"lines"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, lines, err := h.Inventory.CreateOrder(c.Request().Context(), userID, req.Status, req.Lines)
	if err != nil {
		return coreError(err)
	}

	h.publish(c, map[string]any{
		"type":    "order_created",
		"orderID": order.ID,
		"userID":  userID,
		"total":   order.Total,
	})

	return c.JSON(http.StatusCreated, OrderResponse{Order: *order, Lines: lines})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	order, err := h.Orders.ByID(c.Request().Context(), id)
	if err != nil {
		return storeError(err)
	}
	lines, err := h.Lines.ByOrder(c.Request().Context(), order.ID)
	if err != nil {
		return storeError(err)
	}

	return c.JSON(http.StatusOK, OrderResponse{Order: *order, Lines: lines})
}

func (h *OrderHandler) GetOrders(c echo.Context) error {
	userID, err := token.UserIDFrom(c)
	if err != nil {
		return err
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	orders, total, err := h.Orders.ByUser(c.Request().Context(), userID, offset, limit)
	if err != nil {
		return storeError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": pageMeta(page, limit, offset, total),
	})
}

// PatchOrder drives the confirmed/cancelled state machine. Flipping status
// walks every line of the order and reverses or re-applies its stock
// reservation before the order record is saved.
func (h *OrderHandler) PatchOrder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var patch inventory.OrderPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.Inventory.UpdateOrder(c.Request().Context(), id, patch)
	if err != nil {
		return coreError(err)
	}

	h.publish(c, map[string]any{
		"type":    "order_updated",
		"orderID": order.ID,
		"status":  order.Status,
	})

	return c.JSON(http.StatusOK, order)
}

// DeleteOrder removes the order record only. No cascade: lines stay and
// stock is untouched.
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Orders.Delete(c.Request().Context(), id); err != nil {
		return storeError(err)
	}

	h.publish(c, map[string]any{
		"type":    "order_deleted",
		"orderID": id,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHandler) GetOrderLines(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	lines, err := h.Lines.ByOrder(c.Request().Context(), id)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, lines)
}

func (h *OrderHandler) GetOrderLine(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	line, err := h.Lines.ByID(c.Request().Context(), id)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, line)
}

func (h *OrderHandler) PatchOrderLine(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	line, err := h.Inventory.AdjustLine(c.Request().Context(), id, req.Amount)
	if err != nil {
		return coreError(err)
	}

	h.publish(c, map[string]any{
		"type":    "order_line_adjusted",
		"orderID": line.OrderID,
		"lineID":  line.ID,
		"amount":  line.Amount,
	})

	return c.JSON(http.StatusOK, line)
}

func (h *OrderHandler) DeleteOrderLine(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Inventory.RemoveLine(c.Request().Context(), id); err != nil {
		return coreError(err)
	}

	h.publish(c, map[string]any{
		"type":   "order_line_deleted",
		"lineID": id,
	})

	return c.NoContent(http.StatusNoContent)
}
