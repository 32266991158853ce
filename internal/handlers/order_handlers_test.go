package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avdeyev/webshop/internal/models"
	"github.com/avdeyev/webshop/internal/mykafka"
	"github.com/avdeyev/webshop/internal/repo"
	"github.com/avdeyev/webshop/internal/service/inventory"
)

type orderEnv struct {
	db *gorm.DB
	h  *OrderHandler
	e  *echo.Echo
}

func newOrderEnv(t *testing.T) *orderEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.Order{}, &models.OrderLine{},
	))

	products := &repo.ProductRepo{DB: db}
	orders := &repo.OrderRepo{DB: db}
	lines := &repo.OrderLineRepo{DB: db}

	h := &OrderHandler{
		Inventory: inventory.New(products, orders, lines),
		Orders:    orders,
		Lines:     lines,
		Producer:  &mykafka.Producer{},
	}
	return &orderEnv{db: db, h: h, e: echo.New()}
}

func (env *orderEnv) jsonRequest(t *testing.T, method, path string, payload any, userID uint) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	c.Set("userID", userID)
	c.Set("role", "user")
	return rec, c
}

func TestCreateOrderHandler(t *testing.T) {
	env := newOrderEnv(t)

	p := models.Product{Name: "test", Price: 10, Stock: 5}
	require.NoError(t, env.db.Create(&p).Error)

	payload := map[string]any{
		"status": true,
		"lines":  []map[string]any{{"product_id": p.ID, "amount": 3}},
	}
	rec, c := env.jsonRequest(t, http.MethodPost, "/api/v1/orders", payload, 1)
	require.NoError(t, env.h.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(30), resp.Order.Total)
	require.Equal(t, uint(1), resp.Order.UserID)
	require.Len(t, resp.Lines, 1)
	require.Equal(t, int64(30), resp.Lines[0].Subtotal)

	var got models.Product
	require.NoError(t, env.db.First(&got, p.ID).Error)
	require.Equal(t, int64(2), got.Stock)
}

func TestCreateOrderHandlerInsufficientStock(t *testing.T) {
	env := newOrderEnv(t)

	p := models.Product{Name: "test", Price: 10, Stock: 1}
	require.NoError(t, env.db.Create(&p).Error)

	payload := map[string]any{
		"status": true,
		"lines":  []map[string]any{{"product_id": p.ID, "amount": 2}},
	}
	_, c := env.jsonRequest(t, http.MethodPost, "/api/v1/orders", payload, 1)

	err := env.h.CreateOrder(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)
}

func TestCreateOrderHandlerIgnoresClientPrice(t *testing.T) {
	env := newOrderEnv(t)

	p := models.Product{Name: "test", Price: 100, Stock: 5}
	require.NoError(t, env.db.Create(&p).Error)

	// The client tries to buy cheap; the extra field must be ignored.
	payload := map[string]any{
		"status": true,
		"lines":  []map[string]any{{"product_id": p.ID, "amount": 1, "unit_price": 1}},
	}
	rec, c := env.jsonRequest(t, http.MethodPost, "/api/v1/orders", payload, 1)
	require.NoError(t, env.h.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(100), resp.Order.Total)
}

func TestPatchOrderHandlerStatus(t *testing.T) {
	env := newOrderEnv(t)

	p := models.Product{Name: "test", Price: 10, Stock: 5}
	require.NoError(t, env.db.Create(&p).Error)

	payload := map[string]any{
		"status": true,
		"lines":  []map[string]any{{"product_id": p.ID, "amount": 2}},
	}
	rec, c := env.jsonRequest(t, http.MethodPost, "/api/v1/orders", payload, 1)
	require.NoError(t, env.h.CreateOrder(c))

	var resp OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec, c = env.jsonRequest(t, http.MethodPatch, "/api/v1/orders/1", map[string]any{"status": false}, 1)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.h.PatchOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Product
	require.NoError(t, env.db.First(&got, p.ID).Error)
	require.Equal(t, int64(5), got.Stock)
}

func TestPatchOrderLineHandler(t *testing.T) {
	env := newOrderEnv(t)

	p := models.Product{Name: "test", Price: 10, Stock: 10}
	require.NoError(t, env.db.Create(&p).Error)

	payload := map[string]any{
		"status": true,
		"lines":  []map[string]any{{"product_id": p.ID, "amount": 2}},
	}
	_, c := env.jsonRequest(t, http.MethodPost, "/api/v1/orders", payload, 1)
	require.NoError(t, env.h.CreateOrder(c))

	rec, c := env.jsonRequest(t, http.MethodPatch, "/api/v1/lines/1", map[string]any{"amount": 5}, 1)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.h.PatchOrderLine(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var line models.OrderLine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &line))
	require.Equal(t, int64(5), line.Amount)
	require.Equal(t, int64(50), line.Subtotal)

	var order models.Order
	require.NoError(t, env.db.First(&order, line.OrderID).Error)
	require.Equal(t, int64(50), order.Total)
}

func TestDeleteOrderLineHandler(t *testing.T) {
	env := newOrderEnv(t)

	p := models.Product{Name: "test", Price: 10, Stock: 5}
	require.NoError(t, env.db.Create(&p).Error)

	payload := map[string]any{
		"status": true,
		"lines":  []map[string]any{{"product_id": p.ID, "amount": 3}},
	}
	_, c := env.jsonRequest(t, http.MethodPost, "/api/v1/orders", payload, 1)
	require.NoError(t, env.h.CreateOrder(c))

	rec, c := env.jsonRequest(t, http.MethodDelete, "/api/v1/lines/1", nil, 1)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.h.DeleteOrderLine(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var got models.Product
	require.NoError(t, env.db.First(&got, p.ID).Error)
	require.Equal(t, int64(5), got.Stock)
}

func TestGetOrderHandlerNotFound(t *testing.T) {
	env := newOrderEnv(t)

	_, c := env.jsonRequest(t, http.MethodGet, "/api/v1/orders/9", nil, 1)
	c.SetParamNames("id")
	c.SetParamValues("9")

	err := env.h.GetOrder(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)
}
