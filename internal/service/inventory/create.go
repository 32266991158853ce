package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/avdeyev/webshop/internal/models"
)

type reservation struct {
	product *models.Product
	amount  int64
}

// CreateOrder validates and reserves stock for every requested line, then
// persists the order with a server-computed total and its lines in one
// batch. Two-phase: no stock is written until the whole request validates,
// so a failed request leaves nothing reserved. Later lines see quantities
// already claimed by earlier lines of the same request, so a request that
// oversubscribes one product across two lines fails on the second line.
func (s *Service) CreateOrder(ctx context.Context, userID uint, status bool, lines []LineRequest) (*models.Order, []models.OrderLine, error) {
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one line required", ErrValidation)
	}

	reserved := make(map[uint]int64, len(lines))
	plan := make([]reservation, 0, len(lines))
	var total int64

	for i, l := range lines {
		if l.Amount <= 0 {
			return nil, nil, fmt.Errorf("%w: line %d: amount must be > 0", ErrValidation, i)
		}

		p, err := s.Products.ByID(ctx, l.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: id=%d", ErrProductNotFound, l.ProductID)
		}
		if err != nil {
			return nil, nil, err
		}

		available := p.Stock - reserved[p.ID]
		if available < l.Amount {
			return nil, nil, &InsufficientStockError{ProductID: p.ID, Available: available, Requested: l.Amount}
		}
		reserved[p.ID] += l.Amount

		total += p.Price * l.Amount
		plan = append(plan, reservation{product: p, amount: l.Amount})
	}

	for id, qty := range reserved {
		if _, err := s.Products.AdjustStock(ctx, id, -qty); err != nil {
			return nil, nil, err
		}
	}

	order := &models.Order{
		UserID:    userID,
		Total:     total,
		Status:    status,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.Orders.Create(ctx, order); err != nil {
		return nil, nil, err
	}

	out := make([]models.OrderLine, 0, len(plan))
	for _, r := range plan {
		out = append(out, models.OrderLine{
			OrderID:   order.ID,
			ProductID: r.product.ID,
			Amount:    r.amount,
			UnitPrice: r.product.Price,
			Subtotal:  r.amount * r.product.Price,
		})
	}
	if err := s.Lines.CreateBatch(ctx, out); err != nil {
		return nil, nil, err
	}

	return order, out, nil
}
