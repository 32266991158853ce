package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/avdeyev/webshop/internal/models"
)

// UpdateOrder applies the requested field changes to an order. A
// confirmed→cancelled flip returns every line's quantity to stock; a
// cancelled→confirmed flip consumes it again. Same-status writes touch no
// stock. Reactivation validates availability for all lines before mutating
// anything, mirroring creation; the per-line stock writes themselves are
// independently atomic but the walk is not transactional.
func (s *Service) UpdateOrder(ctx context.Context, orderID uint, patch OrderPatch) (*models.Order, error) {
	order, err := s.Orders.ByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id=%d", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}

	if patch.Status == nil || *patch.Status == order.Status {
		return order, nil
	}

	lines, err := s.Lines.ByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	if *patch.Status {
		if err := s.reactivate(ctx, lines); err != nil {
			return nil, err
		}
	} else {
		if err := s.cancel(ctx, lines); err != nil {
			return nil, err
		}
	}

	order.Status = *patch.Status
	if err := s.Orders.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) cancel(ctx context.Context, lines []models.OrderLine) error {
	for _, l := range lines {
		if _, err := s.Products.AdjustStock(ctx, l.ProductID, l.Amount); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) reactivate(ctx context.Context, lines []models.OrderLine) error {
	need := make(map[uint]int64, len(lines))
	for _, l := range lines {
		need[l.ProductID] += l.Amount
	}

	for pid, qty := range need {
		p, err := s.Products.ByID(ctx, pid)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: id=%d", ErrProductNotFound, pid)
		}
		if err != nil {
			return err
		}
		if p.Stock < qty {
			return &InsufficientStockError{ProductID: pid, Available: p.Stock, Requested: qty}
		}
	}

	for pid, qty := range need {
		if _, err := s.Products.AdjustStock(ctx, pid, -qty); err != nil {
			return err
		}
	}
	return nil
}
