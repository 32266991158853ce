package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/avdeyev/webshop/internal/models"
)

// AdjustLine changes the quantity of one existing line. Stock is checked
// only when the quantity grows; decreases always succeed. The subtotal is
// recomputed from the line's purchase-time unit price, never from the
// product's current price, and the delta is applied to the parent order's
// total as a relative increment.
func (s *Service) AdjustLine(ctx context.Context, lineID uint, newAmount int64) (*models.OrderLine, error) {
	if newAmount <= 0 {
		return nil, fmt.Errorf("%w: amount must be > 0", ErrValidation)
	}

	line, err := s.Lines.ByID(ctx, lineID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id=%d", ErrOrderLineNotFound, lineID)
	}
	if err != nil {
		return nil, err
	}

	quantityDelta := newAmount - line.Amount
	if quantityDelta == 0 {
		return line, nil
	}

	if quantityDelta > 0 {
		p, err := s.Products.ByID(ctx, line.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id=%d", ErrProductNotFound, line.ProductID)
		}
		if err != nil {
			return nil, err
		}
		if p.Stock < quantityDelta {
			return nil, &InsufficientStockError{ProductID: p.ID, Available: p.Stock, Requested: quantityDelta}
		}
	}

	if _, err := s.Products.AdjustStock(ctx, line.ProductID, -quantityDelta); err != nil {
		return nil, err
	}

	oldSubtotal := line.Subtotal
	line.Amount = newAmount
	line.Subtotal = newAmount * line.UnitPrice
	if err := s.Lines.Save(ctx, line); err != nil {
		return nil, err
	}

	if err := s.Orders.AddToTotal(ctx, line.OrderID, line.Subtotal-oldSubtotal); err != nil {
		return nil, err
	}

	return line, nil
}

// RemoveLine deletes one line, returning its quantity to stock and taking
// its subtotal out of the parent order's total.
func (s *Service) RemoveLine(ctx context.Context, lineID uint) error {
	line, err := s.Lines.ByID(ctx, lineID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: id=%d", ErrOrderLineNotFound, lineID)
	}
	if err != nil {
		return err
	}

	if _, err := s.Products.AdjustStock(ctx, line.ProductID, line.Amount); err != nil {
		return err
	}
	if err := s.Orders.AddToTotal(ctx, line.OrderID, -line.Subtotal); err != nil {
		return err
	}
	return s.Lines.Delete(ctx, line.ID)
}
