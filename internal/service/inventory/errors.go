package inventory

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation") // 400
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderLineNotFound = errors.New("order line not found")
)

type InsufficientStockError struct {
	ProductID uint
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: %d available, %d requested",
		e.ProductID, e.Available, e.Requested)
}
