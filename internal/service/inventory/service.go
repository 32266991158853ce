// Package inventory keeps product stock, order totals and line subtotals
// mutually consistent as orders are created, confirmed, cancelled and
// their lines adjusted or removed.
//
// Every stock and total mutation goes through the stores' relative
// adjustment operations. Individual store writes are atomic; multi-entity
// sequences are not wrapped in a transaction, so a store failure in the
// middle of a status-transition walk can leave some products adjusted and
// others not. Order creation closes that gap for itself by validating all
// lines before committing any stock write.
package inventory

import (
	"github.com/avdeyev/webshop/internal/repo"
)

type Service struct {
	Products repo.ProductStore
	Orders   repo.OrderStore
	Lines    repo.OrderLineStore
}

func New(products repo.ProductStore, orders repo.OrderStore, lines repo.OrderLineStore) *Service {
	return &Service{Products: products, Orders: orders, Lines: lines}
}

// LineRequest is one requested product-quantity pair. Any client-supplied
// price is ignored; subtotals always come from the product's stored price.
type LineRequest struct {
	ProductID uint  `json:"product_id"`
	Amount    int64 `json:"amount"`
}

// OrderPatch carries the caller's requested order field changes. Total and
// user are server-owned and not patchable.
type OrderPatch struct {
	Status *bool `json:"status"`
}
