package repo

import (
	"context"

	"github.com/avdeyev/webshop/internal/models"
)

// Store contracts for the inventory core and handlers. Each method is a
// single-document operation, atomic at the store level; sequences of calls
// are not transactional.

type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	ByID(ctx context.Context, id uint) (*models.Product, error)
	List(ctx context.Context, offset, limit int) ([]models.Product, int64, error)
	Save(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uint) error
	// AdjustStock applies `stock = stock + delta` in one store write.
	// Never read-modify-write: that race-loses under concurrent adjustments.
	AdjustStock(ctx context.Context, id uint, delta int64) (*models.Product, error)
}

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	ByID(ctx context.Context, id uint) (*models.Order, error)
	ByUser(ctx context.Context, userID uint, offset, limit int) ([]models.Order, int64, error)
	Save(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, id uint) error
	// AddToTotal applies `total = total + delta` in one store write so that
	// concurrent adjustments to sibling lines of the same order compose.
	AddToTotal(ctx context.Context, id uint, delta int64) error
}

type OrderLineStore interface {
	CreateBatch(ctx context.Context, lines []models.OrderLine) error
	ByID(ctx context.Context, id uint) (*models.OrderLine, error)
	ByOrder(ctx context.Context, orderID uint) ([]models.OrderLine, error)
	Save(ctx context.Context, l *models.OrderLine) error
	Delete(ctx context.Context, id uint) error
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	ByID(ctx context.Context, id uint) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]models.User, int64, error)
	Delete(ctx context.Context, id uint) error
}
