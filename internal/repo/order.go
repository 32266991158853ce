package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/avdeyev/webshop/internal/models"
)

type OrderRepo struct {
	DB *gorm.DB
}

func (r *OrderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Create(o).Error
}

func (r *OrderRepo) ByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) ByUser(ctx context.Context, userID uint, offset, limit int) ([]models.Order, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrderRepo) Save(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Save(o).Error
}

func (r *OrderRepo) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Order{}, id).Error
}

func (r *OrderRepo) AddToTotal(ctx context.Context, id uint, delta int64) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		UpdateColumn("total", gorm.Expr("total + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type OrderLineRepo struct {
	DB *gorm.DB
}

func (r *OrderLineRepo) CreateBatch(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&lines).Error
}

func (r *OrderLineRepo) ByID(ctx context.Context, id uint) (*models.OrderLine, error) {
	var l models.OrderLine
	if err := r.DB.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *OrderLineRepo) ByOrder(ctx context.Context, orderID uint) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *OrderLineRepo) Save(ctx context.Context, l *models.OrderLine) error {
	return r.DB.WithContext(ctx).Save(l).Error
}

func (r *OrderLineRepo) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.OrderLine{}, id).Error
}
