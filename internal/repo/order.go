package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/store_rest/internal/models"
)

// withItems preloads the active items of each order together with their products,
// which is everything the totals need.
func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", "active = ?", true, func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Preload("Items.Product")
}

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	o.Active = true
	return translate(r.DB.WithContext(ctx).Omit(clause.Associations).Create(o).Error)
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := withItems(active(r.DB.WithContext(ctx))).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, offset, limit int) (int64, []models.Order, error) {
	return r.listOrders(ctx, active(r.DB.WithContext(ctx)), offset, limit)
}

func (r *GormRepo) listOrders(ctx context.Context, q *gorm.DB, offset, limit int) (int64, []models.Order, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Model(&models.Order{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Order, 0, limit)
	if err := withItems(q.Session(&gorm.Session{})).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// MultiItemOrders returns active orders holding more than one active item. The
// monetary threshold is applied by the caller on exact decimals.
func (r *GormRepo) MultiItemOrders(ctx context.Context) ([]models.Order, error) {
	multi := r.DB.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("order_id").
		Where("active = ?", true).
		Group("order_id").
		Having("COUNT(*) > ?", 1)

	var orders []models.Order
	if err := withItems(active(r.DB.WithContext(ctx))).
		Where("id IN (?)", multi).
		Order("id ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) SaveOrder(ctx context.Context, o *models.Order) error {
	return translate(r.DB.WithContext(ctx).Omit(clause.Associations).Save(o).Error)
}

func (r *GormRepo) DeactivateOrder(ctx context.Context, id uint) error {
	return deactivate(r.DB.WithContext(ctx), &models.Order{}, id)
}
