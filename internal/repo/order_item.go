package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/store_rest/internal/models"
)

func (r *GormRepo) GetItem(ctx context.Context, id uint) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := active(r.DB.WithContext(ctx)).
		Preload("Order").
		Preload("Product").
		Where("id = ?", id).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) ListItems(ctx context.Context, offset, limit int) (int64, []models.OrderItem, error) {
	return r.listItems(ctx, active(r.DB.WithContext(ctx)), offset, limit)
}

// ListItemsByUser pages over the active items of the user's active orders.
func (r *GormRepo) ListItemsByUser(ctx context.Context, userID uint, offset, limit int) (int64, []models.OrderItem, error) {
	orders := active(r.DB.WithContext(ctx).Model(&models.Order{})).Select("id").Where("user_id = ?", userID)
	return r.listItems(ctx, active(r.DB.WithContext(ctx)).Where("order_id IN (?)", orders), offset, limit)
}

func (r *GormRepo) listItems(ctx context.Context, q *gorm.DB, offset, limit int) (int64, []models.OrderItem, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Model(&models.OrderItem{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.OrderItem, 0, limit)
	if err := q.Session(&gorm.Session{}).
		Preload("Product").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func itemPairTaken(db *gorm.DB, orderID, productID, exceptID uint) (bool, error) {
	var count int64
	q := db.Model(&models.OrderItem{}).Where("order_id = ? AND product_id = ?", orderID, productID)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ItemPairTaken counts inactive rows as well since the unique index spans them.
func (r *GormRepo) ItemPairTaken(ctx context.Context, orderID, productID, exceptID uint) (bool, error) {
	return itemPairTaken(r.DB.WithContext(ctx), orderID, productID, exceptID)
}

// CreateItem checks the (order, product) pair and inserts in one transaction;
// the unique index still has the last word under concurrent inserts.
func (r *GormRepo) CreateItem(ctx context.Context, it *models.OrderItem) error {
	it.Active = true
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := itemPairTaken(tx, it.OrderID, it.ProductID, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicate
		}
		return translate(tx.Omit(clause.Associations).Create(it).Error)
	})
}

func (r *GormRepo) SaveItem(ctx context.Context, it *models.OrderItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := itemPairTaken(tx, it.OrderID, it.ProductID, it.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicate
		}
		return translate(tx.Omit(clause.Associations).Save(it).Error)
	})
}

func (r *GormRepo) DeactivateItem(ctx context.Context, id uint) error {
	return deactivate(r.DB.WithContext(ctx), &models.OrderItem{}, id)
}
