package repo

import (
	"context"
	"strings"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/store_rest/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := active(r.DB.WithContext(ctx)).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := active(r.DB.WithContext(ctx).Model(&models.Product{})).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := active(r.DB.WithContext(ctx)).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) ListAllProducts(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := active(r.DB.WithContext(ctx)).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	items := make([]models.Product, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	if err := active(r.DB.WithContext(ctx)).Where("id IN ?", ids).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	p.Active = true
	return translate(r.DB.WithContext(ctx).Omit(clause.Associations).Create(p).Error)
}

func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	return translate(r.DB.WithContext(ctx).Omit(clause.Associations).Save(p).Error)
}

func (r *GormRepo) DeactivateProduct(ctx context.Context, id uint) error {
	return deactivate(r.DB.WithContext(ctx), &models.Product{}, id)
}

// SearchProducts is a case-insensitive substring match used when no search
// index is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	where := "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)"

	var total int64
	if err := active(r.DB.WithContext(ctx).Model(&models.Product{})).
		Where(where, like, like).
		Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := active(r.DB.WithContext(ctx)).
		Where(where, like, like).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
