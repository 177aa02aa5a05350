package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/store_rest/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	u.Active = true
	return translate(r.DB.WithContext(ctx).Omit(clause.Associations).Create(u).Error)
}

func (r *GormRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := active(r.DB.WithContext(ctx)).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := active(r.DB.WithContext(ctx)).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailTaken looks at every row, inactive ones included, because the unique
// index does too.
func (r *GormRepo) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) ListUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	var total int64
	if err := active(r.DB.WithContext(ctx).Model(&models.User{})).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.User, 0, limit)
	if err := active(r.DB.WithContext(ctx)).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) SaveUser(ctx context.Context, u *models.User) error {
	return translate(r.DB.WithContext(ctx).Omit(clause.Associations).Save(u).Error)
}

func (r *GormRepo) DeactivateUser(ctx context.Context, id uint) error {
	return deactivate(r.DB.WithContext(ctx), &models.User{}, id)
}
