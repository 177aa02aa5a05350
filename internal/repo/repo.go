package repo

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrDuplicate = errors.New("duplicate")

type GormRepo struct {
	DB *gorm.DB
}

func active(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// deactivate flips active to false on one active row of model's table.
func deactivate(db *gorm.DB, model any, id uint) error {
	res := db.Model(model).Where("id = ? AND active = ?", id, true).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
