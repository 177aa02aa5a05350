package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Base carries the bookkeeping columns shared by every table. Rows are never
// removed; Active=false hides them from reads.
type Base struct {
	Active  bool      `gorm:"not null;default:true;index" json:"-"`
	Created time.Time `gorm:"column:created;autoCreateTime" json:"created"`
	Updated time.Time `gorm:"column:updated;autoUpdateTime" json:"updated"`
}

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"             json:"id"`
	Email        string     `gorm:"size:254;uniqueIndex;not null"        json:"email"`
	PasswordHash string     `gorm:"column:password;size:128;not null"    json:"-"`
	BirthDate    *time.Time `gorm:"type:date"                            json:"birth_date"`
	IsStaff      bool       `gorm:"not null;default:false"               json:"-"`
	IsSuperuser  bool       `gorm:"not null;default:false"               json:"-"`
	Base
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"                 json:"id"`
	Name        string          `gorm:"size:255;not null"                        json:"name"`
	Description string          `gorm:"type:text;not null"                       json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(7,2);not null;check:price>=0" json:"price"`
	Base
}

type Order struct {
	ID     uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint        `gorm:"index;not null"           json:"user"`
	User   *User       `gorm:"foreignKey:UserID"        json:"-"`
	Items  []OrderItem `gorm:"foreignKey:OrderID"       json:"items"`
	Base
}

type OrderItem struct {
	ID        uint     `gorm:"primaryKey;autoIncrement"                    json:"id"`
	OrderID   uint     `gorm:"not null;uniqueIndex:idx_order_product"      json:"order"`
	Order     *Order   `gorm:"foreignKey:OrderID"                          json:"-"`
	ProductID uint     `gorm:"not null;uniqueIndex:idx_order_product"      json:"product"`
	Product   *Product `gorm:"foreignKey:ProductID"                        json:"-"`
	Quantity  int      `gorm:"not null;check:quantity>=1"                  json:"quantity"`
	Base
}

// All lists the tables in dependency order, for AutoMigrate.
func All() []any {
	return []any{&User{}, &Product{}, &Order{}, &OrderItem{}}
}
