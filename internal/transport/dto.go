package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/store_rest/internal/domain"
	"github.com/Skotchmaster/store_rest/internal/models"
	"github.com/Skotchmaster/store_rest/internal/util"
)

const DateLayout = "2006-01-02"

// UserRequest is used for registration and for full updates of a user.
type UserRequest struct {
	Email                string  `json:"email"`
	Password             string  `json:"password"`
	PasswordConfirmation string  `json:"password_confirmation"`
	BirthDate            *string `json:"birth_date"`
}

type ProductRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

type OrderRequest struct {
	User *uint `json:"user"`
}

type OrderItemRequest struct {
	Order    *uint `json:"order"`
	Product  *uint `json:"product"`
	Quantity *int  `json:"quantity"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	BirthDate *string   `json:"birth_date"`
	IsStaff   bool      `json:"is_staff"`
	Created   time.Time `json:"created"`
	Updated   time.Time `json:"updated"`
}

type ProductResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

type OrderItemResponse struct {
	ID        uint   `json:"id"`
	Order     uint   `json:"order"`
	Product   uint   `json:"product"`
	Quantity  int    `json:"quantity"`
	ItemTotal string `json:"item_total"`
}

type OrderResponse struct {
	ID         uint                `json:"id"`
	User       uint                `json:"user"`
	Items      []OrderItemResponse `json:"items"`
	OrderTotal *string             `json:"order_total"`
}

type ListResponse[T any] struct {
	Data []T       `json:"data"`
	Meta util.Meta `json:"meta"`
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func ToUser(u models.User) UserResponse {
	resp := UserResponse{
		ID:      u.ID,
		Email:   u.Email,
		IsStaff: u.IsStaff,
		Created: u.Created,
		Updated: u.Updated,
	}
	if u.BirthDate != nil {
		s := u.BirthDate.Format(DateLayout)
		resp.BirthDate = &s
	}
	return resp
}

func ToProduct(p models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.Price),
	}
}

func ToOrderItem(it models.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:        it.ID,
		Order:     it.OrderID,
		Product:   it.ProductID,
		Quantity:  it.Quantity,
		ItemTotal: money(domain.ItemTotal(it)),
	}
}

func ToOrder(o models.Order) OrderResponse {
	resp := OrderResponse{
		ID:    o.ID,
		User:  o.UserID,
		Items: make([]OrderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		if it.Active {
			resp.Items = append(resp.Items, ToOrderItem(it))
		}
	}
	if total := domain.OrderTotal(o); total.Valid {
		s := money(total.Decimal)
		resp.OrderTotal = &s
	}
	return resp
}

// Map converts a slice of models with one of the To* functions.
func Map[M, R any](in []M, fn func(M) R) []R {
	out := make([]R, 0, len(in))
	for _, m := range in {
		out = append(out, fn(m))
	}
	return out
}
