package access

import "github.com/Skotchmaster/store_rest/internal/models"

type Kind int

const (
	kindRegistration Kind = iota
	KindUser
	KindProduct
	KindOrder
	KindOrderItem
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindProduct:
		return "product"
	case KindOrder:
		return "order"
	case KindOrderItem:
		return "order_item"
	}
	return "registration"
}

// Target is a closed variant: exactly one of the entity pointers matching kind
// may be set, and only the constructors below build one. A nil pointer on a
// single-entity target means no active row has that id.
type Target struct {
	kind       Kind
	collection bool
	id         uint

	user    *models.User
	product *models.Product
	order   *models.Order
	item    *models.OrderItem
}

func Registration() Target { return Target{kind: kindRegistration} }

func Collection(k Kind) Target { return Target{kind: k, collection: true} }

func UserTarget(id uint, u *models.User) Target {
	return Target{kind: KindUser, id: id, user: u}
}

func ProductTarget(id uint, p *models.Product) Target {
	return Target{kind: KindProduct, id: id, product: p}
}

func OrderTarget(id uint, o *models.Order) Target {
	return Target{kind: KindOrder, id: id, order: o}
}

// OrderItemTarget expects it.Order to be loaded; ownership is resolved through it.
func OrderItemTarget(id uint, it *models.OrderItem) Target {
	return Target{kind: KindOrderItem, id: id, item: it}
}

func (t Target) Kind() Kind { return t.kind }

func (t Target) ID() uint { return t.id }

func (t Target) IsCollection() bool { return t.collection }

func (t Target) Exists() bool {
	switch t.kind {
	case KindUser:
		return t.user != nil
	case KindProduct:
		return t.product != nil
	case KindOrder:
		return t.order != nil
	case KindOrderItem:
		return t.item != nil
	}
	return false
}

// Owner resolves the user a target belongs to. Order items delegate to their
// order, so moving an item between orders changes its owner with it.
func Owner(t Target) (uint, bool) {
	switch t.kind {
	case KindUser:
		if t.user == nil {
			return 0, false
		}
		return t.user.ID, true
	case KindOrder:
		if t.order == nil {
			return 0, false
		}
		return t.order.UserID, true
	case KindOrderItem:
		if t.item == nil || t.item.Order == nil {
			return 0, false
		}
		return Owner(OrderTarget(t.item.OrderID, t.item.Order))
	}
	return 0, false
}

func IsOwner(pr Principal, t Target) bool {
	if !pr.Authenticated {
		return false
	}
	owner, ok := Owner(t)
	return ok && owner == pr.UserID
}
