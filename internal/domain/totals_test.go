package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/store_rest/internal/models"
)

func product(id uint, price string) *models.Product {
	return &models.Product{ID: id, Price: decimal.RequireFromString(price), Base: models.Base{Active: true}}
}

func item(orderID uint, p *models.Product, qty int) models.OrderItem {
	return models.OrderItem{OrderID: orderID, ProductID: p.ID, Product: p, Quantity: qty, Base: models.Base{Active: true}}
}

func order(id uint, items ...models.OrderItem) models.Order {
	return models.Order{ID: id, UserID: 1, Items: items, Base: models.Base{Active: true}}
}

func TestOrderTotal_NoItemsIsNull(t *testing.T) {
	t.Parallel()

	total := OrderTotal(order(1))
	assert.False(t, total.Valid)
}

func TestOrderTotal_ExactSum(t *testing.T) {
	t.Parallel()

	p1 := product(1, "5.50")
	p2 := product(2, "4.51")
	total := OrderTotal(order(1, item(1, p1, 5), item(1, p2, 10)))

	require.True(t, total.Valid)
	assert.Equal(t, "72.60", total.Decimal.StringFixed(2))
	assert.True(t, total.Decimal.Equal(decimal.RequireFromString("72.6")))
}

func TestOrderTotal_ZeroPriceIsZeroNotNull(t *testing.T) {
	t.Parallel()

	total := OrderTotal(order(1, item(1, product(1, "0.00"), 3)))
	require.True(t, total.Valid)
	assert.True(t, total.Decimal.IsZero())
}

func TestOrderTotal_IgnoresInactiveItems(t *testing.T) {
	t.Parallel()

	gone := item(1, product(2, "99.99"), 1)
	gone.Active = false
	o := order(1, item(1, product(1, "1.10"), 2), gone)

	assert.Equal(t, "2.20", OrderTotal(o).Decimal.StringFixed(2))
	assert.Equal(t, 1, ItemCount(o))

	onlyGone := order(2, gone)
	assert.False(t, OrderTotal(onlyGone).Valid)
}

func TestOrderTotal_NoFloatDrift(t *testing.T) {
	t.Parallel()

	p := product(1, "0.10")
	items := make([]models.OrderItem, 0, 10)
	for i := 0; i < 10; i++ {
		pp := *p
		pp.ID = uint(i + 1)
		items = append(items, item(1, &pp, 1))
	}
	assert.Equal(t, "1", OrderTotal(order(1, items...)).Decimal.String())
}

func TestItemTotal(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "45.10", ItemTotal(item(1, product(2, "4.51"), 10)).StringFixed(2))
	assert.True(t, ItemTotal(models.OrderItem{Quantity: 3}).IsZero())
}

func TestHighValueMultiItemOrders(t *testing.T) {
	t.Parallel()

	single150 := order(1, item(1, product(1, "150.00"), 1))
	exactly100 := order(2, item(2, product(2, "50.00"), 1), item(2, product(3, "50.00"), 1))
	above100 := order(3, item(3, product(4, "50.00"), 1), item(3, product(5, "50.01"), 1))
	empty := order(4)
	small := order(5, item(5, product(6, "1.00"), 1), item(5, product(7, "1.00"), 1))

	got := HighValueMultiItemOrders([]models.Order{single150, exactly100, above100, empty, small})
	require.Len(t, got, 1)
	assert.Equal(t, uint(3), got[0].ID)
}

func TestHighValueMultiItemOrders_Empty(t *testing.T) {
	t.Parallel()

	got := HighValueMultiItemOrders(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestProductsInHighValueOrders(t *testing.T) {
	t.Parallel()

	cheap := product(1, "5.50")
	pricey := product(2, "101.50")
	lonely := product(3, "200.00")
	unused := product(4, "1.00")

	orders := []models.Order{
		order(1, item(1, cheap, 1), item(1, pricey, 1)),
		order(2, item(2, lonely, 1)),
		order(3, item(3, cheap, 2), item(3, pricey, 1)),
	}
	products := []models.Product{*cheap, *pricey, *lonely, *unused}

	got := ProductsInHighValueOrders(products, orders)
	ids := make([]uint, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []uint{1, 2}, ids)
}

func TestProductsInHighValueOrders_NoDuplicates(t *testing.T) {
	t.Parallel()

	a := product(1, "60.00")
	b := product(2, "60.00")
	orders := []models.Order{order(1, item(1, a, 1), item(1, b, 1))}

	got := ProductsInHighValueOrders([]models.Product{*a, *a, *b}, orders)
	assert.Len(t, got, 2)
}
