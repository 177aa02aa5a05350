// Package domain holds the derived values computed over loaded orders.
// Totals are never stored; they are recomputed from the item rows on every read.
package domain

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/store_rest/internal/models"
)

var HighValueThreshold = decimal.RequireFromString("100.00")

// ItemTotal is price × quantity. It relies on it.Product being loaded; every
// repo read that returns items preloads it, and a missing product counts as zero.
func ItemTotal(it models.OrderItem) decimal.Decimal {
	if it.Product == nil {
		return decimal.Zero
	}
	return it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func activeItems(o models.Order) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		if it.Active {
			out = append(out, it)
		}
	}
	return out
}

func ItemCount(o models.Order) int {
	return len(activeItems(o))
}

// OrderTotal is invalid (JSON null) for an order with no items.
func OrderTotal(o models.Order) decimal.NullDecimal {
	items := activeItems(o)
	if len(items) == 0 {
		return decimal.NullDecimal{}
	}
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(ItemTotal(it))
	}
	return decimal.NullDecimal{Decimal: sum, Valid: true}
}

// IsHighValueMultiItem requires both a total strictly above the threshold
// and strictly more than one item.
func IsHighValueMultiItem(o models.Order) bool {
	if ItemCount(o) <= 1 {
		return false
	}
	total := OrderTotal(o)
	return total.Valid && total.Decimal.GreaterThan(HighValueThreshold)
}

func HighValueMultiItemOrders(orders []models.Order) []models.Order {
	out := make([]models.Order, 0)
	for _, o := range orders {
		if IsHighValueMultiItem(o) {
			out = append(out, o)
		}
	}
	return out
}

func ProductsInHighValueOrders(products []models.Product, orders []models.Order) []models.Product {
	referenced := make(map[uint]struct{})
	for _, o := range HighValueMultiItemOrders(orders) {
		for _, it := range activeItems(o) {
			referenced[it.ProductID] = struct{}{}
		}
	}

	out := make([]models.Product, 0, len(referenced))
	seen := make(map[uint]struct{}, len(referenced))
	for _, p := range products {
		if _, ok := referenced[p.ID]; !ok {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
