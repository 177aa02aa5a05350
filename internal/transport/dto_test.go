package transport

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/store_rest/internal/models"
)

func product(id uint, price string) *models.Product {
	return &models.Product{ID: id, Name: "p", Description: "d", Price: decimal.RequireFromString(price)}
}

func TestToOrder_Totals(t *testing.T) {
	o := models.Order{ID: 1, UserID: 9, Items: []models.OrderItem{
		{ID: 1, OrderID: 1, ProductID: 1, Product: product(1, "5.5"), Quantity: 5, Base: models.Base{Active: true}},
		{ID: 2, OrderID: 1, ProductID: 2, Product: product(2, "4.51"), Quantity: 10, Base: models.Base{Active: true}},
	}}

	resp := ToOrder(o)
	require.NotNil(t, resp.OrderTotal)
	assert.Equal(t, "72.60", *resp.OrderTotal)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "27.50", resp.Items[0].ItemTotal)
	assert.Equal(t, "45.10", resp.Items[1].ItemTotal)
}

func TestToOrder_EmptyHasNullTotal(t *testing.T) {
	b, err := json.Marshal(ToOrder(models.Order{ID: 3, UserID: 1}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"user":1,"items":[],"order_total":null}`, string(b))
}

func TestToUser(t *testing.T) {
	bd := time.Date(1990, 9, 19, 0, 0, 0, 0, time.UTC)
	u := ToUser(models.User{ID: 4, Email: "a@example.com", PasswordHash: "secret", BirthDate: &bd})

	require.NotNil(t, u.BirthDate)
	assert.Equal(t, "1990-09-19", *u.BirthDate)

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
}

func TestProductRequest_PriceForms(t *testing.T) {
	for _, body := range []string{`{"price":"5.50"}`, `{"price":5.50}`} {
		var req ProductRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req))
		require.NotNil(t, req.Price)
		assert.Equal(t, "5.50", ToProduct(models.Product{Price: *req.Price}).Price)
	}

	var missing ProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x"}`), &missing))
	assert.Nil(t, missing.Price)
}
