package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/store_rest/internal/access"
	"github.com/Skotchmaster/store_rest/internal/es"
	"github.com/Skotchmaster/store_rest/internal/idempotency"
	"github.com/Skotchmaster/store_rest/internal/models"
	"github.com/Skotchmaster/store_rest/internal/mykafka"
	"github.com/Skotchmaster/store_rest/internal/repo"
	"github.com/Skotchmaster/store_rest/internal/testkit"
	"github.com/Skotchmaster/store_rest/pkg/passwd"
)

type recorder struct {
	mu     sync.Mutex
	events []mykafka.Event
}

func (r *recorder) PublishEvent(_ context.Context, _ string, e mykafka.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type env struct {
	repo    *repo.GormRepo
	events  *recorder
	users   *UserService
	catalog *CatalogService
	orders  *OrderService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	r := &repo.GormRepo{DB: testkit.NewDB(t)}
	rec := &recorder{}
	return &env{
		repo:   r,
		events: rec,
		users:  &UserService{Repo: r, Passwords: passwd.Default(), Events: rec},
		catalog: &CatalogService{
			Repo:   r,
			Index:  es.Nop{},
			Events: rec,
		},
		orders: &OrderService{Repo: r, Idempotency: idempotency.NewMemory(), Events: rec},
	}
}

// seedUser inserts directly through the repository, skipping bcrypt.
func (e *env) seedUser(t *testing.T, email string, staff bool) access.Principal {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", IsStaff: staff}
	require.NoError(t, e.repo.CreateUser(context.Background(), u))
	return access.User(u.ID, staff)
}

func (e *env) seedProduct(t *testing.T, price string) *models.Product {
	t.Helper()
	p := &models.Product{Name: "product " + price, Description: "d", Price: decimal.RequireFromString(price)}
	require.NoError(t, e.repo.CreateProduct(context.Background(), p))
	return p
}

func (e *env) seedOrder(t *testing.T, owner access.Principal) *models.Order {
	t.Helper()
	o := &models.Order{UserID: owner.UserID}
	require.NoError(t, e.repo.CreateOrder(context.Background(), o))
	return o
}

func (e *env) seedItem(t *testing.T, orderID, productID uint, qty int) *models.OrderItem {
	t.Helper()
	it := &models.OrderItem{OrderID: orderID, ProductID: productID, Quantity: qty}
	require.NoError(t, e.repo.CreateItem(context.Background(), it))
	return it
}

func ptr[T any](v T) *T { return &v }

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	require.ErrorIs(t, err, ErrValidation)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, field, ve.Field)
}
