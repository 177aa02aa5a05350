package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/store_rest/internal/models"
)

var (
	anon  = Anonymous()
	alice = User(1, false)
	bob   = User(2, false)
	admin = User(9, true)
)

func aliceUser() *models.User { return &models.User{ID: 1} }

func aliceOrder() *models.Order { return &models.Order{ID: 10, UserID: 1} }

func aliceItem() *models.OrderItem {
	return &models.OrderItem{ID: 100, OrderID: 10, Order: aliceOrder(), ProductID: 5, Quantity: 1}
}

func TestDecide_Table(t *testing.T) {
	t.Parallel()

	product := &models.Product{ID: 5}

	cases := []struct {
		name   string
		who    Principal
		action Action
		target Target
		want   Decision
	}{
		{"anyone registers", anon, ActionRegister, Registration(), Allow},
		{"user registers", alice, ActionRegister, Registration(), Allow},

		{"anon reads user", anon, ActionRead, UserTarget(1, aliceUser()), Deny},
		{"self reads user", alice, ActionRead, UserTarget(1, aliceUser()), Allow},
		{"self updates user", alice, ActionUpdate, UserTarget(1, aliceUser()), Allow},
		{"other reads user", bob, ActionRead, UserTarget(1, aliceUser()), Deny},
		{"other updates user", bob, ActionUpdate, UserTarget(1, aliceUser()), Deny},
		{"staff reads user", admin, ActionRead, UserTarget(1, aliceUser()), Allow},
		{"staff updates user", admin, ActionUpdate, UserTarget(1, aliceUser()), Allow},

		{"anon lists users", anon, ActionList, Collection(KindUser), Deny},
		{"user lists users", alice, ActionList, Collection(KindUser), Deny},
		{"staff lists users", admin, ActionList, Collection(KindUser), Allow},

		{"anon lists products", anon, ActionList, Collection(KindProduct), Deny},
		{"user lists products", alice, ActionList, Collection(KindProduct), Deny},
		{"user creates product", alice, ActionCreate, Collection(KindProduct), Deny},
		{"staff creates product", admin, ActionCreate, Collection(KindProduct), Allow},

		{"anon reads product", anon, ActionRead, ProductTarget(5, product), Deny},
		{"user reads product", alice, ActionRead, ProductTarget(5, product), Allow},
		{"user updates product", alice, ActionUpdate, ProductTarget(5, product), Deny},
		{"user deletes product", alice, ActionDelete, ProductTarget(5, product), Deny},
		{"staff updates product", admin, ActionUpdate, ProductTarget(5, product), Allow},

		{"user lists orders", alice, ActionList, Collection(KindOrder), Deny},
		{"user creates order", alice, ActionCreate, Collection(KindOrder), Deny},
		{"staff creates order", admin, ActionCreate, Collection(KindOrder), Allow},
		{"anon reads order", anon, ActionRead, OrderTarget(10, aliceOrder()), Deny},
		{"owner reads order", alice, ActionRead, OrderTarget(10, aliceOrder()), Allow},
		{"owner updates order", alice, ActionUpdate, OrderTarget(10, aliceOrder()), Allow},
		{"other reads order", bob, ActionRead, OrderTarget(10, aliceOrder()), Deny},
		{"staff reads order", admin, ActionRead, OrderTarget(10, aliceOrder()), Allow},

		{"user lists items", alice, ActionList, Collection(KindOrderItem), Deny},
		{"staff creates item", admin, ActionCreate, Collection(KindOrderItem), Allow},
		{"anon reads item", anon, ActionRead, OrderItemTarget(100, aliceItem()), Deny},
		{"owner reads item", alice, ActionRead, OrderItemTarget(100, aliceItem()), Allow},
		{"other updates item", bob, ActionUpdate, OrderItemTarget(100, aliceItem()), Deny},
		{"staff updates item", admin, ActionUpdate, OrderItemTarget(100, aliceItem()), Allow},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Decide(tc.who, tc.action, tc.target))
		})
	}
}

func TestDecide_AuthorizationPrecedesExistence(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Deny, Decide(anon, ActionRead, UserTarget(100, nil)))
	assert.Equal(t, Deny, Decide(alice, ActionRead, UserTarget(100, nil)))
	assert.Equal(t, NotFound, Decide(admin, ActionRead, UserTarget(100, nil)))

	// the caller's own id, e.g. after deactivation
	assert.Equal(t, NotFound, Decide(alice, ActionRead, UserTarget(1, nil)))

	assert.Equal(t, Deny, Decide(alice, ActionRead, OrderTarget(77, nil)))
	assert.Equal(t, NotFound, Decide(admin, ActionRead, OrderTarget(77, nil)))

	assert.Equal(t, Deny, Decide(alice, ActionUpdate, OrderItemTarget(77, nil)))
	assert.Equal(t, NotFound, Decide(admin, ActionUpdate, OrderItemTarget(77, nil)))

	assert.Equal(t, NotFound, Decide(alice, ActionRead, ProductTarget(77, nil)))
	assert.Equal(t, Deny, Decide(alice, ActionUpdate, ProductTarget(77, nil)))
	assert.Equal(t, Deny, Decide(anon, ActionRead, ProductTarget(77, nil)))
}

func TestOwner_IsTransitive(t *testing.T) {
	t.Parallel()

	it := aliceItem()
	owner, ok := Owner(OrderItemTarget(it.ID, it))
	assert.True(t, ok)
	assert.Equal(t, uint(1), owner)

	// Moving the item to bob's order moves ownership with it.
	it.OrderID = 11
	it.Order = &models.Order{ID: 11, UserID: 2}
	assert.False(t, IsOwner(alice, OrderItemTarget(it.ID, it)))
	assert.True(t, IsOwner(bob, OrderItemTarget(it.ID, it)))
}

func TestOwner_UnresolvedChain(t *testing.T) {
	t.Parallel()

	orphan := &models.OrderItem{ID: 1, OrderID: 10}
	_, ok := Owner(OrderItemTarget(1, orphan))
	assert.False(t, ok)
	assert.Equal(t, Deny, Decide(alice, ActionRead, OrderItemTarget(1, orphan)))

	_, ok = Owner(ProductTarget(5, &models.Product{ID: 5}))
	assert.False(t, ok)
	assert.False(t, IsOwner(anon, UserTarget(0, &models.User{})))
}

func TestPolicy_PublicCatalog(t *testing.T) {
	t.Parallel()

	open := Policy{PublicCatalog: true}
	closed := Policy{}

	assert.Equal(t, Allow, open.Decide(alice, ActionList, Collection(KindProduct)))
	assert.Equal(t, Deny, open.Decide(anon, ActionList, Collection(KindProduct)))
	assert.Equal(t, Deny, open.Decide(alice, ActionCreate, Collection(KindProduct)))
	assert.Equal(t, Deny, open.Decide(alice, ActionList, Collection(KindOrder)))
	assert.Equal(t, Deny, closed.Decide(alice, ActionList, Collection(KindProduct)))
}

func TestStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "deny", Deny.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "update", ActionUpdate.String())
	assert.Equal(t, "order_item", KindOrderItem.String())
}
