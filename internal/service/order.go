package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Skotchmaster/store_rest/internal/access"
	"github.com/Skotchmaster/store_rest/internal/idempotency"
	"github.com/Skotchmaster/store_rest/internal/models"
	"github.com/Skotchmaster/store_rest/internal/mykafka"
	"github.com/Skotchmaster/store_rest/internal/repo"
	"github.com/Skotchmaster/store_rest/internal/transport"
	"github.com/Skotchmaster/store_rest/pkg/logging"
)

type OrderService struct {
	Repo        *repo.GormRepo
	Policy      access.Policy
	Idempotency idempotency.Store
	Events      mykafka.Publisher
}

func (s *OrderService) loadOrder(ctx context.Context, id uint) (*models.Order, error) {
	return found(s.Repo.GetOrder(ctx, id))
}

func (s *OrderService) loadItem(ctx context.Context, id uint) (*models.OrderItem, error) {
	return found(s.Repo.GetItem(ctx, id))
}

func (s *OrderService) GetOrder(ctx context.Context, pr access.Principal, id uint) (*models.Order, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.Policy, pr, access.ActionRead, access.OrderTarget(id, order)); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, pr access.Principal, offset, limit int) (int64, []models.Order, error) {
	if err := authorize(s.Policy, pr, access.ActionList, access.Collection(access.KindOrder)); err != nil {
		return 0, nil, err
	}
	return s.Repo.ListOrders(ctx, offset, limit)
}

// CreateOrder opens an empty order for req.User. A non-empty key makes retries
// return the order created by the first attempt instead of a new one.
func (s *OrderService) CreateOrder(ctx context.Context, pr access.Principal, req transport.OrderRequest, key string) (*models.Order, error) {
	if err := authorize(s.Policy, pr, access.ActionCreate, access.Collection(access.KindOrder)); err != nil {
		return nil, err
	}
	if key == "" || s.Idempotency == nil {
		return s.createOrder(ctx, req)
	}

	scoped := fmt.Sprintf("%d:%s", pr.UserID, key)
	id, replay, err := s.Idempotency.Reserve(ctx, scoped)
	if errors.Is(err, idempotency.ErrInFlight) {
		return nil, fmt.Errorf("%w: %v", ErrConflict, err)
	}
	if err != nil {
		return nil, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if replay {
		logging.FromContext(ctx).Info("idempotent_replay", "order_id", id)
		return s.GetOrder(ctx, pr, id)
	}

	order, err := s.createOrder(ctx, req)
	if err != nil {
		if rErr := s.Idempotency.Release(ctx, scoped); rErr != nil {
			logging.FromContext(ctx).Warn("idempotency_release_failed", "error", rErr)
		}
		return nil, err
	}
	if err := s.Idempotency.Complete(ctx, scoped, order.ID); err != nil {
		logging.FromContext(ctx).Warn("idempotency_complete_failed", "order_id", order.ID, "error", err)
	}
	return order, nil
}

func (s *OrderService) createOrder(ctx context.Context, req transport.OrderRequest) (*models.Order, error) {
	userID, err := s.orderOwner(ctx, req)
	if err != nil {
		return nil, err
	}

	order := &models.Order{UserID: userID}
	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	order.Items = []models.OrderItem{}

	publish(ctx, s.Events, mykafka.TopicOrders, "order.created", order.ID, transport.ToOrder(*order))
	return order, nil
}

// UpdateOrder reassigns the order. Only staff may hand an order to another user.
func (s *OrderService) UpdateOrder(ctx context.Context, pr access.Principal, id uint, req transport.OrderRequest) (*models.Order, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.Policy, pr, access.ActionUpdate, access.OrderTarget(id, order)); err != nil {
		return nil, err
	}

	userID, err := s.orderOwner(ctx, req)
	if err != nil {
		return nil, err
	}
	if !pr.Staff && userID != pr.UserID {
		return nil, fmt.Errorf("%w: cannot transfer order %d", ErrForbidden, id)
	}

	order.UserID = userID
	if err := s.Repo.SaveOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	publish(ctx, s.Events, mykafka.TopicOrders, "order.updated", order.ID, transport.ToOrder(*order))
	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, pr access.Principal, id uint) error {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(s.Policy, pr, access.ActionDelete, access.OrderTarget(id, order)); err != nil {
		return err
	}
	if err := s.Repo.DeactivateOrder(ctx, id); err != nil {
		return fmt.Errorf("deactivate order: %w", err)
	}

	publish(ctx, s.Events, mykafka.TopicOrders, "order.deactivated", id, nil)
	return nil
}

func (s *OrderService) orderOwner(ctx context.Context, req transport.OrderRequest) (uint, error) {
	if req.User == nil {
		return 0, invalid("user", "this field is required")
	}
	user, err := found(s.Repo.GetUser(ctx, *req.User))
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, invalid("user", fmt.Sprintf("invalid pk %d - object does not exist", *req.User))
	}
	return user.ID, nil
}

func (s *OrderService) GetItem(ctx context.Context, pr access.Principal, id uint) (*models.OrderItem, error) {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.Policy, pr, access.ActionRead, access.OrderItemTarget(id, item)); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *OrderService) ListItems(ctx context.Context, pr access.Principal, offset, limit int) (int64, []models.OrderItem, error) {
	if err := authorize(s.Policy, pr, access.ActionList, access.Collection(access.KindOrderItem)); err != nil {
		return 0, nil, err
	}
	return s.Repo.ListItems(ctx, offset, limit)
}

func (s *OrderService) CreateItem(ctx context.Context, pr access.Principal, req transport.OrderItemRequest) (*models.OrderItem, error) {
	if err := authorize(s.Policy, pr, access.ActionCreate, access.Collection(access.KindOrderItem)); err != nil {
		return nil, err
	}

	item := &models.OrderItem{}
	if _, err := s.applyItem(ctx, item, req); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateItem(ctx, item); err != nil {
		return nil, itemWriteError("create", err)
	}

	publish(ctx, s.Events, mykafka.TopicOrderItems, "order_item.created", item.ID, transport.ToOrderItem(*item))
	return item, nil
}

func (s *OrderService) UpdateItem(ctx context.Context, pr access.Principal, id uint, req transport.OrderItemRequest) (*models.OrderItem, error) {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.Policy, pr, access.ActionUpdate, access.OrderItemTarget(id, item)); err != nil {
		return nil, err
	}

	dest, err := s.applyItem(ctx, item, req)
	if err != nil {
		return nil, err
	}
	// Moving an item changes its owner, so the caller must be allowed to
	// modify the destination order too.
	if err := authorize(s.Policy, pr, access.ActionUpdate, access.OrderTarget(dest.ID, dest)); err != nil {
		return nil, err
	}

	item.Order = dest
	if err := s.Repo.SaveItem(ctx, item); err != nil {
		return nil, itemWriteError("save", err)
	}

	publish(ctx, s.Events, mykafka.TopicOrderItems, "order_item.updated", item.ID, transport.ToOrderItem(*item))
	return item, nil
}

func (s *OrderService) DeleteItem(ctx context.Context, pr access.Principal, id uint) error {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(s.Policy, pr, access.ActionDelete, access.OrderItemTarget(id, item)); err != nil {
		return err
	}
	if err := s.Repo.DeactivateItem(ctx, id); err != nil {
		return fmt.Errorf("deactivate order item: %w", err)
	}

	publish(ctx, s.Events, mykafka.TopicOrderItems, "order_item.deactivated", id, nil)
	return nil
}

// applyItem validates req against active rows and writes it onto item. It
// returns the order the item will belong to.
func (s *OrderService) applyItem(ctx context.Context, item *models.OrderItem, req transport.OrderItemRequest) (*models.Order, error) {
	if req.Order == nil {
		return nil, invalid("order", "this field is required")
	}
	if req.Product == nil {
		return nil, invalid("product", "this field is required")
	}
	if req.Quantity == nil {
		return nil, invalid("quantity", "this field is required")
	}
	if *req.Quantity < 1 {
		return nil, invalid("quantity", "ensure this value is greater than or equal to 1")
	}
	// order_items.quantity is a 32-bit column
	if *req.Quantity > math.MaxInt32 {
		return nil, invalid("quantity", fmt.Sprintf("ensure this value is less than or equal to %d", math.MaxInt32))
	}

	order, err := s.loadOrder(ctx, *req.Order)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, invalid("order", fmt.Sprintf("invalid pk %d - object does not exist", *req.Order))
	}
	product, err := found(s.Repo.GetProduct(ctx, *req.Product))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, invalid("product", fmt.Sprintf("invalid pk %d - object does not exist", *req.Product))
	}

	taken, err := s.Repo.ItemPairTaken(ctx, order.ID, product.ID, item.ID)
	if err != nil {
		return nil, fmt.Errorf("check order item: %w", err)
	}
	if taken {
		return nil, duplicateItem()
	}

	item.OrderID = order.ID
	item.ProductID = product.ID
	item.Product = product
	item.Quantity = *req.Quantity
	return order, nil
}

func duplicateItem() error {
	return invalid("non_field_errors", "the fields order, product must make a unique set")
}

// itemWriteError reports a pair taken by a concurrent insert as a validation failure.
func itemWriteError(op string, err error) error {
	if errors.Is(err, repo.ErrDuplicate) {
		return duplicateItem()
	}
	return fmt.Errorf("%s order item: %w", op, err)
}
