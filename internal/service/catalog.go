package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/store_rest/internal/access"
	"github.com/Skotchmaster/store_rest/internal/domain"
	"github.com/Skotchmaster/store_rest/internal/es"
	"github.com/Skotchmaster/store_rest/internal/models"
	"github.com/Skotchmaster/store_rest/internal/mykafka"
	"github.com/Skotchmaster/store_rest/internal/repo"
	"github.com/Skotchmaster/store_rest/internal/transport"
	"github.com/Skotchmaster/store_rest/pkg/logging"
)

const maxNameLen = 255

// NUMERIC(7,2): five integer digits at most.
var maxPrice = decimal.NewFromInt(100000)

type CatalogService struct {
	Repo   *repo.GormRepo
	Policy access.Policy
	Index  es.ProductIndex
	Events mykafka.Publisher
}

func (s *CatalogService) load(ctx context.Context, id uint) (*models.Product, error) {
	return found(s.Repo.GetProduct(ctx, id))
}

func (s *CatalogService) GetProduct(ctx context.Context, pr access.Principal, id uint) (*models.Product, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.Policy, pr, access.ActionRead, access.ProductTarget(id, product)); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, pr access.Principal, offset, limit int) (int64, []models.Product, error) {
	if err := authorize(s.Policy, pr, access.ActionList, access.Collection(access.KindProduct)); err != nil {
		return 0, nil, err
	}
	return s.Repo.ListProducts(ctx, offset, limit)
}

func (s *CatalogService) CreateProduct(ctx context.Context, pr access.Principal, req transport.ProductRequest) (*models.Product, error) {
	if err := authorize(s.Policy, pr, access.ActionCreate, access.Collection(access.KindProduct)); err != nil {
		return nil, err
	}

	product := &models.Product{}
	if err := applyProduct(product, req); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.index(ctx, *product)
	publish(ctx, s.Events, mykafka.TopicProducts, "product.created", product.ID, transport.ToProduct(*product))
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, pr access.Principal, id uint, req transport.ProductRequest) (*models.Product, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.Policy, pr, access.ActionUpdate, access.ProductTarget(id, product)); err != nil {
		return nil, err
	}

	if err := applyProduct(product, req); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}

	s.index(ctx, *product)
	publish(ctx, s.Events, mykafka.TopicProducts, "product.updated", product.ID, transport.ToProduct(*product))
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, pr access.Principal, id uint) error {
	product, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(s.Policy, pr, access.ActionDelete, access.ProductTarget(id, product)); err != nil {
		return err
	}
	if err := s.Repo.DeactivateProduct(ctx, id); err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("unindex_product_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProducts, "product.deactivated", id, nil)
	return nil
}

// SearchProducts asks the search index when one is configured and falls back to
// a substring match in the store otherwise, or when the index is unavailable.
func (s *CatalogService) SearchProducts(ctx context.Context, pr access.Principal, q string, offset, limit int) (int64, []models.Product, error) {
	if err := authorize(s.Policy, pr, access.ActionList, access.Collection(access.KindProduct)); err != nil {
		return 0, nil, err
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, invalid("q", "this field is required")
	}

	if s.Index != nil && s.Index.Enabled() {
		total, ids, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			products, err := s.Repo.GetProductsByIDs(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			return total, inRankOrder(ids, products), nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "error", err)
	}
	return s.Repo.SearchProducts(ctx, q, offset, limit)
}

// HighOrderProducts lists the products referenced by orders that hold more
// than one item and total strictly more than 100.00.
func (s *CatalogService) HighOrderProducts(ctx context.Context, pr access.Principal) ([]models.Product, error) {
	if err := authorize(s.Policy, pr, access.ActionList, access.Collection(access.KindProduct)); err != nil {
		return nil, err
	}

	orders, err := s.Repo.MultiItemOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load multi item orders: %w", err)
	}

	var ids []uint
	seen := map[uint]struct{}{}
	for _, o := range domain.HighValueMultiItemOrders(orders) {
		for _, it := range o.Items {
			if _, ok := seen[it.ProductID]; !ok {
				seen[it.ProductID] = struct{}{}
				ids = append(ids, it.ProductID)
			}
		}
	}

	products, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return domain.ProductsInHighValueOrders(products, orders), nil
}

// Reindex pushes every active product to the search index, repairing writes
// whose indexing failed earlier. It returns the number of products sent.
func (s *CatalogService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil || !s.Index.Enabled() {
		return 0, nil
	}
	products, err := s.Repo.ListAllProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("load products: %w", err)
	}
	for i, p := range products {
		if err := s.Index.IndexProduct(ctx, p); err != nil {
			return i, fmt.Errorf("index product %d: %w", p.ID, err)
		}
	}
	return len(products), nil
}

func (s *CatalogService) index(ctx context.Context, p models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("index_product_failed", "product_id", p.ID, "error", err)
	}
}

func inRankOrder(ids []uint, products []models.Product) []models.Product {
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(products))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func applyProduct(p *models.Product, req transport.ProductRequest) error {
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)

	switch {
	case name == "":
		return invalid("name", "this field may not be blank")
	case utf8.RuneCountInString(name) > maxNameLen:
		return invalid("name", fmt.Sprintf("ensure this field has no more than %d characters", maxNameLen))
	case description == "":
		return invalid("description", "this field may not be blank")
	case req.Price == nil:
		return invalid("price", "this field is required")
	case req.Price.IsNegative():
		return invalid("price", "ensure this value is greater than or equal to 0")
	case !req.Price.Equal(req.Price.Round(2)):
		return invalid("price", "ensure that there are no more than 2 decimal places")
	case req.Price.GreaterThanOrEqual(maxPrice):
		return invalid("price", "ensure that there are no more than 5 digits before the decimal point")
	}

	p.Name = name
	p.Description = description
	p.Price = req.Price.Round(2)
	return nil
}
