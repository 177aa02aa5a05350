package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/tidwall/gjson"

	"github.com/Skotchmaster/store_rest/internal/models"
)

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

// NewClient connects and verifies the cluster answers before returning.
func NewClient(ctx context.Context, cfg Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("es: new client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: info: %s: %s", res.Status(), body)
	}
	return client, nil
}

// ProductIndex mirrors active products into a search index. The store stays
// the source of truth: Search only returns ids.
type ProductIndex interface {
	Enabled() bool
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []uint, error)
}

type Products struct {
	Client *elasticsearch.Client
	Index  string
}

type productDoc struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

func (s *Products) Enabled() bool { return true }

func (s *Products) IndexProduct(ctx context.Context, p models.Product) error {
	body, err := json.Marshal(productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
	})
	if err != nil {
		return err
	}

	res, err := s.Client.Index(
		s.Index,
		bytes.NewReader(body),
		s.Client.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
		s.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es: index product %d: %s", p.ID, res.Status())
	}
	return nil
}

func (s *Products) DeleteProduct(ctx context.Context, id uint) error {
	res, err := s.Client.Delete(
		s.Index,
		strconv.FormatUint(uint64(id), 10),
		s.Client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: delete product %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es: delete product %d: %s", id, res.Status())
	}
	return nil
}

func (s *Products) Search(ctx context.Context, query string, from, size int) (int64, []uint, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"_source": []string{"id"},
		"from":    from,
		"size":    size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("es: encode query: %w", err)
	}

	res, err := s.Client.Search(
		s.Client.Search.WithContext(ctx),
		s.Client.Search.WithIndex(s.Index),
		s.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("es: search: %s", res.Status())
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("es: read search: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return 0, nil, fmt.Errorf("es: decode search: invalid json")
	}

	hits := gjson.GetBytes(raw, "hits.hits.#._source.id").Array()
	ids := make([]uint, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, uint(h.Uint()))
	}
	return gjson.GetBytes(raw, "hits.total.value").Int(), ids, nil
}

// Nop is used when no cluster is configured; callers fall back to the store.
type Nop struct{}

func (Nop) Enabled() bool { return false }

func (Nop) IndexProduct(context.Context, models.Product) error { return nil }

func (Nop) DeleteProduct(context.Context, uint) error { return nil }

func (Nop) Search(context.Context, string, int, int) (int64, []uint, error) {
	return 0, nil, nil
}
