package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopwave/storefront/internal/models"
	"github.com/shopwave/storefront/internal/repo"
	"github.com/shopwave/storefront/internal/util"
	"github.com/shopwave/storefront/pkg/logging"
)

const PageSize = 12

type ProductStore interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error)
	ProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	AllProducts(ctx context.Context) ([]models.Product, error)
}

type Searcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []string, error)
}

type Indexer interface {
	EnsureIndex(ctx context.Context) error
	IndexProducts(ctx context.Context, products []models.Product) error
}

type ProductPage struct {
	Items      []models.Product
	Page       int
	Size       int
	Total      int64
	TotalPages int
	Query      string
}

func (p *ProductPage) HasPrev() bool { return p.Page > 1 }
func (p *ProductPage) HasNext() bool { return p.Page < p.TotalPages }

// CatalogService answers product listings. When Search is set, text queries
// go to the search index and fall back to the database if it fails.
type CatalogService struct {
	Repo   ProductStore
	Search Searcher
}

func NewCatalogService(store ProductStore, search Searcher) *CatalogService {
	return &CatalogService{Repo: store, Search: search}
}

func (s *CatalogService) ListProducts(ctx context.Context, q string, page int) (*ProductPage, error) {
	q = strings.TrimSpace(q)
	page, offset := util.Calculate(page, PageSize)

	var (
		total int64
		items []models.Product
		err   error
	)
	if q != "" && s.Search != nil {
		total, items, err = s.searchIndex(ctx, q, offset)
		if err != nil {
			logging.FromContext(ctx).With("svc", "catalog.list").Warn("search_index_error", "query", q, "error", err)
			total, items, err = s.Repo.ListProducts(ctx, q, offset, PageSize)
		}
	} else {
		total, items, err = s.Repo.ListProducts(ctx, q, offset, PageSize)
	}
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return &ProductPage{
		Items:      items,
		Page:       page,
		Size:       PageSize,
		Total:      total,
		TotalPages: util.TotalPages(total, PageSize),
		Query:      q,
	}, nil
}

func (s *CatalogService) searchIndex(ctx context.Context, q string, offset int) (int64, []models.Product, error) {
	total, ids, err := s.Search.Search(ctx, q, offset, PageSize)
	if err != nil {
		return 0, nil, err
	}
	items, err := s.Repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrProductNotFound
	}
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Reindex pushes every product into the search index.
func (s *CatalogService) Reindex(ctx context.Context, idx Indexer) (int, error) {
	if err := idx.EnsureIndex(ctx); err != nil {
		return 0, err
	}
	products, err := s.Repo.AllProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("load products: %w", err)
	}
	if err := idx.IndexProducts(ctx, products); err != nil {
		return 0, err
	}
	return len(products), nil
}
