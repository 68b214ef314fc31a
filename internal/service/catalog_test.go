package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopwave/storefront/internal/models"
	"github.com/shopwave/storefront/internal/repo"
	"github.com/shopwave/storefront/internal/testutil"
)

type stubSearcher struct {
	total int64
	ids   []string
	err   error
	calls int
}

func (s *stubSearcher) Search(_ context.Context, _ string, _, _ int) (int64, []string, error) {
	s.calls++
	return s.total, s.ids, s.err
}

type stubIndexer struct {
	ensured bool
	indexed []models.Product
}

func (s *stubIndexer) EnsureIndex(context.Context) error {
	s.ensured = true
	return nil
}

func (s *stubIndexer) IndexProducts(_ context.Context, ps []models.Product) error {
	s.indexed = ps
	return nil
}

func newCatalog(t *testing.T, n int) (*CatalogService, []models.Product) {
	t.Helper()
	r := repo.New(testutil.InitTestDB(t))
	products := make([]models.Product, n)
	for i := range products {
		products[i] = testutil.CreateProduct(t, r.DB, fmt.Sprintf("item-%02d", i), "plain", "1.00")
	}
	return NewCatalogService(r, nil), products
}

func TestListProducts_Pagination(t *testing.T) {
	svc, products := newCatalog(t, 14)
	ctx := context.Background()

	page, err := svc.ListProducts(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, page.Items, PageSize)
	assert.EqualValues(t, 14, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.False(t, page.HasPrev())
	assert.True(t, page.HasNext())
	assert.Equal(t, products[13].ID, page.Items[0].ID)

	page, err = svc.ListProducts(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasPrev())
	assert.False(t, page.HasNext())
	assert.Equal(t, products[0].ID, page.Items[1].ID)
}

func TestListProducts_PageBelowOne(t *testing.T) {
	svc, _ := newCatalog(t, 3)

	for _, p := range []int{0, -4} {
		page, err := svc.ListProducts(context.Background(), "", p)
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Len(t, page.Items, 3)
	}
}

func TestListProducts_HugePageIsEmpty(t *testing.T) {
	svc, _ := newCatalog(t, 3)

	page, err := svc.ListProducts(context.Background(), "", math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt/PageSize, page.Page)
	assert.Empty(t, page.Items)
	assert.EqualValues(t, 3, page.Total)
	assert.False(t, page.HasNext())
}

func TestListProducts_QueryUsesDatabaseWithoutIndex(t *testing.T) {
	svc, _ := newCatalog(t, 3)

	page, err := svc.ListProducts(context.Background(), "  ITEM-01 ", 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "item-01", page.Items[0].Name)
	assert.Equal(t, "ITEM-01", page.Query)
}

func TestListProducts_UsesSearchIndex(t *testing.T) {
	svc, products := newCatalog(t, 3)
	ss := &stubSearcher{total: 2, ids: []string{products[2].ID, products[0].ID}}
	svc.Search = ss

	page, err := svc.ListProducts(context.Background(), "itme", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, ss.calls)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, products[2].ID, page.Items[0].ID)

	_, err = svc.ListProducts(context.Background(), "", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, ss.calls)
}

func TestListProducts_SearchFailureFallsBack(t *testing.T) {
	svc, _ := newCatalog(t, 3)
	svc.Search = &stubSearcher{err: errors.New("es down")}

	page, err := svc.ListProducts(context.Background(), "item-02", 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "item-02", page.Items[0].Name)
}

func TestGetProduct(t *testing.T) {
	svc, products := newCatalog(t, 1)

	got, err := svc.GetProduct(context.Background(), products[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "item-00", got.Name)

	_, err = svc.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = svc.GetProduct(context.Background(), "")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestReindex(t *testing.T) {
	svc, _ := newCatalog(t, 4)
	idx := &stubIndexer{}

	n, err := svc.Reindex(context.Background(), idx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.True(t, idx.ensured)
	assert.Len(t, idx.indexed, 4)
}
