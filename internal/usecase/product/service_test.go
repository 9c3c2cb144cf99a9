package product

import (
	"context"
	"errors"
	"testing"

	"github.com/alr-main/better-beans-server/internal/domain"
	"github.com/alr-main/better-beans-server/internal/domain/catalog"
)

type mockRepo struct {
	product    catalog.ProductRow
	productErr error
	list       []catalog.ProductRow

	lastQuery  string
	lastLimit  int
	lastOffset int
}

func (m *mockRepo) GetProduct(_ context.Context, _ string) (catalog.ProductRow, error) {
	return m.product, m.productErr
}

func (m *mockRepo) SearchProducts(
	_ context.Context, query, _, _, _ string, limit, offset int,
) ([]catalog.ProductRow, error) {
	m.lastQuery = query
	m.lastLimit = limit
	m.lastOffset = offset
	return m.list, nil
}

func TestSearch_Defaults(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo)

	if _, err := svc.Search(context.Background(), Filters{Query: "ethiopia", Offset: -1}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if repo.lastQuery != "ethiopia" {
		t.Errorf("query = %q", repo.lastQuery)
	}
	if repo.lastLimit != DefaultLimit || repo.lastOffset != 0 {
		t.Errorf("limit/offset = %d/%d, want %d/0", repo.lastLimit, repo.lastOffset, DefaultLimit)
	}
}

func TestSearch_ClampsLimit(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo)

	if _, err := svc.Search(context.Background(), Filters{Limit: 5000}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if repo.lastLimit != MaxLimit {
		t.Errorf("limit = %d, want %d", repo.lastLimit, MaxLimit)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := &mockRepo{productErr: domain.ErrProductNotFound}
	svc := New(repo)

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("err = %v, want ErrProductNotFound", err)
	}
}
