package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventaris/internal/domain"
)

type pager[T any] struct {
	page domain.Page[T]
	err  error
}

func (p pager[T]) List(context.Context, int) (domain.Page[T], error) { return p.page, p.err }

func sources() Sources {
	return Sources{
		Products: pager[domain.Product]{page: domain.Page[domain.Product]{Count: 12, Results: []domain.Product{
			{ID: 1, Stock: 2, MinStock: 5},
			{ID: 2, Stock: 5, MinStock: 5},
			{ID: 3, Stock: 9, MinStock: 5},
		}}},
		Suppliers:  pager[domain.Supplier]{page: domain.Page[domain.Supplier]{Count: 4}},
		Customers:  pager[domain.Customer]{page: domain.Page[domain.Customer]{Count: 7}},
		Categories: pager[domain.Category]{page: domain.Page[domain.Category]{Count: 3}},
		Transactions: pager[domain.Transaction]{page: domain.Page[domain.Transaction]{Count: 8, Results: []domain.Transaction{
			{ID: 8}, {ID: 7}, {ID: 6}, {ID: 5}, {ID: 4}, {ID: 3}, {ID: 2},
		}}},
	}
}

func TestLoad(t *testing.T) {
	s, err := Load(context.Background(), sources())
	require.NoError(t, err)

	assert.Equal(t, 12, s.TotalProducts)
	assert.Equal(t, 4, s.TotalSuppliers)
	assert.Equal(t, 7, s.TotalCustomers)
	assert.Equal(t, 3, s.TotalCategories)
	assert.Equal(t, 8, s.TotalTransactions)
	assert.Equal(t, 2, s.LowStockCount(), "stock equal to minimum counts as low")

	recent := s.Recent(RecentLimit)
	require.Len(t, recent, 5)
	assert.Equal(t, int64(8), recent[0].ID)
	assert.Len(t, s.Recent(100), 7)
}

func TestLoad_Error(t *testing.T) {
	src := sources()
	src.Categories = pager[domain.Category]{err: errors.New("down")}
	_, err := Load(context.Background(), src)
	assert.ErrorContains(t, err, "categories")
}
