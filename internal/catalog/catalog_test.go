package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventaris/internal/domain"
)

type staticList[T any] struct {
	items []T
	err   error
}

func (s staticList[T]) All(context.Context) ([]T, error) { return s.items, s.err }

func TestLoad_FiltersInactiveProducts(t *testing.T) {
	l := NewLoader(
		staticList[domain.Customer]{items: []domain.Customer{{ID: 1, Name: "Budi"}}},
		staticList[domain.Product]{items: []domain.Product{
			{ID: 1, Code: "A", Status: domain.StatusActive},
			{ID: 2, Code: "B", Status: domain.StatusInactive},
			{ID: 3, Code: "C", Status: domain.StatusActive},
		}},
	)

	cat, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, cat.Customers, 1)
	require.Len(t, cat.Products, 2)

	_, ok := cat.Product(2)
	assert.False(t, ok)
	p, ok := cat.ProductByCode("C")
	assert.True(t, ok)
	assert.Equal(t, int64(3), p.ID)
	cu, ok := cat.Customer(1)
	assert.True(t, ok)
	assert.Equal(t, "Budi", cu.Name)
}

func TestLoad_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	l := NewLoader(
		staticList[domain.Customer]{err: boom},
		staticList[domain.Product]{},
	)
	_, err := l.Load(context.Background())
	assert.ErrorIs(t, err, boom)
}
