package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"inventaris/internal/apiclient"
	"inventaris/internal/domain"
)

// RecentLimit сколько последних транзакций показывать
const RecentLimit = 5

// Pager первая страница списка
type Pager[T any] interface {
	List(ctx context.Context, page int) (domain.Page[T], error)
}

// Stats сводка для главного экрана
type Stats struct {
	TotalProducts     int
	TotalSuppliers    int
	TotalCustomers    int
	TotalCategories   int
	TotalTransactions int
	Products          []domain.Product
	Transactions      []domain.Transaction
}

// LowStockCount число товаров с остатком не выше минимума (по загруженной странице)
func (s Stats) LowStockCount() int {
	return len(domain.LowStock(s.Products))
}

// Recent первые n транзакций в порядке ответа сервера
func (s Stats) Recent(n int) []domain.Transaction {
	if n > len(s.Transactions) {
		n = len(s.Transactions)
	}
	return s.Transactions[:n]
}

type Sources struct {
	Products     Pager[domain.Product]
	Suppliers    Pager[domain.Supplier]
	Customers    Pager[domain.Customer]
	Categories   Pager[domain.Category]
	Transactions Pager[domain.Transaction]
}

func FromClient(c *apiclient.Client) Sources {
	return Sources{
		Products:     c.Products(),
		Suppliers:    c.Suppliers(),
		Customers:    c.Customers(),
		Categories:   c.Categories(),
		Transactions: c.Transactions(),
	}
}

// Load запрашивает первые страницы всех ресурсов параллельно
func Load(ctx context.Context, src Sources) (Stats, error) {
	var s Stats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := src.Products.List(ctx, 1)
		if err != nil {
			return fmt.Errorf("products: %w", err)
		}
		s.TotalProducts, s.Products = p.Count, p.Results
		return nil
	})
	g.Go(func() error {
		p, err := src.Suppliers.List(ctx, 1)
		if err != nil {
			return fmt.Errorf("suppliers: %w", err)
		}
		s.TotalSuppliers = p.Count
		return nil
	})
	g.Go(func() error {
		p, err := src.Customers.List(ctx, 1)
		if err != nil {
			return fmt.Errorf("customers: %w", err)
		}
		s.TotalCustomers = p.Count
		return nil
	})
	g.Go(func() error {
		p, err := src.Categories.List(ctx, 1)
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		s.TotalCategories = p.Count
		return nil
	})
	g.Go(func() error {
		p, err := src.Transactions.List(ctx, 1)
		if err != nil {
			return fmt.Errorf("transactions: %w", err)
		}
		s.TotalTransactions, s.Transactions = p.Count, p.Results
		return nil
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return s, nil
}
