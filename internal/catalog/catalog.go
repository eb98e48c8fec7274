package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"inventaris/internal/apiclient"
	"inventaris/internal/domain"
)

// Lister источник полного списка сущностей
type Lister[T any] interface {
	All(ctx context.Context) ([]T, error)
}

// Catalog покупатели и активные товары для полей выбора
type Catalog struct {
	Customers []domain.Customer
	Products  []domain.Product
}

func (c Catalog) Product(id int64) (domain.Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (c Catalog) Customer(id int64) (domain.Customer, bool) {
	for _, cu := range c.Customers {
		if cu.ID == id {
			return cu, true
		}
	}
	return domain.Customer{}, false
}

// ProductByCode поиск по kode_produk
func (c Catalog) ProductByCode(code string) (domain.Product, bool) {
	for _, p := range c.Products {
		if p.Code == code {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Loader загружает каталог параллельно
type Loader struct {
	customers Lister[domain.Customer]
	products  Lister[domain.Product]
}

func NewLoader(customers Lister[domain.Customer], products Lister[domain.Product]) *Loader {
	return &Loader{customers: customers, products: products}
}

// FromClient загрузчик поверх REST-клиента
func FromClient(c *apiclient.Client) *Loader {
	return NewLoader(c.Customers(), c.Products())
}

// Load возвращает покупателей и только активные товары
func (l *Loader) Load(ctx context.Context) (Catalog, error) {
	var cat Catalog
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := l.customers.All(ctx)
		if err != nil {
			return fmt.Errorf("load customers: %w", err)
		}
		cat.Customers = list
		return nil
	})
	g.Go(func() error {
		list, err := l.products.All(ctx)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		cat.Products = domain.ActiveProducts(list)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}
