package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"inventaris/internal/domain"
)

// maxPages предел страниц для All
const maxPages = 1000

// Resource CRUD-эндпоинт вида /produk/ и /produk/{id}/
type Resource[T any] struct {
	c    *Client
	path string
}

func NewResource[T any](c *Client, path string) Resource[T] {
	return Resource[T]{c: c, path: path}
}

func (c *Client) Suppliers() Resource[domain.Supplier] {
	return NewResource[domain.Supplier](c, "/supplier/")
}

func (c *Client) Categories() Resource[domain.Category] {
	return NewResource[domain.Category](c, "/kategori/")
}

func (c *Client) Customers() Resource[domain.Customer] {
	return NewResource[domain.Customer](c, "/customer/")
}

func (c *Client) Products() Resource[domain.Product] {
	return NewResource[domain.Product](c, "/produk/")
}

func (c *Client) Transactions() Resource[domain.Transaction] {
	return NewResource[domain.Transaction](c, "/transaksi/")
}

func (r Resource[T]) Path() string { return r.path }

func (r Resource[T]) List(ctx context.Context, page int) (domain.Page[T], error) {
	return r.Search(ctx, "", page)
}

// Search страница списка с фильтром ?search=
func (r Resource[T]) Search(ctx context.Context, term string, page int) (domain.Page[T], error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if term != "" {
		q.Set("search", term)
	}
	var out domain.Page[T]
	if err := r.c.get(ctx, r.path+"?"+q.Encode(), &out); err != nil {
		return domain.Page[T]{}, err
	}
	if out.Results == nil {
		out.Results = []T{}
	}
	return out, nil
}

// All проходит все страницы, пока сервер возвращает next
func (r Resource[T]) All(ctx context.Context) ([]T, error) {
	all := make([]T, 0)
	for page := 1; page <= maxPages; page++ {
		p, err := r.List(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Results...)
		if p.Next == nil || len(p.Results) == 0 {
			return all, nil
		}
	}
	return nil, fmt.Errorf("%s: more than %d pages", r.path, maxPages)
}

func (r Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := r.c.get(ctx, r.itemPath(id), &out)
	return out, err
}

func (r Resource[T]) Create(ctx context.Context, in any) (T, error) {
	var out T
	err := r.c.post(ctx, r.path, in, &out)
	return out, err
}

func (r Resource[T]) Update(ctx context.Context, id int64, in any) (T, error) {
	var out T
	err := r.c.put(ctx, r.itemPath(id), in, &out)
	return out, err
}

func (r Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.c.delete(ctx, r.itemPath(id))
}

func (r Resource[T]) itemPath(id int64) string {
	return r.path + strconv.FormatInt(id, 10) + "/"
}
