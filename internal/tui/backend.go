package tui

import (
	"context"

	"inventaris/internal/apiclient"
	"inventaris/internal/catalog"
	"inventaris/internal/domain"
	"inventaris/internal/draft"
)

// Backend всё, что TUI нужно от сервера
type Backend interface {
	draft.Creator
	Authenticated() bool
	Username() string
	Login(ctx context.Context, username, password string, remember bool) error
	Logout() error
	Transactions(ctx context.Context, page int) (domain.Page[domain.Transaction], error)
	DeleteTransaction(ctx context.Context, id int64) error
	Catalog(ctx context.Context) (catalog.Catalog, error)
}

// ClientBackend Backend поверх REST-клиента
type ClientBackend struct {
	c      *apiclient.Client
	loader *catalog.Loader
}

func NewClientBackend(c *apiclient.Client) *ClientBackend {
	return &ClientBackend{c: c, loader: catalog.FromClient(c)}
}

func (b *ClientBackend) Authenticated() bool { return b.c.Session().Authenticated() }

func (b *ClientBackend) Username() string { return b.c.Session().Username }

func (b *ClientBackend) Login(ctx context.Context, username, password string, remember bool) error {
	return b.c.Login(ctx, username, password, remember)
}

func (b *ClientBackend) Logout() error { return b.c.Logout() }

func (b *ClientBackend) Transactions(ctx context.Context, page int) (domain.Page[domain.Transaction], error) {
	return b.c.Transactions().List(ctx, page)
}

func (b *ClientBackend) DeleteTransaction(ctx context.Context, id int64) error {
	return b.c.Transactions().Delete(ctx, id)
}

func (b *ClientBackend) Catalog(ctx context.Context) (catalog.Catalog, error) {
	return b.loader.Load(ctx)
}

func (b *ClientBackend) Create(ctx context.Context, in any) (domain.Transaction, error) {
	return b.c.Transactions().Create(ctx, in)
}
