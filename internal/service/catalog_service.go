package service

import (
	"context"
	"errors"

	"inventaris/internal/domain"
	"inventaris/internal/repository"
)

// Catalog общий сервис справочника: валидация, производные поля и запрет удаления используемых записей
type Catalog[T any] struct {
	repo repository.Repository[T]

	setID    func(*T, int64)
	validate func(ctx context.Context, v *T) error
	enrich   func(ctx context.Context, rows []T) error
	inUse    func(ctx context.Context, id int64) error
}

func (s *Catalog[T]) Create(ctx context.Context, v T) (*T, error) {
	cp := v
	s.setID(&cp, 0)
	if err := s.validate(ctx, &cp); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return s.one(ctx, &cp)
}

func (s *Catalog[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.one(ctx, v)
}

func (s *Catalog[T]) Update(ctx context.Context, id int64, v T) (*T, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	cp := v
	s.setID(&cp, id)
	if err := s.validate(ctx, &cp); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &cp); err != nil {
		return nil, err
	}
	return s.one(ctx, &cp)
}

func (s *Catalog[T]) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if s.inUse != nil {
		if err := s.inUse(ctx, id); err != nil {
			return err
		}
	}
	return s.repo.Delete(ctx, id)
}

func (s *Catalog[T]) List(ctx context.Context, f repository.Filter) ([]T, int, error) {
	rows, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	if s.enrich != nil {
		if err := s.enrich(ctx, rows); err != nil {
			return nil, 0, err
		}
	}
	return rows, total, nil
}

func (s *Catalog[T]) one(ctx context.Context, v *T) (*T, error) {
	if s.enrich == nil {
		return v, nil
	}
	rows := []T{*v}
	if err := s.enrich(ctx, rows); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func refused(what, by string, n int, err error) error {
	if err != nil {
		return err
	}
	if n > 0 {
		return &InUseError{What: what, By: by, N: n}
	}
	return nil
}

func NewSupplierService(repo repository.SupplierRepository, products repository.ProductRepository) *Catalog[domain.Supplier] {
	return &Catalog[domain.Supplier]{
		repo:  repo,
		setID: func(v *domain.Supplier, id int64) { v.ID = id },
		validate: func(_ context.Context, v *domain.Supplier) error {
			if v.Status == "" {
				v.Status = domain.StatusActive
			}
			bad := Violations{}
			bad.Required("nama_supplier", v.Name)
			if !v.Status.Valid() {
				bad["status"] = "tidak valid"
			}
			return bad.Err()
		},
		inUse: func(ctx context.Context, id int64) error {
			n, err := products.CountBySupplier(ctx, id)
			return refused("Supplier", "produk", n, err)
		},
	}
}

func NewCategoryService(repo repository.CategoryRepository, products repository.ProductRepository) *Catalog[domain.Category] {
	return &Catalog[domain.Category]{
		repo:  repo,
		setID: func(v *domain.Category, id int64) { v.ID = id },
		validate: func(_ context.Context, v *domain.Category) error {
			bad := Violations{}
			bad.Required("nama_kategori", v.Name)
			return bad.Err()
		},
		inUse: func(ctx context.Context, id int64) error {
			n, err := products.CountByCategory(ctx, id)
			return refused("Kategori", "produk", n, err)
		},
	}
}

func NewCustomerService(repo repository.CustomerRepository, txs repository.TransactionRepository) *Catalog[domain.Customer] {
	return &Catalog[domain.Customer]{
		repo:  repo,
		setID: func(v *domain.Customer, id int64) { v.ID = id },
		validate: func(_ context.Context, v *domain.Customer) error {
			if v.Status == "" {
				v.Status = domain.StatusActive
			}
			if v.Type == "" {
				v.Type = domain.CustomerRetail
			}
			bad := Violations{}
			bad.Required("nama_customer", v.Name)
			if !v.Type.Valid() {
				bad["tipe_customer"] = "tidak valid"
			}
			if !v.Status.Valid() {
				bad["status"] = "tidak valid"
			}
			return bad.Err()
		},
		inUse: func(ctx context.Context, id int64) error {
			n, err := txs.CountByCustomer(ctx, id)
			return refused("Customer", "transaksi", n, err)
		},
	}
}

// NewProductService сервис товаров; названия категории/поставщика и признак низкого остатка вычисляются при чтении
func NewProductService(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	suppliers repository.SupplierRepository,
	txs repository.TransactionRepository,
) *Catalog[domain.Product] {
	return &Catalog[domain.Product]{
		repo:  repo,
		setID: func(v *domain.Product, id int64) { v.ID = id },
		validate: func(ctx context.Context, v *domain.Product) error {
			if v.Status == "" {
				v.Status = domain.StatusActive
			}
			bad := Violations{}
			bad.Required("kode_produk", v.Code)
			bad.Required("nama_produk", v.Name)
			bad.NotNegative("harga_beli", v.PurchasePrice.IsNegative())
			bad.NotNegative("harga_jual", v.SalePrice.IsNegative())
			bad.NotNegative("stok", v.Stock < 0)
			bad.NotNegative("stok_minimum", v.MinStock < 0)
			if !v.Status.Valid() {
				bad["status"] = "tidak valid"
			}
			if err := exists(ctx, categories, v.CategoryID); err != nil {
				if !errors.Is(err, repository.ErrNotFound) {
					return err
				}
				bad["kategori"] = "tidak ditemukan"
			}
			if err := exists(ctx, suppliers, v.SupplierID); err != nil {
				if !errors.Is(err, repository.ErrNotFound) {
					return err
				}
				bad["supplier"] = "tidak ditemukan"
			}
			return bad.Err()
		},
		enrich: func(ctx context.Context, rows []domain.Product) error {
			catNames := map[int64]string{}
			supNames := map[int64]string{}
			for i := range rows {
				p := &rows[i]
				p.LowStock = p.IsLowStock()
				name, err := lookup(ctx, catNames, p.CategoryID, categories, func(c *domain.Category) string { return c.Name })
				if err != nil {
					return err
				}
				p.CategoryName = name
				name, err = lookup(ctx, supNames, p.SupplierID, suppliers, func(s *domain.Supplier) string { return s.Name })
				if err != nil {
					return err
				}
				p.SupplierName = name
			}
			return nil
		},
		inUse: func(ctx context.Context, id int64) error {
			n, err := txs.CountByProduct(ctx, id)
			return refused("Produk", "transaksi", n, err)
		},
	}
}

func exists[T any](ctx context.Context, repo repository.Repository[T], id int64) error {
	if id <= 0 {
		return repository.ErrNotFound
	}
	_, err := repo.GetByID(ctx, id)
	return err
}

// lookup имя связанной записи с кешем на один запрос; удалённая запись даёт пустое имя
func lookup[T any](ctx context.Context, cache map[int64]string, id int64, repo repository.Repository[T], name func(*T) string) (string, error) {
	if id <= 0 {
		return "", nil
	}
	if n, ok := cache[id]; ok {
		return n, nil
	}
	v, err := repo.GetByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		cache[id] = ""
		return "", nil
	case err != nil:
		return "", err
	}
	cache[id] = name(v)
	return cache[id], nil
}

// Services все сервисы поверх одного хранилища
type Services struct {
	Suppliers    *Catalog[domain.Supplier]
	Categories   *Catalog[domain.Category]
	Customers    *Catalog[domain.Customer]
	Products     *Catalog[domain.Product]
	Transactions *TransactionService
}

func New(s *repository.Store) *Services {
	return &Services{
		Suppliers:    NewSupplierService(s.Suppliers, s.Products),
		Categories:   NewCategoryService(s.Categories, s.Products),
		Customers:    NewCustomerService(s.Customers, s.Transactions),
		Products:     NewProductService(s.Products, s.Categories, s.Suppliers, s.Transactions),
		Transactions: NewTransactionService(s.Products, s.Customers, s.Transactions, s.Tx),
	}
}
