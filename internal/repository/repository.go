package repository

import (
	"context"
	"errors"
	"strings"

	"inventaris/internal/domain"
)

var (
	// ErrNotFound возвращается, когда сущность не найдена
	ErrNotFound = errors.New("not found")
	// ErrDuplicate нарушение уникальности (код товара, имя пользователя, номер транзакции)
	ErrDuplicate = errors.New("duplicate")
)

// Filter параметры страницы списка: подстрока поиска и окно offset/limit (limit 0 = все)
type Filter struct {
	Search string
	Offset int
	Limit  int
}

// Repository общий CRUD-интерфейс справочников
type Repository[T any] interface {
	Create(ctx context.Context, v *T) error
	GetByID(ctx context.Context, id int64) (*T, error)
	Update(ctx context.Context, v *T) error
	Delete(ctx context.Context, id int64) error
	// List возвращает страницу и общее число записей под фильтром
	List(ctx context.Context, f Filter) ([]T, int, error)
}

type SupplierRepository = Repository[domain.Supplier]

type CategoryRepository = Repository[domain.Category]

type CustomerRepository = Repository[domain.Customer]

// ProductRepository интерфейс репозитория товаров
type ProductRepository interface {
	Repository[domain.Product]
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
	CountBySupplier(ctx context.Context, supplierID int64) (int, error)
}

// TransactionRepository интерфейс репозитория транзакций (позиции хранятся вместе с шапкой)
type TransactionRepository interface {
	Repository[domain.Transaction]
	CountByCustomer(ctx context.Context, customerID int64) (int, error)
	CountByProduct(ctx context.Context, productID int64) (int, error)
	// LastNumber наибольший номер с данным префиксом; "" если таких нет
	LastNumber(ctx context.Context, prefix string) (string, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// TxManager абстракция транзакции. Для in-memory: глобальная блокировка записи.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store набор репозиториев одного хранилища
type Store struct {
	Suppliers    SupplierRepository
	Categories   CategoryRepository
	Customers    CustomerRepository
	Products     ProductRepository
	Transactions TransactionRepository
	Users        UserRepository
	Tx           TxManager
	close        func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// helper: case-insensitive contains over any of the fields
func containsIgnoreCase(substr string, fields ...string) bool {
	if substr == "" {
		return true
	}
	substr = strings.ToLower(substr)
	for _, s := range fields {
		if strings.Contains(strings.ToLower(s), substr) {
			return true
		}
	}
	return false
}

func window[T any](rows []T, f Filter) []T {
	if f.Offset >= len(rows) {
		return []T{}
	}
	rows = rows[max(f.Offset, 0):]
	if f.Limit > 0 && f.Limit < len(rows) {
		rows = rows[:f.Limit]
	}
	return rows
}
