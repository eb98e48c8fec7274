package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inventaris/internal/domain"
)

type gormTxKey struct{}

// conn возвращает открытую транзакцию из контекста либо соединение
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

// gormTable CRUD поверх одной модели
type gormTable[T any] struct {
	db      *gorm.DB
	search  []string // columns matched by ?search=
	order   string
	preload []string
}

func (g gormTable[T]) scoped(ctx context.Context) *gorm.DB {
	q := conn(ctx, g.db)
	for _, rel := range g.preload {
		q = q.Preload(rel)
	}
	return q
}

func (g gormTable[T]) Create(ctx context.Context, v *T) error {
	return translate(conn(ctx, g.db).Create(v).Error)
}

func (g gormTable[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	var v T
	if err := g.scoped(ctx).First(&v, id).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (g gormTable[T]) Update(ctx context.Context, v *T) error {
	res := conn(ctx, g.db).Model(v).Select("*").Omit("id").Updates(v)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g gormTable[T]) Delete(ctx context.Context, id int64) error {
	res := conn(ctx, g.db).Delete(new(T), id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g gormTable[T]) List(ctx context.Context, f Filter) ([]T, int, error) {
	q := conn(ctx, g.db).Model(new(T))
	if f.Search != "" && len(g.search) > 0 {
		like := "%" + strings.ToLower(f.Search) + "%"
		conds := make([]string, len(g.search))
		args := make([]any, len(g.search))
		for i, col := range g.search {
			conds[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = like
		}
		q = q.Where(strings.Join(conds, " OR "), args...)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	for _, rel := range g.preload {
		q = q.Preload(rel)
	}
	q = q.Order(g.order).Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	out := make([]T, 0)
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, int(total), nil
}

func (g gormTable[T]) count(ctx context.Context, where string, args ...any) (int, error) {
	var n int64
	err := conn(ctx, g.db).Model(new(T)).Where(where, args...).Count(&n).Error
	return int(n), err
}

type GormProducts struct{ gormTable[domain.Product] }

var _ ProductRepository = GormProducts{}

func (p GormProducts) CountByCategory(ctx context.Context, id int64) (int, error) {
	return p.count(ctx, "category_id = ?", id)
}

func (p GormProducts) CountBySupplier(ctx context.Context, id int64) (int, error) {
	return p.count(ctx, "supplier_id = ?", id)
}

type GormTransactions struct{ gormTable[domain.Transaction] }

var _ TransactionRepository = GormTransactions{}

// Delete удаляет позиции и шапку одной транзакцией БД
func (tr GormTransactions) Delete(ctx context.Context, id int64) error {
	return conn(ctx, tr.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", id).Delete(&domain.TransactionItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Transaction{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (tr GormTransactions) CountByCustomer(ctx context.Context, id int64) (int, error) {
	return tr.count(ctx, "customer_id = ?", id)
}

func (tr GormTransactions) CountByProduct(ctx context.Context, id int64) (int, error) {
	var n int64
	err := conn(ctx, tr.db).Model(&domain.TransactionItem{}).
		Where("product_id = ?", id).
		Distinct("transaction_id").
		Count(&n).Error
	return int(n), err
}

func (tr GormTransactions) LastNumber(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	err := conn(ctx, tr.db).Model(&domain.Transaction{}).
		Where("number LIKE ?", prefix+"%").
		Order("LENGTH(number) DESC, number DESC").
		Limit(1).
		Pluck("number", &numbers).Error
	if err != nil || len(numbers) == 0 {
		return "", err
	}
	return numbers[0], nil
}

type GormUsers struct{ gormTable[domain.User] }

var _ UserRepository = GormUsers{}

func (u GormUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var v domain.User
	err := conn(ctx, u.db).Where("LOWER(username) = ?", strings.ToLower(username)).First(&v).Error
	if err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// GormTx транзакция БД, видимая репозиториям через контекст
type GormTx struct{ db *gorm.DB }

func (g GormTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, gormTxKey{}, tx))
	})
}

// Dialector драйвер gorm по имени хранилища
func Dialector(store, dsn string) (gorm.Dialector, error) {
	switch store {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported store %q", store)
}

// Migrate создаёт/обновляет схему
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Supplier{},
		&domain.Category{},
		&domain.Customer{},
		&domain.Product{},
		&domain.Transaction{},
		&domain.TransactionItem{},
		&domain.User{},
	)
}

// OpenGorm открывает БД, применяет миграции и собирает Store
func OpenGorm(d gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(d, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return NewGorm(db), nil
}

// NewGorm собирает Store поверх уже открытого соединения
func NewGorm(db *gorm.DB) *Store {
	return &Store{
		Suppliers:  gormTable[domain.Supplier]{db: db, search: []string{"name", "contact", "email"}, order: "id"},
		Categories: gormTable[domain.Category]{db: db, search: []string{"name", "description"}, order: "id"},
		Customers:  gormTable[domain.Customer]{db: db, search: []string{"name", "phone", "email"}, order: "id"},
		Products:   GormProducts{gormTable[domain.Product]{db: db, search: []string{"code", "name"}, order: "id"}},
		Transactions: GormTransactions{gormTable[domain.Transaction]{
			db: db, search: []string{"number", "note"}, order: "id DESC", preload: []string{"Items"},
		}},
		Users: GormUsers{gormTable[domain.User]{db: db, search: []string{"username"}, order: "id"}},
		Tx:    GormTx{db: db},
		close: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}
