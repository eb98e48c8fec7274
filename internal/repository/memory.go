package repository

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"inventaris/internal/domain"
)

// MemoryStore объединённое in-memory хранилище и простой генератор ID
type MemoryStore struct {
	mu sync.RWMutex
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

// table одна in-memory "таблица" с автоинкрементом
type table[T any] struct {
	store  *MemoryStore
	nextID int64
	rows   map[int64]T

	id     func(*T) *int64
	text   func(*T) []string // fields matched by ?search=
	unique func(*T) string   // "" when the row has no unique key
	clone  func(T) T
	desc   bool
}

func newTable[T any](store *MemoryStore, id func(*T) *int64, text func(*T) []string) *table[T] {
	return &table[T]{
		store:  store,
		nextID: 1,
		rows:   make(map[int64]T),
		id:     id,
		text:   text,
		clone:  func(v T) T { return v },
	}
}

func (t *table[T]) taken(v *T) bool {
	if t.unique == nil {
		return false
	}
	key := t.unique(v)
	if key == "" {
		return false
	}
	self := *t.id(v)
	for id, row := range t.rows {
		if id != self && strings.EqualFold(t.unique(&row), key) {
			return true
		}
	}
	return false
}

func (t *table[T]) Create(ctx context.Context, v *T) error {
	t.store.wlock(ctx)
	defer t.store.wunlock(ctx)
	*t.id(v) = 0
	if t.taken(v) {
		return ErrDuplicate
	}
	*t.id(v) = t.nextID
	t.nextID++
	t.rows[*t.id(v)] = t.clone(*v)
	return nil
}

func (t *table[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	t.store.rlock(ctx)
	defer t.store.runlock(ctx)
	v, ok := t.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := t.clone(v)
	return &cp, nil
}

func (t *table[T]) Update(ctx context.Context, v *T) error {
	t.store.wlock(ctx)
	defer t.store.wunlock(ctx)
	if _, ok := t.rows[*t.id(v)]; !ok {
		return ErrNotFound
	}
	if t.taken(v) {
		return ErrDuplicate
	}
	t.rows[*t.id(v)] = t.clone(*v)
	return nil
}

func (t *table[T]) Delete(ctx context.Context, id int64) error {
	t.store.wlock(ctx)
	defer t.store.wunlock(ctx)
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

func (t *table[T]) List(ctx context.Context, f Filter) ([]T, int, error) {
	t.store.rlock(ctx)
	defer t.store.runlock(ctx)
	out := make([]T, 0, len(t.rows))
	for _, v := range t.rows {
		if !containsIgnoreCase(f.Search, t.text(&v)...) {
			continue
		}
		out = append(out, t.clone(v))
	}
	slices.SortFunc(out, func(a, b T) int {
		if t.desc {
			return cmp.Compare(*t.id(&b), *t.id(&a))
		}
		return cmp.Compare(*t.id(&a), *t.id(&b))
	})
	return window(out, f), len(out), nil
}

// count число строк, удовлетворяющих условию
func (t *table[T]) count(ctx context.Context, pred func(*T) bool) int {
	t.store.rlock(ctx)
	defer t.store.runlock(ctx)
	n := 0
	for _, v := range t.rows {
		if pred(&v) {
			n++
		}
	}
	return n
}

// MemoryProducts репозиторий товаров поверх общей таблицы
type MemoryProducts struct{ *table[domain.Product] }

var _ ProductRepository = MemoryProducts{}

func (p MemoryProducts) CountByCategory(ctx context.Context, id int64) (int, error) {
	return p.count(ctx, func(v *domain.Product) bool { return v.CategoryID == id }), nil
}

func (p MemoryProducts) CountBySupplier(ctx context.Context, id int64) (int, error) {
	return p.count(ctx, func(v *domain.Product) bool { return v.SupplierID == id }), nil
}

// MemoryTransactions репозиторий транзакций; позиции получают собственные ID
type MemoryTransactions struct {
	*table[domain.Transaction]
	nextItemID *int64
}

var _ TransactionRepository = MemoryTransactions{}

func (tr MemoryTransactions) Create(ctx context.Context, v *domain.Transaction) error {
	tr.store.wlock(ctx)
	defer tr.store.wunlock(ctx)
	ctx = context.WithValue(ctx, txKey{}, true) // already holding the write lock
	if err := tr.table.Create(ctx, v); err != nil {
		return err
	}
	for i := range v.Items {
		v.Items[i].ID = *tr.nextItemID
		v.Items[i].TransactionID = v.ID
		*tr.nextItemID++
	}
	tr.rows[v.ID] = tr.clone(*v)
	return nil
}

func (tr MemoryTransactions) CountByCustomer(ctx context.Context, id int64) (int, error) {
	return tr.count(ctx, func(v *domain.Transaction) bool {
		return v.CustomerID != nil && *v.CustomerID == id
	}), nil
}

func (tr MemoryTransactions) CountByProduct(ctx context.Context, id int64) (int, error) {
	return tr.count(ctx, func(v *domain.Transaction) bool {
		return slices.ContainsFunc(v.Items, func(it domain.TransactionItem) bool { return it.ProductID == id })
	}), nil
}

func (tr MemoryTransactions) LastNumber(ctx context.Context, prefix string) (string, error) {
	tr.store.rlock(ctx)
	defer tr.store.runlock(ctx)
	last := ""
	for _, v := range tr.rows {
		if strings.HasPrefix(v.Number, prefix) && compareNumbers(v.Number, last) > 0 {
			last = v.Number
		}
	}
	return last, nil
}

// compareNumbers сравнивает номера с числовым суффиксом: сначала длина, затем текст
func compareNumbers(a, b string) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// MemoryUsers репозиторий пользователей
type MemoryUsers struct{ *table[domain.User] }

var _ UserRepository = MemoryUsers{}

func (u MemoryUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u.store.rlock(ctx)
	defer u.store.runlock(ctx)
	for _, v := range u.rows {
		if strings.EqualFold(v.Username, username) {
			cp := v
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// Tx manager using write lock to emulate transaction boundary
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if isTx(ctx) {
		return fn(ctx)
	}
	// Для in-memory используем блокировку записи и помечаем контекст, чтобы репозитории пропускали внутренние локи
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}

// NewMemory собирает Store на одном MemoryStore
func NewMemory() *Store {
	m := &MemoryStore{}

	products := newTable(m,
		func(v *domain.Product) *int64 { return &v.ID },
		func(v *domain.Product) []string { return []string{v.Code, v.Name} })
	products.unique = func(v *domain.Product) string { return v.Code }

	transactions := newTable(m,
		func(v *domain.Transaction) *int64 { return &v.ID },
		func(v *domain.Transaction) []string { return []string{v.Number, v.Note} })
	transactions.unique = func(v *domain.Transaction) string { return v.Number }
	transactions.clone = func(v domain.Transaction) domain.Transaction {
		v.Items = slices.Clone(v.Items)
		if v.CustomerID != nil {
			id := *v.CustomerID
			v.CustomerID = &id
		}
		return v
	}
	transactions.desc = true

	users := newTable(m,
		func(v *domain.User) *int64 { return &v.ID },
		func(v *domain.User) []string { return []string{v.Username, v.Email} })
	users.unique = func(v *domain.User) string { return v.Username }

	firstItemID := int64(1)
	return &Store{
		Suppliers: newTable(m,
			func(v *domain.Supplier) *int64 { return &v.ID },
			func(v *domain.Supplier) []string { return []string{v.Name, v.Contact, v.Email} }),
		Categories: newTable(m,
			func(v *domain.Category) *int64 { return &v.ID },
			func(v *domain.Category) []string { return []string{v.Name, v.Description} }),
		Customers: newTable(m,
			func(v *domain.Customer) *int64 { return &v.ID },
			func(v *domain.Customer) []string { return []string{v.Name, v.Phone, v.Email} }),
		Products:     MemoryProducts{products},
		Transactions: MemoryTransactions{table: transactions, nextItemID: &firstItemID},
		Users:        MemoryUsers{users},
		Tx:           NewMemoryTx(m),
	}
}
