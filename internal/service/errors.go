package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotEnoughStock = errors.New("not enough stock")
	// ErrInUse запись упоминается другими записями и не может быть удалена
	ErrInUse = errors.New("in use")
)

// Violations ошибки валидации по полям (ключ: имя поля в JSON)
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

func (v Violations) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v[field] = "wajib diisi"
	}
}

func (v Violations) NotNegative(field string, negative bool) {
	if negative {
		v[field] = "tidak boleh negatif"
	}
}

// Err возвращает nil, если нарушений нет
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Fields: v}
}

// ValidationError ошибка ввода с картой полей; errors.Is(err, ErrInvalidInput) == true
type ValidationError struct {
	Fields Violations
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(field, msg string) error {
	return &ValidationError{Fields: Violations{field: msg}}
}

// StockError остатка не хватает для продажи
type StockError struct {
	Product   string
	Available int64
	Requested int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Stok %s tidak cukup. Tersedia: %d, diminta: %d", e.Product, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error { return ErrNotEnoughStock }

// InUseError удаление запрещено: на запись ссылаются другие
type InUseError struct {
	What string
	By   string
	N    int
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("%s tidak dapat dihapus karena masih digunakan oleh %d %s", e.What, e.N, e.By)
}

func (e *InUseError) Unwrap() error { return ErrInUse }
