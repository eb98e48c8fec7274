package draft

import (
	"errors"
	"fmt"
)

var (
	ErrNoProduct        = errors.New("no product selected")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrNegativePrice    = errors.New("unit price must not be negative")
	ErrEmptyDraft       = errors.New("draft has no items")
	ErrCustomerRequired = errors.New("customer is required for a sale")
	ErrInvalidValue     = errors.New("invalid value")
	ErrNotOpen          = errors.New("entry dialog is not open")
	ErrBusy             = errors.New("submission in progress")
)

// InsufficientStockError продажа больше известного остатка (проверка на клиенте, сервер главнее)
type InsufficientStockError struct {
	ProductName string
	Available   int64
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

// IsValidation сообщает, что ошибка является клиентской валидация (сетевой вызов не выполнялся)
func IsValidation(err error) bool {
	var stock *InsufficientStockError
	switch {
	case errors.As(err, &stock),
		errors.Is(err, ErrNoProduct),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrNegativePrice),
		errors.Is(err, ErrEmptyDraft),
		errors.Is(err, ErrCustomerRequired),
		errors.Is(err, ErrInvalidValue):
		return true
	}
	return false
}
