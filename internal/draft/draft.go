package draft

import (
	"fmt"

	"github.com/shopspring/decimal"

	"inventaris/internal/domain"
)

// LineItem подтверждённая позиция черновика; после добавления не меняется
type LineItem struct {
	ProductID   int64
	ProductCode string
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// Draft несохранённая транзакция, принадлежит одному открытому диалогу
type Draft struct {
	typ           domain.TransactionType
	customerID    *int64
	paymentStatus domain.PaymentStatus
	paymentMethod domain.PaymentMethod
	note          string
	items         []LineItem
}

// New пустой черновик продажи с оплатой наличными
func New() *Draft {
	return &Draft{
		typ:           domain.TransactionSale,
		paymentStatus: domain.PaymentPaid,
		paymentMethod: domain.PaymentCash,
	}
}

func (d *Draft) Type() domain.TransactionType { return d.typ }
func (d *Draft) PaymentStatus() domain.PaymentStatus { return d.paymentStatus }
func (d *Draft) PaymentMethod() domain.PaymentMethod { return d.paymentMethod }
func (d *Draft) Note() string { return d.note }
func (d *Draft) Len() int { return len(d.items) }
func (d *Draft) IsSale() bool { return d.typ == domain.TransactionSale }

// CustomerID nil, если покупатель не выбран
func (d *Draft) CustomerID() *int64 {
	if d.customerID == nil {
		return nil
	}
	id := *d.customerID
	return &id
}

// Items копия позиций в порядке добавления
func (d *Draft) Items() []LineItem {
	out := make([]LineItem, len(d.items))
	copy(out, d.items)
	return out
}

// Total сумма подытогов черновика
func (d *Draft) Total() decimal.Decimal { return Total(d.items) }

// Total сумма подытогов позиций
func Total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal)
	}
	return sum
}

// RemoveItem удаляет позицию по индексу; индекс вне диапазона игнорируется
func (d *Draft) RemoveItem(i int) bool {
	if i < 0 || i >= len(d.items) {
		return false
	}
	d.items = append(d.items[:i:i], d.items[i+1:]...)
	return true
}

// Change изменение поля заголовка черновика; набор вариантов закрыт
type Change interface {
	apply(d *Draft) error
}

type SetType struct{ Type domain.TransactionType }

type SetCustomer struct{ ID int64 }

type ClearCustomer struct{}

type SetPaymentStatus struct{ Status domain.PaymentStatus }

type SetPaymentMethod struct{ Method domain.PaymentMethod }

type SetNote struct{ Note string }

func (c SetType) apply(d *Draft) error {
	if !c.Type.Valid() {
		return fmt.Errorf("%w: transaction type %q", ErrInvalidValue, c.Type)
	}
	d.typ = c.Type
	// purchases have no customer
	if c.Type == domain.TransactionPurchase {
		d.customerID = nil
	}
	return nil
}

func (c SetCustomer) apply(d *Draft) error {
	if c.ID <= 0 {
		return fmt.Errorf("%w: customer id %d", ErrInvalidValue, c.ID)
	}
	id := c.ID
	d.customerID = &id
	return nil
}

func (ClearCustomer) apply(d *Draft) error {
	d.customerID = nil
	return nil
}

func (c SetPaymentStatus) apply(d *Draft) error {
	if !c.Status.Valid() {
		return fmt.Errorf("%w: payment status %q", ErrInvalidValue, c.Status)
	}
	d.paymentStatus = c.Status
	return nil
}

func (c SetPaymentMethod) apply(d *Draft) error {
	if !c.Method.Valid() {
		return fmt.Errorf("%w: payment method %q", ErrInvalidValue, c.Method)
	}
	d.paymentMethod = c.Method
	return nil
}

func (c SetNote) apply(d *Draft) error {
	d.note = c.Note
	return nil
}

// Apply применяет изменение; при ошибке черновик не меняется
func (d *Draft) Apply(ch Change) error {
	return ch.apply(d)
}

// Validate проверки перед отправкой
func (d *Draft) Validate() error {
	if len(d.items) == 0 {
		return ErrEmptyDraft
	}
	if d.IsSale() && d.customerID == nil {
		return ErrCustomerRequired
	}
	return nil
}

// Payload тело запроса на создание; цены и суммы не передаются
func (d *Draft) Payload() (domain.TransactionRequest, error) {
	if err := d.Validate(); err != nil {
		return domain.TransactionRequest{}, err
	}
	req := domain.TransactionRequest{
		Type:          d.typ,
		PaymentStatus: d.paymentStatus,
		PaymentMethod: d.paymentMethod,
		Note:          d.note,
		Items:         make([]domain.TransactionItemRequest, 0, len(d.items)),
	}
	if d.IsSale() {
		req.CustomerID = d.CustomerID()
	}
	for _, it := range d.items {
		req.Items = append(req.Items, domain.TransactionItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return req, nil
}
