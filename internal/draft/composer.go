package draft

import (
	"github.com/shopspring/decimal"

	"inventaris/internal/domain"
)

// Line редактируемая строка до подтверждения
type Line struct {
	Product   *domain.Product
	Quantity  int64
	UnitPrice decimal.Decimal
}

func emptyLine() Line {
	return Line{Quantity: 1, UnitPrice: decimal.Zero}
}

// Subtotal предварительный подытог строки
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// LineChange изменение рабочей строки; набор вариантов закрыт
type LineChange interface {
	applyLine(c *Composer)
}

// SelectProduct выбирает товар и подставляет цену по виду транзакции
type SelectProduct struct{ Product domain.Product }

type ClearProduct struct{}

type SetQuantity struct{ Quantity int64 }

type SetUnitPrice struct{ Price decimal.Decimal }

func (ch SelectProduct) applyLine(c *Composer) {
	p := ch.Product
	c.line.Product = &p
	c.line.UnitPrice = p.PriceFor(c.draft.Type())
}

func (ClearProduct) applyLine(c *Composer) {
	c.line.Product = nil
	c.line.UnitPrice = decimal.Zero
}

func (ch SetQuantity) applyLine(c *Composer) { c.line.Quantity = ch.Quantity }

func (ch SetUnitPrice) applyLine(c *Composer) { c.line.UnitPrice = ch.Price }

// Composer собирает строку и добавляет её в черновик
type Composer struct {
	draft *Draft
	line  Line
}

func NewComposer(d *Draft) *Composer {
	return &Composer{draft: d, line: emptyLine()}
}

func (c *Composer) Draft() *Draft { return c.draft }

// Line копия рабочей строки
func (c *Composer) Line() Line {
	l := c.line
	if l.Product != nil {
		p := *l.Product
		l.Product = &p
	}
	return l
}

func (c *Composer) Set(ch LineChange) { ch.applyLine(c) }

// Reset очищает рабочую строку
func (c *Composer) Reset() { c.line = emptyLine() }

// reprice пересчитывает цену выбранного товара после смены вида транзакции
func (c *Composer) reprice() {
	if c.line.Product != nil {
		c.line.UnitPrice = c.line.Product.PriceFor(c.draft.Type())
	}
}

// AddItem проверяет строку и добавляет её в черновик. При ошибке черновик не меняется.
func (c *Composer) AddItem() (LineItem, error) {
	l := c.line
	if l.Product == nil {
		return LineItem{}, ErrNoProduct
	}
	if l.Quantity <= 0 {
		return LineItem{}, ErrInvalidQuantity
	}
	if l.UnitPrice.IsNegative() {
		return LineItem{}, ErrNegativePrice
	}
	if c.draft.IsSale() && l.Quantity > l.Product.Stock {
		return LineItem{}, &InsufficientStockError{
			ProductName: l.Product.Name,
			Available:   l.Product.Stock,
			Requested:   l.Quantity,
		}
	}

	item := LineItem{
		ProductID:   l.Product.ID,
		ProductCode: l.Product.Code,
		ProductName: l.Product.Name,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		Subtotal:    l.Subtotal(),
	}
	c.draft.items = append(c.draft.items, item)
	c.line = emptyLine()
	return item, nil
}
