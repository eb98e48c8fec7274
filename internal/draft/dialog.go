package draft

import (
	"context"

	"inventaris/internal/domain"
)

// State состояние диалога ввода транзакции
type State int

const (
	Closed State = iota
	Open
	Submitting
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	default:
		return "closed"
	}
}

// Dialog CLOSED -> OPEN -> SUBMITTING -> CLOSED | OPEN(с ошибкой)
type Dialog struct {
	state    State
	gen      uint64
	draft    *Draft
	composer *Composer
	err      error
}

func NewDialog() *Dialog {
	return &Dialog{}
}

func (d *Dialog) State() State { return d.state }

// Generation меняется при каждом открытии; ответы старых поколений игнорируются
func (d *Dialog) Generation() uint64 { return d.gen }

// Err последняя ошибка (валидация или отказ сервера); nil после успешного действия
func (d *Dialog) Err() error { return d.err }

func (d *Dialog) Draft() *Draft { return d.draft }

func (d *Dialog) Composer() *Composer { return d.composer }

// Open начинает новый пустой черновик
func (d *Dialog) Open() (uint64, error) {
	if d.state == Submitting {
		return d.gen, ErrBusy
	}
	d.gen++
	d.draft = New()
	d.composer = NewComposer(d.draft)
	d.err = nil
	d.state = Open
	return d.gen, nil
}

// Close отбрасывает черновик; поздний ответ на отправку будет проигнорирован
func (d *Dialog) Close() {
	d.state = Closed
	d.draft = nil
	d.composer = nil
	d.err = nil
}

func (d *Dialog) editable() error {
	switch d.state {
	case Open:
		return nil
	case Submitting:
		return ErrBusy
	}
	return ErrNotOpen
}

func (d *Dialog) record(err error) error {
	d.err = err
	return err
}

// Change меняет поле заголовка; смена вида транзакции пересчитывает цену рабочей строки
func (d *Dialog) Change(ch Change) error {
	if err := d.editable(); err != nil {
		return err
	}
	if err := d.draft.Apply(ch); err != nil {
		return d.record(err)
	}
	if _, ok := ch.(SetType); ok {
		d.composer.reprice()
	}
	return d.record(nil)
}

func (d *Dialog) SetLine(ch LineChange) error {
	if err := d.editable(); err != nil {
		return err
	}
	d.composer.Set(ch)
	return nil
}

func (d *Dialog) AddItem() (LineItem, error) {
	if err := d.editable(); err != nil {
		return LineItem{}, err
	}
	it, err := d.composer.AddItem()
	return it, d.record(err)
}

func (d *Dialog) RemoveItem(i int) bool {
	if d.editable() != nil {
		return false
	}
	return d.draft.RemoveItem(i)
}

// BeginSubmit валидирует черновик и переводит диалог в SUBMITTING
func (d *Dialog) BeginSubmit() (domain.TransactionRequest, uint64, error) {
	if err := d.editable(); err != nil {
		return domain.TransactionRequest{}, d.gen, err
	}
	req, err := d.draft.Payload()
	if err != nil {
		return domain.TransactionRequest{}, d.gen, d.record(err)
	}
	d.err = nil
	d.state = Submitting
	return req, d.gen, nil
}

// Complete завершает отправку поколения gen. Возвращает false, если ответ устарел.
func (d *Dialog) Complete(gen uint64, err error) bool {
	if gen != d.gen || d.state != Submitting {
		return false
	}
	if err != nil {
		d.state = Open
		d.err = err
		return true
	}
	d.Close()
	return true
}

// Submit синхронный вариант BeginSubmit + Dispatch + Complete
func (d *Dialog) Submit(ctx context.Context, g *Gate) (domain.Transaction, error) {
	req, gen, err := d.BeginSubmit()
	if err != nil {
		return domain.Transaction{}, err
	}
	tx, err := g.Dispatch(ctx, req)
	d.Complete(gen, err)
	return tx, err
}
