package draft

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventaris/internal/apiclient"
	"inventaris/internal/domain"
)

func product(id int64, price int64, stock int64) domain.Product {
	return domain.Product{
		ID:            id,
		Code:          fmt.Sprintf("P%d", id),
		Name:          fmt.Sprintf("Produk %d", id),
		PurchasePrice: decimal.NewFromInt(price / 2),
		SalePrice:     decimal.NewFromInt(price),
		Stock:         stock,
		MinStock:      1,
		Status:        domain.StatusActive,
	}
}

func add(t *testing.T, c *Composer, p domain.Product, qty int64) {
	t.Helper()
	c.Set(SelectProduct{Product: p})
	c.Set(SetQuantity{Quantity: qty})
	_, err := c.AddItem()
	require.NoError(t, err)
}

type fakeCreator struct {
	calls int
	last  any
	err   error
}

func (f *fakeCreator) Create(_ context.Context, in any) (domain.Transaction, error) {
	f.calls++
	f.last = in
	if f.err != nil {
		return domain.Transaction{}, f.err
	}
	return domain.Transaction{ID: 1, Number: "TRX-1"}, nil
}

func TestScenario_AddAddRemove(t *testing.T) {
	d := New()
	c := NewComposer(d)

	add(t, c, product(1, 10000, 50), 2)
	assert.True(t, d.Total().Equal(decimal.NewFromInt(20000)), "got %s", d.Total())

	add(t, c, product(2, 5000, 50), 3)
	assert.True(t, d.Total().Equal(decimal.NewFromInt(35000)), "got %s", d.Total())

	require.True(t, d.RemoveItem(0))
	assert.True(t, d.Total().Equal(decimal.NewFromInt(15000)), "got %s", d.Total())
	require.Len(t, d.Items(), 1)
	assert.Equal(t, int64(2), d.Items()[0].ProductID)
}

func TestSelectProduct_PriceByType(t *testing.T) {
	d := New()
	c := NewComposer(d)
	p := product(1, 10000, 5)

	c.Set(SelectProduct{Product: p})
	assert.True(t, c.Line().UnitPrice.Equal(p.SalePrice))

	require.NoError(t, d.Apply(SetType{Type: domain.TransactionPurchase}))
	c.Set(SelectProduct{Product: p})
	assert.True(t, c.Line().UnitPrice.Equal(p.PurchasePrice))
}

func TestAddItem_ResetsLine(t *testing.T) {
	d := New()
	c := NewComposer(d)
	add(t, c, product(1, 100, 5), 2)

	l := c.Line()
	assert.Nil(t, l.Product)
	assert.Equal(t, int64(1), l.Quantity)
	assert.True(t, l.UnitPrice.IsZero())

	it := d.Items()[0]
	assert.Equal(t, "P1", it.ProductCode)
	assert.True(t, it.Subtotal.Equal(decimal.NewFromInt(200)))
}

func TestAddItem_Validation(t *testing.T) {
	t.Run("no product", func(t *testing.T) {
		d := New()
		c := NewComposer(d)
		_, err := c.AddItem()
		assert.ErrorIs(t, err, ErrNoProduct)
		assert.Equal(t, 0, d.Len())
	})

	for _, qty := range []int64{0, -1, -100} {
		d := New()
		c := NewComposer(d)
		c.Set(SelectProduct{Product: product(1, 100, 5)})
		c.Set(SetQuantity{Quantity: qty})
		_, err := c.AddItem()
		assert.ErrorIs(t, err, ErrInvalidQuantity, "qty %d", qty)
		assert.Equal(t, 0, d.Len(), "qty %d must not mutate", qty)
		assert.NotNil(t, c.Line().Product, "failed add keeps the working line")
	}

	t.Run("negative price", func(t *testing.T) {
		d := New()
		c := NewComposer(d)
		c.Set(SelectProduct{Product: product(1, 100, 5)})
		c.Set(SetUnitPrice{Price: decimal.NewFromInt(-1)})
		_, err := c.AddItem()
		assert.ErrorIs(t, err, ErrNegativePrice)
		assert.Equal(t, 0, d.Len())
	})
}

func TestAddItem_SaleOverStock(t *testing.T) {
	d := New()
	c := NewComposer(d)
	c.Set(SelectProduct{Product: product(1, 100, 3)})
	c.Set(SetQuantity{Quantity: 4})

	_, err := c.AddItem()
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(3), stockErr.Available)
	assert.Equal(t, int64(4), stockErr.Requested)
	assert.Contains(t, err.Error(), "available 3")
	assert.Equal(t, 0, d.Len())
	assert.True(t, IsValidation(err))
}

func TestAddItem_PurchaseIgnoresStock(t *testing.T) {
	d := New()
	require.NoError(t, d.Apply(SetType{Type: domain.TransactionPurchase}))
	c := NewComposer(d)
	add(t, c, product(1, 100, 0), 40)
	assert.Equal(t, 1, d.Len())
	assert.True(t, d.Total().Equal(decimal.NewFromInt(50*40)))
}

func TestRemoveItem_OutOfRange(t *testing.T) {
	d := New()
	c := NewComposer(d)
	add(t, c, product(1, 100, 5), 1)

	assert.False(t, d.RemoveItem(-1))
	assert.False(t, d.RemoveItem(1))
	assert.Equal(t, 1, d.Len())
}

func TestTotal_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		d := New()
		c := NewComposer(d)
		want := decimal.Zero
		n := rng.Intn(10) + 1
		for i := 0; i < n; i++ {
			price := int64(rng.Intn(100000))
			qty := int64(rng.Intn(20) + 1)
			add(t, c, product(int64(i+1), price, 1000), qty)
			want = want.Add(decimal.NewFromInt(price * qty))
		}
		require.True(t, d.Total().Equal(want), "round %d: %s != %s", round, d.Total(), want)

		// removing line i subtracts exactly its subtotal
		i := rng.Intn(d.Len())
		removed := d.Items()[i].Subtotal
		before := d.Total()
		d.RemoveItem(i)
		require.True(t, d.Total().Equal(before.Sub(removed)))
	}
}

func TestApply_RejectsUnknownValues(t *testing.T) {
	d := New()
	assert.ErrorIs(t, d.Apply(SetType{Type: "HIBAH"}), ErrInvalidValue)
	assert.ErrorIs(t, d.Apply(SetPaymentStatus{Status: "GRATIS"}), ErrInvalidValue)
	assert.ErrorIs(t, d.Apply(SetPaymentMethod{Method: "CEK"}), ErrInvalidValue)
	assert.ErrorIs(t, d.Apply(SetCustomer{ID: 0}), ErrInvalidValue)
	assert.Equal(t, domain.TransactionSale, d.Type())
	assert.Equal(t, domain.PaymentPaid, d.PaymentStatus())
	assert.Equal(t, domain.PaymentCash, d.PaymentMethod())
}

func TestPayload(t *testing.T) {
	d := New()
	c := NewComposer(d)
	add(t, c, product(7, 100, 5), 2)
	require.NoError(t, d.Apply(SetCustomer{ID: 3}))
	require.NoError(t, d.Apply(SetPaymentStatus{Status: domain.PaymentInstallment}))
	require.NoError(t, d.Apply(SetPaymentMethod{Method: domain.PaymentEWallet}))
	require.NoError(t, d.Apply(SetNote{Note: "antar sore"}))

	req, err := d.Payload()
	require.NoError(t, err)
	require.NotNil(t, req.CustomerID)
	assert.Equal(t, int64(3), *req.CustomerID)
	assert.Equal(t, domain.TransactionSale, req.Type)
	assert.Equal(t, domain.PaymentInstallment, req.PaymentStatus)
	assert.Equal(t, domain.PaymentEWallet, req.PaymentMethod)
	assert.Equal(t, "antar sore", req.Note)
	assert.Equal(t, []domain.TransactionItemRequest{{ProductID: 7, Quantity: 2}}, req.Items)

	// purchase never carries a customer
	require.NoError(t, d.Apply(SetType{Type: domain.TransactionPurchase}))
	req, err = d.Payload()
	require.NoError(t, err)
	assert.Nil(t, req.CustomerID)
}

func TestSetType_PurchaseClearsCustomer(t *testing.T) {
	d := New()
	require.NoError(t, d.Apply(SetCustomer{ID: 7}))
	require.NoError(t, d.Apply(SetType{Type: domain.TransactionPurchase}))
	assert.Nil(t, d.CustomerID())

	// back to sale: the customer has to be chosen again
	require.NoError(t, d.Apply(SetType{Type: domain.TransactionSale}))
	assert.Nil(t, d.CustomerID())
	assert.ErrorIs(t, d.Validate(), ErrEmptyDraft)
	add(t, NewComposer(d), product(1, 100, 5), 1)
	assert.ErrorIs(t, d.Validate(), ErrCustomerRequired)
}

func TestGate_EmptyDraftNoCall(t *testing.T) {
	fc := &fakeCreator{}
	_, err := NewGate(fc).Submit(context.Background(), New())
	assert.ErrorIs(t, err, ErrEmptyDraft)
	assert.Equal(t, 0, fc.calls)
}

func TestGate_SaleWithoutCustomerNoCall(t *testing.T) {
	fc := &fakeCreator{}
	d := New()
	add(t, NewComposer(d), product(1, 100, 5), 1)

	_, err := NewGate(fc).Submit(context.Background(), d)
	assert.ErrorIs(t, err, ErrCustomerRequired)
	assert.Equal(t, 0, fc.calls)
}

func TestGate_PurchaseWithoutCustomer(t *testing.T) {
	fc := &fakeCreator{}
	d := New()
	require.NoError(t, d.Apply(SetType{Type: domain.TransactionPurchase}))
	add(t, NewComposer(d), product(1, 100, 0), 10)

	tx, err := NewGate(fc).Submit(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, "TRX-1", tx.Number)
	assert.Equal(t, 1, fc.calls)
	req, ok := fc.last.(domain.TransactionRequest)
	require.True(t, ok)
	assert.Nil(t, req.CustomerID)
}

func TestGate_ServerRejectionKeepsDraft(t *testing.T) {
	fc := &fakeCreator{err: &apiclient.APIError{Status: 400, Detail: "Stok Indomie tidak cukup"}}
	d := New()
	require.NoError(t, d.Apply(SetCustomer{ID: 1}))
	add(t, NewComposer(d), product(1, 100, 5), 1)

	_, err := NewGate(fc).Submit(context.Background(), d)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Stok Indomie tidak cukup", apiErr.Detail)
	assert.False(t, IsValidation(err))
	assert.Equal(t, 1, d.Len())
}

func TestDialog_Lifecycle(t *testing.T) {
	fc := &fakeCreator{}
	g := NewGate(fc)
	dlg := NewDialog()
	assert.Equal(t, Closed, dlg.State())
	_, err := dlg.AddItem()
	assert.ErrorIs(t, err, ErrNotOpen)

	_, err = dlg.Open()
	require.NoError(t, err)
	assert.Equal(t, Open, dlg.State())

	// customer missing
	require.NoError(t, dlg.SetLine(SelectProduct{Product: product(1, 100, 5)}))
	_, err = dlg.AddItem()
	require.NoError(t, err)
	_, err = dlg.Submit(context.Background(), g)
	assert.ErrorIs(t, err, ErrCustomerRequired)
	assert.ErrorIs(t, dlg.Err(), ErrCustomerRequired)
	assert.Equal(t, Open, dlg.State())
	assert.Equal(t, 0, fc.calls)

	// server failure returns to open with error and intact draft
	require.NoError(t, dlg.Change(SetCustomer{ID: 9}))
	assert.NoError(t, dlg.Err())
	fc.err = errors.New("boom")
	_, err = dlg.Submit(context.Background(), g)
	assert.Error(t, err)
	assert.Equal(t, Open, dlg.State())
	assert.Error(t, dlg.Err())
	assert.Equal(t, 1, dlg.Draft().Len())

	// success closes and discards the draft
	fc.err = nil
	_, err = dlg.Submit(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, Closed, dlg.State())
	assert.Nil(t, dlg.Draft())
}

func TestDialog_StaleCompletionIgnored(t *testing.T) {
	dlg := NewDialog()
	gen, _ := dlg.Open()
	require.NoError(t, dlg.Change(SetCustomer{ID: 1}))
	require.NoError(t, dlg.SetLine(SelectProduct{Product: product(1, 100, 5)}))
	_, err := dlg.AddItem()
	require.NoError(t, err)

	_, submitGen, err := dlg.BeginSubmit()
	require.NoError(t, err)
	assert.Equal(t, gen, submitGen)
	assert.Equal(t, Submitting, dlg.State())

	_, err = dlg.AddItem()
	assert.ErrorIs(t, err, ErrBusy)
	_, err = dlg.Open()
	assert.ErrorIs(t, err, ErrBusy)

	// user closes mid-request and opens a fresh dialog
	dlg.Close()
	newGen, err := dlg.Open()
	require.NoError(t, err)
	assert.NotEqual(t, submitGen, newGen)

	assert.False(t, dlg.Complete(submitGen, nil), "late response for an old dialog")
	assert.Equal(t, Open, dlg.State())
	assert.Equal(t, 0, dlg.Draft().Len())
}

func TestDialog_TypeChangeReprices(t *testing.T) {
	dlg := NewDialog()
	_, _ = dlg.Open()
	p := product(1, 10000, 5)
	require.NoError(t, dlg.SetLine(SelectProduct{Product: p}))
	require.NoError(t, dlg.Change(SetType{Type: domain.TransactionPurchase}))
	assert.True(t, dlg.Composer().Line().UnitPrice.Equal(p.PurchasePrice))
}
