package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLowStock(t *testing.T) {
	products := []Product{
		{ID: 1, Stock: 3, MinStock: 5},
		{ID: 2, Stock: 5, MinStock: 5},
		{ID: 3, Stock: 6, MinStock: 5},
	}
	low := LowStock(products)
	if len(low) != 2 || low[0].ID != 1 || low[1].ID != 2 {
		t.Fatalf("expected products 1 and 2, got %+v", low)
	}
	if got := LowStock(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestPriceFor(t *testing.T) {
	p := Product{PurchasePrice: decimal.NewFromInt(7000), SalePrice: decimal.NewFromInt(10000)}
	if !p.PriceFor(TransactionSale).Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("sale price expected")
	}
	if !p.PriceFor(TransactionPurchase).Equal(decimal.NewFromInt(7000)) {
		t.Fatalf("purchase price expected")
	}
}

func TestParse(t *testing.T) {
	if v, err := ParseTransactionType(" sale "); err != nil || v != TransactionSale {
		t.Fatalf("sale: %v %v", v, err)
	}
	if v, err := ParseTransactionType("pembelian"); err != nil || v != TransactionPurchase {
		t.Fatalf("purchase: %v %v", v, err)
	}
	if _, err := ParseTransactionType("refund"); err == nil {
		t.Fatalf("expected error")
	}
	if v, err := ParsePaymentStatus("belum_lunas"); err != nil || v != PaymentUnpaid {
		t.Fatalf("status: %v %v", v, err)
	}
	if _, err := ParsePaymentMethod("cheque"); err == nil {
		t.Fatalf("expected error")
	}
	if got := Label(PaymentDebitCard); got != "KARTU DEBIT" {
		t.Fatalf("label: %q", got)
	}
}

func TestTransactionRequest_NullCustomer(t *testing.T) {
	raw, err := json.Marshal(TransactionRequest{Type: TransactionPurchase, Items: []TransactionItemRequest{{ProductID: 1, Quantity: 2}}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := m["customer"]; !ok || v != nil {
		t.Fatalf("customer must be present and null, got %v", m)
	}
	items := m["items"].([]any)
	if items[0].(map[string]any)["jumlah"] != float64(2) {
		t.Fatalf("unexpected items %v", items)
	}
}
