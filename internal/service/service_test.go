package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"inventaris/internal/domain"
	"inventaris/internal/repository"
)

type fixture struct {
	store        *repository.Store
	suppliers    *Catalog[domain.Supplier]
	categories   *Catalog[domain.Category]
	customers    *Catalog[domain.Customer]
	products     *Catalog[domain.Product]
	transactions *TransactionService

	customer domain.Customer
}

func setup(t *testing.T) *fixture {
	t.Helper()
	s := repository.NewMemory()
	svc := New(s)
	f := &fixture{
		store:        s,
		suppliers:    svc.Suppliers,
		categories:   svc.Categories,
		customers:    svc.Customers,
		products:     svc.Products,
		transactions: svc.Transactions,
	}
	f.transactions.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }
	c, err := f.customers.Create(context.Background(), domain.Customer{Name: "Budi"})
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	f.customer = *c
	return f
}

func (f *fixture) product(t *testing.T, code string, buy, sell, stock int64) *domain.Product {
	t.Helper()
	ctx := context.Background()
	cat, err := f.categories.Create(ctx, domain.Category{Name: "Kategori " + code})
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	sup, err := f.suppliers.Create(ctx, domain.Supplier{Name: "Supplier " + code})
	if err != nil {
		t.Fatalf("supplier: %v", err)
	}
	p, err := f.products.Create(ctx, domain.Product{
		Code: code, Name: "Produk " + code, CategoryID: cat.ID, SupplierID: sup.ID,
		PurchasePrice: decimal.NewFromInt(buy), SalePrice: decimal.NewFromInt(sell),
		Stock: stock, MinStock: 3,
	})
	if err != nil {
		t.Fatalf("product %s: %v", code, err)
	}
	return p
}

func (f *fixture) stock(t *testing.T, id int64) int64 {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	return p.Stock
}

func (f *fixture) sale(items ...domain.TransactionItemRequest) domain.TransactionRequest {
	return domain.TransactionRequest{
		Type: domain.TransactionSale, CustomerID: &f.customer.ID,
		PaymentStatus: domain.PaymentPaid, PaymentMethod: domain.PaymentCash, Items: items,
	}
}

func TestProduct_DerivedFields(t *testing.T) {
	f := setup(t)
	p := f.product(t, "A", 1000, 1500, 3)
	if p.CategoryName != "Kategori A" || p.SupplierName != "Supplier A" {
		t.Fatalf("names not filled: %+v", p)
	}
	if !p.LowStock {
		t.Fatalf("stock equal to minimum must be low")
	}
	if p.Status != domain.StatusActive {
		t.Fatalf("default status: %s", p.Status)
	}
}

func TestProduct_Validation(t *testing.T) {
	f := setup(t)
	_, err := f.products.Create(context.Background(), domain.Product{
		Code: "", Name: "X", SalePrice: decimal.NewFromInt(-1), CategoryID: 99, SupplierID: 99,
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"kode_produk", "harga_jual", "kategori", "supplier"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Fatalf("missing violation for %s: %v", field, verr.Fields)
		}
	}
}

func TestCreateSale_MovesStockAndPrices(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.product(t, "A", 7000, 10000, 10)
	b := f.product(t, "B", 3000, 5000, 4)

	tr, err := f.transactions.Create(ctx, f.sale(
		domain.TransactionItemRequest{ProductID: a.ID, Quantity: 2},
		domain.TransactionItemRequest{ProductID: b.ID, Quantity: 3},
	))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !tr.Total.Equal(decimal.NewFromInt(35000)) {
		t.Fatalf("total expected 35000, got %s", tr.Total)
	}
	if tr.Number != "TRX-20250314-0001" {
		t.Fatalf("number: %s", tr.Number)
	}
	if tr.CustomerName != "Budi" {
		t.Fatalf("customer name: %q", tr.CustomerName)
	}
	if f.stock(t, a.ID) != 8 || f.stock(t, b.ID) != 1 {
		t.Fatalf("stock not decreased: %d %d", f.stock(t, a.ID), f.stock(t, b.ID))
	}

	second, err := f.transactions.Create(ctx, f.sale(domain.TransactionItemRequest{ProductID: a.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.Number != "TRX-20250314-0002" {
		t.Fatalf("second number: %s", second.Number)
	}
}

func TestCreate_NumberAfterDelete(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.product(t, "A", 7000, 10000, 10)
	item := domain.TransactionItemRequest{ProductID: a.ID, Quantity: 1}

	first, err := f.transactions.Create(ctx, f.sale(item))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.transactions.Create(ctx, f.sale(item)); err != nil {
		t.Fatal(err)
	}
	if err := f.transactions.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	third, err := f.transactions.Create(ctx, f.sale(item))
	if err != nil {
		t.Fatalf("create after delete: %v", err)
	}
	if third.Number != "TRX-20250314-0003" {
		t.Fatalf("number after delete: %s", third.Number)
	}
}

func TestCreatePurchase_UsesPurchasePriceAndDropsCustomer(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.product(t, "A", 7000, 10000, 0)

	req := f.sale(domain.TransactionItemRequest{ProductID: a.ID, Quantity: 5})
	req.Type = domain.TransactionPurchase
	tr, err := f.transactions.Create(ctx, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tr.CustomerID != nil {
		t.Fatalf("purchase must not keep customer")
	}
	if !tr.Total.Equal(decimal.NewFromInt(35000)) {
		t.Fatalf("total expected 35000, got %s", tr.Total)
	}
	if f.stock(t, a.ID) != 5 {
		t.Fatalf("stock expected 5, got %d", f.stock(t, a.ID))
	}
}

func TestCreateSale_NotEnoughStockAggregated(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.product(t, "A", 1, 2, 3)

	_, err := f.transactions.Create(ctx, f.sale(
		domain.TransactionItemRequest{ProductID: a.ID, Quantity: 2},
		domain.TransactionItemRequest{ProductID: a.ID, Quantity: 2},
	))
	var serr *StockError
	if !errors.As(err, &serr) || !errors.Is(err, ErrNotEnoughStock) {
		t.Fatalf("expected stock error, got %v", err)
	}
	if serr.Available != 3 || serr.Requested != 4 {
		t.Fatalf("stock error: %+v", serr)
	}
	if f.stock(t, a.ID) != 3 {
		t.Fatalf("stock must stay untouched")
	}
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.product(t, "A", 1, 2, 3)

	noCustomer := f.sale(domain.TransactionItemRequest{ProductID: a.ID, Quantity: 1})
	noCustomer.CustomerID = nil
	badType := f.sale(domain.TransactionItemRequest{ProductID: a.ID, Quantity: 1})
	badType.Type = "RETUR"
	unknownProduct := f.sale(domain.TransactionItemRequest{ProductID: 404, Quantity: 1})

	cases := map[string]domain.TransactionRequest{
		"empty":           f.sale(),
		"zero quantity":   f.sale(domain.TransactionItemRequest{ProductID: a.ID, Quantity: 0}),
		"no customer":     noCustomer,
		"bad type":        badType,
		"unknown product": unknownProduct,
	}
	for name, req := range cases {
		if _, err := f.transactions.Create(ctx, req); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", name, err)
		}
	}
	if last, _ := f.store.Transactions.LastNumber(ctx, "TRX-"); last != "" {
		t.Fatalf("nothing should be stored, got %s", last)
	}
}

func TestDeleteTransaction_ReversesStock(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.product(t, "A", 1, 2, 10)

	sale, err := f.transactions.Create(ctx, f.sale(domain.TransactionItemRequest{ProductID: a.ID, Quantity: 4}))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.transactions.Delete(ctx, sale.ID); err != nil {
		t.Fatalf("delete sale: %v", err)
	}
	if f.stock(t, a.ID) != 10 {
		t.Fatalf("stock not restored: %d", f.stock(t, a.ID))
	}

	buy := f.sale(domain.TransactionItemRequest{ProductID: a.ID, Quantity: 5})
	buy.Type = domain.TransactionPurchase
	purchase, err := f.transactions.Create(ctx, buy)
	if err != nil {
		t.Fatal(err)
	}
	// sell most of it so the purchase can no longer be reversed
	if _, err := f.transactions.Create(ctx, f.sale(domain.TransactionItemRequest{ProductID: a.ID, Quantity: 12})); err != nil {
		t.Fatal(err)
	}
	if err := f.transactions.Delete(ctx, purchase.ID); !errors.Is(err, ErrNotEnoughStock) {
		t.Fatalf("expected not enough stock, got %v", err)
	}
	if _, err := f.transactions.GetByID(ctx, purchase.ID); err != nil {
		t.Fatalf("purchase must survive failed delete: %v", err)
	}
	if err := f.transactions.Delete(ctx, 999); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDelete_InUse(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.product(t, "A", 1, 2, 10)
	if _, err := f.transactions.Create(ctx, f.sale(domain.TransactionItemRequest{ProductID: a.ID, Quantity: 1})); err != nil {
		t.Fatal(err)
	}

	checks := map[string]error{
		"category": f.categories.Delete(ctx, a.CategoryID),
		"supplier": f.suppliers.Delete(ctx, a.SupplierID),
		"product":  f.products.Delete(ctx, a.ID),
		"customer": f.customers.Delete(ctx, f.customer.ID),
	}
	for name, err := range checks {
		var inUse *InUseError
		if !errors.As(err, &inUse) || !errors.Is(err, ErrInUse) {
			t.Fatalf("%s: expected in use, got %v", name, err)
		}
		if !strings.Contains(err.Error(), "tidak dapat dihapus") {
			t.Fatalf("%s: detail %q", name, err.Error())
		}
	}

	free, err := f.categories.Create(ctx, domain.Category{Name: "Kosong"})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.categories.Delete(ctx, free.ID); err != nil {
		t.Fatalf("unused category: %v", err)
	}
}

func TestList_Search(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.product(t, "GULA-1", 1, 2, 10)
	f.product(t, "KOPI-1", 1, 2, 10)

	rows, total, err := f.products.List(ctx, repository.Filter{Search: "kopi"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || rows[0].Code != "KOPI-1" || rows[0].CategoryName == "" {
		t.Fatalf("search: %d %+v", total, rows)
	}
}
