package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier поставщик товаров
type Supplier struct {
	ID      int64  `json:"id" gorm:"primaryKey"`
	Name    string `json:"nama_supplier" gorm:"not null"`
	Contact string `json:"kontak"`
	Email   string `json:"email"`
	Address string `json:"alamat"`
	Status  Status `json:"status" gorm:"size:16;not null"`
}

// Category категория товаров
type Category struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	Name        string `json:"nama_kategori" gorm:"not null"`
	Description string `json:"deskripsi"`
}

// Customer покупатель
type Customer struct {
	ID      int64        `json:"id" gorm:"primaryKey"`
	Name    string       `json:"nama_customer" gorm:"not null"`
	Phone   string       `json:"no_telepon"`
	Email   string       `json:"email"`
	Address string       `json:"alamat"`
	Type    CustomerType `json:"tipe_customer" gorm:"size:16;not null"`
	Status  Status       `json:"status" gorm:"size:16;not null"`
}

// Product товар на складе
type Product struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	Code          string          `json:"kode_produk" gorm:"size:40;uniqueIndex;not null"`
	Name          string          `json:"nama_produk" gorm:"not null"`
	CategoryID    int64           `json:"kategori" gorm:"index"`
	CategoryName  string          `json:"kategori_nama,omitempty" gorm:"-"`
	SupplierID    int64           `json:"supplier" gorm:"index"`
	SupplierName  string          `json:"supplier_nama,omitempty" gorm:"-"`
	PurchasePrice decimal.Decimal `json:"harga_beli" gorm:"type:decimal(14,2);not null"`
	SalePrice     decimal.Decimal `json:"harga_jual" gorm:"type:decimal(14,2);not null"`
	Stock         int64           `json:"stok" gorm:"not null"`
	MinStock      int64           `json:"stok_minimum" gorm:"not null"`
	Status        Status          `json:"status" gorm:"size:16;not null"`
	LowStock      bool            `json:"is_stok_menipis" gorm:"-"`
}

func (p Product) IsActive() bool { return p.Status == StatusActive }

// IsLowStock товар считается заканчивающимся, когда остаток не выше минимума
func (p Product) IsLowStock() bool { return p.Stock <= p.MinStock }

// PriceFor цена товара для заданного вида транзакции
func (p Product) PriceFor(t TransactionType) decimal.Decimal {
	if t == TransactionPurchase {
		return p.PurchasePrice
	}
	return p.SalePrice
}

// LowStock отбирает товары с остатком не выше минимального
func LowStock(products []Product) []Product {
	out := make([]Product, 0)
	for _, p := range products {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out
}

// ActiveProducts отбирает товары со статусом AKTIF
func ActiveProducts(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	return out
}

// TransactionItem позиция сохранённой транзакции
type TransactionItem struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	TransactionID int64           `json:"-" gorm:"index;not null"`
	ProductID     int64           `json:"produk" gorm:"index;not null"`
	ProductCode   string          `json:"produk_kode"`
	ProductName   string          `json:"produk_nama"`
	Quantity      int64           `json:"jumlah" gorm:"not null"`
	UnitPrice     decimal.Decimal `json:"harga_satuan" gorm:"type:decimal(14,2);not null"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:decimal(14,2);not null"`
}

// Transaction сохранённая транзакция продажи или закупки
type Transaction struct {
	ID            int64             `json:"id" gorm:"primaryKey"`
	Number        string            `json:"nomor_transaksi" gorm:"size:32;uniqueIndex;not null"`
	Type          TransactionType   `json:"jenis_transaksi" gorm:"size:16;not null"`
	CustomerID    *int64            `json:"customer" gorm:"index"`
	CustomerName  string            `json:"customer_nama,omitempty" gorm:"-"`
	Total         decimal.Decimal   `json:"total_keseluruhan" gorm:"type:decimal(14,2);not null"`
	PaymentStatus PaymentStatus     `json:"status_pembayaran" gorm:"size:16;not null"`
	PaymentMethod PaymentMethod     `json:"metode_pembayaran" gorm:"size:16;not null"`
	Note          string            `json:"keterangan"`
	Date          time.Time         `json:"tanggal_transaksi" gorm:"not null"`
	Items         []TransactionItem `json:"items,omitempty" gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
}

// User учётная запись администратора
type User struct {
	ID           int64  `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email        string `json:"email"`
	PasswordHash string `json:"-" gorm:"not null"`
}
