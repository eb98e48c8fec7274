package i18n

import (
	"errors"
	"fmt"
	"strings"

	"inventaris/internal/apiclient"
	"inventaris/internal/draft"
)

// DefaultLang язык интерфейса по умолчанию
const DefaultLang = "id"

var messages = map[string]map[string]string{
	"id": {
		"select_product":     "Pilih produk terlebih dahulu!",
		"quantity_positive":  "Jumlah harus lebih dari 0!",
		"price_negative":     "Harga satuan tidak boleh negatif!",
		"stock_short":        "Stok %s tidak cukup! Tersedia: %d",
		"items_required":     "Tambahkan minimal 1 item produk!",
		"customer_required":  "Customer wajib dipilih untuk transaksi penjualan!",
		"invalid_value":      "Nilai tidak valid",
		"unreachable":        "Tidak dapat terhubung ke server. Pastikan backend sudah berjalan.",
		"session_expired":    "Sesi berakhir, silakan login kembali.",
		"save_failed":        "Gagal menyimpan transaksi: %s",
		"load_failed":        "Gagal memuat data",
		"saved":              "Transaksi berhasil ditambahkan!",
		"deleted":            "Data berhasil dihapus!",
		"login_failed":       "Username atau password salah!",
		"login_ok":           "Login berhasil",
		"unexpected":         "Terjadi kesalahan. Silakan coba lagi.",
		"low_stock_warning":  "Ada %d produk dengan stok menipis!",
		"busy":               "Sedang menyimpan...",
		"new_transaction":    "Tambah Transaksi Baru",
		"transactions_title": "Data Transaksi",
		"total":              "Total",
	},
	"en": {
		"select_product":     "Select a product first!",
		"quantity_positive":  "Quantity must be greater than 0!",
		"price_negative":     "Unit price must not be negative!",
		"stock_short":        "Not enough stock for %s! Available: %d",
		"items_required":     "Add at least 1 product item!",
		"customer_required":  "A customer is required for sales!",
		"invalid_value":      "Invalid value",
		"unreachable":        "Cannot reach the server. Make sure the backend is running.",
		"session_expired":    "Session expired, please log in again.",
		"save_failed":        "Failed to save transaction: %s",
		"load_failed":        "Failed to load data",
		"saved":              "Transaction saved!",
		"deleted":            "Deleted!",
		"login_failed":       "Wrong username or password!",
		"login_ok":           "Logged in",
		"unexpected":         "Something went wrong. Please try again.",
		"low_stock_warning":  "%d products are low on stock!",
		"busy":               "Saving...",
		"new_transaction":    "New Transaction",
		"transactions_title": "Transactions",
		"total":              "Total",
	},
}

// Normalize приводит тег языка к поддерживаемому коду ("en-US" -> "en")
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if _, ok := messages[lang]; ok {
		return lang
	}
	return DefaultLang
}

// T перевод по коду; неизвестный язык -> язык по умолчанию, неизвестный код -> сам код
func T(lang, code string, args ...any) string {
	msg, ok := messages[Normalize(lang)][code]
	if !ok {
		msg, ok = messages[DefaultLang][code]
	}
	if !ok {
		return code
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// Error сообщение пользователю по ошибке клиента
func Error(lang string, err error) string {
	var stock *draft.InsufficientStockError
	var apiErr *apiclient.APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &stock):
		return T(lang, "stock_short", stock.ProductName, stock.Available)
	case errors.Is(err, draft.ErrNoProduct):
		return T(lang, "select_product")
	case errors.Is(err, draft.ErrInvalidQuantity):
		return T(lang, "quantity_positive")
	case errors.Is(err, draft.ErrNegativePrice):
		return T(lang, "price_negative")
	case errors.Is(err, draft.ErrEmptyDraft):
		return T(lang, "items_required")
	case errors.Is(err, draft.ErrCustomerRequired):
		return T(lang, "customer_required")
	case errors.Is(err, draft.ErrInvalidValue):
		return T(lang, "invalid_value")
	case errors.Is(err, draft.ErrBusy):
		return T(lang, "busy")
	case errors.Is(err, apiclient.ErrUnreachable):
		return T(lang, "unreachable")
	case errors.Is(err, apiclient.ErrSessionExpired):
		return T(lang, "session_expired")
	case errors.As(err, &apiErr):
		return apiErr.Detail
	}
	return err.Error()
}
