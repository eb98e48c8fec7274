package domain

import (
	"fmt"
	"strings"
)

// Status статус активности справочной записи
type Status string

const (
	StatusActive   Status = "AKTIF"
	StatusInactive Status = "NON_AKTIF"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// CustomerType тип покупателя
type CustomerType string

const (
	CustomerRetail    CustomerType = "RETAIL"
	CustomerWholesale CustomerType = "GROSIR"
	CustomerMember    CustomerType = "MEMBER"
)

func (t CustomerType) Valid() bool {
	switch t {
	case CustomerRetail, CustomerWholesale, CustomerMember:
		return true
	}
	return false
}

// TransactionType вид транзакции: продажа или закупка
type TransactionType string

const (
	TransactionSale     TransactionType = "PENJUALAN"
	TransactionPurchase TransactionType = "PEMBELIAN"
)

func (t TransactionType) Valid() bool {
	return t == TransactionSale || t == TransactionPurchase
}

// PaymentStatus статус оплаты
type PaymentStatus string

const (
	PaymentPaid        PaymentStatus = "LUNAS"
	PaymentUnpaid      PaymentStatus = "BELUM_LUNAS"
	PaymentInstallment PaymentStatus = "CICILAN"
)

// PaymentStatuses в порядке отображения
var PaymentStatuses = []PaymentStatus{PaymentPaid, PaymentUnpaid, PaymentInstallment}

func (s PaymentStatus) Valid() bool {
	for _, v := range PaymentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// PaymentMethod способ оплаты
type PaymentMethod string

const (
	PaymentCash      PaymentMethod = "TUNAI"
	PaymentTransfer  PaymentMethod = "TRANSFER"
	PaymentEWallet   PaymentMethod = "E_WALLET"
	PaymentDebitCard PaymentMethod = "KARTU_DEBIT"
)

// PaymentMethods в порядке отображения
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentTransfer, PaymentEWallet, PaymentDebitCard}

func (m PaymentMethod) Valid() bool {
	for _, v := range PaymentMethods {
		if v == m {
			return true
		}
	}
	return false
}

// Label возвращает значение в человекочитаемом виде ("BELUM_LUNAS" -> "BELUM LUNAS")
func Label[T ~string](v T) string {
	return strings.ReplaceAll(string(v), "_", " ")
}

// ParseTransactionType принимает как значения API, так и английские синонимы
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PENJUALAN", "SALE", "SALES":
		return TransactionSale, nil
	case "PEMBELIAN", "PURCHASE":
		return TransactionPurchase, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	v := PaymentStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("unknown payment status %q", s)
	}
	return v, nil
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	v := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("unknown payment method %q", s)
	}
	return v, nil
}
