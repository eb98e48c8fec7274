package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"inventaris/internal/domain"
	"inventaris/internal/repository"
)

// TransactionService реализует логику транзакций: создание с движением остатков и удаление с откатом
type TransactionService struct {
	products     repository.ProductRepository
	customers    repository.CustomerRepository
	transactions repository.TransactionRepository
	tx           repository.TxManager
	now          func() time.Time
}

func NewTransactionService(
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	transactions repository.TransactionRepository,
	tx repository.TxManager,
) *TransactionService {
	return &TransactionService{
		products:     products,
		customers:    customers,
		transactions: transactions,
		tx:           tx,
		now:          time.Now,
	}
}

// NumberPrefix префикс номеров транзакций за день: TRX-YYYYMMDD-
func NumberPrefix(day time.Time) string {
	return "TRX-" + day.Format("20060102") + "-"
}

// nextNumber следующий номер дня: суффикс последнего существующего номера плюс один
func (s *TransactionService) nextNumber(ctx context.Context, day time.Time) (string, error) {
	prefix := NumberPrefix(day)
	last, err := s.transactions.LastNumber(ctx, prefix)
	if err != nil {
		return "", err
	}
	n := 0
	if last != "" {
		n, err = strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err != nil {
			return "", fmt.Errorf("malformed transaction number %q: %w", last, err)
		}
	}
	return fmt.Sprintf("%s%04d", prefix, n+1), nil
}

func (s *TransactionService) validate(ctx context.Context, req *domain.TransactionRequest) error {
	bad := Violations{}
	if !req.Type.Valid() {
		bad["jenis_transaksi"] = "tidak valid"
	}
	if req.PaymentStatus == "" {
		req.PaymentStatus = domain.PaymentPaid
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.PaymentCash
	}
	if !req.PaymentStatus.Valid() {
		bad["status_pembayaran"] = "tidak valid"
	}
	if !req.PaymentMethod.Valid() {
		bad["metode_pembayaran"] = "tidak valid"
	}
	if len(req.Items) == 0 {
		bad["items"] = "minimal 1 item"
	}
	for _, it := range req.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			bad["items"] = "produk dan jumlah (> 0) wajib diisi"
			break
		}
	}
	if req.Type == domain.TransactionPurchase {
		req.CustomerID = nil
	}
	if req.Type == domain.TransactionSale {
		if req.CustomerID == nil {
			bad["customer"] = "wajib diisi untuk penjualan"
		} else if _, err := s.customers.GetByID(ctx, *req.CustomerID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			bad["customer"] = "tidak ditemukan"
		}
	}
	return bad.Err()
}

// Create проверяет запрос, считает цены на стороне сервера и атомарно двигает остатки
func (s *TransactionService) Create(ctx context.Context, req domain.TransactionRequest) (*domain.Transaction, error) {
	if err := s.validate(ctx, &req); err != nil {
		return nil, err
	}

	var created *domain.Transaction
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		// load every product once, check the aggregated quantity before touching stock
		loaded := make(map[int64]*domain.Product)
		wanted := make(map[int64]int64)
		order := make([]int64, 0, len(req.Items))
		for _, it := range req.Items {
			if _, ok := loaded[it.ProductID]; !ok {
				p, err := s.products.GetByID(ctx, it.ProductID)
				if errors.Is(err, repository.ErrNotFound) {
					return invalid("items", fmt.Sprintf("produk %d tidak ditemukan", it.ProductID))
				}
				if err != nil {
					return err
				}
				if !p.IsActive() {
					return invalid("items", fmt.Sprintf("produk %s tidak aktif", p.Name))
				}
				loaded[p.ID] = p
				order = append(order, p.ID)
			}
			wanted[it.ProductID] += it.Quantity
		}
		if req.Type == domain.TransactionSale {
			for _, id := range order {
				p := loaded[id]
				if p.Stock < wanted[id] {
					return &StockError{Product: p.Name, Available: p.Stock, Requested: wanted[id]}
				}
			}
		}

		now := s.now()
		t := domain.Transaction{
			Type:          req.Type,
			CustomerID:    req.CustomerID,
			PaymentStatus: req.PaymentStatus,
			PaymentMethod: req.PaymentMethod,
			Note:          req.Note,
			Date:          now.UTC(),
			Total:         decimal.Zero,
			Items:         make([]domain.TransactionItem, 0, len(req.Items)),
		}
		for _, it := range req.Items {
			p := loaded[it.ProductID]
			price := p.PriceFor(req.Type)
			sub := price.Mul(decimal.NewFromInt(it.Quantity))
			t.Items = append(t.Items, domain.TransactionItem{
				ProductID:   p.ID,
				ProductCode: p.Code,
				ProductName: p.Name,
				Quantity:    it.Quantity,
				UnitPrice:   price,
				Subtotal:    sub,
			})
			t.Total = t.Total.Add(sub)
		}

		number, err := s.nextNumber(ctx, now)
		if err != nil {
			return err
		}
		t.Number = number
		if err := s.transactions.Create(ctx, &t); err != nil {
			return err
		}

		// persist stock moves
		for _, id := range order {
			p := loaded[id]
			p.Stock += stockDelta(req.Type, wanted[id])
			if err := s.products.Update(ctx, p); err != nil {
				return err
			}
		}
		created = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.enrich(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

// stockDelta продажа списывает остаток, закупка пополняет
func stockDelta(t domain.TransactionType, qty int64) int64 {
	if t == domain.TransactionSale {
		return -qty
	}
	return qty
}

// GetByID возвращает транзакцию с позициями
func (s *TransactionService) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	t, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.enrich(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// List последние транзакции первыми
func (s *TransactionService) List(ctx context.Context, f repository.Filter) ([]domain.Transaction, int, error) {
	rows, total, err := s.transactions.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	for i := range rows {
		if err := s.enrich(ctx, &rows[i]); err != nil {
			return nil, 0, err
		}
	}
	return rows, total, nil
}

// Delete удаляет транзакцию и возвращает остатки; закупку нельзя откатить, если товар уже продан
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		t, err := s.transactions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		// check every product first, then write
		moved := make(map[int64]int64)
		order := make([]int64, 0, len(t.Items))
		for _, it := range t.Items {
			if _, ok := moved[it.ProductID]; !ok {
				order = append(order, it.ProductID)
			}
			moved[it.ProductID] += it.Quantity
		}
		restore := make([]*domain.Product, 0, len(order))
		for _, pid := range order {
			p, err := s.products.GetByID(ctx, pid)
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			p.Stock -= stockDelta(t.Type, moved[pid])
			if p.Stock < 0 {
				return &StockError{Product: p.Name, Available: p.Stock + moved[pid], Requested: moved[pid]}
			}
			restore = append(restore, p)
		}
		if err := s.transactions.Delete(ctx, id); err != nil {
			return err
		}
		for _, p := range restore {
			if err := s.products.Update(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *TransactionService) enrich(ctx context.Context, t *domain.Transaction) error {
	if t.CustomerID == nil {
		return nil
	}
	c, err := s.customers.GetByID(ctx, *t.CustomerID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return err
	}
	t.CustomerName = c.Name
	return nil
}
