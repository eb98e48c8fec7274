package draft

import (
	"context"
	"fmt"

	"inventaris/internal/domain"
)

// Creator эндпоинт создания транзакции (apiclient.Resource[domain.Transaction])
type Creator interface {
	Create(ctx context.Context, in any) (domain.Transaction, error)
}

// Gate проверяет черновик целиком и только потом отправляет его
type Gate struct {
	creator Creator
}

func NewGate(c Creator) *Gate {
	return &Gate{creator: c}
}

// Submit валидирует и отправляет черновик; черновик не меняется ни при каком исходе
func (g *Gate) Submit(ctx context.Context, d *Draft) (domain.Transaction, error) {
	req, err := d.Payload()
	if err != nil {
		return domain.Transaction{}, err
	}
	return g.Dispatch(ctx, req)
}

// Dispatch отправляет уже проверенное тело
func (g *Gate) Dispatch(ctx context.Context, req domain.TransactionRequest) (domain.Transaction, error) {
	tx, err := g.creator.Create(ctx, req)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return tx, nil
}
