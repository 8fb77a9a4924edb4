package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/id"
	"tidewater/internal/core/types"
	"tidewater/internal/domain/payment"
	"tidewater/internal/infrastructure/storage/postgres"
)

const paymentsTable = "payments"

var _ payment.Repository = (*PaymentRepo)(nil)

type PaymentRepo struct {
	payments *postgres.Table[payment.Payment]
}

func NewPaymentRepo(txm *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{
		payments: postgres.NewTable[payment.Payment](txm, paymentsTable, "id", "payment"),
	}
}

func (r *PaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	return r.payments.Insert(ctx, p)
}

func (r *PaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*payment.Payment, error) {
	return r.payments.Get(ctx, paymentID)
}

func (r *PaymentRepo) Delete(ctx context.Context, paymentID id.ID) error {
	tag, err := r.payments.Exec(ctx, postgres.Builder().
		Delete(paymentsTable).
		Where(squirrel.Eq{"id": paymentID}))
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("payment", paymentID)
	}
	return nil
}

func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]payment.Payment, error) {
	return r.payments.List(ctx, r.payments.Select().
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("paid_at", "id"))
}

func (r *PaymentRepo) SumByOrder(ctx context.Context, orderID id.ID) (types.Money, error) {
	query, args, err := postgres.Builder().
		Select("COALESCE(SUM(amount), 0)").
		From(paymentsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("build payment sum: %w", err)
	}
	var sum decimal.Decimal
	txm := r.payments.TxManager()
	if err := txm.GetQuerier(ctx).QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, postgres.TranslateError(fmt.Errorf("sum payments: %w", err))
	}
	return sum, nil
}
