// Package payment applies customer payments against order balances.
package payment

import (
	"fmt"
	"time"

	"tidewater/internal/core/id"
	"tidewater/internal/core/types"
)

// Method is how the customer paid.
type Method string

const (
	MethodCash         Method = "cash"
	MethodCheck        Method = "check"
	MethodBankTransfer Method = "bank_transfer"
	MethodCredit       Method = "credit"
)

func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodCash, MethodCheck, MethodBankTransfer, MethodCredit:
		return m, nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

type Payment struct {
	ID        id.ID       `db:"id" json:"id"`
	OrderID   id.ID       `db:"order_id" json:"orderId"`
	Amount    types.Money `db:"amount" json:"amount"`
	Method    Method      `db:"method" json:"method"`
	PaidAt    time.Time   `db:"paid_at" json:"paidAt"`
	Reference string      `db:"reference" json:"reference,omitempty"`
	Notes     string      `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
}
