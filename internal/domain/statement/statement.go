// Package statement implements the factory reconciliation engine: a pure,
// synchronous transform from raw order rows and a payment ledger into a
// period statement. Every invocation allocates fresh aggregates and returns
// an independent result, so the package is safe for concurrent use without
// locking. It performs no I/O and owns no storage.
package statement

import (
	"github.com/shopspring/decimal"
)

// Statement is the reconciled, period-scoped summary for one factory.
// Immutable once built; a changed filter rebuilds it from scratch.
type Statement struct {
	Products       []ProductSummary `json:"products"`
	SendOrders     []Order          `json:"send_orders"`
	ReceiveOrders  []Order          `json:"receive_orders"`
	PaymentRecords []PaymentRecord  `json:"payment_records"`

	// TotalAmount and TotalPayment are passed through verbatim from the
	// source-of-truth totals delivered with the order-detail fetch.
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalPayment   decimal.Decimal `json:"total_payment"`
	FinalBalance   decimal.Decimal `json:"final_balance"`
	InitialBalance decimal.Decimal `json:"initial_balance"`

	// DroppedRows counts detail rows discarded for an unknown order type.
	DroppedRows int `json:"-"`
}

// BuildInput carries everything one reconciliation run consumes.
type BuildInput struct {
	Rows           []DetailRow
	LedgerPayments []RawPayment
	TotalAmount    decimal.Decimal
	TotalPayment   decimal.Decimal
	InitialBalance decimal.Decimal
}

// BuildStatement assembles the four aggregates and the authoritative balance
// into a Statement. Empty input yields an empty-but-valid statement with
// non-nil slices and zero totals, so downstream renderers never need a nil
// check.
func BuildStatement(in BuildInput) *Statement {
	groups := BuildOrders(in.Rows)

	st := &Statement{
		Products:       BuildProductSummaries(in.Rows),
		SendOrders:     groups.SendOrders,
		ReceiveOrders:  groups.ReceiveOrders,
		PaymentRecords: ReconcilePayments(in.LedgerPayments, groups.ReceiveOrders),
		TotalAmount:    round2(in.TotalAmount),
		TotalPayment:   round2(in.TotalPayment),
		InitialBalance: round2(in.InitialBalance),
		DroppedRows:    groups.DroppedRows,
	}
	st.FinalBalance = CalculateBalance(st.TotalAmount, st.TotalPayment)
	return st
}
