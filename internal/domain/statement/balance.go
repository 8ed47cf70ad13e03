package statement

import (
	"github.com/shopspring/decimal"
)

// consistencyEpsilon is the tolerated divergence between an authoritative
// total and its local recomputation before a warning is raised.
var consistencyEpsilon = decimal.New(1, -2) // 0.01

// CalculateBalance computes the final balance from the two authoritative
// totals. Both operands come verbatim from the ledger of record; they are
// never resummed from orders or payment records, so the reported balance
// always matches what the ledger computed. Negative results (overpayment)
// are valid.
func CalculateBalance(totalAmount, totalPayment decimal.Decimal) decimal.Decimal {
	return round2(totalAmount.Sub(totalPayment))
}

// ConsistencyWarning reports that a locally recomputed total diverged from
// the authoritative figure beyond the epsilon. Warnings are logged by the
// caller and never surfaced as errors: the ledger of record always wins.
type ConsistencyWarning struct {
	Field         string          `json:"field"`
	Authoritative decimal.Decimal `json:"authoritative"`
	Recomputed    decimal.Decimal `json:"recomputed"`
}

// CheckConsistency cross-checks the statement's authoritative totals against
// sums of its own breakdowns. This is a warning signal only; divergence does
// not change any figure in the statement.
func CheckConsistency(st *Statement) []ConsistencyWarning {
	warnings := make([]ConsistencyWarning, 0, 2)

	feeSum := decimal.Zero
	for _, order := range st.ReceiveOrders {
		feeSum = feeSum.Add(order.Fee)
	}
	if feeSum.Sub(st.TotalAmount).Abs().GreaterThan(consistencyEpsilon) {
		warnings = append(warnings, ConsistencyWarning{
			Field:         "total_amount",
			Authoritative: st.TotalAmount,
			Recomputed:    round2(feeSum),
		})
	}

	paymentSum := decimal.Zero
	for _, record := range st.PaymentRecords {
		paymentSum = paymentSum.Add(record.Amount)
	}
	if paymentSum.Sub(st.TotalPayment).Abs().GreaterThan(consistencyEpsilon) {
		warnings = append(warnings, ConsistencyWarning{
			Field:         "total_payment",
			Authoritative: st.TotalPayment,
			Recomputed:    round2(paymentSum),
		})
	}

	return warnings
}
