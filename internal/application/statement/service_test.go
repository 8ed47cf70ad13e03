package statement

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garment-erp/statement/internal/domain/shared"
	"github.com/garment-erp/statement/internal/domain/statement"
)

type stubOrderSource struct {
	result *OrderDetailResult
	err    error
	delay  time.Duration
}

func (s *stubOrderSource) FetchOrderDetail(ctx context.Context, q StatementQuery) (*OrderDetailResult, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.result, s.err
}

type stubLedgerSource struct {
	payments []statement.RawPayment
	err      error
}

func (s *stubLedgerSource) FetchLedgerPayments(ctx context.Context, q StatementQuery) ([]statement.RawPayment, error) {
	return s.payments, s.err
}

func testQuery() StatementQuery {
	return StatementQuery{
		FactoryID:   1,
		FactoryName: "F1",
		StartDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestStatementServiceGetStatement(t *testing.T) {
	t.Run("reconciles both upstream sources", func(t *testing.T) {
		orders := &stubOrderSource{result: &OrderDetailResult{
			RawOrders: json.RawMessage(`[
				{"orderId":1,"orderNo":"S1","orderType":"send","productId":100,"itemQuantity":10,"itemWeight":5.0},
				{"orderId":2,"orderNo":"R1","orderType":"receive","productId":100,"itemQuantity":10,"itemWeight":4.8,"orderFee":20.00,"orderPaymentAmount":15.00,"orderPaymentMethod":"cash"}
			]`),
			TotalFee:   decimal.RequireFromString("20.00"),
			PaidAmount: decimal.RequireFromString("15.00"),
		}}
		svc := NewStatementService(orders, &stubLedgerSource{}, zap.NewNop())

		st, err := svc.GetStatement(context.Background(), testQuery())
		require.NoError(t, err)
		assert.Len(t, st.SendOrders, 1)
		assert.Len(t, st.ReceiveOrders, 1)
		assert.Equal(t, "5.00", st.FinalBalance.StringFixed(2))
		require.Len(t, st.PaymentRecords, 1)
		assert.Equal(t, "R1", st.PaymentRecords[0].OrderNo)
	})

	t.Run("order fetch failure aborts without reconciling", func(t *testing.T) {
		orders := &stubOrderSource{err: errors.New("connection refused")}
		svc := NewStatementService(orders, &stubLedgerSource{}, zap.NewNop())

		st, err := svc.GetStatement(context.Background(), testQuery())
		assert.Nil(t, st)
		assert.ErrorIs(t, err, shared.ErrUpstreamUnavailable)
	})

	t.Run("ledger fetch failure aborts without reconciling", func(t *testing.T) {
		orders := &stubOrderSource{result: &OrderDetailResult{RawOrders: json.RawMessage(`[]`)}}
		ledger := &stubLedgerSource{err: errors.New("timeout")}
		svc := NewStatementService(orders, ledger, zap.NewNop())

		st, err := svc.GetStatement(context.Background(), testQuery())
		assert.Nil(t, st)
		assert.ErrorIs(t, err, shared.ErrUpstreamUnavailable)
	})

	t.Run("unexpected order format degrades to an empty row set", func(t *testing.T) {
		orders := &stubOrderSource{result: &OrderDetailResult{
			RawOrders:  json.RawMessage(`{"message":"maintenance"}`),
			TotalFee:   decimal.RequireFromString("20.00"),
			PaidAmount: decimal.RequireFromString("15.00"),
		}}
		svc := NewStatementService(orders, &stubLedgerSource{}, zap.NewNop())

		st, err := svc.GetStatement(context.Background(), testQuery())
		require.NoError(t, err)
		assert.Empty(t, st.SendOrders)
		assert.Empty(t, st.Products)
		// The authoritative totals still flow through.
		assert.Equal(t, "5.00", st.FinalBalance.StringFixed(2))
	})

	t.Run("empty period yields a valid all-zero statement", func(t *testing.T) {
		orders := &stubOrderSource{result: &OrderDetailResult{RawOrders: json.RawMessage(`[]`)}}
		svc := NewStatementService(orders, &stubLedgerSource{}, zap.NewNop())

		st, err := svc.GetStatement(context.Background(), testQuery())
		require.NoError(t, err)
		assert.NotNil(t, st.Products)
		assert.Empty(t, st.Products)
		assert.Equal(t, "0.00", st.FinalBalance.StringFixed(2))
	})

	t.Run("ledger payments are merged and deduplicated", func(t *testing.T) {
		orders := &stubOrderSource{result: &OrderDetailResult{
			RawOrders: json.RawMessage(`[
				{"orderId":2,"orderNo":"R1","orderType":"receive","productId":100,"itemQuantity":10,"itemWeight":4.8,"orderFee":20.00,"orderPaymentAmount":15.00,"orderPaymentMethod":"cash"}
			]`),
			TotalFee:   decimal.RequireFromString("20.00"),
			PaidAmount: decimal.RequireFromString("20.00"),
		}}
		ledger := &stubLedgerSource{payments: []statement.RawPayment{
			{ID: 1, OrderNo: "R1", Amount: decimal.RequireFromString("15.00"), Date: "2026-03-10"},
			{ID: 2, OrderNo: "", Amount: decimal.RequireFromString("5.00"), Date: "2026-03-20"},
		}}
		svc := NewStatementService(orders, ledger, zap.NewNop())

		st, err := svc.GetStatement(context.Background(), testQuery())
		require.NoError(t, err)
		require.Len(t, st.PaymentRecords, 2)
		assert.Equal(t, statement.PaymentSourceLedger, st.PaymentRecords[0].Source)
		assert.Equal(t, statement.PaymentSourceReceiveOrder, st.PaymentRecords[1].Source)
	})
}

func TestSequenceTracker(t *testing.T) {
	t.Run("sequences increase per key", func(t *testing.T) {
		tracker := NewSequenceTracker()
		assert.Equal(t, uint64(1), tracker.Begin("f1"))
		assert.Equal(t, uint64(2), tracker.Begin("f1"))
		assert.Equal(t, uint64(1), tracker.Begin("f2"))
	})

	t.Run("a newer request supersedes an in-flight one", func(t *testing.T) {
		tracker := NewSequenceTracker()
		first := tracker.Begin("f1")
		second := tracker.Begin("f1")

		assert.False(t, tracker.IsCurrent("f1", first))
		assert.True(t, tracker.IsCurrent("f1", second))
	})

	t.Run("keys are independent", func(t *testing.T) {
		tracker := NewSequenceTracker()
		f1 := tracker.Begin("f1")
		tracker.Begin("f2")
		assert.True(t, tracker.IsCurrent("f1", f1))
	})
}
