// Package statement contains the application service that drives a
// reconciliation run: it joins the two upstream fetches, feeds the engine,
// and reports row-level diagnostics that the engine itself never raises.
package statement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/garment-erp/statement/internal/domain/shared"
	"github.com/garment-erp/statement/internal/domain/statement"
)

// StatementQuery scopes a reconciliation run to one factory and date range.
type StatementQuery struct {
	FactoryID   int64
	FactoryName string
	StartDate   time.Time
	EndDate     time.Time
	// ProductID narrows the statement to a single product when non-zero.
	ProductID int64
}

// OrderDetailResult is what the order-detail upstream delivers: the raw order
// rows (still in whatever duck shape the upstream chose) plus the two
// authoritative totals computed by the ledger of record.
type OrderDetailResult struct {
	RawOrders  json.RawMessage
	TotalFee   decimal.Decimal
	PaidAmount decimal.Decimal
	// InitialBalance is carried through to the statement untouched; the
	// upstream may omit it, in which case it stays 0.00.
	InitialBalance decimal.Decimal
}

// OrderDetailSource fetches order detail rows and authoritative totals.
type OrderDetailSource interface {
	FetchOrderDetail(ctx context.Context, q StatementQuery) (*OrderDetailResult, error)
}

// LedgerSource fetches the factory's standalone payment ledger.
type LedgerSource interface {
	FetchLedgerPayments(ctx context.Context, q StatementQuery) ([]statement.RawPayment, error)
}

// StatementService orchestrates one reconciliation run per call. Both
// upstream fetches must complete before the engine runs; a failure of either
// aborts the run without invoking the engine.
type StatementService struct {
	orders OrderDetailSource
	ledger LedgerSource
	logger *zap.Logger
}

// NewStatementService creates a new StatementService
func NewStatementService(orders OrderDetailSource, ledger LedgerSource, logger *zap.Logger) *StatementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatementService{
		orders: orders,
		ledger: ledger,
		logger: logger,
	}
}

// GetStatement fetches both upstream sources concurrently and reconciles
// them into a Statement.
//
// An unrecognized order-detail shape degrades to an empty row set with a
// logged diagnostic; the statement is still produced from the authoritative
// totals. Consistency warnings are logged, never returned as errors.
func (s *StatementService) GetStatement(ctx context.Context, q StatementQuery) (*statement.Statement, error) {
	var (
		detail         *OrderDetailResult
		ledgerPayments []statement.RawPayment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail, err = s.orders.FetchOrderDetail(gctx, q)
		if err != nil {
			return fmt.Errorf("order detail fetch: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ledgerPayments, err = s.ledger.FetchLedgerPayments(gctx, q)
		if err != nil {
			return fmt.Errorf("ledger fetch: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrUpstreamUnavailable, err)
	}

	batch, err := statement.ParseDetailRows(detail.RawOrders)
	if err != nil {
		if !errors.Is(err, shared.ErrUnexpectedFormat) {
			return nil, err
		}
		s.logger.Warn("order detail response has an unexpected format, reconciling without rows",
			zap.String("factory", q.FactoryName),
			zap.Int64("factory_id", q.FactoryID),
		)
	}
	if batch.Malformed > 0 {
		s.logger.Warn("skipped malformed detail rows",
			zap.String("factory", q.FactoryName),
			zap.Int("skipped", batch.Malformed),
		)
	}

	st := statement.BuildStatement(statement.BuildInput{
		Rows:           batch.Rows,
		LedgerPayments: ledgerPayments,
		TotalAmount:    detail.TotalFee,
		TotalPayment:   detail.PaidAmount,
		InitialBalance: detail.InitialBalance,
	})

	if st.DroppedRows > 0 {
		s.logger.Warn("dropped detail rows with an unknown order type",
			zap.String("factory", q.FactoryName),
			zap.Int("dropped", st.DroppedRows),
		)
	}
	for _, warning := range statement.CheckConsistency(st) {
		s.logger.Warn("recomputed total diverges from the authoritative figure",
			zap.String("factory", q.FactoryName),
			zap.String("field", warning.Field),
			zap.String("authoritative", warning.Authoritative.StringFixed(2)),
			zap.String("recomputed", warning.Recomputed.StringFixed(2)),
		)
	}

	return st, nil
}
