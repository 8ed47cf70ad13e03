// Package upstream implements HTTP clients for the two collaborators the
// reconciliation engine depends on: the order-detail endpoint and the
// factory-account ledger. Timeouts and response-size limits live here; the
// engine itself never performs I/O.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	app "github.com/garment-erp/statement/internal/application/statement"
	"github.com/garment-erp/statement/internal/domain/shared"
)

// maxResponseSize bounds a single upstream response (10MB)
const maxResponseSize = 10 * 1024 * 1024

const dateParamLayout = "2006-01-02"

// ClientConfig holds the settings shared by both upstream clients
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// OrderClient fetches order detail rows and the authoritative totals from
// the statement endpoint of the order system.
type OrderClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOrderClient creates a new OrderClient
func NewOrderClient(cfg ClientConfig) *OrderClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OrderClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// orderDetailEnvelope is the wire shape of the order-detail response. The
// orders field is kept raw: it may itself arrive as a bare array or one of
// the documented envelope shapes, and normalizing it is the engine's job.
type orderDetailEnvelope struct {
	Orders         json.RawMessage `json:"orders"`
	TotalFee       decimal.Decimal `json:"totalFee"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

// FetchOrderDetail implements app.OrderDetailSource.
func (c *OrderClient) FetchOrderDetail(ctx context.Context, q app.StatementQuery) (*app.OrderDetailResult, error) {
	params := url.Values{}
	params.Set("factoryName", q.FactoryName)
	params.Set("startDate", q.StartDate.Format(dateParamLayout))
	params.Set("endDate", q.EndDate.Format(dateParamLayout))
	if q.ProductID != 0 {
		params.Set("productId", strconv.FormatInt(q.ProductID, 10))
	}

	body, err := doGet(ctx, c.httpClient, c.baseURL+"/statement?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var envelope orderDetailEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decoding order detail response: %s", shared.ErrUnexpectedFormat, err)
	}

	return &app.OrderDetailResult{
		RawOrders:      envelope.Orders,
		TotalFee:       envelope.TotalFee,
		PaidAmount:     envelope.PaidAmount,
		InitialBalance: envelope.InitialBalance,
	}, nil
}

// doGet performs a context-aware GET against an upstream endpoint and reads
// a bounded response body. Non-2xx statuses map to ErrUpstreamUnavailable.
func doGet(ctx context.Context, client *http.Client, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: upstream returned status %d", shared.ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading upstream response: %s", shared.ErrUpstreamUnavailable, err)
	}
	return body, nil
}
