package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	app "github.com/garment-erp/statement/internal/application/statement"
	"github.com/garment-erp/statement/internal/domain/shared"
	"github.com/garment-erp/statement/internal/domain/statement"
)

// LedgerClient fetches the factory's standalone payment ledger.
type LedgerClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewLedgerClient creates a new LedgerClient
func NewLedgerClient(cfg ClientConfig) *LedgerClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LedgerClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchLedgerPayments implements app.LedgerSource. The ledger endpoint uses
// the same duck-typed envelope family as the order endpoint, so both a bare
// array and a data envelope are accepted.
func (c *LedgerClient) FetchLedgerPayments(ctx context.Context, q app.StatementQuery) ([]statement.RawPayment, error) {
	params := url.Values{}
	params.Set("factoryId", strconv.FormatInt(q.FactoryID, 10))
	params.Set("startDate", q.StartDate.Format(dateParamLayout))
	params.Set("endDate", q.EndDate.Format(dateParamLayout))

	body, err := doGet(ctx, c.httpClient, c.baseURL+"/factory-accounts?"+params.Encode())
	if err != nil {
		return nil, err
	}

	payload := bytes.TrimSpace(body)
	if len(payload) > 0 && payload[0] != '[' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(payload, &envelope); err != nil {
			return nil, fmt.Errorf("%w: decoding ledger response: %s", shared.ErrUnexpectedFormat, err)
		}
		payload = bytes.TrimSpace(envelope.Data)
	}
	if len(payload) == 0 {
		return []statement.RawPayment{}, nil
	}

	var payments []statement.RawPayment
	if err := json.Unmarshal(payload, &payments); err != nil {
		return nil, fmt.Errorf("%w: decoding ledger rows: %s", shared.ErrUnexpectedFormat, err)
	}
	return payments, nil
}
