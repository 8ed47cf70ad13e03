package statement

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/garment-erp/statement/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderType distinguishes goods dispatched to a factory from goods returned by it
type OrderType string

const (
	// OrderTypeSend records goods shipped out for a processing step
	OrderTypeSend OrderType = "send"
	// OrderTypeReceive records processed goods returned with the authoritative fee
	OrderTypeReceive OrderType = "receive"
)

// IsValid returns true for the two known order types
func (t OrderType) IsValid() bool {
	return t == OrderTypeSend || t == OrderTypeReceive
}

// DetailRow is the canonical flat row the engine consumes: one row per
// order x line-item, regardless of which wire shape the upstream used.
// Numeric fields absent upstream decode as zero; strings as empty.
type DetailRow struct {
	OrderID   int64     `json:"orderId"`
	OrderNo   string    `json:"orderNo"`
	OrderType OrderType `json:"orderType"`
	OrderDate string    `json:"orderDate"`
	Process   string    `json:"process"`

	ProductID   int64  `json:"productId"`
	StyleNo     string `json:"styleNo"`
	ProductName string `json:"productName"`
	ItemColor   string `json:"itemColor"`
	ItemSize    string `json:"itemSize"`

	ItemQuantity int64           `json:"itemQuantity"`
	ItemWeight   decimal.Decimal `json:"itemWeight"`
	ItemFee      decimal.Decimal `json:"itemFee"`

	// OrderFee is the authoritative per-order total fee from the ledger of
	// record, repeated on every row of the same receive order. It is never
	// recomputed from item fees.
	OrderFee           decimal.Decimal `json:"orderFee"`
	OrderPaymentAmount decimal.Decimal `json:"orderPaymentAmount"`
	OrderPaymentMethod string          `json:"orderPaymentMethod"`

	ImageURL string `json:"imageUrl"`
	Creator  string `json:"creator"`
	Remark   string `json:"remark"`
}

// RowBatch is the result of normalizing one upstream response.
type RowBatch struct {
	Rows []DetailRow
	// Malformed counts rows that could not be decoded and were skipped.
	// The caller reports it as a diagnostic; it never fails the batch.
	Malformed int
}

// ParseDetailRows normalizes an upstream order-detail response into canonical
// rows. Three wire shapes are accepted: a bare JSON array, {"data":[...]},
// and {"success":...,"data":[...]}. Anything else fails closed with
// shared.ErrUnexpectedFormat and an empty batch.
//
// Rows are decoded independently so that a single malformed row does not
// discard the rest of the response.
func ParseDetailRows(raw []byte) (RowBatch, error) {
	payload := bytes.TrimSpace(raw)
	if len(payload) == 0 {
		return RowBatch{Rows: []DetailRow{}}, shared.ErrUnexpectedFormat
	}

	if payload[0] != '[' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(payload, &envelope); err != nil {
			return RowBatch{Rows: []DetailRow{}}, shared.ErrUnexpectedFormat
		}
		payload = bytes.TrimSpace(envelope.Data)
		if len(payload) == 0 || payload[0] != '[' {
			return RowBatch{Rows: []DetailRow{}}, shared.ErrUnexpectedFormat
		}
	}

	var rawRows []json.RawMessage
	if err := json.Unmarshal(payload, &rawRows); err != nil {
		return RowBatch{Rows: []DetailRow{}}, shared.ErrUnexpectedFormat
	}

	batch := RowBatch{Rows: make([]DetailRow, 0, len(rawRows))}
	for _, rawRow := range rawRows {
		var row DetailRow
		if err := json.Unmarshal(rawRow, &row); err != nil {
			batch.Malformed++
			continue
		}
		batch.Rows = append(batch.Rows, row)
	}
	return batch, nil
}

// dateLayouts are the formats the upstream is known to emit.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// parseDate parses an upstream date string. Unparseable or empty values
// yield the zero time, which sorts after real dates in descending order.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// round2 rounds to two decimal places, half away from zero. This matches the
// display rounding the report renderer applies, so the engine's figures and
// the rendered figures agree byte for byte.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
