package statement

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentSource identifies which stream a payment record came from.
type PaymentSource string

const (
	// PaymentSourceLedger marks a standalone payment from the factory account
	PaymentSourceLedger PaymentSource = "ledger"
	// PaymentSourceReceiveOrder marks a payment made at receipt of an order
	PaymentSourceReceiveOrder PaymentSource = "receive_order"
)

// RawPayment is a ledger row as fetched from the factory-account upstream.
// The upstream aliases its field names across deployments, so decoding
// accepts amount|paymentAmount|payAmount, method|paymentMethod|payMethod
// and date|createTime; the first non-empty alias wins.
type RawPayment struct {
	ID      int64
	Date    string
	OrderNo string
	Amount  decimal.Decimal
	Method  string
	Remark  string
	Status  string
}

// UnmarshalJSON implements the alias-tolerant decoding described above.
func (p *RawPayment) UnmarshalJSON(data []byte) error {
	var v struct {
		ID            int64            `json:"id"`
		Date          string           `json:"date"`
		CreateTime    string           `json:"createTime"`
		OrderNo       string           `json:"orderNo"`
		Amount        *decimal.Decimal `json:"amount"`
		PaymentAmount *decimal.Decimal `json:"paymentAmount"`
		PayAmount     *decimal.Decimal `json:"payAmount"`
		Method        string           `json:"method"`
		PaymentMethod string           `json:"paymentMethod"`
		PayMethod     string           `json:"payMethod"`
		Remark        string           `json:"remark"`
		Status        string           `json:"status"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	p.ID = v.ID
	p.OrderNo = v.OrderNo
	p.Remark = v.Remark
	p.Status = v.Status

	p.Date = v.Date
	if p.Date == "" {
		p.Date = v.CreateTime
	}

	p.Amount = decimal.Zero
	for _, alias := range []*decimal.Decimal{v.Amount, v.PaymentAmount, v.PayAmount} {
		if alias != nil {
			p.Amount = *alias
			break
		}
	}

	p.Method = v.Method
	if p.Method == "" {
		p.Method = v.PaymentMethod
	}
	if p.Method == "" {
		p.Method = v.PayMethod
	}
	return nil
}

// PaymentRecord is one entry in the deduplicated payment trail of a Statement.
type PaymentRecord struct {
	ID      string          `json:"id"`
	Date    time.Time       `json:"date"`
	OrderNo string          `json:"order_no,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"method"`
	Remark  string          `json:"remark,omitempty"`
	Source  PaymentSource   `json:"source"`
	Status  string          `json:"status,omitempty"`
}

// ReconcilePayments merges the factory ledger with payments carried on
// receive orders into a single trail, deduplicated by order number.
//
// The dedup key is the order number rather than amount+date: two different
// orders paid the same amount on the same day are common and legitimate,
// while the same order number appearing in both streams is exactly the
// double-count being guarded against. A ledger record with an empty order
// number cannot be attributed to any order and is therefore always kept.
//
// The result is sorted by date descending; records with no parseable date
// sink to the bottom.
func ReconcilePayments(ledger []RawPayment, receiveOrders []Order) []PaymentRecord {
	records := make([]PaymentRecord, 0, len(ledger)+len(receiveOrders))

	// Pass 1: synthesize a record per paid receive order. This pass dedups
	// within itself as well: order numbers are unique upstream, but that is
	// verified here rather than assumed.
	seenOrderNos := make(map[string]struct{})
	for _, order := range receiveOrders {
		if !order.PaymentAmount.IsPositive() {
			continue
		}
		if order.OrderNo != "" {
			if _, dup := seenOrderNos[order.OrderNo]; dup {
				continue
			}
			seenOrderNos[order.OrderNo] = struct{}{}
		}
		records = append(records, PaymentRecord{
			ID:      "recv-" + strconv.FormatInt(order.ID, 10),
			Date:    order.Date,
			OrderNo: order.OrderNo,
			Amount:  round2(order.PaymentAmount),
			Method:  order.PaymentMethod,
			Source:  PaymentSourceReceiveOrder,
		})
	}

	// Pass 2: keep ledger records unless they echo a payment already
	// captured from a receive order.
	for _, raw := range ledger {
		if raw.OrderNo != "" {
			if _, dup := seenOrderNos[raw.OrderNo]; dup {
				continue
			}
		}
		records = append(records, PaymentRecord{
			ID:      "ledger-" + strconv.FormatInt(raw.ID, 10),
			Date:    parseDate(raw.Date),
			OrderNo: raw.OrderNo,
			Amount:  round2(raw.Amount),
			Method:  raw.Method,
			Remark:  raw.Remark,
			Source:  PaymentSourceLedger,
			Status:  raw.Status,
		})
	}

	// Stable sort keeps input order for equal dates, so identical input
	// always produces an identical trail.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
	return records
}
