package statement

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// OrderDetail is one line item inside an Order, retained for display.
type OrderDetail struct {
	ProductID   int64           `json:"product_id"`
	StyleNo     string          `json:"style_no"`
	ProductName string          `json:"product_name"`
	Color       string          `json:"color"`
	Size        string          `json:"size"`
	Quantity    int64           `json:"quantity"`
	Weight      decimal.Decimal `json:"weight"`
	UnitFee     decimal.Decimal `json:"unit_fee"`
	// AllocatedFee is display-only: the order's authoritative fee spread
	// across lines in proportion to quantity. The sum over all lines may
	// differ from Order.Fee by a cent or two; the residue is preserved, not
	// corrected, because Order.Fee alone is authoritative.
	AllocatedFee decimal.Decimal `json:"allocated_fee"`
	ImageURL     string          `json:"image_url"`
}

// Order is the aggregate of all detail rows sharing (orderType, orderId).
// Immutable after construction; a new reconciliation run rebuilds it.
type Order struct {
	ID      int64     `json:"id"`
	Type    OrderType `json:"type"`
	OrderNo string    `json:"order_no"`
	Date    time.Time `json:"date"`
	Process string    `json:"process"`

	Quantity int64           `json:"quantity"`
	Weight   decimal.Decimal `json:"weight"`
	// Fee is the authoritative order total for receive orders, taken verbatim
	// from the row-carried orderFee. It is never a sum of item fees, so a
	// missing or mis-rounded line item cannot corrupt the money total.
	// Send orders carry zero.
	Fee           decimal.Decimal `json:"fee"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	PaymentMethod string          `json:"payment_method"`
	Creator       string          `json:"creator"`
	Remark        string          `json:"remark"`

	Details []OrderDetail `json:"details"`
}

// OrderGroups is the output of grouping detail rows by order identity.
type OrderGroups struct {
	SendOrders    []Order
	ReceiveOrders []Order
	// DroppedRows counts rows whose orderType was neither send nor receive.
	// Reported as a diagnostic by the caller, never fatal.
	DroppedRows int
}

// BuildOrders groups normalized rows into Order aggregates, one per
// (orderType, orderId). Output order is first-seen order first, so identical
// input always yields an identical grouping.
func BuildOrders(rows []DetailRow) OrderGroups {
	groups := OrderGroups{
		SendOrders:    []Order{},
		ReceiveOrders: []Order{},
	}

	byKey := make(map[string]*Order)
	keyOrder := make([]string, 0)

	for _, row := range rows {
		if !row.OrderType.IsValid() {
			groups.DroppedRows++
			continue
		}

		key := string(row.OrderType) + "_" + strconv.FormatInt(row.OrderID, 10)
		order, seen := byKey[key]
		if !seen {
			order = &Order{
				ID:      row.OrderID,
				Type:    row.OrderType,
				OrderNo: row.OrderNo,
				Date:    parseDate(row.OrderDate),
				Process: row.Process,
				Weight:  decimal.Zero,
				Fee:     decimal.Zero,
				Creator: row.Creator,
				Remark:  row.Remark,
				Details: []OrderDetail{},
			}
			byKey[key] = order
			keyOrder = append(keyOrder, key)
		}

		order.Quantity += row.ItemQuantity
		order.Weight = order.Weight.Add(row.ItemWeight)
		order.Details = append(order.Details, OrderDetail{
			ProductID:   row.ProductID,
			StyleNo:     row.StyleNo,
			ProductName: row.ProductName,
			Color:       row.ItemColor,
			Size:        row.ItemSize,
			Quantity:    row.ItemQuantity,
			Weight:      row.ItemWeight,
			UnitFee:     row.ItemFee,
			ImageURL:    row.ImageURL,
		})

		if row.OrderType == OrderTypeReceive {
			// Same value repeated on every row of the order; last write wins.
			order.Fee = row.OrderFee
			order.PaymentAmount = row.OrderPaymentAmount
			order.PaymentMethod = row.OrderPaymentMethod
		}
	}

	for _, key := range keyOrder {
		order := byKey[key]
		order.Weight = round2(order.Weight)
		if order.Type == OrderTypeReceive {
			allocateOrderFee(order)
			groups.ReceiveOrders = append(groups.ReceiveOrders, *order)
		} else {
			groups.SendOrders = append(groups.SendOrders, *order)
		}
	}

	return groups
}

// allocateOrderFee spreads the authoritative order fee across line items in
// proportion to quantity: fee x lineQty / totalQty, rounded to 2 decimals.
// A zero total quantity allocates zero to every line.
func allocateOrderFee(order *Order) {
	if order.Quantity == 0 {
		for i := range order.Details {
			order.Details[i].AllocatedFee = decimal.Zero
		}
		return
	}

	totalQty := decimal.NewFromInt(order.Quantity)
	for i := range order.Details {
		lineQty := decimal.NewFromInt(order.Details[i].Quantity)
		order.Details[i].AllocatedFee = round2(order.Fee.Mul(lineQty).Div(totalQty))
	}
}
