package statement

import (
	"github.com/shopspring/decimal"
)

// ProductSummary aggregates send and receive totals for one product across
// both order streams, plus the derived weight loss rate.
type ProductSummary struct {
	ProductID   int64  `json:"product_id"`
	StyleNo     string `json:"style_no"`
	ProductName string `json:"product_name"`
	Process     string `json:"process"`
	ImageURL    string `json:"image_url"`

	SendQuantity    int64           `json:"send_quantity"`
	SendWeight      decimal.Decimal `json:"send_weight"`
	ReceiveQuantity int64           `json:"receive_quantity"`
	ReceiveWeight   decimal.Decimal `json:"receive_weight"`

	// LossRate is the percentage weight shrinkage between send and receive,
	// rounded to 2 decimals. Zero send weight yields zero, never a division
	// error or an infinite value.
	LossRate decimal.Decimal `json:"loss_rate"`
}

// BuildProductSummaries groups rows by product across both order types.
// Display metadata is captured from the first row seen for each product;
// output order is first-seen product first.
func BuildProductSummaries(rows []DetailRow) []ProductSummary {
	byProduct := make(map[int64]*ProductSummary)
	productOrder := make([]int64, 0)

	for _, row := range rows {
		if !row.OrderType.IsValid() {
			continue
		}

		summary, seen := byProduct[row.ProductID]
		if !seen {
			summary = &ProductSummary{
				ProductID:     row.ProductID,
				StyleNo:       row.StyleNo,
				ProductName:   row.ProductName,
				Process:       row.Process,
				ImageURL:      row.ImageURL,
				SendWeight:    decimal.Zero,
				ReceiveWeight: decimal.Zero,
			}
			byProduct[row.ProductID] = summary
			productOrder = append(productOrder, row.ProductID)
		}

		switch row.OrderType {
		case OrderTypeSend:
			summary.SendQuantity += row.ItemQuantity
			summary.SendWeight = summary.SendWeight.Add(row.ItemWeight)
		case OrderTypeReceive:
			summary.ReceiveQuantity += row.ItemQuantity
			summary.ReceiveWeight = summary.ReceiveWeight.Add(row.ItemWeight)
		}
	}

	summaries := make([]ProductSummary, 0, len(productOrder))
	for _, id := range productOrder {
		summary := byProduct[id]
		summary.SendWeight = round2(summary.SendWeight)
		summary.ReceiveWeight = round2(summary.ReceiveWeight)
		summary.LossRate = lossRate(summary.SendWeight, summary.ReceiveWeight)
		summaries = append(summaries, *summary)
	}
	return summaries
}

// lossRate computes (sendWeight - receiveWeight) / sendWeight x 100 to two
// decimals, guarding the zero-send case.
func lossRate(sendWeight, receiveWeight decimal.Decimal) decimal.Decimal {
	if !sendWeight.IsPositive() {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	return round2(sendWeight.Sub(receiveWeight).Div(sendWeight).Mul(hundred))
}
