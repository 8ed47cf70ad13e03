package statement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendRow(orderID int64, orderNo string, productID int64, qty int64, weight string) DetailRow {
	return DetailRow{
		OrderID:      orderID,
		OrderNo:      orderNo,
		OrderType:    OrderTypeSend,
		OrderDate:    "2026-03-01",
		Process:      "dyeing",
		ProductID:    productID,
		ItemQuantity: qty,
		ItemWeight:   decimal.RequireFromString(weight),
	}
}

func receiveRow(orderID int64, orderNo string, productID int64, qty int64, weight, orderFee string) DetailRow {
	return DetailRow{
		OrderID:      orderID,
		OrderNo:      orderNo,
		OrderType:    OrderTypeReceive,
		OrderDate:    "2026-03-10",
		Process:      "dyeing",
		ProductID:    productID,
		ItemQuantity: qty,
		ItemWeight:   decimal.RequireFromString(weight),
		OrderFee:     decimal.RequireFromString(orderFee),
	}
}

func TestBuildOrders(t *testing.T) {
	t.Run("groups rows by order type and id", func(t *testing.T) {
		rows := []DetailRow{
			sendRow(1, "S1", 100, 10, "5.0"),
			sendRow(1, "S1", 101, 20, "8.0"),
			sendRow(2, "S2", 100, 5, "2.5"),
			receiveRow(1, "R1", 100, 10, "4.8", "20.00"),
		}
		groups := BuildOrders(rows)

		require.Len(t, groups.SendOrders, 2)
		require.Len(t, groups.ReceiveOrders, 1)
		assert.Zero(t, groups.DroppedRows)

		s1 := groups.SendOrders[0]
		assert.Equal(t, "S1", s1.OrderNo)
		assert.Equal(t, int64(30), s1.Quantity)
		assert.Equal(t, "13", s1.Weight.String())
		assert.Len(t, s1.Details, 2)
		assert.True(t, s1.Fee.IsZero())

		// Send order with the same numeric id as receive order 1 stays separate.
		r1 := groups.ReceiveOrders[0]
		assert.Equal(t, "R1", r1.OrderNo)
		assert.Equal(t, OrderTypeReceive, r1.Type)
	})

	t.Run("receive order fee is the authoritative orderFee, not a sum of item fees", func(t *testing.T) {
		first := receiveRow(1, "R1", 100, 6, "3.0", "20.00")
		first.ItemFee = decimal.RequireFromString("99.99")
		second := receiveRow(1, "R1", 101, 4, "2.0", "20.00")
		second.ItemFee = decimal.RequireFromString("88.88")

		groups := BuildOrders([]DetailRow{first, second})
		require.Len(t, groups.ReceiveOrders, 1)
		assert.Equal(t, "20.00", groups.ReceiveOrders[0].Fee.StringFixed(2))
	})

	t.Run("allocates fee per line proportionally to quantity", func(t *testing.T) {
		rows := []DetailRow{
			receiveRow(1, "R1", 100, 6, "3.0", "20.00"),
			receiveRow(1, "R1", 101, 4, "2.0", "20.00"),
		}
		groups := BuildOrders(rows)
		require.Len(t, groups.ReceiveOrders, 1)
		details := groups.ReceiveOrders[0].Details
		require.Len(t, details, 2)
		assert.Equal(t, "12.00", details[0].AllocatedFee.StringFixed(2))
		assert.Equal(t, "8.00", details[1].AllocatedFee.StringFixed(2))
	})

	t.Run("allocation residue is preserved, not corrected", func(t *testing.T) {
		rows := []DetailRow{
			receiveRow(1, "R1", 100, 1, "1.0", "10.00"),
			receiveRow(1, "R1", 101, 1, "1.0", "10.00"),
			receiveRow(1, "R1", 102, 1, "1.0", "10.00"),
		}
		groups := BuildOrders(rows)
		details := groups.ReceiveOrders[0].Details
		require.Len(t, details, 3)
		for _, d := range details {
			assert.Equal(t, "3.33", d.AllocatedFee.StringFixed(2))
		}
		// 3 x 3.33 = 9.99: a cent short of the authoritative fee, by design.
		assert.Equal(t, "10.00", groups.ReceiveOrders[0].Fee.StringFixed(2))
	})

	t.Run("zero total quantity allocates zero to all lines", func(t *testing.T) {
		rows := []DetailRow{
			receiveRow(1, "R1", 100, 0, "1.0", "10.00"),
			receiveRow(1, "R1", 101, 0, "1.0", "10.00"),
		}
		groups := BuildOrders(rows)
		for _, d := range groups.ReceiveOrders[0].Details {
			assert.True(t, d.AllocatedFee.IsZero())
		}
	})

	t.Run("rows with an unknown order type are dropped and counted", func(t *testing.T) {
		rows := []DetailRow{
			sendRow(1, "S1", 100, 10, "5.0"),
			{OrderID: 9, OrderType: "transfer"},
		}
		groups := BuildOrders(rows)
		assert.Len(t, groups.SendOrders, 1)
		assert.Empty(t, groups.ReceiveOrders)
		assert.Equal(t, 1, groups.DroppedRows)
	})

	t.Run("empty input yields empty non-nil groups", func(t *testing.T) {
		groups := BuildOrders(nil)
		assert.NotNil(t, groups.SendOrders)
		assert.NotNil(t, groups.ReceiveOrders)
		assert.Empty(t, groups.SendOrders)
		assert.Empty(t, groups.ReceiveOrders)
	})

	t.Run("order weight is rounded to two decimals", func(t *testing.T) {
		rows := []DetailRow{
			sendRow(1, "S1", 100, 1, "1.115"),
			sendRow(1, "S1", 101, 1, "1.115"),
		}
		groups := BuildOrders(rows)
		assert.Equal(t, "2.23", groups.SendOrders[0].Weight.StringFixed(2))
	})
}
