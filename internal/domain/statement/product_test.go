package statement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProductSummaries(t *testing.T) {
	t.Run("accumulates send and receive totals per product", func(t *testing.T) {
		rows := []DetailRow{
			sendRow(1, "S1", 100, 10, "5.0"),
			sendRow(2, "S2", 100, 5, "2.0"),
			receiveRow(3, "R1", 100, 12, "6.3", "20.00"),
			sendRow(1, "S1", 200, 3, "1.5"),
		}
		summaries := BuildProductSummaries(rows)
		require.Len(t, summaries, 2)

		p100 := summaries[0]
		assert.Equal(t, int64(100), p100.ProductID)
		assert.Equal(t, int64(15), p100.SendQuantity)
		assert.Equal(t, "7.00", p100.SendWeight.StringFixed(2))
		assert.Equal(t, int64(12), p100.ReceiveQuantity)
		assert.Equal(t, "6.30", p100.ReceiveWeight.StringFixed(2))
		assert.Equal(t, "10.00", p100.LossRate.StringFixed(2))

		p200 := summaries[1]
		assert.Equal(t, int64(200), p200.ProductID)
		assert.Zero(t, p200.ReceiveQuantity)
	})

	t.Run("metadata comes from the first row seen", func(t *testing.T) {
		first := sendRow(1, "S1", 100, 1, "1.0")
		first.StyleNo = "ST-01"
		first.ProductName = "Hoodie"
		first.ImageURL = "http://img/1.jpg"
		second := receiveRow(2, "R1", 100, 1, "1.0", "5.00")
		second.StyleNo = "ST-99"
		second.ProductName = "Renamed"

		summaries := BuildProductSummaries([]DetailRow{first, second})
		require.Len(t, summaries, 1)
		assert.Equal(t, "ST-01", summaries[0].StyleNo)
		assert.Equal(t, "Hoodie", summaries[0].ProductName)
		assert.Equal(t, "http://img/1.jpg", summaries[0].ImageURL)
	})

	t.Run("output order is first-seen product first", func(t *testing.T) {
		rows := []DetailRow{
			sendRow(1, "S1", 300, 1, "1.0"),
			sendRow(1, "S1", 100, 1, "1.0"),
			sendRow(1, "S1", 200, 1, "1.0"),
		}
		summaries := BuildProductSummaries(rows)
		require.Len(t, summaries, 3)
		assert.Equal(t, int64(300), summaries[0].ProductID)
		assert.Equal(t, int64(100), summaries[1].ProductID)
		assert.Equal(t, int64(200), summaries[2].ProductID)
	})

	t.Run("unknown order types do not contribute", func(t *testing.T) {
		rows := []DetailRow{
			{OrderID: 1, OrderType: "transfer", ProductID: 100, ItemQuantity: 5},
		}
		assert.Empty(t, BuildProductSummaries(rows))
	})
}

func TestLossRate(t *testing.T) {
	t.Run("computes percentage shrinkage to two decimals", func(t *testing.T) {
		rate := lossRate(decimal.RequireFromString("5.0"), decimal.RequireFromString("4.8"))
		assert.Equal(t, "4.00", rate.StringFixed(2))
	})

	t.Run("zero send weight yields zero, never a division error", func(t *testing.T) {
		assert.True(t, lossRate(decimal.Zero, decimal.RequireFromString("3.0")).IsZero())
	})

	t.Run("negative shrinkage is allowed when more came back than went out", func(t *testing.T) {
		rate := lossRate(decimal.RequireFromString("4.0"), decimal.RequireFromString("5.0"))
		assert.Equal(t, "-25.00", rate.StringFixed(2))
	})
}
