package stock_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tavolo-pos/inventory-api/internal/domain/stock"
)

func TestClassify(t *testing.T) {
	c := stock.NewClassifier(decimal.Zero)

	cases := []struct {
		name    string
		current string
		min     string
		want    string
	}{
		{"zero stock is out", "0", "5", stock.StatusOut},
		{"negative snapshot is out", "-1", "5", stock.StatusOut},
		{"below min is low", "3", "5", stock.StatusLow},
		{"exactly min is low", "5", "5", stock.StatusLow},
		{"above min is ok", "10", "5", stock.StatusOK},
		{"fractional below min is low", "0.5", "2.5", stock.StatusLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(decimal.RequireFromString(tc.current), decimal.RequireFromString(tc.min))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassify_DefaultThreshold(t *testing.T) {
	c := stock.NewClassifier(decimal.NewFromInt(10))

	// Item without its own min_stock falls back to the system default.
	assert.Equal(t, stock.StatusLow, c.Classify(decimal.NewFromInt(7), decimal.Zero))
	assert.Equal(t, stock.StatusOK, c.Classify(decimal.NewFromInt(11), decimal.Zero))

	// A per-item min always overrides the default, in both directions.
	assert.Equal(t, stock.StatusOK, c.Classify(decimal.NewFromInt(7), decimal.NewFromInt(5)))
	assert.Equal(t, stock.StatusLow, c.Classify(decimal.NewFromInt(12), decimal.NewFromInt(20)))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, stock.ValidStatus(stock.StatusOK))
	assert.True(t, stock.ValidStatus(stock.StatusLow))
	assert.True(t, stock.ValidStatus(stock.StatusOut))
	assert.False(t, stock.ValidStatus("empty"))
}
