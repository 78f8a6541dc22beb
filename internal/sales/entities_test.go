package sales

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewLineItem_SubtotalExact(t *testing.T) {
	cases := []struct {
		name      string
		unitPrice string
		quantity  int
		want      string
	}{
		{"whole price", "5", 3, "15"},
		{"cents no drift", "19.99", 2, "39.98"},
		{"repeating binary fraction", "0.10", 3, "0.30"},
		{"single unit", "9.99", 1, "9.99"},
		{"large quantity", "1.01", 1000, "1010.00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := NewLineItem("li-1", "txn-1", "p-1", "Widget", tc.quantity, decimal.RequireFromString(tc.unitPrice))

			assert.True(t, item.Subtotal.Equal(decimal.RequireFromString(tc.want)),
				"subtotal %s, want %s", item.Subtotal, tc.want)
			assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString(tc.unitPrice)))
			assert.Equal(t, tc.quantity, item.Quantity)
		})
	}
}

func TestLockOrder_SortsByProductID(t *testing.T) {
	items := []LineItem{
		{ProductID: "c"},
		{ProductID: "a"},
		{ProductID: "b"},
		{ProductID: "a"},
	}

	order := lockOrder(items)

	got := make([]string, len(order))
	for i, idx := range order {
		got[i] = items[idx].ProductID
	}
	assert.Equal(t, []string{"a", "a", "b", "c"}, got)
	// stable: the two "a" lines keep their cart order
	assert.Equal(t, []int{1, 3, 2, 0}, order)
}
