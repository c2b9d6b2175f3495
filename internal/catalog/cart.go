package catalog

import (
	"github.com/merchke/storefront/types"
	"github.com/shopspring/decimal"
)

// CartSubtotal returns the server subtotal when it is set, otherwise the
// sum of each line's subtotal, or price times quantity when that is unset.
func CartSubtotal(cart types.CartResponse) float64 {
	if cart.Subtotal != 0 {
		return cart.Subtotal
	}

	total := decimal.Zero
	for _, item := range cart.Items {
		total = total.Add(lineSubtotal(item))
	}
	return total.InexactFloat64()
}

func lineSubtotal(item types.CartItem) decimal.Decimal {
	if item.Subtotal != 0 {
		return decimal.NewFromFloat(item.Subtotal)
	}
	return decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// CartItemCount returns total_items when the server reports it, otherwise
// the sum of line quantities.
func CartItemCount(cart types.CartResponse) int {
	if cart.TotalItems != 0 {
		return cart.TotalItems
	}
	n := 0
	for _, item := range cart.Items {
		n += item.Quantity
	}
	return n
}
