package catalog

import (
	"github.com/merchke/storefront/types"
	"github.com/shopspring/decimal"
)

var progressSteps = []types.OrderStatus{
	types.OrderPending,
	types.OrderProcessing,
	types.OrderShipped,
	types.OrderDelivered,
}

// OrderProgress returns how far along the delivery track status is, in
// percent. Cancelled and unknown statuses report 0.
func OrderProgress(status types.OrderStatus) int {
	for i, step := range progressSteps {
		if step == status {
			return (i + 1) * 100 / len(progressSteps)
		}
	}
	return 0
}

// Badge tones used by front ends to colour order statuses.
const (
	ToneWarning = "warning"
	ToneInfo    = "info"
	ToneAccent  = "accent"
	ToneSuccess = "success"
	ToneDanger  = "danger"
	ToneNeutral = "neutral"
)

// StatusBadge maps an order status to a display tone.
func StatusBadge(status types.OrderStatus) string {
	switch status {
	case types.OrderPending:
		return ToneWarning
	case types.OrderProcessing:
		return ToneInfo
	case types.OrderShipped:
		return ToneAccent
	case types.OrderDelivered:
		return ToneSuccess
	case types.OrderCancelled:
		return ToneDanger
	default:
		return ToneNeutral
	}
}

const (
	// LowStockThreshold is the stock level below which a product is flagged.
	LowStockThreshold = 10
	dashboardListSize = 5
)

// DashboardStats summarises the admin listings.
type DashboardStats struct {
	TotalProducts  int             `json:"total_products"`
	TotalOrders    int             `json:"total_orders"`
	TotalCustomers int             `json:"total_customers"`
	TotalRevenue   float64         `json:"total_revenue"`
	LowStock       []types.Product `json:"low_stock"`
	RecentOrders   []types.Order   `json:"recent_orders"`
}

// Dashboard builds DashboardStats. Totals prefer the server-reported
// count and fall back to the list length. Products without a reported
// stock level are never low stock.
func Dashboard(products types.ProductsResponse, orders types.OrdersResponse, customers types.CustomersResponse) DashboardStats {
	stats := DashboardStats{
		TotalProducts:  countOr(products.Total, len(products.Products)),
		TotalOrders:    countOr(orders.Total, len(orders.Orders)),
		TotalCustomers: countOr(customers.Total, len(customers.Customers)),
		LowStock:       []types.Product{},
		RecentOrders:   []types.Order{},
	}

	for _, p := range products.Products {
		if len(stats.LowStock) == dashboardListSize {
			break
		}
		if p.StockQuantity != nil && *p.StockQuantity < LowStockThreshold {
			stats.LowStock = append(stats.LowStock, p)
		}
	}

	revenue := decimal.Zero
	for _, o := range orders.Orders {
		revenue = revenue.Add(decimal.NewFromFloat(o.TotalAmount))
	}
	stats.TotalRevenue = revenue.InexactFloat64()

	recent := orders.Orders
	if len(recent) > dashboardListSize {
		recent = recent[:dashboardListSize]
	}
	stats.RecentOrders = append(stats.RecentOrders, recent...)
	return stats
}

func countOr(total, fallback int) int {
	if total > 0 {
		return total
	}
	return fallback
}
