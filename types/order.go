package types

import "time"

// OrderStatus is the server-owned lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Order is a placed order. Status transitions happen on the backend only.
type Order struct {
	ID            int         `json:"id"`
	OrderNumber   string      `json:"order_number"`
	UserID        int         `json:"user_id"`
	TotalAmount   float64     `json:"total_amount"`
	Status        OrderStatus `json:"status"`
	PaymentStatus string      `json:"payment_status,omitempty"`
	PaymentMethod string      `json:"payment_method"`
	Notes         string      `json:"notes,omitempty"`
	Items         []OrderItem `json:"items,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID          int     `json:"id"`
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Subtotal    float64 `json:"subtotal"`
}

// ShippingAddress is collected at checkout.
type ShippingAddress struct {
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city" validate:"required"`
	County       string `json:"county" validate:"required"`
	PostalCode   string `json:"postal_code,omitempty"`
}

// CreateOrderRequest places an order from the current cart.
type CreateOrderRequest struct {
	ShippingAddressID *int             `json:"shipping_address_id,omitempty"`
	ShippingAddress   *ShippingAddress `json:"shipping_address,omitempty"`
	PaymentMethod     string           `json:"payment_method" validate:"required,oneof=mpesa card cod"`
	GuestEmail        string           `json:"guest_email,omitempty"`
	MpesaPhone        string           `json:"mpesa_phone,omitempty"`
	Notes             string           `json:"notes,omitempty"`
}

// UpdateOrderStatusRequest is sent by admins to move an order along.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// OrderResponse wraps a single order.
type OrderResponse struct {
	Message string `json:"message"`
	Order   Order  `json:"order"`
}

// OrdersResponse is the order listing payload.
type OrdersResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
}
