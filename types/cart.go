package types

// CartItem is one line of a cart. Subtotal may be zero when the backend
// leaves it to the client.
type CartItem struct {
	ID          int     `json:"id"`
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	ProductSlug string  `json:"product_slug"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Subtotal    float64 `json:"subtotal"`
}

// CartResponse is the current cart of a user or guest session.
type CartResponse struct {
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"total_items"`
	Subtotal   float64    `json:"subtotal"`
}

// AddToCartRequest adds quantity units of a product.
type AddToCartRequest struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// MessageResponse is the generic acknowledgement payload.
type MessageResponse struct {
	Message string `json:"message"`
}
