package types

import "time"

// PointsTransaction is one loyalty points movement.
type PointsTransaction struct {
	ID              int       `json:"id"`
	Points          int       `json:"points"`
	TransactionType string    `json:"transaction_type"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
}

// PointsResponse is the loyalty balance with its history.
type PointsResponse struct {
	Balance      int                 `json:"balance"`
	Transactions []PointsTransaction `json:"transactions"`
}

// WalletBalance is the token wallet balance.
type WalletBalance struct {
	Balance float64 `json:"balance"`
}

// WalletTransaction is one wallet movement.
type WalletTransaction struct {
	ID          int       `json:"id"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// WalletTransactionsResponse lists wallet movements.
type WalletTransactionsResponse struct {
	Transactions []WalletTransaction `json:"transactions"`
}

// AddTokensRequest tops up the wallet.
type AddTokensRequest struct {
	Amount float64 `json:"amount"`
}

// ErrorResponse is the backend's error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
