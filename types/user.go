package types

import "time"

// Role values reported by the backend.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents an account as returned by the backend.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username"`

	// Email is the user's email address.
	Email string `json:"email"`

	// FirstName and LastName make up the user's display name.
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// Phone is the contact number used for M-Pesa payments and delivery.
	Phone string `json:"phone"`

	// Role indicates the user's authorization level
	// within the system ("customer" or "admin").
	Role string `json:"role"`

	// IsActive reports whether the account may sign in.
	IsActive bool `json:"is_active"`

	// EmailVerified reports whether the email address was confirmed.
	EmailVerified bool `json:"email_verified"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at"`
}

// Name returns the user's full display name.
func (u User) Name() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Customer is the admin view of a customer account.
type Customer struct {
	User
	OrderCount int     `json:"order_count"`
	TotalSpent float64 `json:"total_spent"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
	Token   string `json:"token"`
}

// ProfileResponse wraps the current user.
type ProfileResponse struct {
	User User `json:"user"`
}

// CustomersResponse is the admin customer listing.
type CustomersResponse struct {
	Customers []Customer `json:"customers"`
	Total     int        `json:"total"`
}

// RegisterRequest creates a customer account.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
}

// LoginRequest authenticates with email and password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
