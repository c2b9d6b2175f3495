package catalog

import (
	"strings"

	"github.com/merchke/storefront/types"
)

// FilterCustomers keeps customers whose username, email, first or last
// name contains query, ignoring case. An empty query keeps everyone.
func FilterCustomers(customers []types.Customer, query string) []types.Customer {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]types.Customer, 0, len(customers))
	for _, c := range customers {
		if query == "" || matchesAny(query, c.Username, c.Email, c.FirstName, c.LastName) {
			out = append(out, c)
		}
	}
	return out
}

func matchesAny(query string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}
