package model

import "time"

// Account is a deposit or card account with its last known balance.
type Account struct {
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Balance   float64   `json:"balance"`
}

// TotalBalance sums the balances of the given accounts.
func TotalBalance(accounts []Account) float64 {
	total := 0.0
	for _, a := range accounts {
		total += a.Balance
	}
	return total
}
