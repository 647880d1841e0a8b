package models

import "time"

// Account is the balance record for a single user.
// It is only ever mutated by the transactor while holding that
// account's lock, so readers always observe a committed state.
type Account struct {
	AccountID int64     `json:"account_id"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}
