package models

import "time"

// Account represents a customer account in the system.
type Account struct {
	ID           int       `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	AccountType  string    `json:"accountType"`
	CreatedAt    time.Time `json:"createdAt"`
}
