// internal/models/candidate.go
package models

// Candidate holds the contact details the notification dispatcher needs.
// Identity and role assignment live in an external provider; only resolved
// attributes appear here.
type Candidate struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}
