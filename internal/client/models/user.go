package models

// User is the authenticated identity obtained from the external identity
// provider. Only ID is required to scope uploads and records.
type User struct {
	ID    string
	Email string
}
