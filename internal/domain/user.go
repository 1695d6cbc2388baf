package domain

// User is the identity resolved from a credential token. Immutable once
// attached to a connection.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
