package domain

import "time"

// APIKey authenticates a client and binds it to the user the key was issued
// for. The bound user becomes the acting identity on every write performed
// with the key.
type APIKey struct {
	TokenHash string
	TenantID  string
	UserID    string
	Name      string
	Active    bool
	CreatedAt time.Time
}
