package domain

import (
	"fmt"
	"time"
)

// User is an account that can act on the system. The kind is deliberately
// excluded from audit capture so password material never reaches audit
// payloads; it still participates in soft deletion and version checking.
type User struct {
	ID           string
	TenantID     string
	Email        string
	DisplayName  string
	PasswordHash string
	Role         string
	Active       bool
	Tombstone
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   string
}

func (u User) Validate() error {
	if err := ValidateTenant(u.TenantID); err != nil {
		return err
	}
	if u.Email == "" {
		return fmt.Errorf("%w: user email is required", ErrInvalidArgument)
	}
	return nil
}

func (u User) Properties() PropertySet {
	ps := PropertySet{
		"tenant_id":     u.TenantID,
		"email":         u.Email,
		"display_name":  u.DisplayName,
		"password_hash": u.PasswordHash,
		"role":          u.Role,
		"active":        u.Active,
	}
	u.tombstoneProperties(ps)
	return ps
}
