package domain

import (
	"fmt"
	"time"
)

// Lab is a laboratory a tenant operates. Samples reference the lab that
// collected them.
type Lab struct {
	ID           string
	TenantID     string
	Name         string
	Description  string
	Address      string
	ContactEmail string
	Tombstone
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   string
}

func (l Lab) Validate() error {
	if err := ValidateTenant(l.TenantID); err != nil {
		return err
	}
	if l.Name == "" {
		return fmt.Errorf("%w: lab name is required", ErrInvalidArgument)
	}
	return nil
}

func (l Lab) Properties() PropertySet {
	ps := PropertySet{
		"tenant_id":     l.TenantID,
		"name":          l.Name,
		"description":   l.Description,
		"address":       l.Address,
		"contact_email": l.ContactEmail,
	}
	l.tombstoneProperties(ps)
	return ps
}
