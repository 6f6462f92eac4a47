package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Sample is physical material registered for analysis. Attributes carries
// free-form JSON validated against the tenant's attribute schema, if one is
// configured.
type Sample struct {
	ID          string
	TenantID    string
	LabID       string
	Code        string
	Material    string
	Notes       string
	CollectedAt *time.Time
	Attributes  json.RawMessage
	Tombstone
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   string
}

func (s Sample) Validate() error {
	if err := ValidateTenant(s.TenantID); err != nil {
		return err
	}
	if err := ValidateKey(s.LabID); err != nil {
		return err
	}
	if s.Code == "" {
		return fmt.Errorf("%w: sample code is required", ErrInvalidArgument)
	}
	if len(s.Attributes) > 0 && !json.Valid(s.Attributes) {
		return fmt.Errorf("%w: attributes must be valid json", ErrInvalidArgument)
	}
	return nil
}

func (s Sample) Properties() PropertySet {
	ps := PropertySet{
		"tenant_id":    s.TenantID,
		"lab_id":       s.LabID,
		"code":         s.Code,
		"material":     s.Material,
		"notes":        s.Notes,
		"collected_at": s.CollectedAt,
		"attributes":   s.Attributes,
	}
	s.tombstoneProperties(ps)
	return ps
}
