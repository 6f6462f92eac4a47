package domain

import (
	"fmt"
	"time"
)

// Parameter is a test parameter (what gets measured), with optional
// plausibility bounds for incoming results.
type Parameter struct {
	ID       string
	TenantID string
	Name     string
	Unit     string
	Method   string
	MinValue float64
	MaxValue float64
	Tombstone
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   string
}

func (p Parameter) Validate() error {
	if err := ValidateTenant(p.TenantID); err != nil {
		return err
	}
	if p.Name == "" {
		return fmt.Errorf("%w: parameter name is required", ErrInvalidArgument)
	}
	if p.MaxValue != 0 && p.MaxValue < p.MinValue {
		return fmt.Errorf("%w: parameter max value below min value", ErrInvalidArgument)
	}
	return nil
}

func (p Parameter) Properties() PropertySet {
	ps := PropertySet{
		"tenant_id": p.TenantID,
		"name":      p.Name,
		"unit":      p.Unit,
		"method":    p.Method,
		"min_value": p.MinValue,
		"max_value": p.MaxValue,
	}
	p.tombstoneProperties(ps)
	return ps
}
