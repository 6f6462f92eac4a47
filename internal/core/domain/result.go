package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// TestResult is one measured value of a parameter on a sample.
type TestResult struct {
	ID          string
	TenantID    string
	SampleID    string
	ParameterID string
	Value       float64
	Unit        string
	Remarks     string
	MeasuredAt  time.Time
	Attributes  json.RawMessage
	Tombstone
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   string
}

func (r TestResult) Validate() error {
	if err := ValidateTenant(r.TenantID); err != nil {
		return err
	}
	if err := ValidateKey(r.SampleID); err != nil {
		return err
	}
	if err := ValidateKey(r.ParameterID); err != nil {
		return err
	}
	if r.MeasuredAt.IsZero() {
		return fmt.Errorf("%w: result measured_at is required", ErrInvalidArgument)
	}
	if len(r.Attributes) > 0 && !json.Valid(r.Attributes) {
		return fmt.Errorf("%w: attributes must be valid json", ErrInvalidArgument)
	}
	return nil
}

func (r TestResult) Properties() PropertySet {
	ps := PropertySet{
		"tenant_id":    r.TenantID,
		"sample_id":    r.SampleID,
		"parameter_id": r.ParameterID,
		"value":        r.Value,
		"unit":         r.Unit,
		"remarks":      r.Remarks,
		"measured_at":  r.MeasuredAt,
		"attributes":   r.Attributes,
	}
	r.tombstoneProperties(ps)
	return ps
}
