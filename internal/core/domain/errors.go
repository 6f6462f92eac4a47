package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidKind     = errors.New("unknown entity kind")
	ErrInvalidArgument = errors.New("invalid argument")
)

// ConflictError reports a version-token mismatch detected at commit time.
// It carries both the values the caller attempted to write and the values
// currently held by the store, so callers can present a diff without a
// second round-trip. Nothing about the losing write is persisted.
type ConflictError struct {
	Kind      EntityKind
	ID        string
	Attempted map[string]string
	Current   map[string]string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("concurrent update conflict on %s %s: version token mismatch", e.Kind, e.ID)
}

// CapabilityError signals pipeline misuse, such as staging a version-checked
// modify without a token from a genuine load. It is a programming defect,
// not a recoverable runtime condition.
type CapabilityError struct {
	Kind   EntityKind
	ID     string
	Reason string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("capability misuse on %s %s: %s", e.Kind, e.ID, e.Reason)
}
