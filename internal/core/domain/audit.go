package domain

import (
	"encoding/json"
	"time"
)

// AuditAction is the captured mutation kind. Physical removals are rewritten
// to updates by the soft-delete stage, so the closed set is create/update.
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
)

// AuditRecord captures one committed mutation. Records are written once, in
// the same transaction as the mutation they describe, and never updated.
type AuditRecord struct {
	// Seq is the store-assigned insertion sequence, used only for paging.
	Seq        int64
	ID         string
	TenantID   string
	EntityKind EntityKind
	EntityID   string
	Action     AuditAction
	Actor      string
	Origin     string
	// Before and After hold only the properties that changed, as key→value
	// maps. Before is nil for creates.
	Before     json.RawMessage
	After      json.RawMessage
	Truncated  bool
	Archived   bool
	OccurredAt time.Time
}

// AuditFilter narrows audit trail listings.
type AuditFilter struct {
	TenantID   string
	EntityKind EntityKind
	EntityID   string
	Action     AuditAction
	Actor      string
	AfterSeq   int64
	Limit      int
}
