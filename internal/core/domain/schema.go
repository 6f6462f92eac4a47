package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ErrSchemaViolation is returned when an entity's attributes payload does
// not conform to the tenant's configured JSON schema. The Errors field
// contains machine-readable details.
type ErrSchemaViolation struct {
	Errors []string
}

func (e *ErrSchemaViolation) Error() string {
	return fmt.Sprintf("schema validation failed: %s", strings.Join(e.Errors, "; "))
}

// AttributeSchema holds the JSON Schema document configured for one entity
// kind within a tenant. It constrains the free-form attributes payload on
// samples and test results.
type AttributeSchema struct {
	TenantID   string
	EntityKind EntityKind
	Schema     json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
