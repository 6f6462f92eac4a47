package domain

// EntityKind is the closed set of domain entity kinds the persistence
// pipeline knows how to handle.
type EntityKind string

const (
	KindLab        EntityKind = "lab"
	KindSample     EntityKind = "sample"
	KindParameter  EntityKind = "parameter"
	KindTestResult EntityKind = "test_result"
	KindUser       EntityKind = "user"
)

func (k EntityKind) Valid() bool {
	_, ok := capabilityTable[k]
	return ok
}

// Capabilities declares which cross-cutting behaviors apply to an entity
// kind. The pipeline consults this table instead of inspecting entity types.
type Capabilities struct {
	Auditable      bool
	SoftDeletable  bool
	VersionChecked bool
}

// User records are excluded from audit capture: their property set contains
// credential material that must not end up in audit payloads.
var capabilityTable = map[EntityKind]Capabilities{
	KindLab:        {Auditable: true, SoftDeletable: true, VersionChecked: true},
	KindSample:     {Auditable: true, SoftDeletable: true, VersionChecked: true},
	KindParameter:  {Auditable: true, SoftDeletable: true, VersionChecked: true},
	KindTestResult: {Auditable: true, SoftDeletable: true, VersionChecked: true},
	KindUser:       {Auditable: false, SoftDeletable: true, VersionChecked: true},
}

// CapabilitiesFor returns the declared capabilities for kind. Unknown kinds
// have no capabilities: they are not audited, not tombstoned and not
// version-checked.
func CapabilitiesFor(kind EntityKind) Capabilities {
	return capabilityTable[kind]
}
