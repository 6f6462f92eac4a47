package usecase

import (
	"testing"
	"time"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
)

func TestExtractChangesInsertSkipsDefaults(t *testing.T) {
	changes := ExtractChanges([]domain.StagedChange{{
		Kind:     domain.KindLab,
		ID:       "lab-1",
		TenantID: "acme",
		Intent:   domain.IntentInsert,
		Next: domain.PropertySet{
			"name":        "Central Lab",
			"description": "",
			"deleted":     false,
			"deleted_at":  (*time.Time)(nil),
		},
	}})

	if len(changes) != 1 {
		t.Fatalf("expected one change, got %d", len(changes))
	}
	ch := changes[0]
	if ch.Intent != domain.IntentInsert {
		t.Fatalf("expected insert intent, got %s", ch.Intent)
	}
	if len(ch.Changes) != 1 {
		t.Fatalf("expected one property change, got %d", len(ch.Changes))
	}
	pc := ch.Changes[0]
	if pc.Name != "name" || pc.New == nil || *pc.New != "Central Lab" {
		t.Fatalf("unexpected property change %+v", pc)
	}
	if pc.Old != nil {
		t.Fatalf("expected nil old value on insert, got %q", *pc.Old)
	}
}

func TestExtractChangesModifyKeepsOnlyDiffs(t *testing.T) {
	changes := ExtractChanges([]domain.StagedChange{{
		Kind:     domain.KindLab,
		ID:       "lab-1",
		TenantID: "acme",
		Intent:   domain.IntentModify,
		Version:  "v1",
		Base: domain.PropertySet{
			"name":    "Central Lab",
			"address": "Old Street 1",
		},
		Next: domain.PropertySet{
			"name":    "Central Lab",
			"address": "New Street 2",
		},
	}})

	if len(changes) != 1 {
		t.Fatalf("expected one change, got %d", len(changes))
	}
	ch := changes[0]
	if ch.Version != "v1" {
		t.Fatalf("expected version token carried through, got %q", ch.Version)
	}
	if len(ch.Changes) != 1 {
		t.Fatalf("expected only the differing property, got %d changes", len(ch.Changes))
	}
	pc := ch.Changes[0]
	if pc.Name != "address" {
		t.Fatalf("expected address diff, got %s", pc.Name)
	}
	if pc.Old == nil || *pc.Old != "Old Street 1" {
		t.Fatalf("unexpected old value %v", pc.Old)
	}
	if pc.New == nil || *pc.New != "New Street 2" {
		t.Fatalf("unexpected new value %v", pc.New)
	}
}

func TestExtractChangesDropsNoOpModify(t *testing.T) {
	base := domain.PropertySet{"name": "Central Lab", "address": "Street 1"}
	next := domain.PropertySet{"name": "Central Lab", "address": "Street 1"}

	changes := ExtractChanges([]domain.StagedChange{{
		Kind:     domain.KindLab,
		ID:       "lab-1",
		TenantID: "acme",
		Intent:   domain.IntentModify,
		Version:  "v1",
		Base:     base,
		Next:     next,
	}})

	if len(changes) != 0 {
		t.Fatalf("expected no-op modify to be dropped, got %d changes", len(changes))
	}
}

func TestExtractChangesEqualTimesCompareEqualAcrossZones(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	instant := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	changes := ExtractChanges([]domain.StagedChange{{
		Kind:     domain.KindSample,
		ID:       "s-1",
		TenantID: "acme",
		Intent:   domain.IntentModify,
		Version:  "v1",
		Base:     domain.PropertySet{"collected_at": instant},
		Next:     domain.PropertySet{"collected_at": instant.In(loc)},
	}})

	if len(changes) != 0 {
		t.Fatalf("expected equal instants in different zones to diff clean, got %d changes", len(changes))
	}
}

func TestExtractChangesRemoveExposesLastKnownState(t *testing.T) {
	changes := ExtractChanges([]domain.StagedChange{{
		Kind:     domain.KindLab,
		ID:       "lab-1",
		TenantID: "acme",
		Intent:   domain.IntentRemove,
		Version:  "v3",
		Base: domain.PropertySet{
			"name":    "Central Lab",
			"address": nil,
		},
	}})

	if len(changes) != 1 {
		t.Fatalf("expected one change, got %d", len(changes))
	}
	ch := changes[0]
	if ch.Intent != domain.IntentRemove {
		t.Fatalf("expected remove intent, got %s", ch.Intent)
	}
	if len(ch.Changes) != 2 {
		t.Fatalf("expected full last-known property set, got %d changes", len(ch.Changes))
	}
	for _, pc := range ch.Changes {
		if pc.New != nil {
			t.Fatalf("expected nil new value on remove, got %q for %s", *pc.New, pc.Name)
		}
	}
	if ch.Changes[0].Name != "address" || ch.Changes[1].Name != "name" {
		t.Fatalf("expected changes sorted by name, got %s, %s", ch.Changes[0].Name, ch.Changes[1].Name)
	}
	if ch.Changes[0].Old != nil {
		t.Fatalf("expected nil old value for nil property, got %q", *ch.Changes[0].Old)
	}
	if ch.Changes[1].Old == nil || *ch.Changes[1].Old != "Central Lab" {
		t.Fatalf("unexpected old value for name: %v", ch.Changes[1].Old)
	}
}
