package usecase

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
)

func TestTruncateBoundaries(t *testing.T) {
	at50 := strings.Repeat("a", 50)
	if got, truncated := Truncate(at50); truncated || got != at50 {
		t.Fatalf("expected 50-byte value untouched, got %d bytes truncated=%v", len(got), truncated)
	}

	at51 := strings.Repeat("b", 51)
	got, truncated := Truncate(at51)
	if !truncated {
		t.Fatal("expected 51-byte value truncated")
	}
	if len(got) != 49 {
		t.Fatalf("expected 49-byte result, got %d", len(got))
	}
	if got != strings.Repeat("b", 35)+"...[truncated]" {
		t.Fatalf("unexpected truncated value %q", got)
	}

	long := strings.Repeat("c", 500)
	if got, _ := Truncate(long); len(got) != 49 {
		t.Fatalf("expected 49-byte result for long value, got %d", len(got))
	}
}

func TestBuildAuditRecordsCreate(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	actor := domain.Actor{ID: "user-3", Origin: "10.0.0.9:51001"}

	records := BuildAuditRecords([]domain.EntityChange{{
		Kind:     domain.KindLab,
		ID:       "lab-1",
		TenantID: "acme",
		Intent:   domain.IntentInsert,
		Changes: []domain.PropertyChange{
			{Name: "name", New: domain.StrPtr("Central Lab")},
		},
	}}, actor, now)

	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	rec := records[0]
	if rec.Action != domain.AuditActionCreate {
		t.Fatalf("expected create action, got %s", rec.Action)
	}
	if rec.Before != nil {
		t.Fatalf("expected nil before payload for create, got %s", rec.Before)
	}
	if rec.Actor != "user-3" || rec.Origin != "10.0.0.9:51001" {
		t.Fatalf("unexpected actor/origin %q %q", rec.Actor, rec.Origin)
	}

	var after map[string]string
	if err := json.Unmarshal(rec.After, &after); err != nil {
		t.Fatalf("decode after payload: %v", err)
	}
	if after["name"] != "Central Lab" {
		t.Fatalf("unexpected after payload %v", after)
	}
	if rec.Truncated {
		t.Fatal("expected no truncation flag")
	}
}

func TestBuildAuditRecordsUpdateTruncatesAndFlags(t *testing.T) {
	now := time.Now().UTC()
	long := strings.Repeat("x", 120)

	records := BuildAuditRecords([]domain.EntityChange{{
		Kind:     domain.KindSample,
		ID:       "s-1",
		TenantID: "acme",
		Intent:   domain.IntentModify,
		Changes: []domain.PropertyChange{
			{Name: "notes", Old: domain.StrPtr("short"), New: domain.StrPtr(long)},
		},
	}}, domain.Actor{ID: "user-1"}, now)

	rec := records[0]
	if rec.Action != domain.AuditActionUpdate {
		t.Fatalf("expected update action, got %s", rec.Action)
	}
	if !rec.Truncated {
		t.Fatal("expected truncation flag set")
	}

	var before, after map[string]string
	if err := json.Unmarshal(rec.Before, &before); err != nil {
		t.Fatalf("decode before payload: %v", err)
	}
	if err := json.Unmarshal(rec.After, &after); err != nil {
		t.Fatalf("decode after payload: %v", err)
	}
	if before["notes"] != "short" {
		t.Fatalf("unexpected before payload %v", before)
	}
	if len(after["notes"]) != 49 || !strings.HasSuffix(after["notes"], "...[truncated]") {
		t.Fatalf("unexpected truncated after value %q", after["notes"])
	}
}

func TestBuildAuditRecordsSkipsExcludedKinds(t *testing.T) {
	now := time.Now().UTC()

	records := BuildAuditRecords([]domain.EntityChange{{
		Kind:     domain.KindUser,
		ID:       "u-1",
		TenantID: "acme",
		Intent:   domain.IntentInsert,
		Changes: []domain.PropertyChange{
			{Name: "password_hash", New: domain.StrPtr("$2a$10$secret")},
		},
	}}, domain.Actor{ID: "admin"}, now)

	if len(records) != 0 {
		t.Fatalf("expected no audit records for the user kind, got %d", len(records))
	}
}

func TestBuildAuditRecordsSkipsHardRemovesAndEmptyChanges(t *testing.T) {
	now := time.Now().UTC()

	records := BuildAuditRecords([]domain.EntityChange{
		{
			Kind:    domain.KindLab,
			ID:      "lab-1",
			Intent:  domain.IntentRemove,
			Changes: []domain.PropertyChange{{Name: "name", Old: domain.StrPtr("Lab")}},
		},
		{
			Kind:   domain.KindLab,
			ID:     "lab-2",
			Intent: domain.IntentModify,
		},
	}, domain.Actor{ID: "user-1"}, now)

	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}
