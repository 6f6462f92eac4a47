package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atvirokodosprendimai/labstore/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/atvirokodosprendimai/labstore/internal/core/usecase"
	"github.com/atvirokodosprendimai/labstore/migrations"
)

func openTestDB(t *testing.T) (*gormsqlite.DB, *sql.DB) {
	t.Helper()
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "test.sqlite")
	db, err := gormsqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	wdb, err := db.WriteSQLDB()
	if err != nil {
		t.Fatalf("writer sql db: %v", err)
	}
	if err := migrations.Up(ctx, wdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db, wdb
}

func assertTableCount(t *testing.T, ctx context.Context, db *sql.DB, table string, want int) {
	t.Helper()
	var got int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&got); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	if got != want {
		t.Fatalf("expected %d rows in %s, got %d", want, table, got)
	}
}

func TestStoreCommitInsertWritesEntityAndAudit(t *testing.T) {
	ctx := context.Background()
	db, wdb := openTestDB(t)

	store := NewStore(db)
	uow := usecase.NewUnitOfWork(store)
	repo := NewLabRepository(db)
	svc := usecase.NewLabService(repo, uow)

	lab, err := svc.Create(ctx, domain.Actor{ID: "tester"}, domain.Lab{
		TenantID: "acme",
		Name:     "Central Lab",
		Address:  "Street 1",
	})
	if err != nil {
		t.Fatalf("create lab: %v", err)
	}
	if lab.Version == "" {
		t.Fatal("expected a version token assigned on insert")
	}

	assertTableCount(t, ctx, wdb, "labs", 1)
	assertTableCount(t, ctx, wdb, "audit_records", 1)

	var action, actor string
	err = wdb.QueryRowContext(ctx, "SELECT action, actor FROM audit_records").Scan(&action, &actor)
	if err != nil {
		t.Fatalf("read audit record: %v", err)
	}
	if action != "create" || actor != "tester" {
		t.Fatalf("unexpected audit record %s by %s", action, actor)
	}
}

func TestStoreCommitAuditFailureRollsBackEntityWrite(t *testing.T) {
	ctx := context.Background()
	db, wdb := openTestDB(t)

	store := NewStore(db)
	uow := usecase.NewUnitOfWork(store)
	svc := usecase.NewLabService(NewLabRepository(db), uow)

	if _, err := wdb.ExecContext(ctx, `
		CREATE TRIGGER trg_fail_audit_insert
		BEFORE INSERT ON audit_records
		BEGIN
			SELECT RAISE(ABORT, 'forced audit failure');
		END;
	`); err != nil {
		t.Fatalf("create failure trigger: %v", err)
	}

	_, err := svc.Create(ctx, domain.Actor{ID: "tester"}, domain.Lab{
		TenantID: "acme",
		Name:     "Central Lab",
	})
	if err == nil {
		t.Fatal("expected create to fail")
	}
	if !strings.Contains(err.Error(), "forced audit failure") {
		t.Fatalf("expected forced audit failure, got: %v", err)
	}

	assertTableCount(t, ctx, wdb, "labs", 0)
	assertTableCount(t, ctx, wdb, "audit_records", 0)
}

func TestStoreCommitStaleVersionConflict(t *testing.T) {
	ctx := context.Background()
	db, wdb := openTestDB(t)

	store := NewStore(db)
	uow := usecase.NewUnitOfWork(store)
	repo := NewLabRepository(db)
	svc := usecase.NewLabService(repo, uow)

	created, err := svc.Create(ctx, domain.Actor{ID: "a"}, domain.Lab{
		TenantID: "acme",
		Name:     "Central Lab",
		Address:  "Street 1",
	})
	if err != nil {
		t.Fatalf("create lab: %v", err)
	}
	staleVersion := created.Version

	winner := created
	winner.Address = "Winner Street 5"
	winner, err = svc.Update(ctx, domain.Actor{ID: "a"}, winner)
	if err != nil {
		t.Fatalf("first update: %v", err)
	}

	loser := created
	loser.Address = "Loser Lane 9"
	loser.Version = staleVersion
	_, err = svc.Update(ctx, domain.Actor{ID: "b"}, loser)

	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if conflict.Kind != domain.KindLab || conflict.ID != created.ID {
		t.Fatalf("unexpected conflict target %s %s", conflict.Kind, conflict.ID)
	}
	if conflict.Attempted["address"] != "Loser Lane 9" {
		t.Fatalf("expected attempted value carried, got %v", conflict.Attempted)
	}
	if conflict.Current["address"] != "Winner Street 5" {
		t.Fatalf("expected winner's value in current set, got %v", conflict.Current)
	}

	// nothing about the losing write persisted
	reloaded, err := repo.Get(ctx, "acme", created.ID, false)
	if err != nil {
		t.Fatalf("reload lab: %v", err)
	}
	if reloaded.Address != "Winner Street 5" {
		t.Fatalf("expected winner's write intact, got %q", reloaded.Address)
	}
	if reloaded.Version != winner.Version {
		t.Fatalf("expected version token unchanged by rejected write")
	}
	assertTableCount(t, ctx, wdb, "audit_records", 2)
}

func TestStoreSoftDeleteHidesAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, wdb := openTestDB(t)

	store := NewStore(db)
	uow := usecase.NewUnitOfWork(store)
	repo := NewLabRepository(db)
	svc := usecase.NewLabService(repo, uow)

	created, err := svc.Create(ctx, domain.Actor{ID: "a"}, domain.Lab{
		TenantID: "acme",
		Name:     "Central Lab",
	})
	if err != nil {
		t.Fatalf("create lab: %v", err)
	}

	if err := svc.Delete(ctx, domain.Actor{ID: "deleter"}, "acme", created.ID, created.Version); err != nil {
		t.Fatalf("delete lab: %v", err)
	}

	// hidden from default reads, row still present
	if _, err := repo.Get(ctx, "acme", created.ID, false); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after soft delete, got %v", err)
	}
	assertTableCount(t, ctx, wdb, "labs", 1)

	tombstoned, err := repo.Get(ctx, "acme", created.ID, true)
	if err != nil {
		t.Fatalf("get with include_deleted: %v", err)
	}
	if !tombstoned.Deleted || tombstoned.DeletedAt == nil || tombstoned.DeletedBy != "deleter" {
		t.Fatalf("unexpected tombstone %+v", tombstoned.Tombstone)
	}
	firstDeletedAt := *tombstoned.DeletedAt

	// re-delete refreshes the tombstone without error
	if err := svc.Delete(ctx, domain.Actor{ID: "other"}, "acme", created.ID, ""); err != nil {
		t.Fatalf("re-delete lab: %v", err)
	}
	again, err := repo.Get(ctx, "acme", created.ID, true)
	if err != nil {
		t.Fatalf("reload tombstoned lab: %v", err)
	}
	if !again.Deleted || again.DeletedBy != "other" {
		t.Fatalf("expected refreshed tombstone, got %+v", again.Tombstone)
	}
	if again.DeletedAt == nil || again.DeletedAt.Before(firstDeletedAt) {
		t.Fatalf("expected deletion timestamp refreshed, got %v", again.DeletedAt)
	}
}

func TestStoreCommitModifyWithoutVersionIsCapabilityError(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestDB(t)

	store := NewStore(db)
	err := store.Commit(ctx, []domain.EntityChange{{
		Kind:    domain.KindLab,
		ID:      "lab-1",
		Intent:  domain.IntentModify,
		Changes: []domain.PropertyChange{{Name: "name", New: domain.StrPtr("x")}},
		Row:     domain.PropertySet{"name": "x"},
	}}, nil)

	var capErr *domain.CapabilityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected capability error, got %v", err)
	}
}

func TestStoreCommitTimesNormalizedToUTC(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestDB(t)

	store := NewStore(db)
	uow := usecase.NewUnitOfWork(store)
	labRepo := NewLabRepository(db)
	sampleRepo := NewSampleRepository(db)
	schemaSvc := usecase.NewSchemaService(NewSchemaRepository(db))
	labSvc := usecase.NewLabService(labRepo, uow)
	sampleSvc := usecase.NewSampleService(sampleRepo, labRepo, schemaSvc, uow)

	lab, err := labSvc.Create(ctx, domain.Actor{ID: "a"}, domain.Lab{TenantID: "acme", Name: "L"})
	if err != nil {
		t.Fatalf("create lab: %v", err)
	}

	loc := time.FixedZone("plus3", 3*60*60)
	collected := time.Date(2026, 7, 1, 15, 30, 0, 0, loc)
	sample, err := sampleSvc.Create(ctx, domain.Actor{ID: "a"}, domain.Sample{
		TenantID:    "acme",
		LabID:       lab.ID,
		Code:        "S-001",
		CollectedAt: &collected,
	})
	if err != nil {
		t.Fatalf("create sample: %v", err)
	}
	if sample.CollectedAt == nil || !sample.CollectedAt.Equal(collected) {
		t.Fatalf("expected collected_at preserved as the same instant, got %v", sample.CollectedAt)
	}
}
