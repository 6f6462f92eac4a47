package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/atvirokodosprendimai/labstore/internal/core/usecase"
)

const testAPIKey = "test-api-key"

type stubStore struct {
	commitFn func(ctx context.Context, changes []domain.EntityChange, records []domain.AuditRecord) error
}

func (s *stubStore) Commit(ctx context.Context, changes []domain.EntityChange, records []domain.AuditRecord) error {
	if s.commitFn != nil {
		return s.commitFn(ctx, changes, records)
	}
	return nil
}

type stubLabRepo struct {
	getFn func(ctx context.Context, tenantID, id string, includeDeleted bool) (domain.Lab, error)
}

func (s *stubLabRepo) Get(ctx context.Context, tenantID, id string, includeDeleted bool) (domain.Lab, error) {
	if s.getFn != nil {
		return s.getFn(ctx, tenantID, id, includeDeleted)
	}
	return domain.Lab{
		ID:        id,
		TenantID:  tenantID,
		Name:      "Central Lab",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
		Version:   "v1",
	}, nil
}

func (s *stubLabRepo) List(ctx context.Context, tenantID string, filter domain.ListFilter) ([]domain.Lab, error) {
	return nil, nil
}

type stubSampleRepo struct{}

func (stubSampleRepo) Get(_ context.Context, tenantID, id string, _ bool) (domain.Sample, error) {
	return domain.Sample{ID: id, TenantID: tenantID, Code: "S-001", Version: "v1"}, nil
}

func (stubSampleRepo) List(context.Context, string, domain.SampleFilter) ([]domain.Sample, error) {
	return nil, nil
}

type stubSchemaRepo struct {
	schema *domain.AttributeSchema
}

func (s *stubSchemaRepo) Upsert(_ context.Context, schema domain.AttributeSchema) (domain.AttributeSchema, error) {
	return schema, nil
}

func (s *stubSchemaRepo) Get(context.Context, string, domain.EntityKind) (domain.AttributeSchema, error) {
	if s.schema != nil {
		return *s.schema, nil
	}
	return domain.AttributeSchema{}, domain.ErrNotFound
}

func (s *stubSchemaRepo) Delete(context.Context, string, domain.EntityKind) (bool, error) {
	return true, nil
}

type stubParamRepo struct{}

func (stubParamRepo) Get(_ context.Context, tenantID, id string, _ bool) (domain.Parameter, error) {
	return domain.Parameter{ID: id, TenantID: tenantID, Name: "pH", Version: "v1"}, nil
}

func (stubParamRepo) List(context.Context, string, domain.ListFilter) ([]domain.Parameter, error) {
	return nil, nil
}

type stubResultRepo struct{}

func (stubResultRepo) Get(_ context.Context, tenantID, id string, _ bool) (domain.TestResult, error) {
	return domain.TestResult{ID: id, TenantID: tenantID, MeasuredAt: time.Now().UTC(), Version: "v1"}, nil
}

func (stubResultRepo) List(context.Context, string, domain.ResultFilter) ([]domain.TestResult, error) {
	return nil, nil
}

type stubUserRepo struct{}

func (stubUserRepo) Get(_ context.Context, tenantID, id string, _ bool) (domain.User, error) {
	return domain.User{ID: id, TenantID: tenantID, Email: "a@b.test", Version: "v1"}, nil
}

func (stubUserRepo) GetByEmail(context.Context, string, string) (domain.User, error) {
	return domain.User{}, domain.ErrNotFound
}

func (stubUserRepo) List(context.Context, string, domain.ListFilter) ([]domain.User, error) {
	return nil, nil
}

type stubAPIKeyRepo struct{}

func (stubAPIKeyRepo) FindByTokenHash(_ context.Context, tokenHash string) (domain.APIKey, error) {
	if tokenHash == usecase.HashToken(testAPIKey) {
		return domain.APIKey{
			TokenHash: tokenHash,
			TenantID:  "acme",
			UserID:    "user-1",
			Name:      "test",
			Active:    true,
		}, nil
	}
	return domain.APIKey{}, domain.ErrNotFound
}

func (stubAPIKeyRepo) Upsert(context.Context, domain.APIKey) error {
	return nil
}

type stubAuditRepo struct {
	listFn func(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error)
}

func (s *stubAuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, nil
}

func (s *stubAuditRepo) ListArchived(context.Context, domain.AuditFilter) ([]domain.AuditRecord, error) {
	return nil, nil
}

func (s *stubAuditRepo) ArchiveBefore(context.Context, time.Time, int) (int, error) {
	return 0, nil
}

type handlerFixture struct {
	store     *stubStore
	labRepo   *stubLabRepo
	auditRepo *stubAuditRepo
	router    http.Handler
}

func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{
		store:     &stubStore{},
		labRepo:   &stubLabRepo{},
		auditRepo: &stubAuditRepo{},
	}

	uow := usecase.NewUnitOfWork(f.store)
	schemaSvc := usecase.NewSchemaService(&stubSchemaRepo{})
	h := NewHandler(
		usecase.NewLabService(f.labRepo, uow),
		usecase.NewSampleService(stubSampleRepo{}, f.labRepo, schemaSvc, uow),
		usecase.NewParameterService(stubParamRepo{}, uow),
		usecase.NewResultService(stubResultRepo{}, stubSampleRepo{}, stubParamRepo{}, schemaSvc, uow),
		usecase.NewUserService(stubUserRepo{}, uow),
		schemaSvc,
		usecase.NewAuditService(f.auditRepo),
		usecase.NewAuthService(stubAPIKeyRepo{}),
	)
	f.router = h.Router()
	return f
}

func doRequest(t *testing.T, router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("X-API-Key", testAPIKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerRequiresAPIKey(t *testing.T) {
	f := newHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/v1/labs", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandlerHealthzIsOpen(t *testing.T) {
	f := newHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandlerCreateLabRecordsKeyUserAsActor(t *testing.T) {
	f := newHandlerFixture()

	var actor string
	f.store.commitFn = func(_ context.Context, changes []domain.EntityChange, records []domain.AuditRecord) error {
		if len(records) != 1 {
			t.Fatalf("expected one audit record, got %d", len(records))
		}
		actor = records[0].Actor
		if changes[0].TenantID != "acme" {
			t.Fatalf("expected key tenant on change, got %q", changes[0].TenantID)
		}
		return nil
	}

	rec := doRequest(t, f.router, http.MethodPost, "/v1/labs", `{"name":"Central Lab"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if actor != "user-1" {
		t.Fatalf("expected key-bound user as actor, got %q", actor)
	}

	var resp labResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Name != "Central Lab" || resp.Version == "" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestHandlerUpdateLabConflictPayload(t *testing.T) {
	f := newHandlerFixture()
	f.store.commitFn = func(context.Context, []domain.EntityChange, []domain.AuditRecord) error {
		return &domain.ConflictError{
			Kind:      domain.KindLab,
			ID:        "lab-1",
			Attempted: map[string]string{"name": "Mine"},
			Current:   map[string]string{"name": "Theirs"},
		}
	}

	rec := doRequest(t, f.router, http.MethodPut, "/v1/labs/lab-1", `{"name":"Mine","version":"stale"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Error    string `json:"error"`
		Conflict struct {
			Kind      string            `json:"kind"`
			ID        string            `json:"id"`
			Attempted map[string]string `json:"attempted"`
			Current   map[string]string `json:"current"`
		} `json:"conflict"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Conflict.Attempted["name"] != "Mine" || resp.Conflict.Current["name"] != "Theirs" {
		t.Fatalf("expected both value sets in payload, got %+v", resp.Conflict)
	}
}

func TestHandlerUpdateLabWithoutVersionIsBadRequest(t *testing.T) {
	f := newHandlerFixture()

	rec := doRequest(t, f.router, http.MethodPut, "/v1/labs/lab-1", `{"name":"Renamed"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerDeleteLabPassesIfMatchVersion(t *testing.T) {
	f := newHandlerFixture()

	var version string
	f.store.commitFn = func(_ context.Context, changes []domain.EntityChange, _ []domain.AuditRecord) error {
		version = changes[0].Version
		return nil
	}

	rec := doRequest(t, f.router, http.MethodDelete, "/v1/labs/lab-1", "", map[string]string{
		"If-Match": `"v-token-9"`,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if version != "v-token-9" {
		t.Fatalf("expected If-Match token staged as version, got %q", version)
	}
}

func TestHandlerCreateLabRejectsUnknownFields(t *testing.T) {
	f := newHandlerFixture()

	rec := doRequest(t, f.router, http.MethodPost, "/v1/labs", `{"name":"L","bogus":true}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandlerCreateLabValidation(t *testing.T) {
	f := newHandlerFixture()

	rec := doRequest(t, f.router, http.MethodPost, "/v1/labs", `{"description":"no name"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing name, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerListAuditScopedToKeyTenant(t *testing.T) {
	f := newHandlerFixture()

	var gotFilter domain.AuditFilter
	f.auditRepo.listFn = func(_ context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error) {
		gotFilter = filter
		return []domain.AuditRecord{{
			Seq:        7,
			ID:         "r1",
			TenantID:   filter.TenantID,
			EntityKind: domain.KindLab,
			EntityID:   "lab-1",
			Action:     domain.AuditActionCreate,
			Actor:      "user-1",
			After:      json.RawMessage(`{"name":"L"}`),
			OccurredAt: time.Now().UTC(),
		}}, nil
	}

	rec := doRequest(t, f.router, http.MethodGet, "/v1/audit?entity_kind=lab&after_seq=3", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotFilter.TenantID != "acme" {
		t.Fatalf("expected tenant from key, got %q", gotFilter.TenantID)
	}
	if gotFilter.EntityKind != domain.KindLab || gotFilter.AfterSeq != 3 {
		t.Fatalf("unexpected filter %+v", gotFilter)
	}

	var resp struct {
		Items []auditRecordResponse `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Seq != 7 {
		t.Fatalf("unexpected items %+v", resp.Items)
	}
}

func TestHandlerSchemaViolationIsUnprocessable(t *testing.T) {
	f := newHandlerFixture()

	// rebuild the router with a configured schema for samples
	schema := domain.AttributeSchema{
		TenantID:   "acme",
		EntityKind: domain.KindSample,
		Schema:     json.RawMessage(`{"type":"object","required":["ph"]}`),
	}
	uow := usecase.NewUnitOfWork(f.store)
	schemaSvc := usecase.NewSchemaService(&stubSchemaRepo{schema: &schema})
	h := NewHandler(
		usecase.NewLabService(f.labRepo, uow),
		usecase.NewSampleService(stubSampleRepo{}, f.labRepo, schemaSvc, uow),
		usecase.NewParameterService(stubParamRepo{}, uow),
		usecase.NewResultService(stubResultRepo{}, stubSampleRepo{}, stubParamRepo{}, schemaSvc, uow),
		usecase.NewUserService(stubUserRepo{}, uow),
		schemaSvc,
		usecase.NewAuditService(f.auditRepo),
		usecase.NewAuthService(stubAPIKeyRepo{}),
	)

	rec := doRequest(t, h.Router(), http.MethodPost, "/v1/samples",
		`{"lab_id":"lab-1","code":"S-001","attributes":{"other":1}}`, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Details) == 0 {
		t.Fatal("expected violation details")
	}
}

func TestHandlerUserResponseNeverLeaksHash(t *testing.T) {
	f := newHandlerFixture()

	rec := doRequest(t, f.router, http.MethodGet, "/v1/users/u-1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("expected no password material in response: %s", rec.Body.String())
	}
}
