package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/atvirokodosprendimai/labstore/internal/core/usecase"
	"github.com/go-chi/chi/v5"
)

type ctxKey string

const (
	timeFormat             = "2006-01-02T15:04:05.999999999Z07:00"
	tenantIDCtxKey  ctxKey = "tenant_id"
	actorCtxKey     ctxKey = "actor"
	maxJSONBodySize        = 1 << 20
)

type Handler struct {
	labService    *usecase.LabService
	sampleService *usecase.SampleService
	paramService  *usecase.ParameterService
	resultService *usecase.ResultService
	userService   *usecase.UserService
	schemaService *usecase.SchemaService
	auditService  *usecase.AuditService
	authService   *usecase.AuthService
}

func NewHandler(
	labService *usecase.LabService,
	sampleService *usecase.SampleService,
	paramService *usecase.ParameterService,
	resultService *usecase.ResultService,
	userService *usecase.UserService,
	schemaService *usecase.SchemaService,
	auditService *usecase.AuditService,
	authService *usecase.AuthService,
) *Handler {
	return &Handler{
		labService:    labService,
		sampleService: sampleService,
		paramService:  paramService,
		resultService: resultService,
		userService:   userService,
		schemaService: schemaService,
		auditService:  auditService,
		authService:   authService,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", h.healthz)

	r.Group(func(pr chi.Router) {
		pr.Use(h.requireAPIKey)

		pr.Get("/v1/labs", h.listLabs)
		pr.Post("/v1/labs", h.createLab)
		pr.Get("/v1/labs/{id}", h.getLab)
		pr.Put("/v1/labs/{id}", h.updateLab)
		pr.Delete("/v1/labs/{id}", h.deleteLab)

		pr.Get("/v1/samples", h.listSamples)
		pr.Post("/v1/samples", h.createSample)
		pr.Get("/v1/samples/{id}", h.getSample)
		pr.Put("/v1/samples/{id}", h.updateSample)
		pr.Delete("/v1/samples/{id}", h.deleteSample)

		pr.Get("/v1/parameters", h.listParameters)
		pr.Post("/v1/parameters", h.createParameter)
		pr.Get("/v1/parameters/{id}", h.getParameter)
		pr.Put("/v1/parameters/{id}", h.updateParameter)
		pr.Delete("/v1/parameters/{id}", h.deleteParameter)

		pr.Get("/v1/results", h.listResults)
		pr.Post("/v1/results", h.createResult)
		pr.Get("/v1/results/{id}", h.getResult)
		pr.Put("/v1/results/{id}", h.updateResult)
		pr.Delete("/v1/results/{id}", h.deleteResult)

		pr.Get("/v1/users", h.listUsers)
		pr.Post("/v1/users", h.createUser)
		pr.Get("/v1/users/{id}", h.getUser)
		pr.Put("/v1/users/{id}", h.updateUser)
		pr.Delete("/v1/users/{id}", h.deleteUser)

		pr.Get("/v1/schemas/{kind}", h.getSchema)
		pr.Put("/v1/schemas/{kind}", h.upsertSchema)
		pr.Delete("/v1/schemas/{kind}", h.deleteSchema)

		pr.Get("/v1/audit", h.listAudit)
		pr.Get("/v1/audit/archive", h.listAuditArchive)
	})

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get("X-API-Key"))
		if token == "" {
			auth := strings.TrimSpace(r.Header.Get("Authorization"))
			if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				token = strings.TrimSpace(auth[7:])
			}
		}

		apiKey, err := h.authService.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, usecase.ErrUnauthorized) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		actor := domain.Actor{ID: apiKey.UserID, Origin: r.RemoteAddr}
		ctx := context.WithValue(r.Context(), tenantIDCtxKey, apiKey.TenantID)
		ctx = context.WithValue(ctx, actorCtxKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tenantIDFromContext(ctx context.Context) string {
	tenant, _ := ctx.Value(tenantIDCtxKey).(string)
	return tenant
}

func actorFromContext(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(actorCtxKey).(domain.Actor)
	return actor
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := ensureEOF(decoder); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func ensureEOF(decoder *json.Decoder) error {
	var extra json.RawMessage
	if err := decoder.Decode(&extra); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return errors.New("extra json tokens")
}

func parseListFilter(w http.ResponseWriter, r *http.Request) (domain.ListFilter, bool) {
	q := r.URL.Query()
	filter := domain.ListFilter{
		IncludeDeleted: q.Get("include_deleted") == "true",
		AfterID:        q.Get("after"),
	}
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be integer")
			return domain.ListFilter{}, false
		}
		filter.Limit = parsed
	}
	return filter, true
}

// versionFromRequest reads the optional version token for deletes. An
// absent token lets the store delete against the latest state.
func versionFromRequest(r *http.Request) string {
	return strings.Trim(strings.TrimSpace(r.Header.Get("If-Match")), `"`)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timeFormat)
	return &s
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Printf("encode json response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func handleDomainError(w http.ResponseWriter, err error) {
	var conflict *domain.ConflictError
	var schemaErr *domain.ErrSchemaViolation
	var capErr *domain.CapabilityError

	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": conflict.Error(),
			"conflict": map[string]any{
				"kind":      conflict.Kind,
				"id":        conflict.ID,
				"attempted": conflict.Attempted,
				"current":   conflict.Current,
			},
		})
	case errors.As(err, &schemaErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "schema validation failed",
			"details": schemaErr.Errors,
		})
	case errors.As(err, &capErr):
		writeError(w, http.StatusBadRequest, capErr.Error())
	case errors.Is(err, domain.ErrInvalidKey),
		errors.Is(err, domain.ErrInvalidTenant),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
