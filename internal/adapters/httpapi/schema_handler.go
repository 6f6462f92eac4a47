package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/go-chi/chi/v5"
)

type schemaResponse struct {
	EntityKind string          `json:"entity_kind"`
	Schema     json.RawMessage `json:"schema"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

func (h *Handler) upsertSchema(w http.ResponseWriter, r *http.Request) {
	kind := domain.EntityKind(chi.URLParam(r, "kind"))

	var schemaJSON json.RawMessage
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&schemaJSON); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := ensureEOF(decoder); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	schema, err := h.schemaService.Upsert(r.Context(), tenantIDFromContext(r.Context()), kind, schemaJSON)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSchemaResponse(schema))
}

func (h *Handler) getSchema(w http.ResponseWriter, r *http.Request) {
	kind := domain.EntityKind(chi.URLParam(r, "kind"))

	schema, err := h.schemaService.Get(r.Context(), tenantIDFromContext(r.Context()), kind)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSchemaResponse(schema))
}

func (h *Handler) deleteSchema(w http.ResponseWriter, r *http.Request) {
	kind := domain.EntityKind(chi.URLParam(r, "kind"))

	deleted, err := h.schemaService.Delete(r.Context(), tenantIDFromContext(r.Context()), kind)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func toSchemaResponse(schema domain.AttributeSchema) schemaResponse {
	return schemaResponse{
		EntityKind: string(schema.EntityKind),
		Schema:     schema.Schema,
		CreatedAt:  schema.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:  schema.UpdatedAt.UTC().Format(timeFormat),
	}
}
