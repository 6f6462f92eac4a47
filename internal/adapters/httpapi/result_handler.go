package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/go-chi/chi/v5"
)

type resultRequest struct {
	SampleID    string          `json:"sample_id"`
	ParameterID string          `json:"parameter_id"`
	Value       float64         `json:"value"`
	Unit        string          `json:"unit"`
	Remarks     string          `json:"remarks"`
	MeasuredAt  time.Time       `json:"measured_at"`
	Attributes  json.RawMessage `json:"attributes"`
	Version     string          `json:"version"`
}

type resultResponse struct {
	ID          string          `json:"id"`
	SampleID    string          `json:"sample_id"`
	ParameterID string          `json:"parameter_id"`
	Value       float64         `json:"value"`
	Unit        string          `json:"unit"`
	Remarks     string          `json:"remarks"`
	MeasuredAt  string          `json:"measured_at"`
	Attributes  json.RawMessage `json:"attributes,omitempty"`
	Deleted     bool            `json:"deleted"`
	DeletedAt   *string         `json:"deleted_at,omitempty"`
	DeletedBy   string          `json:"deleted_by,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
	Version     string          `json:"version"`
}

func (h *Handler) createResult(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.resultService.Create(r.Context(), actorFromContext(r.Context()), domain.TestResult{
		TenantID:    tenantIDFromContext(r.Context()),
		SampleID:    req.SampleID,
		ParameterID: req.ParameterID,
		Value:       req.Value,
		Unit:        req.Unit,
		Remarks:     req.Remarks,
		MeasuredAt:  req.MeasuredAt,
		Attributes:  req.Attributes,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResultResponse(result))
}

func (h *Handler) updateResult(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.resultService.Update(r.Context(), actorFromContext(r.Context()), domain.TestResult{
		ID:          chi.URLParam(r, "id"),
		TenantID:    tenantIDFromContext(r.Context()),
		SampleID:    req.SampleID,
		ParameterID: req.ParameterID,
		Value:       req.Value,
		Unit:        req.Unit,
		Remarks:     req.Remarks,
		MeasuredAt:  req.MeasuredAt,
		Attributes:  req.Attributes,
		Version:     req.Version,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResultResponse(result))
}

func (h *Handler) getResult(w http.ResponseWriter, r *http.Request) {
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	result, err := h.resultService.Get(r.Context(), tenantIDFromContext(r.Context()), chi.URLParam(r, "id"), includeDeleted)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResultResponse(result))
}

func (h *Handler) deleteResult(w http.ResponseWriter, r *http.Request) {
	err := h.resultService.Delete(r.Context(), actorFromContext(r.Context()), tenantIDFromContext(r.Context()), chi.URLParam(r, "id"), versionFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) listResults(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseListFilter(w, r)
	if !ok {
		return
	}

	results, err := h.resultService.List(r.Context(), tenantIDFromContext(r.Context()), domain.ResultFilter{
		ListFilter:  filter,
		SampleID:    r.URL.Query().Get("sample_id"),
		ParameterID: r.URL.Query().Get("parameter_id"),
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	items := make([]resultResponse, 0, len(results))
	for _, result := range results {
		items = append(items, toResultResponse(result))
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func toResultResponse(result domain.TestResult) resultResponse {
	return resultResponse{
		ID:          result.ID,
		SampleID:    result.SampleID,
		ParameterID: result.ParameterID,
		Value:       result.Value,
		Unit:        result.Unit,
		Remarks:     result.Remarks,
		MeasuredAt:  result.MeasuredAt.UTC().Format(timeFormat),
		Attributes:  result.Attributes,
		Deleted:     result.Deleted,
		DeletedAt:   formatTimePtr(result.DeletedAt),
		DeletedBy:   result.DeletedBy,
		CreatedAt:   result.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:   result.UpdatedAt.UTC().Format(timeFormat),
		Version:     result.Version,
	}
}
