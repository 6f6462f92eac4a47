package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/go-chi/chi/v5"
)

type sampleRequest struct {
	LabID       string          `json:"lab_id"`
	Code        string          `json:"code"`
	Material    string          `json:"material"`
	Notes       string          `json:"notes"`
	CollectedAt *time.Time      `json:"collected_at"`
	Attributes  json.RawMessage `json:"attributes"`
	Version     string          `json:"version"`
}

type sampleResponse struct {
	ID          string          `json:"id"`
	LabID       string          `json:"lab_id"`
	Code        string          `json:"code"`
	Material    string          `json:"material"`
	Notes       string          `json:"notes"`
	CollectedAt *string         `json:"collected_at,omitempty"`
	Attributes  json.RawMessage `json:"attributes,omitempty"`
	Deleted     bool            `json:"deleted"`
	DeletedAt   *string         `json:"deleted_at,omitempty"`
	DeletedBy   string          `json:"deleted_by,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
	Version     string          `json:"version"`
}

func (h *Handler) createSample(w http.ResponseWriter, r *http.Request) {
	var req sampleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sample, err := h.sampleService.Create(r.Context(), actorFromContext(r.Context()), domain.Sample{
		TenantID:    tenantIDFromContext(r.Context()),
		LabID:       req.LabID,
		Code:        req.Code,
		Material:    req.Material,
		Notes:       req.Notes,
		CollectedAt: req.CollectedAt,
		Attributes:  req.Attributes,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSampleResponse(sample))
}

func (h *Handler) updateSample(w http.ResponseWriter, r *http.Request) {
	var req sampleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sample, err := h.sampleService.Update(r.Context(), actorFromContext(r.Context()), domain.Sample{
		ID:          chi.URLParam(r, "id"),
		TenantID:    tenantIDFromContext(r.Context()),
		LabID:       req.LabID,
		Code:        req.Code,
		Material:    req.Material,
		Notes:       req.Notes,
		CollectedAt: req.CollectedAt,
		Attributes:  req.Attributes,
		Version:     req.Version,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSampleResponse(sample))
}

func (h *Handler) getSample(w http.ResponseWriter, r *http.Request) {
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	sample, err := h.sampleService.Get(r.Context(), tenantIDFromContext(r.Context()), chi.URLParam(r, "id"), includeDeleted)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSampleResponse(sample))
}

func (h *Handler) deleteSample(w http.ResponseWriter, r *http.Request) {
	err := h.sampleService.Delete(r.Context(), actorFromContext(r.Context()), tenantIDFromContext(r.Context()), chi.URLParam(r, "id"), versionFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) listSamples(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseListFilter(w, r)
	if !ok {
		return
	}

	samples, err := h.sampleService.List(r.Context(), tenantIDFromContext(r.Context()), domain.SampleFilter{
		ListFilter: filter,
		LabID:      r.URL.Query().Get("lab_id"),
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]sampleResponse, 0, len(samples))
	for _, sample := range samples {
		result = append(result, toSampleResponse(sample))
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": result})
}

func toSampleResponse(sample domain.Sample) sampleResponse {
	return sampleResponse{
		ID:          sample.ID,
		LabID:       sample.LabID,
		Code:        sample.Code,
		Material:    sample.Material,
		Notes:       sample.Notes,
		CollectedAt: formatTimePtr(sample.CollectedAt),
		Attributes:  sample.Attributes,
		Deleted:     sample.Deleted,
		DeletedAt:   formatTimePtr(sample.DeletedAt),
		DeletedBy:   sample.DeletedBy,
		CreatedAt:   sample.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:   sample.UpdatedAt.UTC().Format(timeFormat),
		Version:     sample.Version,
	}
}
