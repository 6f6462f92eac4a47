package httpapi

import (
	"net/http"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/go-chi/chi/v5"
)

type parameterRequest struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Method   string  `json:"method"`
	MinValue float64 `json:"min_value"`
	MaxValue float64 `json:"max_value"`
	Version  string  `json:"version"`
}

type parameterResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Unit      string  `json:"unit"`
	Method    string  `json:"method"`
	MinValue  float64 `json:"min_value"`
	MaxValue  float64 `json:"max_value"`
	Deleted   bool    `json:"deleted"`
	DeletedAt *string `json:"deleted_at,omitempty"`
	DeletedBy string  `json:"deleted_by,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	Version   string  `json:"version"`
}

func (h *Handler) createParameter(w http.ResponseWriter, r *http.Request) {
	var req parameterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	param, err := h.paramService.Create(r.Context(), actorFromContext(r.Context()), domain.Parameter{
		TenantID: tenantIDFromContext(r.Context()),
		Name:     req.Name,
		Unit:     req.Unit,
		Method:   req.Method,
		MinValue: req.MinValue,
		MaxValue: req.MaxValue,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toParameterResponse(param))
}

func (h *Handler) updateParameter(w http.ResponseWriter, r *http.Request) {
	var req parameterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	param, err := h.paramService.Update(r.Context(), actorFromContext(r.Context()), domain.Parameter{
		ID:       chi.URLParam(r, "id"),
		TenantID: tenantIDFromContext(r.Context()),
		Name:     req.Name,
		Unit:     req.Unit,
		Method:   req.Method,
		MinValue: req.MinValue,
		MaxValue: req.MaxValue,
		Version:  req.Version,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toParameterResponse(param))
}

func (h *Handler) getParameter(w http.ResponseWriter, r *http.Request) {
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	param, err := h.paramService.Get(r.Context(), tenantIDFromContext(r.Context()), chi.URLParam(r, "id"), includeDeleted)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toParameterResponse(param))
}

func (h *Handler) deleteParameter(w http.ResponseWriter, r *http.Request) {
	err := h.paramService.Delete(r.Context(), actorFromContext(r.Context()), tenantIDFromContext(r.Context()), chi.URLParam(r, "id"), versionFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) listParameters(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseListFilter(w, r)
	if !ok {
		return
	}

	params, err := h.paramService.List(r.Context(), tenantIDFromContext(r.Context()), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]parameterResponse, 0, len(params))
	for _, param := range params {
		result = append(result, toParameterResponse(param))
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": result})
}

func toParameterResponse(param domain.Parameter) parameterResponse {
	return parameterResponse{
		ID:        param.ID,
		Name:      param.Name,
		Unit:      param.Unit,
		Method:    param.Method,
		MinValue:  param.MinValue,
		MaxValue:  param.MaxValue,
		Deleted:   param.Deleted,
		DeletedAt: formatTimePtr(param.DeletedAt),
		DeletedBy: param.DeletedBy,
		CreatedAt: param.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt: param.UpdatedAt.UTC().Format(timeFormat),
		Version:   param.Version,
	}
}
