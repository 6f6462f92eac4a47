package httpapi

import (
	"net/http"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/go-chi/chi/v5"
)

type labRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Address      string `json:"address"`
	ContactEmail string `json:"contact_email"`
	Version      string `json:"version"`
}

type labResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Address      string  `json:"address"`
	ContactEmail string  `json:"contact_email"`
	Deleted      bool    `json:"deleted"`
	DeletedAt    *string `json:"deleted_at,omitempty"`
	DeletedBy    string  `json:"deleted_by,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
	Version      string  `json:"version"`
}

func (h *Handler) createLab(w http.ResponseWriter, r *http.Request) {
	var req labRequest
	if !decodeBody(w, r, &req) {
		return
	}

	lab, err := h.labService.Create(r.Context(), actorFromContext(r.Context()), domain.Lab{
		TenantID:     tenantIDFromContext(r.Context()),
		Name:         req.Name,
		Description:  req.Description,
		Address:      req.Address,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toLabResponse(lab))
}

func (h *Handler) updateLab(w http.ResponseWriter, r *http.Request) {
	var req labRequest
	if !decodeBody(w, r, &req) {
		return
	}

	lab, err := h.labService.Update(r.Context(), actorFromContext(r.Context()), domain.Lab{
		ID:           chi.URLParam(r, "id"),
		TenantID:     tenantIDFromContext(r.Context()),
		Name:         req.Name,
		Description:  req.Description,
		Address:      req.Address,
		ContactEmail: req.ContactEmail,
		Version:      req.Version,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLabResponse(lab))
}

func (h *Handler) getLab(w http.ResponseWriter, r *http.Request) {
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	lab, err := h.labService.Get(r.Context(), tenantIDFromContext(r.Context()), chi.URLParam(r, "id"), includeDeleted)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLabResponse(lab))
}

func (h *Handler) deleteLab(w http.ResponseWriter, r *http.Request) {
	err := h.labService.Delete(r.Context(), actorFromContext(r.Context()), tenantIDFromContext(r.Context()), chi.URLParam(r, "id"), versionFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) listLabs(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseListFilter(w, r)
	if !ok {
		return
	}

	labs, err := h.labService.List(r.Context(), tenantIDFromContext(r.Context()), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]labResponse, 0, len(labs))
	for _, lab := range labs {
		result = append(result, toLabResponse(lab))
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": result})
}

func toLabResponse(lab domain.Lab) labResponse {
	return labResponse{
		ID:           lab.ID,
		Name:         lab.Name,
		Description:  lab.Description,
		Address:      lab.Address,
		ContactEmail: lab.ContactEmail,
		Deleted:      lab.Deleted,
		DeletedAt:    formatTimePtr(lab.DeletedAt),
		DeletedBy:    lab.DeletedBy,
		CreatedAt:    lab.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:    lab.UpdatedAt.UTC().Format(timeFormat),
		Version:      lab.Version,
	}
}
