package httpapi

import (
	"net/http"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/go-chi/chi/v5"
)

type userRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	Active      *bool  `json:"active"`
	Version     string `json:"version"`
}

// userResponse never carries the password hash.
type userResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	DisplayName string  `json:"display_name"`
	Role        string  `json:"role"`
	Active      bool    `json:"active"`
	Deleted     bool    `json:"deleted"`
	DeletedAt   *string `json:"deleted_at,omitempty"`
	DeletedBy   string  `json:"deleted_by,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	Version     string  `json:"version"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeBody(w, r, &req) {
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	user, err := h.userService.Create(r.Context(), actorFromContext(r.Context()), domain.User{
		TenantID:    tenantIDFromContext(r.Context()),
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Active:      active,
	}, req.Password)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeBody(w, r, &req) {
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	user, err := h.userService.Update(r.Context(), actorFromContext(r.Context()), domain.User{
		ID:          chi.URLParam(r, "id"),
		TenantID:    tenantIDFromContext(r.Context()),
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Active:      active,
		Version:     req.Version,
	}, req.Password)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	user, err := h.userService.Get(r.Context(), tenantIDFromContext(r.Context()), chi.URLParam(r, "id"), includeDeleted)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.userService.Delete(r.Context(), actorFromContext(r.Context()), tenantIDFromContext(r.Context()), chi.URLParam(r, "id"), versionFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseListFilter(w, r)
	if !ok {
		return
	}

	users, err := h.userService.List(r.Context(), tenantIDFromContext(r.Context()), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]userResponse, 0, len(users))
	for _, user := range users {
		result = append(result, toUserResponse(user))
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": result})
}

func toUserResponse(user domain.User) userResponse {
	return userResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		Active:      user.Active,
		Deleted:     user.Deleted,
		DeletedAt:   formatTimePtr(user.DeletedAt),
		DeletedBy:   user.DeletedBy,
		CreatedAt:   user.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:   user.UpdatedAt.UTC().Format(timeFormat),
		Version:     user.Version,
	}
}
