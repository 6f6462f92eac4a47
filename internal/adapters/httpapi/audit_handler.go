package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
)

type auditRecordResponse struct {
	Seq        int64           `json:"seq"`
	ID         string          `json:"id"`
	EntityKind string          `json:"entity_kind"`
	EntityID   string          `json:"entity_id"`
	Action     string          `json:"action"`
	Actor      string          `json:"actor"`
	Origin     string          `json:"origin,omitempty"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after"`
	Truncated  bool            `json:"truncated"`
	OccurredAt string          `json:"occurred_at"`
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseAuditFilter(w, r)
	if !ok {
		return
	}

	records, err := h.auditService.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": toAuditResponses(records)})
}

func (h *Handler) listAuditArchive(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseAuditFilter(w, r)
	if !ok {
		return
	}

	records, err := h.auditService.ListArchived(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": toAuditResponses(records)})
}

func parseAuditFilter(w http.ResponseWriter, r *http.Request) (domain.AuditFilter, bool) {
	q := r.URL.Query()
	filter := domain.AuditFilter{
		TenantID:   tenantIDFromContext(r.Context()),
		EntityKind: domain.EntityKind(q.Get("entity_kind")),
		EntityID:   q.Get("entity_id"),
		Action:     domain.AuditAction(q.Get("action")),
		Actor:      q.Get("actor"),
	}
	if raw := q.Get("after_seq"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "after_seq must be integer")
			return domain.AuditFilter{}, false
		}
		filter.AfterSeq = parsed
	}
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be integer")
			return domain.AuditFilter{}, false
		}
		filter.Limit = parsed
	}
	return filter, true
}

func toAuditResponses(records []domain.AuditRecord) []auditRecordResponse {
	result := make([]auditRecordResponse, 0, len(records))
	for _, rec := range records {
		result = append(result, auditRecordResponse{
			Seq:        rec.Seq,
			ID:         rec.ID,
			EntityKind: string(rec.EntityKind),
			EntityID:   rec.EntityID,
			Action:     string(rec.Action),
			Actor:      rec.Actor,
			Origin:     rec.Origin,
			Before:     rec.Before,
			After:      rec.After,
			Truncated:  rec.Truncated,
			OccurredAt: rec.OccurredAt.UTC().Format(timeFormat),
		})
	}
	return result
}
