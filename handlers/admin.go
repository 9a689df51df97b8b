package handlers

import (
	"net/http"

	"expense-ledger-go/models"
)

func (h *Handlers) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	resource := q.optString("resource")
	resourceID := q.optUint("resource_id")
	action := q.optString("action")
	if !q.ok(w) {
		return
	}
	page, pageNum, limit := h.pageFromQuery(r)

	query := h.db.WithContext(r.Context()).Model(&models.AuditLog{})
	if resource != nil {
		query = query.Where("resource = ?", *resource)
	}
	if resourceID != nil {
		query = query.Where("resource_id = ?", *resourceID)
	}
	if action != nil {
		query = query.Where("action = ?", *action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to count audit logs", nil)
		return
	}

	var auditLogs []models.AuditLog
	if err := query.Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&auditLogs).Error; err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to fetch audit logs", nil)
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{Items: auditLogs, Total: total, Page: pageNum, Limit: limit})
}
