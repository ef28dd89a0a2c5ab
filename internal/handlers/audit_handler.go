package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/medicore/medicore-api/internal/services"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Description Paginated audit trail, newest first
// @Tags Audit
// @Produce json
// @Param page query int false "Page number" default(1)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audit-logs [get]
func (h *AuditHandler) Index(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage := 10

	logs, total, err := h.auditService.List(c.Request.Context(), perPage, (page-1)*perPage)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, "Audit logs retrieved", logs, NewPagination(page, perPage, len(logs), total))
}
