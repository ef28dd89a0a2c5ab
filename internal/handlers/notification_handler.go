package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medicore/medicore-api/internal/middleware"
	"github.com/medicore/medicore-api/internal/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// @Summary List Notifications
// @Description Get the authenticated user's notifications
// @Tags Notifications
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param unread query bool false "Only unread"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) Index(c *gin.Context) {
	query := buildListQuery(c)

	notifications, total, err := h.notificationService.ListForUser(c.Request.Context(), middleware.GetUserID(c), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses := make([]interface{}, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, notifications[i].ToResponse())
	}

	respondList(c, "Notifications retrieved", responses, NewPagination(query.Page, query.PerPage, len(responses), total))
}

// @Summary Mark Notification Read
// @Tags Notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	notification, err := h.notificationService.MarkAsRead(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Notification marked as read", notification.ToResponse())
}

// @Summary Mark All Notifications Read
// @Tags Notifications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	if err := h.notificationService.MarkAllAsRead(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "All notifications marked as read", nil)
}

// @Summary Delete Notification
// @Tags Notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Destroy(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Notification deleted", nil)
}
