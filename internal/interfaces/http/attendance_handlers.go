package http

import (
	"github.com/gin-gonic/gin"
)

// ClockIn handles POST /api/attendance/clock-in
func (h *Handlers) ClockIn(c *gin.Context) {
	rec, err := h.services.Attendance.ClockIn(c.Request.Context(), currentActor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.created(c, rec)
}

// ClockOut handles POST /api/attendance/clock-out
func (h *Handlers) ClockOut(c *gin.Context) {
	rec, err := h.services.Attendance.ClockOut(c.Request.Context(), currentActor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, rec)
}

// ListAttendance handles GET /api/attendance
func (h *Handlers) ListAttendance(c *gin.Context) {
	var page PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}
	page.normalize()

	records, err := h.services.Attendance.List(c.Request.Context(), currentActor(c), page.Limit, page.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, records)
}

// ListNotifications handles GET /api/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	var page PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}
	page.normalize()

	notifications, err := h.services.Notifications.List(c.Request.Context(), currentActor(c), page.Limit, page.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, notifications)
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	if err := h.services.Notifications.MarkRead(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, gin.H{"read": true})
}
