package handlers

import (
	"net/http"

	"swasthsetu/middleware"
	"swasthsetu/service"

	"github.com/gin-gonic/gin"
)

// ListNotifications returns the caller's notifications, newest first.
func ListNotifications(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	items, err := service.GlobalServices.Notification.ListFor(claims.UserID)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to list notifications", err.Error())
		return
	}
	ok(c, items)
}

// UnreadNotificationCount returns the caller's unread notification count.
func UnreadNotificationCount(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	count, err := service.GlobalServices.Notification.UnreadCount(claims.UserID)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to count notifications", err.Error())
		return
	}
	ok(c, gin.H{"unread_count": count})
}

// MarkNotificationRead marks one of the caller's notifications as read.
func MarkNotificationRead(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	id, okParam := paramUint(c, "id")
	if !okParam {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid notification id", nil)
		return
	}

	n, err := service.GlobalServices.Notification.MarkRead(claims.UserID, id)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, n)
}

// MarkAllNotificationsRead marks every unread notification of the caller.
func MarkAllNotificationsRead(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	updated, err := service.GlobalServices.Notification.MarkAllRead(claims.UserID)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to mark notifications read", err.Error())
		return
	}
	ok(c, gin.H{"updated": updated})
}
