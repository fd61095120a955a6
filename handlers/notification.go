package handlers

import (
	"net/http"
	"strconv"

	"campusride/middleware"
	notificationSvc "campusride/services/notification"
	"campusride/utils"

	"github.com/gin-gonic/gin"
)

// ListNotificationsHandler returns the caller's notifications, newest first.
func ListNotificationsHandler(svc notificationSvc.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)

		limit := int64(50)
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 && n <= 200 {
				limit = n
			}
		}
		notifs, err := svc.List(c.Request.Context(), userID, limit)
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": notifs})
	}
}

// MarkNotificationReadHandler flags one notification as read.
func MarkNotificationReadHandler(svc notificationSvc.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)
		if err := svc.MarkRead(c.Request.Context(), userID, c.Param("id")); err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Notification read"})
	}
}

// MarkAllNotificationsReadHandler flags every notification as read.
func MarkAllNotificationsReadHandler(svc notificationSvc.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)
		if err := svc.MarkAllRead(c.Request.Context(), userID); err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "All notifications read"})
	}
}

// UnreadCountHandler returns the caller's unread notification count.
func UnreadCountHandler(svc notificationSvc.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)
		count, err := svc.UnreadCount(c.Request.Context(), userID)
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"unread": count})
	}
}
