package handlers

import (
	"net/http"
	"strconv"

	"campusride/middleware"
	messagingSvc "campusride/services/messaging"
	"campusride/services/realtime"
	"campusride/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SendMessageHandler delivers a chat message inside a ride thread.
func SendMessageHandler(svc messagingSvc.MessagingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		userID := c.GetString(middleware.CtxUserID)

		var req struct {
			RideID      string `json:"rideId" binding:"required"`
			RecipientID string `json:"recipientId" binding:"required"`
			Body        string `json:"body" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		msg, err := svc.Send(c.Request.Context(), userID, req.RideID, req.RecipientID, req.Body)
		if err != nil {
			logger.Warn("Message send failed", zap.String("rideId", req.RideID), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}

// ListConversationsHandler returns the caller's conversation threads.
func ListConversationsHandler(svc messagingSvc.MessagingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)
		convs, err := svc.ListConversations(userID)
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversations": convs})
	}
}

// ListMessagesHandler returns a conversation's messages, oldest first.
func ListMessagesHandler(svc messagingSvc.MessagingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)

		limit := int64(100)
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}
		msgs, err := svc.ListMessages(userID, c.Param("id"), limit)
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": msgs})
	}
}

// MarkConversationReadHandler flags the other side's messages as read.
func MarkConversationReadHandler(svc messagingSvc.MessagingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)
		if err := svc.MarkRead(userID, c.Param("id")); err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Conversation read"})
	}
}

// WebsocketHandler upgrades the connection and registers it for realtime
// events (new messages, reservation updates, notifications).
func WebsocketHandler(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		userID := c.GetString(middleware.CtxUserID)

		if err := hub.Upgrade(c.Writer, c.Request, userID); err != nil {
			logger.Warn("Websocket upgrade failed", zap.String("uid", userID), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Websocket upgrade failed"})
			return
		}
	}
}
