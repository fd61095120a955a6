package handlers

import (
	"net/http"

	"campusride/middleware"
	userSvc "campusride/services/user"
	"campusride/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterUserHandler creates an account and returns it with a session token.
func RegisterUserHandler(svc userSvc.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)

		var req userSvc.RegistrationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		usr, token, err := svc.Register(c.Request.Context(), req)
		if err != nil {
			logger.Warn("Registration failed", zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user": usr, "token": token})
	}
}

// AuthenticateUserHandler checks credentials and returns a session token.
func AuthenticateUserHandler(svc userSvc.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)

		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		usr, token, err := svc.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			logger.Warn("Authentication failed", zap.String("email", req.Email), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": usr, "token": token})
	}
}

// RevokeAuthTokenHandler invalidates the caller's session.
func RevokeAuthTokenHandler(svc userSvc.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		userID := c.GetString(middleware.CtxUserID)

		if err := svc.RevokeAuthToken(c.Request.Context(), userID); err != nil {
			logger.Error("Failed to revoke token", zap.String("uid", userID), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Token revoked"})
	}
}
