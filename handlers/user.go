package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"campusride/middleware"
	notification "campusride/services/notification"
	"campusride/services/storage"
	userSvc "campusride/services/user"
	"campusride/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetProfileHandler returns the authenticated user's full profile.
func GetProfileHandler(svc userSvc.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		userID := c.GetString(middleware.CtxUserID)

		usr, err := svc.GetUserByID(userID)
		if err != nil {
			logger.Error("Failed to get profile", zap.String("uid", userID), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, usr)
	}
}

// GetPublicProfileHandler returns the reduced profile other users see.
func GetPublicProfileHandler(svc userSvc.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := svc.GetPublicProfile(c.Param("id"))
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// UpdateProfileHandler edits the caller's profile fields.
func UpdateProfileHandler(svc userSvc.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		userID := c.GetString(middleware.CtxUserID)

		var req userSvc.ProfileUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		usr, err := svc.UpdateProfile(userID, req)
		if err != nil {
			logger.Error("Failed to update profile", zap.String("uid", userID), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, usr)
	}
}

// UpdateFCMTokenHandler stores the device push token.
func UpdateFCMTokenHandler(svc userSvc.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)

		var req struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		if err := svc.UpdateFCMToken(userID, req.Token); err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Token updated"})
	}
}

// UploadAvatarHandler accepts a multipart image plus crop framing parameters.
func UploadAvatarHandler(svc userSvc.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		userID := c.GetString(middleware.CtxUserID)

		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
			return
		}

		crop := storage.CropParams{Scale: 1}
		if v := c.PostForm("scale"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				crop.Scale = f
			}
		}
		if v := c.PostForm("offsetX"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				crop.OffsetX = f
			}
		}
		if v := c.PostForm("offsetY"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				crop.OffsetY = f
			}
		}

		tmpPath := filepath.Join(os.TempDir(), uuid.New().String()+filepath.Ext(file.Filename))
		if err := c.SaveUploadedFile(file, tmpPath); err != nil {
			logger.Error("Failed to buffer upload", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
			return
		}
		defer os.Remove(tmpPath)

		usr, err := svc.UploadAvatar(c.Request.Context(), userID, tmpPath, crop)
		if err != nil {
			logger.Error("Failed to upload avatar", zap.String("uid", userID), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, usr)
	}
}

// SetPushPreferenceHandler flips push notifications on or off.
func SetPushPreferenceHandler(notifSvc notification.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)

		var req struct {
			Enabled *bool `json:"enabled" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		if err := notifSvc.SetPushEnabled(c.Request.Context(), userID, *req.Enabled); err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"pushEnabled": *req.Enabled})
	}
}

// DeleteAccountHandler runs the full removal cascade.
func DeleteAccountHandler(svc userSvc.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		userID := c.GetString(middleware.CtxUserID)

		if err := svc.DeleteAccount(c.Request.Context(), userID); err != nil {
			logger.Error("Account deletion failed", zap.String("uid", userID), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
	}
}
