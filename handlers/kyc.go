package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"campusride/middleware"
	kycSvc "campusride/services/kyc"
	"campusride/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadKYCDocumentHandler accepts a multipart verification document.
func UploadKYCDocumentHandler(svc kycSvc.KYCService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		userID := c.GetString(middleware.CtxUserID)

		kind := c.PostForm("kind")
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
			return
		}

		tmpPath := filepath.Join(os.TempDir(), uuid.New().String()+filepath.Ext(file.Filename))
		if err := c.SaveUploadedFile(file, tmpPath); err != nil {
			logger.Error("Failed to buffer upload", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
			return
		}
		defer os.Remove(tmpPath)

		doc, err := svc.Upload(c.Request.Context(), userID, kind, tmpPath)
		if err != nil {
			logger.Warn("KYC upload failed", zap.String("uid", userID), zap.String("kind", kind), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, doc)
	}
}

// ListOwnKYCDocumentsHandler returns the caller's documents and review states.
func ListOwnKYCDocumentsHandler(svc kycSvc.KYCService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)
		docs, err := svc.ListOwn(userID)
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"documents": docs})
	}
}

// ListPendingKYCHandler returns all documents awaiting review. Admin only.
func ListPendingKYCHandler(svc kycSvc.KYCService) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := svc.ListPending()
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"documents": docs})
	}
}

// FetchKYCDocumentHandler streams the decrypted document bytes. Admin only.
func FetchKYCDocumentHandler(svc kycSvc.KYCService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)

		data, err := svc.FetchDecrypted(c.Request.Context(), c.Param("id"))
		if err != nil {
			logger.Error("KYC fetch failed", zap.String("docId", c.Param("id")), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/octet-stream", data)
	}
}

// ReviewKYCDocumentHandler approves or rejects one document. Admin only.
func ReviewKYCDocumentHandler(svc kycSvc.KYCService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		reviewerID := c.GetString(middleware.CtxUserID)

		var req struct {
			Status string `json:"status" binding:"required"`
			Note   string `json:"note"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		if err := svc.Review(c.Request.Context(), reviewerID, c.Param("id"), req.Status, req.Note); err != nil {
			logger.Warn("KYC review failed", zap.String("docId", c.Param("id")), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Review recorded"})
	}
}
