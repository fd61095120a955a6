package handlers

import (
	"net/http"
	"strconv"

	"campusride/middleware"
	walletSvc "campusride/services/wallet"
	"campusride/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetWalletHandler returns the caller's balance.
func GetWalletHandler(svc walletSvc.WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)
		wallet, err := svc.GetWallet(c.Request.Context(), userID)
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, wallet)
	}
}

// ListLedgerHandler returns the caller's newest ledger entries.
func ListLedgerHandler(svc walletSvc.WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)

		limit := int64(50)
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 && n <= 200 {
				limit = n
			}
		}
		entries, err := svc.ListLedger(c.Request.Context(), userID, limit)
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries})
	}
}

// CreateTopupHandler opens a Stripe payment intent for a wallet top-up.
func CreateTopupHandler(svc walletSvc.WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		userID := c.GetString(middleware.CtxUserID)

		var req struct {
			AmountCents int64 `json:"amountCents" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		intent, err := svc.CreateTopupIntent(c.Request.Context(), userID, req.AmountCents)
		if err != nil {
			logger.Warn("Top-up intent failed", zap.String("uid", userID), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, intent)
	}
}

// ConfirmTopupHandler credits the wallet once the payment succeeded.
func ConfirmTopupHandler(svc walletSvc.WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		userID := c.GetString(middleware.CtxUserID)

		var req struct {
			IntentID string `json:"intentId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		entry, err := svc.ConfirmTopup(c.Request.Context(), userID, req.IntentID)
		if err != nil {
			logger.Warn("Top-up confirmation failed",
				zap.String("uid", userID), zap.String("intentId", req.IntentID), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}
