package handlers

import (
	"net/http"

	"campusride/models"
	quoteSvc "campusride/services/quote"
	"campusride/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubmitQuoteHandler accepts a business carpooling quote request. Public
// endpoint; companies are not app users.
func SubmitQuoteHandler(svc quoteSvc.QuoteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)

		var quote models.BusinessQuote
		if err := c.ShouldBindJSON(&quote); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		stored, err := svc.Submit(c.Request.Context(), &quote)
		if err != nil {
			logger.Error("Quote submission failed", zap.String("company", quote.CompanyName), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, stored)
	}
}

// ListQuotesHandler returns all submitted quotes. Admin only.
func ListQuotesHandler(svc quoteSvc.QuoteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		quotes, err := svc.List()
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"quotes": quotes})
	}
}
