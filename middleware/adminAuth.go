package middleware

import (
	"net/http"

	userRepo "campusride/database/repository/user"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// AdminOnlyMiddleware gates KYC review and quote listing. It runs after
// JWTAuthMiddleware and re-checks the admin flag on the user document so a
// stale claim never grants access.
func AdminOnlyMiddleware(users userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(CtxUserID)
		if userID == "" {
			unauthorized(c, "Insufficient authorization")
			return
		}

		proj := bson.M{"id": 1, "is_admin": 1}
		usr, err := users.GetByIDWithProjection(userID, proj)
		if err != nil || usr == nil || !usr.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
				"code":  0,
			})
			return
		}
		c.Next()
	}
}
