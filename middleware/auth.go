package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	userRepo "campusride/database/repository/user"
	"campusride/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
)

// Context keys set by the auth middleware.
const (
	CtxUserID    = "userID"
	CtxUserEmail = "userEmail"
	CtxUserRole  = "userRole"
)

// JWTAuthMiddleware authenticates requests with a bearer token. The token
// hash is checked against the auth cache first and falls back to the user
// document on a miss, re-priming the cache on success.
func JWTAuthMiddleware(users userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Recover from unexpected panics.
		defer func() {
			if r := recover(); r != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
					"code":  500,
				})
			}
		}()

		ctx := context.Background()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(c, "Insufficient authorization")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			unauthorized(c, "Insufficient authorization")
			return
		}

		userID, email, role, err := utils.ExtractClaimsFromToken(tokenString)
		if err != nil || userID == "" {
			unauthorized(c, "Insufficient authorization")
			return
		}

		computedHash := utils.HashToken(tokenString)
		if computedHash == "" {
			unauthorized(c, "Insufficient authorization")
			return
		}

		cacheKey := utils.AuthCachePrefix + userID

		authCache := utils.GetAuthCacheClient()
		cacheEnabled := true
		if authCache == nil {
			// Instead of aborting, log and treat it as a cache miss.
			log.Printf("WARNING: Auth cache client not available. Falling back to DB lookup.")
			cacheEnabled = false
		}

		if cacheEnabled {
			cachedHash, err := authCache.Get(ctx, cacheKey).Result()
			if err == nil {
				if cachedHash == computedHash {
					_ = authCache.Expire(ctx, cacheKey, time.Hour).Err()
					setIdentity(c, userID, email, role)
					c.Next()
					return
				}
				unauthorized(c, "Token mismatch")
				return
			} else if err != redis.Nil {
				log.Printf("WARNING: Error retrieving auth cache key: %v. Falling back to DB lookup.", err)
			}
		}

		// Cache miss: query the database.
		proj := bson.M{"id": 1, "token_hash": 1}
		usr, err := users.GetByIDWithProjection(userID, proj)
		if err != nil || usr == nil {
			unauthorized(c, "Authentication error")
			return
		}
		if usr.TokenHash == "" || usr.TokenHash != computedHash {
			unauthorized(c, "Token mismatch")
			return
		}

		if cacheEnabled {
			if err := authCache.Set(ctx, cacheKey, computedHash, utils.AuthCacheTTL).Err(); err != nil {
				log.Printf("WARNING: Failed to prime auth cache: %v", err)
			}
		}

		setIdentity(c, userID, email, role)
		c.Next()
	}
}

func setIdentity(c *gin.Context, userID, email, role string) {
	c.Set(CtxUserID, userID)
	c.Set(CtxUserEmail, email)
	c.Set(CtxUserRole, role)
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": msg,
		"code":  0,
	})
}
