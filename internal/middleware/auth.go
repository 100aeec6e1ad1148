package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

// Context keys set by AuthMiddleware.
const (
	AccountIDKey = "account_id"
	UsernameKey  = "username"
)

const tokenLifetime = 72 * time.Hour

// IssueToken signs a session token for acct.
func IssueToken(secret []byte, acct *models.Account) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": acct.ID,
		"username":   acct.Username,
		"exp":        time.Now().Add(tokenLifetime).Unix(),
	})
	return token.SignedString(secret)
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}
		// JSON numbers decode as float64
		id, ok := claims["account_id"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		c.Set(AccountIDKey, int(id))
		if name, ok := claims["username"].(string); ok {
			c.Set(UsernameKey, name)
		}
		c.Next()
	}
}
