package middleware

import (
	"net/http"
	"strings"

	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/utils"
	"github.com/gin-gonic/gin"
)

// BearerAuthMiddleware validates the caller token issued by the outer
// API layer. When no JWT secret is configured the guard is a no-op so
// local runs do not need tokens.
func BearerAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utils.JWTConfigured() {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, "Authorization header missing or invalid")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.Subject)
		c.Next()
	}
}
