package middleware

import (
	"net/http"

	"uet-duck-server/internal/config"
	"uet-duck-server/utils"

	"github.com/gin-gonic/gin"
)

// SessionCookie carries the signed session token issued after the GitHub
// OAuth callback.
const SessionCookie = "session"

// AuthMiddleware resolves the current identity for a request from the session
// cookie or an Authorization header. Handlers downstream only ever see the
// user id; where the identity came from is this middleware's business.
type AuthMiddleware struct {
	config *config.Config
}

func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{config: cfg}
}

func (a *AuthMiddleware) tokenFromRequest(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		if token := utils.ExtractTokenFromHeader(authHeader); token != "" {
			return token
		}
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// RequireAuth rejects requests without a valid session.
func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := a.tokenFromRequest(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "unauthorized",
				"message":    "Authentication required.",
			})
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(tokenString, a.config.JWTSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "session_expired",
				"message":    "Your session has expired. Please log in again.",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("github_id", claims.GitHubID)
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid session is present but
// never rejects. Used by /api/me, which answers null for anonymous visitors.
func (a *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := a.tokenFromRequest(c); tokenString != "" {
			if claims, err := utils.ValidateJWT(tokenString, a.config.JWTSecret); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("github_id", claims.GitHubID)
			}
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user id, or "" when anonymous.
func GetUserID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}

// GetGitHubID returns the authenticated GitHub id, or "" when anonymous.
func GetGitHubID(c *gin.Context) string {
	if githubID, exists := c.Get("github_id"); exists {
		if id, ok := githubID.(string); ok {
			return id
		}
	}
	return ""
}
