package middleware

import (
	"net/http"
	"strings"

	"swasthsetu/auth"

	"github.com/gin-gonic/gin"
)

// ClaimsKey is the gin context key holding the authenticated token claims.
const ClaimsKey = "authClaims"

// RequireAuth validates the bearer token and stores its claims in the context.
func RequireAuth(tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authorization header required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authorization header must be 'Bearer <token>'"})
			return
		}

		claims, err := tm.Validate(strings.TrimSpace(parts[1]), auth.TokenKindAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or expired token"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// CurrentClaims returns the claims stored by RequireAuth.
func CurrentClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// RequireDoctor rejects requests whose token lacks the doctor role.
func RequireDoctor() gin.HandlerFunc {
	return requireRole(func(claims *auth.Claims) bool { return claims.IsDoctor }, "Only doctors can access this endpoint")
}

// RequirePharmacist rejects requests whose token lacks the pharmacist role.
func RequirePharmacist() gin.HandlerFunc {
	return requireRole(func(claims *auth.Claims) bool { return claims.IsPharmacist }, "Only pharmacists can access this endpoint")
}

// RequireStaff rejects requests whose token lacks the staff flag.
func RequireStaff() gin.HandlerFunc {
	return requireRole(func(claims *auth.Claims) bool { return claims.IsStaff }, "Staff access required")
}

func requireRole(allowed func(*auth.Claims) bool, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
			return
		}
		if !allowed(claims) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": message})
			return
		}
		c.Next()
	}
}
