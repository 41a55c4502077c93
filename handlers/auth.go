package handlers

import (
	"net/http"

	"swasthsetu/middleware"
	"swasthsetu/models"
	"swasthsetu/service"

	"github.com/gin-gonic/gin"
)

// Register creates a new patient account and returns a token pair.
func Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	user, err := service.GlobalServices.User.Register(req)
	if err != nil {
		failFromError(c, err)
		return
	}

	tokens, err := Tokens.IssuePair(user)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to issue tokens", err.Error())
		return
	}

	created(c, gin.H{
		"user":    user.ToRead(),
		"access":  tokens.Access,
		"refresh": tokens.Refresh,
	})
}

// Login authenticates by username or email and returns a token pair.
func Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	user, err := service.GlobalServices.User.Authenticate(req)
	if err != nil {
		failFromError(c, err)
		return
	}

	tokens, err := Tokens.IssuePair(user)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to issue tokens", err.Error())
		return
	}

	ok(c, gin.H{
		"user":    user.ToRead(),
		"access":  tokens.Access,
		"refresh": tokens.Refresh,
	})
}

// Refresh exchanges a refresh token for a new token pair. The user is
// reloaded so revoked accounts and role changes take effect immediately.
func Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	claims, err := Tokens.Validate(req.Refresh, "refresh")
	if err != nil {
		fail(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid refresh token", err.Error())
		return
	}

	user, err := service.GlobalServices.User.Get(claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}
	if !user.IsActive {
		fail(c, http.StatusUnauthorized, CodeUnauthorized, "Account is disabled", nil)
		return
	}

	tokens, err := Tokens.IssuePair(user)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to issue tokens", err.Error())
		return
	}
	ok(c, tokens)
}

// Me returns the authenticated user's profile.
func Me(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	user, err := service.GlobalServices.User.Get(claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, user.ToRead())
}

// UpdateMe updates the authenticated user's editable profile fields.
func UpdateMe(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)

	var req models.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	user, err := service.GlobalServices.User.UpdateProfile(claims.UserID, req)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, user.ToRead())
}

// ListUsers returns all accounts. Staff only.
func ListUsers(c *gin.Context) {
	users, err := service.GlobalServices.User.List()
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to list users", err.Error())
		return
	}

	out := make([]models.UserRead, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToRead())
	}
	ok(c, out)
}

// ToggleUserActive enables or disables an account. Staff only.
func ToggleUserActive(c *gin.Context) {
	id, okParam := paramUint(c, "id")
	if !okParam {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid user id", nil)
		return
	}

	user, err := service.GlobalServices.User.ToggleActive(id)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, gin.H{"id": user.ID, "is_active": user.IsActive})
}
