package auth

import (
	"errors"
	"fmt"
	"time"

	"swasthsetu/models"

	"github.com/golang-jwt/jwt/v4"
)

// Token kinds carried in the claims to keep refresh tokens out of the
// Authorization header and vice versa.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the same user metadata the login response embeds, so
// clients can render role-specific UI without a profile round trip.
type Claims struct {
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	IsDoctor     bool   `json:"is_doctor"`
	IsPharmacist bool   `json:"is_pharmacist"`
	IsStaff      bool   `json:"is_staff"`
	Kind         string `json:"kind"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 token pairs.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager constructs a token manager.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssuePair creates an access/refresh token pair for a user.
func (m *TokenManager) IssuePair(user *models.User) (models.TokenPair, error) {
	access, err := m.issue(user, TokenKindAccess, m.accessTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := m.issue(user, TokenKindRefresh, m.refreshTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess creates a standalone access token for a user.
func (m *TokenManager) IssueAccess(user *models.User) (string, error) {
	return m.issue(user, TokenKindAccess, m.accessTTL)
}

func (m *TokenManager) issue(user *models.User, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:       user.ID,
		Username:     user.Username,
		FullName:     user.FullName(),
		IsDoctor:     user.IsDoctor,
		IsPharmacist: user.IsPharmacist,
		IsStaff:      user.IsStaff,
		Kind:         kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "swasthsetu",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns its claims when the signature,
// expiry and kind all check out.
func (m *TokenManager) Validate(tokenString, kind string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, kind)
	}

	return claims, nil
}
