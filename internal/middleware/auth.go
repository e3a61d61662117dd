package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Conceptual-Machines/harmonia-api/internal/config"
)

const (
	bearerPrefix = "Bearer"
)

// Claims carries the caller's identity. UserID falls back to the subject.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ID returns the user id the token was issued for
func (c *Claims) ID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// JWTAuth validates HS256 bearer tokens and attaches the user id to the context.
// There is no user table: the token is the identity.
func JWTAuth(cfg *config.Config) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			c.Abort()
			return
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		userID := claims.ID()
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has no subject"})
			c.Abort()
			return
		}

		c.Set("user_id_str", userID)
		c.Set("user_email", claims.Email)

		c.Next()
	}
}

// ParseToken verifies the signature and expiry of a token
func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, errors.New("JWT secret is not configured")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// IssueToken signs a token for userID valid for ttl
func IssueToken(secret []byte, userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// GetCurrentUserID retrieves the user id set by whichever auth middleware ran
func GetCurrentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id_str")
	return userID, userID != ""
}

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == bearerPrefix {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
