package middleware

import (
	"context"
	stdErrors "errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/foodgram-backend/internal/errors"
	"github.com/ikkim/foodgram-backend/pkg/util"
)

// Context keys for user information
const (
	UserIDKey      = "user_id"
	UserEmailKey   = "user_email"
	TokenClaimsKey = "token_claims"
)

// TokenRevocationChecker reports whether a token id was logged out.
type TokenRevocationChecker interface {
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthMiddleware struct {
	jwtSecret   string
	revocations TokenRevocationChecker
}

// NewAuthMiddleware builds the middleware. revocations may be nil, in which
// case logged-out tokens are not checked.
func NewAuthMiddleware(jwtSecret string, revocations TokenRevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:   jwtSecret,
		revocations: revocations,
	}
}

var (
	errMissingCredentials = stdErrors.New("authorization header is missing")
	errMalformedHeader    = stdErrors.New("authorization header is malformed")
	errTokenRevoked       = stdErrors.New("token has been revoked")
)

// extractToken accepts "Token <jwt>" as well as "Bearer <jwt>".
func extractToken(header string) (string, error) {
	if header == "" {
		return "", errMissingCredentials
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", errMalformedHeader
	}
	switch strings.ToLower(parts[0]) {
	case "token", "bearer":
		return parts[1], nil
	}
	return "", errMalformedHeader
}

func (m *AuthMiddleware) authenticate(c *gin.Context) (*util.Claims, error) {
	token, err := extractToken(c.GetHeader("Authorization"))
	if err != nil {
		return nil, err
	}

	claims, err := util.ValidateToken(token, m.jwtSecret)
	if err != nil {
		return nil, err
	}

	if m.revocations != nil {
		revoked, err := m.revocations.IsTokenRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, errTokenRevoked
		}
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims *util.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)
	c.Set(TokenClaimsKey, claims)
}

// Authenticate validates JWT token (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		claims, err := m.authenticate(c)
		if err != nil {
			log.Warn("Authentication failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			switch {
			case stdErrors.Is(err, errMissingCredentials):
				errors.Unauthorized(c, errors.AuthUnauthorized, "Учетные данные не были предоставлены.")
			case stdErrors.Is(err, util.ErrExpiredToken):
				errors.Unauthorized(c, errors.AuthTokenExpired, "Срок действия токена истёк.")
			case stdErrors.Is(err, errTokenRevoked):
				errors.Unauthorized(c, errors.AuthTokenRevoked, "Недопустимый токен.")
			case stdErrors.Is(err, errMalformedHeader), stdErrors.Is(err, util.ErrInvalidToken):
				errors.Unauthorized(c, errors.AuthTokenInvalid, "Недопустимый токен.")
			default:
				log.Error("Token revocation lookup failed", err)
				errors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		setIdentity(c, claims)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": claims.UserID,
			"email":   claims.Email,
		})

		c.Next()
	}
}

// OptionalAuthenticate validates JWT token if present (optional)
// - If token is present and valid: sets user info in context
// - If token is missing or invalid: continues without user info
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		claims, err := m.authenticate(c)
		if err != nil {
			if !stdErrors.Is(err, errMissingCredentials) {
				log.Debug("Token rejected - continuing as guest", map[string]interface{}{
					"path":  c.Request.URL.Path,
					"error": err.Error(),
				})
			}
			c.Next()
			return
		}

		setIdentity(c, claims)

		log.Debug("User authenticated successfully (optional)", map[string]interface{}{
			"user_id": claims.UserID,
		})

		c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUserEmail extracts user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	return email.(string), true
}

// GetTokenClaims returns the claims of the token that authenticated the request.
func GetTokenClaims(c *gin.Context) (*util.Claims, bool) {
	claims, exists := c.Get(TokenClaimsKey)
	if !exists {
		return nil, false
	}
	typed, ok := claims.(*util.Claims)
	return typed, ok
}
