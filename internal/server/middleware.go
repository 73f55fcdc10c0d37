package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/starlab-dev/starlab/internal/auth"
)

const (
	bearerPrefix = "Bearer "
	claimsKey    = "claims"
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
)

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(claimsKey, claims)
}

// GetClaims returns the identity of a token issued by /api/login. Other
// bearer tokens are accepted without claims.
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}

	claims, ok := value.(*auth.Claims)
	return claims, ok
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, err error, message string) {
	log.Debug().Err(err).Int("status", statusCode).Msg(message)
	c.AbortWithStatusJSON(statusCode, gin.H{"message": message})
}

// BearerAuthMiddleware rejects requests without a bearer token. The token is
// not verified: tokens issued by /api/login attach their claims, anything
// else is treated as the demo user.
func BearerAuthMiddleware(tokens *auth.Issuer, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			respondWithError(c, log, http.StatusUnauthorized, err, "Unauthorized")
			return
		}

		if claims, err := tokens.Validate(token); err == nil {
			setClaims(c, claims)
		}

		c.Next()
	}
}
