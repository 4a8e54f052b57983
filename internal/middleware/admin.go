package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/talentbridge/match-api/pkg/config"
	appErrors "github.com/talentbridge/match-api/pkg/errors"
	"github.com/talentbridge/match-api/pkg/response"
)

// ContextSubjectKey is the gin context key storing the authenticated caller.
const ContextSubjectKey = "adminSubject"

// AdminClaims are the platform-issued token claims the engine validates.
// Role must be admin or service; the engine issues no tokens of its own.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminAuth protects the internal event and admin surfaces. Callers present
// either a platform JWT with an admin or service role, or the shared static
// service token checked against its bcrypt hash.
func AdminAuth(cfg config.AdminConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}
		token := parts[1]

		if subject, err := validateJWT(token, cfg.JWTSecret); err == nil {
			c.Set(ContextSubjectKey, subject)
			c.Next()
			return
		}

		if cfg.StaticTokenHash != "" {
			if err := bcrypt.CompareHashAndPassword([]byte(cfg.StaticTokenHash), []byte(token)); err == nil {
				c.Set(ContextSubjectKey, "static-service-token")
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token"))
		c.Abort()
	}
}

func validateJWT(tokenString, secret string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid claims")
	}
	if claims.Role != "admin" && claims.Role != "service" {
		return "", fmt.Errorf("role %q not allowed", claims.Role)
	}
	return claims.Subject, nil
}
