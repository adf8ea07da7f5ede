package middleware

import (
	"net/http"
	"strings"

	"carpool/internal/domain"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// TokenParser is satisfied by *auth.TokenManager.
type TokenParser interface {
	Parse(token string) (domain.Identity, error)
}

// Abort writes the standard error body and stops the handler chain.
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"message":    message,
		"code":       code,
		"request_id": GetRequestID(c),
	})
}

// Authenticate requires a valid bearer token. A missing header is 401, a token
// that fails verification is 403.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			Abort(c, http.StatusUnauthorized, "unauthorized", domain.UnauthorizedError{}.Error())
			return
		}
		id, err := tokens.Parse(raw)
		if err != nil {
			_ = c.Error(err)
			Abort(c, http.StatusForbidden, "invalid_token", domain.InvalidTokenError{}.Error())
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireRole admits only identities holding one of roles. It must run after
// Authenticate.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			Abort(c, http.StatusUnauthorized, "unauthorized", domain.UnauthorizedError{}.Error())
			return
		}
		if !id.HasRole(roles...) {
			Abort(c, http.StatusForbidden, "forbidden", "Not authorized as "+roleList(roles))
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity Authenticate stored on c.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func roleList(roles []domain.Role) string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, strings.ToLower(string(r)))
	}
	return strings.Join(names, " or ")
}
