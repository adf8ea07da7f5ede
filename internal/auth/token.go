package auth

import (
	"errors"
	"fmt"
	"time"

	"carpool/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const (
	UserTokenTTL  = time.Hour
	AdminTokenTTL = 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carries the identity bound into a bearer token. User tokens set
// Email, admin tokens set Role.
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), now: time.Now}
}

// IssueUserToken binds user id and email for one hour.
func (m *TokenManager) IssueUserToken(userID int64, email string) (string, error) {
	return m.issue(Claims{UserID: userID, Email: email}, UserTokenTTL)
}

// IssueAdminToken binds user id and role for one day.
func (m *TokenManager) IssueAdminToken(userID int64, role domain.Role) (string, error) {
	return m.issue(Claims{UserID: userID, Role: string(role)}, AdminTokenTTL)
}

func (m *TokenManager) issue(claims Claims, ttl time.Duration) (string, error) {
	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, algorithm and expiry and returns the identity.
func (m *TokenManager) Parse(tokenString string) (domain.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID <= 0 {
		return domain.Identity{}, ErrInvalidToken
	}

	id := domain.Identity{UserID: claims.UserID, Email: claims.Email}
	if claims.Role != "" {
		role, ok := domain.ParseRole(claims.Role)
		if !ok {
			return domain.Identity{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
		}
		id.Role = role
	}
	return id, nil
}
