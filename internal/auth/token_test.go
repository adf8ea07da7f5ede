package auth

import (
	"errors"
	"testing"
	"time"

	"carpool/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret")

	tok, err := m.IssueUserToken(7, "a@b.co")
	require.NoError(t, err)

	id, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{UserID: 7, Email: "a@b.co"}, id)
}

func TestAdminTokenCarriesRole(t *testing.T) {
	m := NewTokenManager("secret")

	tok, err := m.IssueAdminToken(1, domain.RoleAdmin)
	require.NoError(t, err)

	id, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.UserID)
	assert.Equal(t, domain.RoleAdmin, id.Role)
}

func TestTokenExpiry(t *testing.T) {
	issuedAt := time.Date(2025, 4, 20, 8, 0, 0, 0, time.UTC)
	m := NewTokenManager("secret")
	m.now = func() time.Time { return issuedAt }

	userTok, err := m.IssueUserToken(3, "c@d.io")
	require.NoError(t, err)
	adminTok, err := m.IssueAdminToken(1, domain.RoleAdmin)
	require.NoError(t, err)

	m.now = func() time.Time { return issuedAt.Add(59 * time.Minute) }
	_, err = m.Parse(userTok)
	assert.NoError(t, err)

	m.now = func() time.Time { return issuedAt.Add(61 * time.Minute) }
	_, err = m.Parse(userTok)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.Parse(adminTok)
	assert.NoError(t, err, "admin tokens live for a day")

	m.now = func() time.Time { return issuedAt.Add(25 * time.Hour) }
	_, err = m.Parse(adminTok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	tok, err := NewTokenManager("other").IssueUserToken(7, "a@b.co")
	require.NoError(t, err)

	_, err = NewTokenManager("secret").Parse(tok)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret").Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret").Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))

	again, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")
}
