package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	token, expiresAt, err := svc.GenerateAccessToken("emp-7", "Dana", []string{RoleStaff})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	caller, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "emp-7", caller.Subject)
	assert.Equal(t, "Dana", caller.Name)
	assert.Equal(t, []string{RoleStaff}, caller.Roles)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	other := NewJWTService(DefaultJWTConfig("other-secret"))
	forged, _, err := other.GenerateAccessToken("emp-7", "", nil)
	require.NoError(t, err)

	expiredSvc := NewJWTService(DefaultJWTConfig("secret"))
	expiredSvc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, _, err := expiredSvc.GenerateAccessToken("emp-7", "", nil)
	require.NoError(t, err)

	foreign := NewJWTService(JWTConfig{Secret: "secret", Issuer: "elsewhere", AccessTokenTTL: time.Hour})
	wrongIssuer, _, err := foreign.GenerateAccessToken("emp-7", "", nil)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "emp-7", "iss": "tidewater", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": forged,
		"expired":      expired,
		"wrong issuer": wrongIssuer,
		"alg none":     unsigned,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.Error(t, err)
		})
	}
}
