package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(accessTTL, refreshTTL time.Duration) *Service {
	return New("access-secret-123", "refresh-secret-456", accessTTL, refreshTTL)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := newTestService(time.Hour, 24*time.Hour)

	token, err := svc.GenerateAccessToken("user-1", "a@b.com")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	svc := newTestService(time.Hour, 24*time.Hour)

	token, err := svc.GenerateRefreshToken("user-2", "c@d.com")
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.UserID)
	assert.Equal(t, "c@d.com", claims.Email)
}

func TestCrossDomain_Rejected(t *testing.T) {
	svc := newTestService(time.Hour, 24*time.Hour)

	accessToken, err := svc.GenerateAccessToken("user-1", "a@b.com")
	require.NoError(t, err)
	refreshToken, err := svc.GenerateRefreshToken("user-1", "a@b.com")
	require.NoError(t, err)

	// A token signed in one domain must not verify in the other.
	_, err = svc.ValidateRefreshToken(accessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateAccessToken(refreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken_Rejected(t *testing.T) {
	svc := newTestService(-time.Minute, -time.Minute)

	accessToken, err := svc.GenerateAccessToken("user-1", "a@b.com")
	require.NoError(t, err)
	refreshToken, err := svc.GenerateRefreshToken("user-1", "a@b.com")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(accessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateRefreshToken(refreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMalformedToken_Rejected(t *testing.T) {
	svc := newTestService(time.Hour, 24*time.Hour)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.ValidateAccessToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestWrongSecret_Rejected(t *testing.T) {
	svc := newTestService(time.Hour, 24*time.Hour)
	other := New("other-access", "other-refresh", time.Hour, 24*time.Hour)

	token, err := other.GenerateAccessToken("user-1", "a@b.com")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashToken_Deterministic(t *testing.T) {
	assert.Equal(t, HashToken("some-token"), HashToken("some-token"))
	assert.NotEqual(t, HashToken("some-token"), HashToken("some-other-token"))

	// sha256 hex is 64 chars and never the raw token
	digest := HashToken("some-token")
	assert.Len(t, digest, 64)
	assert.NotContains(t, digest, "some-token")
}
