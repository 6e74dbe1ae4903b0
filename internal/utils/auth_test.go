package utils_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restaurant-eugene/booking-api/internal/utils"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := utils.HashPassword("s3cret", 4)
	require.NoError(t, err)

	assert.True(t, utils.VerifyPassword(hash, "s3cret"))
	assert.False(t, utils.VerifyPassword(hash, "wrong"))
}

func TestAccessTokenCarriesClientClaim(t *testing.T) {
	clientID := uint64(7)
	at, err := utils.NewAccessToken("test-secret", 42, "CUSTOMER", &clientID, 15)
	require.NoError(t, err)

	tok, err := jwt.Parse(at.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "CUSTOMER", claims["role"])
	assert.Equal(t, float64(7), claims["client_id"])
}

func TestAccessTokenOmitsClientClaimForStaff(t *testing.T) {
	at, err := utils.NewAccessToken("test-secret", 1, "STAFF", nil, 15)
	require.NoError(t, err)

	tok, err := jwt.Parse(at.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)

	_, present := tok.Claims.(jwt.MapClaims)["client_id"]
	assert.False(t, present)
}

func TestRefreshTokenHashing(t *testing.T) {
	rt, err := utils.NewRefreshToken(30)
	require.NoError(t, err)
	assert.Len(t, rt.Raw, 96)

	// Deterministic digest, never equal to the raw token.
	assert.Equal(t, utils.HashRefreshRaw(rt.Raw), utils.HashRefreshRaw(rt.Raw))
	assert.NotEqual(t, rt.Raw, utils.HashRefreshRaw(rt.Raw))
}
