package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndAuthenticateJWT(t *testing.T) {
	require.NoError(t, Init())

	playerID := uuid.New().String()
	token, err := CreateJWT(playerID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sub, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, playerID, sub)
}

func TestAuthenticateJWTRejectsGarbage(t *testing.T) {
	require.NoError(t, Init())

	_, err := AuthenticateJWT("not-a-token")
	assert.Error(t, err)
}

func TestTokensFromOtherKeyPairRejected(t *testing.T) {
	require.NoError(t, Init())
	token, err := CreateJWT(uuid.New().String())
	require.NoError(t, err)

	// New process, new keys: old tokens no longer verify.
	require.NoError(t, Init())
	_, err = AuthenticateJWT(token)
	assert.Error(t, err)
}
