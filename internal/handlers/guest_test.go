package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officeparty/sabotage/internal/auth"
)

func TestEnsureGuestUserMintsAndKeepsIdentity(t *testing.T) {
	require.NoError(t, auth.Init())

	// First contact: a guest id is minted and a token cookie is set.
	req := httptest.NewRequest("GET", "/ws", nil)
	w := httptest.NewRecorder()
	playerID, err := EnsureGuestUser(w, req)
	require.NoError(t, err)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, authCookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)

	// Subsequent request with the cookie resolves to the same player.
	req2 := httptest.NewRequest("GET", "/ws", nil)
	req2.AddCookie(cookie)
	w2 := httptest.NewRecorder()
	playerID2, err := EnsureGuestUser(w2, req2)
	require.NoError(t, err)
	assert.Equal(t, playerID, playerID2)
	assert.Empty(t, w2.Result().Cookies(), "no reissue for a valid token")
}

func TestEnsureGuestUserReissuesOnGarbageToken(t *testing.T) {
	require.NoError(t, auth.Init())

	req := httptest.NewRequest("GET", "/ws", nil)
	req.AddCookie(&http.Cookie{Name: authCookieName, Value: "not-a-jwt"})
	w := httptest.NewRecorder()

	playerID, err := EnsureGuestUser(w, req)
	require.NoError(t, err)
	assert.NotEqual(t, "", playerID.String())
	require.Len(t, w.Result().Cookies(), 1, "fresh token issued")
}
