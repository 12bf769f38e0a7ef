package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/officeparty/sabotage/internal/auth"
)

const authCookieName = "auth_token"

// EnsureGuestUser resolves the player's identity from the auth cookie,
// minting a fresh guest id and token when none is present. The same id is
// then seen on every HTTP and WebSocket request from that client.
func EnsureGuestUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	if cookie, err := r.Cookie(authCookieName); err == nil && cookie.Value != "" {
		sub, err := auth.AuthenticateJWT(cookie.Value)
		if err == nil {
			if playerID, err := uuid.Parse(sub); err == nil {
				return playerID, nil
			}
		}
		// Fall through and reissue on a bad or stale token.
	}

	playerID := uuid.New()
	token, err := auth.CreateJWT(playerID.String())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create guest token: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   auth.TokenExpireSec,
	})
	return playerID, nil
}
