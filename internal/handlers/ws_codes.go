package handlers

// Custom WebSocket close codes. More specific reasons than the standard
// range allows.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError = 3001 // Guest token was invalid or could not be issued.
)
