package handlers

import (
	"net/http"
	"os"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// RoomQRHandler renders a PNG QR code containing the join link for an
// active room, so the host can put it on a shared screen.
// Route: /rooms/{code}/qr
func RoomQRHandler(srv *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/rooms/"), "/")
		if len(parts) < 2 || parts[0] == "" || parts[1] != "qr" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		code := parts[0]

		if _, ok := srv.Registry.GetRoom(code); !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		base := os.Getenv("PUBLIC_URL")
		if base == "" {
			base = "http://localhost:8080"
		}
		joinURL := strings.TrimSuffix(base, "/") + "/?room=" + code

		png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "failed to render qr code", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}
}
