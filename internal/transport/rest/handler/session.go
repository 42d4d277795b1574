package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	qrcode "github.com/skip2/go-qrcode"

	"lastlap/internal/game"
)

const qrSize = 320 // mobile-friendly

// SessionHandler serves read-only session views.
type SessionHandler struct {
	registry  *game.Registry
	publicURL string
}

func NewSessionHandler(registry *game.Registry, publicURL string) *SessionHandler {
	return &SessionHandler{registry: registry, publicURL: publicURL}
}

// Info handles GET /v1/sessions/{code}
func (h *SessionHandler) Info(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	session := h.registry.Get(code)
	if session == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Info())
}

// QR handles GET /v1/sessions/{code}/qr, returning a PNG QR code of the
// join URL so phones can scan into the lobby.
func (h *SessionHandler) QR(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	joinURL := h.publicURL + "/join/" + code
	png, err := qrcode.Encode(joinURL, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "failed to generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
