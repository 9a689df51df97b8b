package handlers

import (
	"log"
	"net/http"

	"expense-ledger-go/models"
)

// IssueToken exchanges an API key for a bearer token carrying the same
// privileges.
func (h *Handlers) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req models.TokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	client, ok := h.auth.ClientForKey(req.APIKey)
	if !ok {
		log.Printf("WARN: Token requested with invalid API key from %s", r.RemoteAddr)
		sendError(w, http.StatusUnauthorized, "Invalid API key", nil)
		return
	}

	token, expiresAt, err := h.tokens.Generate(client.Name, client.IsAdmin)
	if err != nil {
		log.Printf("ERROR: Failed to issue token for %s: %v", client.Name, err)
		sendError(w, http.StatusInternalServerError, "Failed to issue token", nil)
		return
	}

	log.Printf("INFO: Issued token for %s (admin: %v)", client.Name, client.IsAdmin)
	writeJSON(w, http.StatusOK, models.TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		IsAdmin:   client.IsAdmin,
	})
}
