package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"expense-ledger-go/config"
	"expense-ledger-go/utils"
)

type contextKey string

const ClientContextKey contextKey = "client"

// Client is the authenticated caller of a request.
type Client struct {
	Name    string
	IsAdmin bool
}

// Authenticator accepts either an X-API-Key header or a bearer token issued
// by POST /auth/token.
type Authenticator struct {
	apiKey      string
	adminAPIKey string
	tokens      *utils.TokenIssuer
}

func NewAuthenticator(cfg *config.Config, tokens *utils.TokenIssuer) *Authenticator {
	return &Authenticator{
		apiKey:      cfg.APIKey,
		adminAPIKey: cfg.AdminAPIKey,
		tokens:      tokens,
	}
}

// ClientForKey resolves an API key. The admin key, when configured, yields
// an admin client.
func (a *Authenticator) ClientForKey(key string) (*Client, bool) {
	if key == "" {
		return nil, false
	}
	if a.adminAPIKey != "" && subtle.ConstantTimeCompare([]byte(key), []byte(a.adminAPIKey)) == 1 {
		return &Client{Name: "admin", IsAdmin: true}, true
	}
	if a.apiKey != "" && subtle.ConstantTimeCompare([]byte(key), []byte(a.apiKey)) == 1 {
		return &Client{Name: "api-client"}, true
	}
	return nil, false
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var client *Client

		if key := r.Header.Get("X-API-Key"); key != "" {
			c, ok := a.ClientForKey(key)
			if !ok {
				log.Printf("WARN: Invalid API key for %s from %s", r.URL.Path, r.RemoteAddr)
				respondError(w, http.StatusUnauthorized, "Invalid API key")
				return
			}
			client = c
		} else if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			bearerToken := strings.Split(authHeader, " ")
			if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}
			claims, err := a.tokens.Validate(bearerToken[1])
			if err != nil {
				log.Printf("WARN: Token validation failed for %s: %v", r.URL.Path, err)
				respondError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			client = &Client{Name: claims.Client, IsAdmin: claims.IsAdmin}
		} else {
			respondError(w, http.StatusUnauthorized, "API key or bearer token required")
			return
		}

		ctx := context.WithValue(r.Context(), ClientContextKey, client)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := GetClientFromContext(r)
		if client == nil {
			respondError(w, http.StatusUnauthorized, "Unauthorized - No client context")
			return
		}
		if !client.IsAdmin {
			log.Printf("WARN: Client %s attempted to access admin endpoint %s", client.Name, r.URL.Path)
			respondError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetClientFromContext(r *http.Request) *Client {
	if client, ok := r.Context().Value(ClientContextKey).(*Client); ok {
		return client
	}
	return nil
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"error":     message,
		"timestamp": time.Now(),
	})
}
