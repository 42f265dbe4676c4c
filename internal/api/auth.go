package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/lumen-core/internal/auth"
)

// ticketTTL is how long a WebSocket ticket is valid.
const ticketTTL = 60 * time.Second

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ticketStore holds pending WebSocket authentication tickets.
// Tickets are single-use and expire after ticketTTL.
type ticketStore struct {
	mu      sync.Mutex
	tickets map[string]ticketEntry
}

type ticketEntry struct {
	subject   string
	role      auth.Role
	expiresAt time.Time
}

func newTicketStore() *ticketStore {
	return &ticketStore{tickets: make(map[string]ticketEntry)}
}

// issue stores a new ticket for the given identity.
func (ts *ticketStore) issue(subject string, role auth.Role) string {
	ticket := generateTicket()
	ts.mu.Lock()
	ts.tickets[ticket] = ticketEntry{
		subject:   subject,
		role:      role,
		expiresAt: time.Now().Add(ticketTTL),
	}
	ts.mu.Unlock()
	return ticket
}

// redeem consumes a ticket. The second result is false for unknown or
// expired tickets.
func (ts *ticketStore) redeem(ticket string) (ticketEntry, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	entry, ok := ts.tickets[ticket]
	if !ok {
		return ticketEntry{}, false
	}
	delete(ts.tickets, ticket)
	return entry, time.Now().Before(entry.expiresAt)
}

// cleanExpired removes expired tickets from the store.
func (ts *ticketStore) cleanExpired() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := time.Now()
	for ticket, entry := range ts.tickets {
		if now.After(entry.expiresAt) {
			delete(ts.tickets, ticket)
		}
	}
}

// cleanLoop runs cleanExpired periodically until the context is cancelled.
func (ts *ticketStore) cleanLoop(ctx context.Context) {
	ticker := time.NewTicker(ticketTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ts.cleanExpired()
		}
	}
}

// ticketBytes is the number of random bytes used for WebSocket tickets.
const ticketBytes = 32

// generateTicket creates a cryptographically random ticket string.
func generateTicket() string {
	b := make([]byte, ticketBytes)
	//nolint:errcheck // crypto/rand.Read always returns len(b) on supported platforms
	rand.Read(b)
	return hex.EncodeToString(b)
}

// handleLogin checks credentials against the configured users and returns
// a signed access token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	token, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Info("login rejected", "username", req.Username)
			writeUnauthorized(w, "invalid credentials")
			return
		}
		s.logger.Error("login failed", "username", req.Username, "error", err)
		writeInternalError(w, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.auth.TTL().Seconds()),
	})
}

// handleWSTicket issues a single-use WebSocket ticket for the caller.
// The client passes it in the query string so the JWT stays out of URLs.
func (s *Server) handleWSTicket(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeUnauthorized(w, "authentication required")
		return
	}

	ticket := s.tickets.issue(claims.Subject, claims.Role)
	writeJSON(w, http.StatusOK, map[string]any{
		"ticket":     ticket,
		"expires_in": int(ticketTTL.Seconds()),
	})
}
