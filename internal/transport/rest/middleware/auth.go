package middleware

import (
	"accioncsat/internal/service"
	"context"
	"net/http"
	"strings"
)

type contextKey string

const SessionIDKey contextKey = "sessionId"

// SessionMiddleware binds requests to the form session named in their token
type SessionMiddleware struct {
	tokens *service.TokenService
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(tokens *service.TokenService) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens}
}

// RequireSession validates the session JWT from the Authorization header or token query param
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.tokens.Validate(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), SessionIDKey, claims.SessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID extracts the form session ID from context
func GetSessionID(ctx context.Context) string {
	if v, ok := ctx.Value(SessionIDKey).(string); ok {
		return v
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
