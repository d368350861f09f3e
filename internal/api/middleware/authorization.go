package middleware

import (
	"context"
	"net/http"
	"strings"
)

// TokenParser resolves a connection token to the room code it admits.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

type roomCodeKey struct{}

// RoomCode returns the room code attached by RequireRoomToken, if any.
func RoomCode(ctx context.Context) string {
	code, _ := ctx.Value(roomCodeKey{}).(string)
	return code
}

// BearerOrQuery extracts a token from the Authorization header or, for
// browser websocket clients that cannot set headers, the token query param.
func BearerOrQuery(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return r.URL.Query().Get("token")
}

// RequireRoomToken rejects requests without a valid token and stores the
// token's room code on the request context.
func RequireRoomToken(parser TokenParser) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := BearerOrQuery(r)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			code, err := parser.ParseToken(token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next(w, r.WithContext(context.WithValue(r.Context(), roomCodeKey{}, code)))
		}
	}
}
