package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticParser map[string]string

func (p staticParser) ParseToken(token string) (string, error) {
	if code, ok := p[token]; ok {
		return code, nil
	}
	return "", errors.New("invalid token")
}

func TestRequireRoomToken(t *testing.T) {
	var gotCode string
	handler := RequireRoomToken(staticParser{"good": "ABC1"})(func(w http.ResponseWriter, r *http.Request) {
		gotCode = RoomCode(r.Context())
	})

	cases := []struct {
		name   string
		target string
		header string
		status int
	}{
		{"missing", "/ws/control", "", http.StatusUnauthorized},
		{"invalid", "/ws/control?token=bad", "", http.StatusUnauthorized},
		{"query", "/ws/control?token=good", "", http.StatusOK},
		{"header", "/ws/control", "Bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotCode = ""
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if tc.status == http.StatusOK && gotCode != "ABC1" {
				t.Fatalf("room code = %q, want ABC1", gotCode)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS(CORSConfig{
		AllowedOrigins: []string{"https://support.example.com"},
		AllowedMethods: []string{"GET", "POST"},
	})(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach handler")
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/connect", nil)
	req.Header.Set("Origin", "https://support.example.com")
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Methods") != "GET, POST" {
		t.Fatalf("allowed preflight: %d %v", rec.Code, rec.Header())
	}

	req.Header.Set("Origin", "https://other.example.com")
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign preflight status = %d", rec.Code)
	}
}
