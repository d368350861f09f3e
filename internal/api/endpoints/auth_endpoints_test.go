package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"remote-support-backend/internal/api"
	"remote-support-backend/internal/dto"
	internaljwt "remote-support-backend/internal/jwt"
	"remote-support-backend/internal/model"
	"remote-support-backend/internal/queue"
	authsvc "remote-support-backend/internal/service/auth"
)

type testRepository struct {
	mu    sync.Mutex
	hosts map[string]model.HostItem
	err   error
}

func newTestRepository() *testRepository {
	return &testRepository{hosts: make(map[string]model.HostItem)}
}

func (m *testRepository) CreateHost(ctx context.Context, host model.HostItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.hosts[host.Code]; ok {
		return authsvc.ErrAlreadyExists
	}
	m.hosts[host.Code] = host
	return nil
}

func (m *testRepository) GetHost(ctx context.Context, code string) (model.HostItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.HostItem{}, m.err
	}
	host, ok := m.hosts[code]
	if !ok {
		return model.HostItem{}, authsvc.ErrNotFound
	}
	return host, nil
}

func fixedTime() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
}

func setupAuthHandler(t *testing.T, repo authsvc.Repository) (http.Handler, *internaljwt.Issuer) {
	t.Helper()

	issuer := internaljwt.NewIssuer("test-secret", time.Hour)
	authEndpoints := NewAuthEndpoints(authsvc.New(repo, issuer, fixedTime))

	queueManager := queue.NewRequestQueueManager(10, 1, nil)
	t.Cleanup(queueManager.Shutdown)

	server := api.NewAPIServer(":0", queueManager, api.Options{})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", server.MakeHTTPHandleFunc(authEndpoints.Register))
	mux.HandleFunc("/api/auth/connect", server.MakeHTTPHandleFunc(authEndpoints.Connect))
	return mux, issuer
}

func doJSONRequest[T any](t *testing.T, handler http.Handler, method, target string, body interface{}, headers map[string]string, expectedStatus int) T {
	t.Helper()

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		payload = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != expectedStatus {
		t.Fatalf("expected status %d, got %d: %s", expectedStatus, rec.Code, rec.Body.String())
	}

	var result T
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}

func TestRegisterThenConnect(t *testing.T) {
	handler, issuer := setupAuthHandler(t, newTestRepository())

	reg := doJSONRequest[dto.AuthResponse](t, handler, http.MethodPost, "/api/auth/register",
		dto.RegisterRequest{Code: "ABC1", Pin: "1234"}, nil, http.StatusCreated)
	if !reg.Success || reg.Message != "Host Registered Successfully" {
		t.Fatalf("unexpected register response: %+v", reg)
	}

	conn := doJSONRequest[dto.AuthResponse](t, handler, http.MethodPost, "/api/auth/connect",
		dto.ConnectRequest{Code: "ABC1", Pin: "1234"}, nil, http.StatusOK)
	if !conn.Success || conn.Message != "Connected" {
		t.Fatalf("unexpected connect response: %+v", conn)
	}

	code, err := issuer.ParseToken(conn.Token)
	if err != nil {
		t.Fatalf("token not valid: %v", err)
	}
	if code != "ABC1" {
		t.Fatalf("token code = %q, want ABC1", code)
	}
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	handler, _ := setupAuthHandler(t, newTestRepository())

	doJSONRequest[dto.AuthResponse](t, handler, http.MethodPost, "/api/auth/register",
		dto.RegisterRequest{Code: "ABC1", Pin: "1234"}, nil, http.StatusCreated)
	res := doJSONRequest[dto.AuthResponse](t, handler, http.MethodPost, "/api/auth/register",
		dto.RegisterRequest{Code: "ABC1", Pin: "5555"}, nil, http.StatusConflict)
	if res.Success {
		t.Fatalf("duplicate register should fail: %+v", res)
	}
}

func TestConnectInvalidCredentials(t *testing.T) {
	handler, _ := setupAuthHandler(t, newTestRepository())

	doJSONRequest[dto.AuthResponse](t, handler, http.MethodPost, "/api/auth/register",
		dto.RegisterRequest{Code: "ABC1", Pin: "1234"}, nil, http.StatusCreated)

	for _, req := range []dto.ConnectRequest{
		{Code: "ABC1", Pin: "0000"},
		{Code: "NOPE", Pin: "1234"},
		{Code: "", Pin: ""},
	} {
		res := doJSONRequest[dto.AuthResponse](t, handler, http.MethodPost, "/api/auth/connect",
			req, nil, http.StatusBadRequest)
		if res.Success || res.Message != "Invalid Credentials" || res.Token != "" {
			t.Fatalf("unexpected response for %+v: %+v", req, res)
		}
	}
}

func TestAuthEndpointErrors(t *testing.T) {
	repo := newTestRepository()
	handler, _ := setupAuthHandler(t, repo)

	res := doJSONRequest[api.ApiError](t, handler, http.MethodGet, "/api/auth/connect", nil, nil, http.StatusMethodNotAllowed)
	if res.Error != "Method not allowed." {
		t.Fatalf("message = %q", res.Error)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d", rec.Code)
	}

	repo.err = errors.New("dynamo unavailable")
	serverErr := doJSONRequest[api.ApiError](t, handler, http.MethodPost, "/api/auth/register",
		dto.RegisterRequest{Code: "ABC1", Pin: "1234"}, nil, http.StatusInternalServerError)
	if serverErr.Error != "Server Error" {
		t.Fatalf("message = %q", serverErr.Error)
	}
}
