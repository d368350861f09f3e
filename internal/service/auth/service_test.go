package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	internaljwt "remote-support-backend/internal/jwt"
	"remote-support-backend/internal/model"
)

type memoryRepository struct {
	mu    sync.Mutex
	hosts map[string]model.HostItem
	err   error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{hosts: make(map[string]model.HostItem)}
}

func (m *memoryRepository) CreateHost(ctx context.Context, host model.HostItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.hosts[host.Code]; ok {
		return ErrAlreadyExists
	}
	m.hosts[host.Code] = host
	return nil
}

func (m *memoryRepository) GetHost(ctx context.Context, code string) (model.HostItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.HostItem{}, m.err
	}
	host, ok := m.hosts[code]
	if !ok {
		return model.HostItem{}, ErrNotFound
	}
	return host, nil
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService(repo Repository) (*Service, *internaljwt.Issuer) {
	issuer := internaljwt.NewIssuer("test-secret", time.Hour)
	return New(repo, issuer, fixedNow), issuer
}

func TestRegisterStoresHashedPIN(t *testing.T) {
	repo := newMemoryRepository()
	svc, _ := newTestService(repo)

	if err := svc.Register(context.Background(), " ABC1 ", "1234"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	host, ok := repo.hosts["ABC1"]
	if !ok {
		t.Fatal("host not stored under trimmed code")
	}
	if host.PinHash == "1234" || !internaljwt.ValidatePIN(host.PinHash, "1234") {
		t.Fatalf("pin hash invalid: %q", host.PinHash)
	}
	if host.CreatedAt != "2024-05-01T12:00:00Z" {
		t.Fatalf("CreatedAt = %q", host.CreatedAt)
	}
}

func TestRegisterDuplicateCode(t *testing.T) {
	svc, _ := newTestService(newMemoryRepository())

	if err := svc.Register(context.Background(), "ABC1", "1234"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	err := svc.Register(context.Background(), "ABC1", "9999")
	if CodeOf(err) != ErrorCodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(newMemoryRepository())

	for _, tc := range []struct{ code, pin string }{
		{"", "1234"},
		{"   ", "1234"},
		{"ABC1", ""},
		{"ABC1", string(make([]byte, 73))},
	} {
		if err := svc.Register(context.Background(), tc.code, tc.pin); CodeOf(err) != ErrorCodeValidation {
			t.Errorf("Register(%q, len %d) = %v, want validation error", tc.code, len(tc.pin), err)
		}
	}
}

func TestAuthenticateIssuesToken(t *testing.T) {
	svc, issuer := newTestService(newMemoryRepository())
	ctx := context.Background()

	if err := svc.Register(ctx, "ABC1", "1234"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err := svc.Authenticate(ctx, "ABC1", "1234")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	code, err := issuer.ParseToken(res.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if code != "ABC1" || res.Code != "ABC1" {
		t.Fatalf("token bound to %q, result code %q", code, res.Code)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(newMemoryRepository())
	ctx := context.Background()

	if err := svc.Register(ctx, "ABC1", "1234"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	for _, tc := range []struct{ code, pin string }{
		{"ABC1", "0000"},
		{"ZZZ9", "1234"},
	} {
		_, err := svc.Authenticate(ctx, tc.code, tc.pin)
		if CodeOf(err) != ErrorCodeUnauthorized {
			t.Errorf("Authenticate(%q) = %v, want unauthorized", tc.code, err)
		}
		if err != nil && err.Error() != "Invalid Credentials" {
			t.Errorf("message = %q", err.Error())
		}
	}
}

func TestRepositoryFailureIsInternal(t *testing.T) {
	repo := newMemoryRepository()
	repo.err = errors.New("dynamo down")
	svc, _ := newTestService(repo)

	if err := svc.Register(context.Background(), "ABC1", "1234"); CodeOf(err) != ErrorCodeInternal {
		t.Fatalf("Register = %v, want internal", err)
	}
	_, err := svc.Authenticate(context.Background(), "ABC1", "1234")
	if CodeOf(err) != ErrorCodeInternal {
		t.Fatalf("Authenticate = %v, want internal", err)
	}
	if !errors.Is(err, repo.err) {
		t.Fatal("cause should be wrapped")
	}
}
