package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	internaljwt "remote-support-backend/internal/jwt"
	"remote-support-backend/internal/model"
)

// bcrypt ignores input past 72 bytes.
const maxPINLength = 72

type Service struct {
	repo   Repository
	tokens TokenIssuer
	now    func() time.Time
}

func New(repo Repository, tokens TokenIssuer, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo:   repo,
		tokens: tokens,
		now:    now,
	}
}

// Register stores a host code with a hashed pin. Codes are unique.
func (s *Service) Register(ctx context.Context, code, pin string) error {
	code = strings.TrimSpace(code)
	if err := validateCredentials(code, pin); err != nil {
		return err
	}

	hashed, err := internaljwt.HashPIN(pin)
	if err != nil {
		return newError(ErrorCodeInternal, "failed to hash pin", err)
	}

	host := model.HostItem{
		Code:      code,
		PinHash:   hashed,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.repo.CreateHost(ctx, host); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return newError(ErrorCodeConflict, "Code already registered", err)
		}
		return newError(ErrorCodeInternal, "failed to save host", err)
	}
	return nil
}

// Authenticate checks a code and pin pair and issues a connection token for
// the code. Unknown codes and wrong pins are indistinguishable.
func (s *Service) Authenticate(ctx context.Context, code, pin string) (ConnectResult, error) {
	code = strings.TrimSpace(code)
	if err := validateCredentials(code, pin); err != nil {
		return ConnectResult{}, err
	}

	host, err := s.repo.GetHost(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ConnectResult{}, newError(ErrorCodeUnauthorized, "Invalid Credentials", err)
		}
		return ConnectResult{}, newError(ErrorCodeInternal, "failed to load host", err)
	}
	if !internaljwt.ValidatePIN(host.PinHash, pin) {
		return ConnectResult{}, newError(ErrorCodeUnauthorized, "Invalid Credentials", nil)
	}

	token, err := s.tokens.CreateToken(code)
	if err != nil {
		return ConnectResult{}, newError(ErrorCodeInternal, "failed to issue token", err)
	}
	return ConnectResult{Code: code, Token: token}, nil
}

func validateCredentials(code, pin string) error {
	if code == "" || pin == "" {
		return newError(ErrorCodeValidation, "code and pin are required", nil)
	}
	if len(pin) > maxPINLength {
		return newError(ErrorCodeValidation, "pin is too long", nil)
	}
	return nil
}
