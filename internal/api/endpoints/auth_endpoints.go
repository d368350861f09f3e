package endpoints

import (
	"fmt"
	"net/http"

	"remote-support-backend/internal/dto"
	authsvc "remote-support-backend/internal/service/auth"
)

type AuthEndpoints interface {
	Register(http.ResponseWriter, *http.Request) error
	Connect(http.ResponseWriter, *http.Request) error
}

type authEndpoints struct {
	service *authsvc.Service
}

func NewAuthEndpoints(service *authsvc.Service) AuthEndpoints {
	return &authEndpoints{service: service}
}

func (h *authEndpoints) Register(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleRegister,
	})
}

func (h *authEndpoints) Connect(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleConnect,
	})
}

func (h *authEndpoints) handleRegister(w http.ResponseWriter, r *http.Request) error {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	if err := h.service.Register(r.Context(), req.Code, req.Pin); err != nil {
		return h.serviceError(w, err)
	}

	return WriteJSON(w, http.StatusCreated, dto.AuthResponse{
		Success: true,
		Message: "Host Registered Successfully",
	})
}

func (h *authEndpoints) handleConnect(w http.ResponseWriter, r *http.Request) error {
	var req dto.ConnectRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	result, err := h.service.Authenticate(r.Context(), req.Code, req.Pin)
	if err != nil {
		return h.serviceError(w, err)
	}

	return WriteJSON(w, http.StatusOK, dto.AuthResponse{
		Success: true,
		Message: "Connected",
		Token:   result.Token,
	})
}

// serviceError answers credential and conflict failures in the
// {success, message} shape clients expect; anything else becomes an HTTPError.
func (h *authEndpoints) serviceError(w http.ResponseWriter, err error) error {
	switch authsvc.CodeOf(err) {
	case authsvc.ErrorCodeValidation, authsvc.ErrorCodeUnauthorized:
		return WriteJSON(w, http.StatusBadRequest, dto.AuthResponse{Success: false, Message: "Invalid Credentials"})
	case authsvc.ErrorCodeConflict:
		return WriteJSON(w, http.StatusConflict, dto.AuthResponse{Success: false, Message: err.Error()})
	}
	return &HTTPError{
		StatusCode: http.StatusInternalServerError,
		Message:    "Server Error",
		ErrorLog:   fmt.Errorf("auth service: %w", err),
	}
}
