package dto

type RegisterRequest struct {
	Code string `json:"code"`
	Pin  string `json:"pin"`
}

type ConnectRequest struct {
	Code string `json:"code"`
	Pin  string `json:"pin"`
}

type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}
