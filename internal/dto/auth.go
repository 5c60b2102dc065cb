package dto

// RegisterRequest is the inbound payload for creating an admin account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the inbound payload for authenticating.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries a signed JWT back to the caller.
type TokenResponse struct {
	Token string `json:"token"`
}
