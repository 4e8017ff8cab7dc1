package dto

// Data Transfer Objects for the signup / token handshake

// SignupRequest: payload for POST /auth/signup
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SignupResponse echoes the account the code was sent for
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest: payload for POST /auth/token
type TokenRequest struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

// TokenResponse carries the bearer token
type TokenResponse struct {
	Token string `json:"token"`
}
