package model

type LoginCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupCredentials struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is the success body of the login and signup endpoints.
type TokenResponse struct {
	Token string `json:"token"`
}

// ErrorResponse is the failure body of the auth API.
type ErrorResponse struct {
	Error string `json:"error"`
}
