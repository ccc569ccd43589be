package internal

import (
	"errors"
	"fmt"
)

// Authentication errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountExists      = errors.New("an account with this email already exists")
	ErrProviderCancelled  = errors.New("sign-in was cancelled")
	ErrAuthUnavailable    = errors.New("identity provider unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Validation errors never reach the network.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotSignedIn = errors.New("sign-in required")
)

// Storage errors.
var (
	ErrStorage  = errors.New("storage error")
	ErrNotFound = errors.New("not found")
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}
