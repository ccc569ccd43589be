package auth

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

// Provider is the identity boundary. Every sign-in style call resolves to a
// Session or fails with one of the authentication errors in internal.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*internal.Session, error)
	SignIn(ctx context.Context, email, password string) (*internal.Session, error)
	// SignInFederated completes the OAuth flow with the authorization code.
	SignInFederated(ctx context.Context, code string) (*internal.Session, error)
	FederatedLoginURL(state string) (string, error)
	SignOut(ctx context.Context, token string) error
	Validate(ctx context.Context, token string) (*internal.User, error)
}

var validate = validator.New()

type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// ValidateCredentials checks the shape of an email/password pair before any
// provider call is made.
func ValidateCredentials(req *CredentialsRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", internal.ErrValidation, err)
	}
	return nil
}
