package auth

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

// RemoteAuthProvider delegates every call to an external identity service
// speaking JSON over HTTP.
type RemoteAuthProvider struct {
	AuthServiceURL string
	HTTPClient     *http.Client
	logger         internal.Logger
}

func NewRemoteAuthProvider(serviceURL string, logger internal.Logger) *RemoteAuthProvider {
	return &RemoteAuthProvider{
		AuthServiceURL: strings.TrimRight(serviceURL, "/"),
		HTTPClient:     &http.Client{Timeout: 5 * time.Second},
		logger:         logger,
	}
}

func (a *RemoteAuthProvider) SignUp(ctx context.Context, email, password string) (*internal.Session, error) {
	req := &CredentialsRequest{Email: email, Password: password}
	if err := ValidateCredentials(req); err != nil {
		return nil, err
	}
	var sess internal.Session
	if err := a.call(ctx, "/signup", req, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (a *RemoteAuthProvider) SignIn(ctx context.Context, email, password string) (*internal.Session, error) {
	req := &CredentialsRequest{Email: email, Password: password}
	if err := ValidateCredentials(req); err != nil {
		return nil, err
	}
	var sess internal.Session
	if err := a.call(ctx, "/signin", req, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (a *RemoteAuthProvider) SignInFederated(ctx context.Context, code string) (*internal.Session, error) {
	if code == "" {
		return nil, internal.ErrProviderCancelled
	}
	var sess internal.Session
	if err := a.call(ctx, "/federated", map[string]string{"code": code}, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (a *RemoteAuthProvider) FederatedLoginURL(state string) (string, error) {
	return a.AuthServiceURL + "/federated/login?state=" + url.QueryEscape(state), nil
}

func (a *RemoteAuthProvider) SignOut(ctx context.Context, token string) error {
	return a.call(ctx, "/signout", map[string]string{"token": token}, nil)
}

func (a *RemoteAuthProvider) Validate(ctx context.Context, token string) (*internal.User, error) {
	var user internal.User
	if err := a.call(ctx, "/validate", map[string]string{"token": token}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *RemoteAuthProvider) call(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.AuthServiceURL+path, bytes.NewReader(body))
	if err != nil {
		a.logger.Errorf("failed to create request: %v", err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		a.logger.Errorf("failed to call auth service: %v", err)
		return fmt.Errorf("%w: %v", internal.ErrAuthUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
	case http.StatusBadRequest:
		return internal.ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		if path == "/validate" {
			return internal.ErrUnauthorized
		}
		return internal.ErrInvalidCredentials
	case http.StatusConflict:
		return internal.ErrAccountExists
	default:
		a.logger.Errorf("auth service returned %d", resp.StatusCode)
		return fmt.Errorf("%w: auth service returned %d", internal.ErrAuthUnavailable, resp.StatusCode)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		a.logger.Errorf("failed to decode auth response: %v", err)
		return fmt.Errorf("%w: %v", internal.ErrAuthUnavailable, err)
	}
	return nil
}
