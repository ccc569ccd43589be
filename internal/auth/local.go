package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/storage"
)

const bcryptCost = 10

// LocalAuthProvider keeps accounts in the store and issues its own tokens.
type LocalAuthProvider struct {
	users      storage.UserRepository
	tokens     *TokenIssuer
	sessions   SessionStore
	federation *Federation
	logger     internal.Logger
}

func NewLocalAuthProvider(users storage.UserRepository, tokens *TokenIssuer, sessions SessionStore, federation *Federation, logger internal.Logger) *LocalAuthProvider {
	return &LocalAuthProvider{
		users:      users,
		tokens:     tokens,
		sessions:   sessions,
		federation: federation,
		logger:     logger,
	}
}

func (a *LocalAuthProvider) SignUp(ctx context.Context, email, password string) (*internal.Session, error) {
	if err := ValidateCredentials(&CredentialsRequest{Email: email, Password: password}); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	cred := &internal.Credential{
		User:         internal.User{DisplayName: displayNameFromEmail(email), Email: strings.ToLower(email)},
		Email:        email,
		PasswordHash: string(hash),
		Provider:     "password",
	}
	if err := a.users.CreateCredential(ctx, cred); err != nil {
		if errors.Is(err, internal.ErrAccountExists) {
			return nil, err
		}
		a.logger.Errorf("failed to create account: %v", err)
		return nil, fmt.Errorf("%w: %v", internal.ErrAuthUnavailable, err)
	}
	return a.startSession(ctx, cred.User)
}

func (a *LocalAuthProvider) SignIn(ctx context.Context, email, password string) (*internal.Session, error) {
	if err := ValidateCredentials(&CredentialsRequest{Email: email, Password: password}); err != nil {
		return nil, err
	}
	cred, err := a.users.GetCredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return nil, internal.ErrInvalidCredentials
		}
		a.logger.Errorf("failed to load account: %v", err)
		return nil, fmt.Errorf("%w: %v", internal.ErrAuthUnavailable, err)
	}
	// Federated accounts have no password.
	if cred.PasswordHash == "" {
		return nil, internal.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		a.logger.Warnf("invalid password for %s", cred.User.ID)
		return nil, internal.ErrInvalidCredentials
	}
	return a.startSession(ctx, cred.User)
}

func (a *LocalAuthProvider) SignInFederated(ctx context.Context, code string) (*internal.Session, error) {
	if a.federation == nil {
		return nil, fmt.Errorf("%w: federated sign-in is not configured", internal.ErrAuthUnavailable)
	}
	id, err := a.federation.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	user, err := a.users.UpsertFederatedUser(ctx, &internal.Credential{
		User: internal.User{
			DisplayName: id.Name,
			Email:       strings.ToLower(id.Email),
			AvatarURL:   id.Picture,
		},
		Email:    id.Email,
		Provider: "federated",
		Subject:  id.Subject,
	})
	if err != nil {
		a.logger.Errorf("failed to upsert federated user: %v", err)
		return nil, fmt.Errorf("%w: %v", internal.ErrAuthUnavailable, err)
	}
	return a.startSession(ctx, *user)
}

func (a *LocalAuthProvider) FederatedLoginURL(state string) (string, error) {
	if a.federation == nil {
		return "", fmt.Errorf("%w: federated sign-in is not configured", internal.ErrAuthUnavailable)
	}
	return a.federation.LoginURL(state), nil
}

func (a *LocalAuthProvider) SignOut(ctx context.Context, token string) error {
	return a.sessions.Delete(ctx, token)
}

// Validate accepts a token only when its signature holds and the session
// has not been revoked.
func (a *LocalAuthProvider) Validate(ctx context.Context, token string) (*internal.User, error) {
	if _, err := a.tokens.Parse(token); err != nil {
		a.logger.Warnf("invalid token: %v", err)
		return nil, err
	}
	return a.sessions.Get(ctx, token)
}

func (a *LocalAuthProvider) startSession(ctx context.Context, user internal.User) (*internal.Session, error) {
	sess, err := a.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	if err := a.sessions.Save(ctx, sess); err != nil {
		a.logger.Errorf("failed to record session: %v", err)
		return nil, err
	}
	return sess, nil
}

func displayNameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
