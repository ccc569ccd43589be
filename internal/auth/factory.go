package auth

import (
	"context"
	"fmt"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/config"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/storage"
)

// NewProvider builds the provider selected by AUTH_BACKEND.
func NewProvider(ctx context.Context, cfg *config.Config, users storage.UserRepository, logger internal.Logger) (Provider, error) {
	switch cfg.AuthBackend {
	case "remote":
		return NewRemoteAuthProvider(cfg.AuthServiceURL, logger), nil
	case "local":
		sessions, err := NewSessionStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		var federation *Federation
		if cfg.FederationEnabled() {
			federation = NewFederation(FederationConfig{
				ClientID:     cfg.OAuthClientID,
				ClientSecret: cfg.OAuthClientSecret,
				RedirectURL:  cfg.OAuthRedirectURL,
				AuthURL:      cfg.OAuthAuthURL,
				TokenURL:     cfg.OAuthTokenURL,
				UserInfoURL:  cfg.OAuthUserInfoURL,
			}, logger)
		}
		tokens := NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)
		return NewLocalAuthProvider(users, tokens, sessions, federation, logger), nil
	default:
		return nil, fmt.Errorf("auth: unknown backend %q", cfg.AuthBackend)
	}
}

func NewSessionStore(ctx context.Context, cfg *config.Config) (SessionStore, error) {
	if cfg.SessionBackend == "redis" {
		client, err := NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		return NewRedisSessionStore(client), nil
	}
	return NewMemorySessionStore(), nil
}
