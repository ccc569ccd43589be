package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

type FederationConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
}

// FederatedIdentity is the subset of the OpenID userinfo document we keep.
type FederatedIdentity struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Federation runs the OAuth2 authorization-code flow against one provider.
type Federation struct {
	config      *oauth2.Config
	userInfoURL string
	logger      internal.Logger
}

func NewFederation(fc FederationConfig, logger internal.Logger) *Federation {
	endpoint := oauth2.Endpoint{AuthURL: googleAuthURL, TokenURL: googleTokenURL}
	if fc.AuthURL != "" {
		endpoint.AuthURL = fc.AuthURL
	}
	if fc.TokenURL != "" {
		endpoint.TokenURL = fc.TokenURL
	}
	userInfo := fc.UserInfoURL
	if userInfo == "" {
		userInfo = googleUserInfoURL
	}
	return &Federation{
		config: &oauth2.Config{
			ClientID:     fc.ClientID,
			ClientSecret: fc.ClientSecret,
			RedirectURL:  fc.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: userInfo,
		logger:      logger,
	}
}

func (f *Federation) LoginURL(state string) string {
	return f.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for a token and fetches the
// userinfo document. An empty code means the user backed out.
func (f *Federation) Exchange(ctx context.Context, code string) (*FederatedIdentity, error) {
	if code == "" {
		return nil, internal.ErrProviderCancelled
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tok, err := f.config.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.ErrorCode == "access_denied" {
			return nil, internal.ErrProviderCancelled
		}
		f.logger.Errorf("oauth code exchange failed: %v", err)
		return nil, fmt.Errorf("%w: %v", internal.ErrAuthUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.config.Client(ctx, tok).Do(req)
	if err != nil {
		f.logger.Errorf("failed to fetch userinfo: %v", err)
		return nil, fmt.Errorf("%w: %v", internal.ErrAuthUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		f.logger.Errorf("userinfo returned %d", resp.StatusCode)
		return nil, fmt.Errorf("%w: userinfo returned %d", internal.ErrAuthUnavailable, resp.StatusCode)
	}
	var id FederatedIdentity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("%w: %v", internal.ErrAuthUnavailable, err)
	}
	if id.Email == "" {
		return nil, fmt.Errorf("%w: provider returned no email", internal.ErrAuthUnavailable)
	}
	return &id, nil
}
