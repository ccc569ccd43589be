package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

func newIdentityService(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/signin", func(w http.ResponseWriter, r *http.Request) {
		var req CredentialsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "correct-horse" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(internal.Session{User: internal.User{ID: "r1", Email: req.Email}, Token: "remote-token"})
	})
	mux.HandleFunc("/signup", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	mux.HandleFunc("/validate", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["token"] != "remote-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(internal.User{ID: "r1"})
	})
	mux.HandleFunc("/signout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/federated", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteAuth(t *testing.T) {
	srv := newIdentityService(t)
	p := NewRemoteAuthProvider(srv.URL+"/", internal.NopLogger())
	ctx := context.Background()

	sess, err := p.SignIn(ctx, "orbit@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "remote-token", sess.Token)

	_, err = p.SignIn(ctx, "orbit@example.com", "wrong-horse")
	assert.ErrorIs(t, err, internal.ErrInvalidCredentials)

	_, err = p.SignUp(ctx, "orbit@example.com", "correct-horse")
	assert.ErrorIs(t, err, internal.ErrAccountExists)

	u, err := p.Validate(ctx, "remote-token")
	require.NoError(t, err)
	assert.Equal(t, "r1", u.ID)

	_, err = p.Validate(ctx, "stale")
	assert.ErrorIs(t, err, internal.ErrUnauthorized)

	assert.NoError(t, p.SignOut(ctx, "remote-token"))

	_, err = p.SignInFederated(ctx, "code")
	assert.ErrorIs(t, err, internal.ErrAuthUnavailable)

	loginURL, err := p.FederatedLoginURL("a b")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/federated/login?state=a+b", loginURL)
}

func TestRemoteAuth_ServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewRemoteAuthProvider(url, internal.NopLogger())
	_, err := p.SignIn(context.Background(), "orbit@example.com", "correct-horse")
	assert.ErrorIs(t, err, internal.ErrAuthUnavailable)
}
