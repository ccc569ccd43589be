package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/auth"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/explorer"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/storage"
)

func newApp(t *testing.T) *explorer.App {
	logger := internal.NopLogger()
	store := storage.NewMemoryStorage(logger)
	provider := auth.NewLocalAuthProvider(store, auth.NewTokenIssuer("test-secret", time.Hour), auth.NewMemorySessionStore(), nil, logger)
	app := explorer.New(provider, store, logger)
	t.Cleanup(app.Close)
	return app
}

func TestRepl_BrowseAndSignedOutSubmit(t *testing.T) {
	app := newApp(t)
	in := strings.NewReader(strings.Join([]string{
		"find jupiter",
		"type Planet",
		"new",
		"set name Saturn rings",
		"set date 2026-10-18",
		"submit",
		"bogus",
		"quit",
	}, "\n"))
	var out bytes.Buffer
	repl(context.Background(), app, in, &out)

	s := out.String()
	assert.Contains(t, s, "Jupiter")
	assert.Contains(t, s, "sign-in required")
	assert.Contains(t, s, `unknown command "bogus"`)
	assert.Equal(t, explorer.TabSignIn, app.Tab())
}

func TestRepl_SignUpAndLog(t *testing.T) {
	app := newApp(t)
	in := strings.NewReader(strings.Join([]string{
		"signup ada@example.com secret1",
		"new",
		"set name Orion Nebula",
		"set date 2026-10-18",
		"submit",
		"tab profile",
		"quit",
	}, "\n"))
	var out bytes.Buffer
	repl(context.Background(), app, in, &out)

	s := out.String()
	assert.Contains(t, s, "logged Orion Nebula")
	assert.Contains(t, s, "level 1")
	assert.NotContains(t, s, "error:")
}
