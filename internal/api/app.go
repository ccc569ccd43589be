package api

import (
	"github.com/gorilla/sessions"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/auth"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/media"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/service"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/storage"
)

type App interface {
	Logger() internal.Logger
	Store() storage.Store
	Auth() auth.Provider
	Reminders() *service.Reminders
	// Images is nil when no bucket is configured.
	Images() media.ImageStore
	Cookies() sessions.Store
	CORSOrigins() []string
}

type Deps struct {
	Logger      internal.Logger
	Store       storage.Store
	Auth        auth.Provider
	Reminders   *service.Reminders
	Images      media.ImageStore
	Cookies     sessions.Store
	CORSOrigins []string
}

type app struct {
	d Deps
}

func NewApp(d Deps) App {
	return &app{d: d}
}

func (a *app) Logger() internal.Logger { return a.d.Logger }
func (a *app) Store() storage.Store { return a.d.Store }
func (a *app) Auth() auth.Provider { return a.d.Auth }
func (a *app) Reminders() *service.Reminders { return a.d.Reminders }
func (a *app) Images() media.ImageStore { return a.d.Images }
func (a *app) Cookies() sessions.Store { return a.d.Cookies }
func (a *app) CORSOrigins() []string { return a.d.CORSOrigins }

// NewCookieStore holds short-lived OAuth state between login and callback.
func NewCookieStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/auth",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   secure,
	}
	return store
}
