// Package explorer wires the client-side pieces together: the session, the
// live observation list, the entry form, the browse views and reminders.
package explorer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/auth"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/catalog"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/service"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/session"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/storage"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/tracker"
)

type Tab string

const (
	TabExplore      Tab = "explore"
	TabEvents       Tab = "events"
	TabObservations Tab = "observations"
	TabProfile      Tab = "profile"
	TabSignIn       Tab = "signin"
)

func (t Tab) Valid() bool {
	switch t {
	case TabExplore, TabEvents, TabObservations, TabProfile, TabSignIn:
		return true
	}
	return false
}

// EventView is a sky event with its countdown.
type EventView struct {
	internal.SkyEvent
	DaysUntil int  `json:"days_until"`
	Reminder  bool `json:"reminder"`
}

type App struct {
	Session   *session.Holder
	Tracker   *tracker.Tracker
	Form      *tracker.Form
	Catalog   *catalog.Browser
	Events    *catalog.EventBrowser
	Reminders *service.Reminders

	logger internal.Logger
	now    func() time.Time

	mu          sync.Mutex
	tab         Tab
	lastUserID  string
	notices     []service.Reminder
	unsubscribe func()
}

func New(provider auth.Provider, repo storage.ObservationRepository, logger internal.Logger) *App {
	a := &App{
		Session: session.NewHolder(provider, logger),
		Tracker: tracker.New(repo, logger),
		Catalog: catalog.NewBrowser(),
		Events:  catalog.NewEventBrowser(),
		logger:  logger,
		now:     time.Now,
		tab:     TabExplore,
	}
	a.Form = tracker.NewForm(a.Tracker)
	a.Reminders = service.NewReminders(a.queueNotice, logger)
	a.unsubscribe = a.Session.Subscribe(a.identityChanged)
	return a
}

func (a *App) identityChanged(user *internal.User) {
	a.mu.Lock()
	prev := a.lastUserID
	a.lastUserID = ""
	if user != nil {
		a.lastUserID = user.ID
	}
	a.mu.Unlock()

	// Reminders belong to the session that set them.
	if prev != "" && (user == nil || user.ID != prev) {
		a.Reminders.ClearUser(prev)
	}
	a.Tracker.SetIdentity(user)
}

func (a *App) queueNotice(r service.Reminder) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notices = append(a.notices, r)
}

// Notices drains reminders that have come due.
func (a *App) Notices() []service.Reminder {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.notices
	a.notices = nil
	return out
}

func (a *App) Tab() Tab {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tab
}

// Navigate switches tabs. Leaving a tab resets the browse state.
func (a *App) Navigate(tab Tab) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if tab == a.tab {
		return
	}
	a.tab = tab
	a.Catalog.Reset()
	a.Events.Reset()
}

// SubmitObservation submits the form. Signed out, it routes to sign-in.
func (a *App) SubmitObservation(ctx context.Context) (*internal.Observation, error) {
	obs, err := a.Form.Submit(ctx)
	if errors.Is(err, internal.ErrNotSignedIn) {
		a.Navigate(TabSignIn)
	}
	return obs, err
}

func (a *App) RemoveObservation(ctx context.Context, id string) error {
	err := a.Tracker.Remove(ctx, id)
	if errors.Is(err, internal.ErrNotSignedIn) {
		a.Navigate(TabSignIn)
	}
	return err
}

func (a *App) Profile() service.Profile {
	return service.BuildProfile(a.Session.Current(), a.Tracker.Observations(), a.now())
}

// UpcomingEvents lists the filtered, not yet past events with countdowns.
func (a *App) UpcomingEvents() []EventView {
	now := a.now()
	user := a.Session.Current()
	var out []EventView
	for _, e := range catalog.Upcoming(a.Events.Results(), now) {
		v := EventView{SkyEvent: e, DaysUntil: e.DaysUntil(now)}
		if user != nil {
			v.Reminder = a.Reminders.Has(user.ID, e.ID)
		}
		out = append(out, v)
	}
	return out
}

// ToggleReminder sets or clears the reminder for an event and reports
// whether it is now set.
func (a *App) ToggleReminder(eventID int) (bool, error) {
	user := a.Session.Current()
	if user == nil {
		a.Navigate(TabSignIn)
		return false, internal.ErrNotSignedIn
	}
	if a.Reminders.Clear(user.ID, eventID) {
		return false, nil
	}
	if _, err := a.Reminders.Set(user.ID, eventID); err != nil {
		return false, err
	}
	return true, nil
}

func (a *App) SkyTonight(loc *service.Location) service.SkyReport {
	return service.SkyTonight(loc, a.now())
}

func (a *App) Close() {
	a.unsubscribe()
	a.Tracker.Close()
}
