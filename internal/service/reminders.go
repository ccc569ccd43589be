package service

import (
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/catalog"
)

// Reminder is a user's request to be told about an event when it is due.
type Reminder struct {
	UserID   string            `json:"user_id"`
	Event    internal.SkyEvent `json:"event"`
	Notified bool              `json:"notified"`
}

// NotifyFunc receives a reminder once, on or after the event day.
type NotifyFunc func(r Reminder)

// Reminders is an in-memory reminder set swept by a cron job. Nothing is
// persisted; reminders live as long as the process.
type Reminders struct {
	mu     sync.Mutex
	byUser map[string]map[int]*Reminder
	notify NotifyFunc
	now    func() time.Time
	cron   *cron.Cron
	logger internal.Logger
}

func NewReminders(notify NotifyFunc, logger internal.Logger) *Reminders {
	return &Reminders{
		byUser: make(map[string]map[int]*Reminder),
		notify: notify,
		now:    time.Now,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start schedules the sweep. Stop must be called to release the scheduler.
func (r *Reminders) Start(spec string) error {
	if spec == "" {
		spec = "@every 1m"
	}
	if _, err := r.cron.AddFunc(spec, r.Sweep); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

func (r *Reminders) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Reminders) Set(userID string, eventID int) (*Reminder, error) {
	ev, ok := catalog.EventByID(eventID)
	if !ok {
		return nil, internal.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byUser[userID] == nil {
		r.byUser[userID] = make(map[int]*Reminder)
	}
	if existing, ok := r.byUser[userID][eventID]; ok {
		cp := *existing
		return &cp, nil
	}
	rem := &Reminder{UserID: userID, Event: ev}
	r.byUser[userID][eventID] = rem
	cp := *rem
	return &cp, nil
}

func (r *Reminders) Clear(userID string, eventID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUser[userID][eventID]; !ok {
		return false
	}
	delete(r.byUser[userID], eventID)
	if len(r.byUser[userID]) == 0 {
		delete(r.byUser, userID)
	}
	return true
}

func (r *Reminders) Has(userID string, eventID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byUser[userID][eventID]
	return ok
}

// List returns the user's reminders ordered by event date.
func (r *Reminders) List(userID string) []Reminder {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Reminder, 0, len(r.byUser[userID]))
	for _, rem := range r.byUser[userID] {
		out = append(out, *rem)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Event.Date == out[j].Event.Date {
			return out[i].Event.ID < out[j].Event.ID
		}
		return out[i].Event.Date < out[j].Event.Date
	})
	return out
}

// ClearUser drops every reminder of a user, used on sign-out.
func (r *Reminders) ClearUser(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, userID)
}

// Sweep hands every due, not yet notified reminder to the notify callback.
func (r *Reminders) Sweep() {
	now := r.now()
	var due []Reminder
	r.mu.Lock()
	for _, set := range r.byUser {
		for _, rem := range set {
			if !rem.Notified && rem.Event.DaysUntil(now) <= 0 {
				rem.Notified = true
				due = append(due, *rem)
			}
		}
	}
	r.mu.Unlock()

	for _, rem := range due {
		r.logger.Infof("reminder due: user=%s event=%q", rem.UserID, rem.Event.Title)
		if r.notify != nil {
			r.notify(rem)
		}
	}
}
