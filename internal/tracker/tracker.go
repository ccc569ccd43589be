// Package tracker keeps a live, owner-scoped view of the signed-in user's
// observations and the form used to log new ones.
package tracker

import (
	"context"
	"fmt"
	"sync"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/storage"
)

type Listener func(list []internal.Observation)

// Tracker mirrors the current owner's observations, newest first. The list
// is fed only by the store's watch channel.
type Tracker struct {
	repo   storage.ObservationRepository
	logger internal.Logger

	// notifyMu orders deliveries; it is taken before mu, never after.
	notifyMu  sync.Mutex
	mu        sync.Mutex
	user      *internal.User
	list      []internal.Observation
	gen       uint64
	cancel    context.CancelFunc
	listeners map[int]Listener
	nextID    int
}

func New(repo storage.ObservationRepository, logger internal.Logger) *Tracker {
	return &Tracker{
		repo:      repo,
		logger:    logger,
		list:      []internal.Observation{},
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers fn for list changes and returns the unsubscribe func.
// Deliveries are serialized; fn must not call SetIdentity or Close.
func (t *Tracker) Subscribe(fn Listener) func() {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}

func (t *Tracker) Identity() *internal.User {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.user == nil {
		return nil
	}
	u := *t.user
	return &u
}

func (t *Tracker) Observations() []internal.Observation {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]internal.Observation, len(t.list))
	copy(out, t.list)
	return out
}

// SetIdentity switches the tracked owner. The previous subscription is
// cancelled and listeners see an empty list before any snapshot of the new
// owner arrives. A nil user signs the tracker out.
func (t *Tracker) SetIdentity(user *internal.User) {
	t.mu.Lock()
	t.gen++
	gen := t.gen
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.user = nil
	if user != nil {
		u := *user
		t.user = &u
	}
	t.list = []internal.Observation{}
	var ctx context.Context
	if user != nil {
		ctx, t.cancel = context.WithCancel(context.Background())
	}
	t.mu.Unlock()

	t.deliver(gen, []internal.Observation{})
	if user == nil {
		return
	}

	ch, err := t.repo.WatchObservations(ctx, user.ID)
	if err != nil {
		// The view stays empty until the next identity change.
		t.logger.Errorf("tracker: watch observations for %s failed: %v", user.ID, err)
		return
	}
	go t.consume(gen, ch)
}

func (t *Tracker) consume(gen uint64, ch <-chan []internal.Observation) {
	for snapshot := range ch {
		t.deliver(gen, snapshot)
	}
}

// deliver publishes list as generation gen. A list from a superseded
// generation is dropped, even when it was queued before the switch.
func (t *Tracker) deliver(gen uint64, list []internal.Observation) {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	if t.gen != gen {
		t.mu.Unlock()
		return
	}
	t.list = make([]internal.Observation, len(list))
	copy(t.list, list)
	listeners := t.snapshotListenersLocked()
	t.mu.Unlock()

	out := make([]internal.Observation, len(list))
	copy(out, list)
	notify(listeners, out)
}

// Add stores draft under the current owner. The new record reaches the list
// through the watch channel, not through the return value.
func (t *Tracker) Add(ctx context.Context, draft internal.Observation) (*internal.Observation, error) {
	user := t.Identity()
	if user == nil {
		return nil, internal.ErrNotSignedIn
	}
	draft.ID = ""
	draft.OwnerID = user.ID
	if err := t.repo.AddObservation(ctx, &draft); err != nil {
		t.logger.Errorf("tracker: add observation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", internal.ErrStorage, err)
	}
	return &draft, nil
}

func (t *Tracker) Remove(ctx context.Context, id string) error {
	user := t.Identity()
	if user == nil {
		return internal.ErrNotSignedIn
	}
	if err := t.repo.DeleteObservation(ctx, user.ID, id); err != nil {
		t.logger.Errorf("tracker: remove observation %s failed: %v", id, err)
		return fmt.Errorf("%w: %w", internal.ErrStorage, err)
	}
	return nil
}

// Close tears the subscription down and hands listeners an empty list. The
// tracker can be reused with SetIdentity afterwards.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.gen++
	gen := t.gen
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.user = nil
	t.mu.Unlock()

	t.deliver(gen, []internal.Observation{})
}

func (t *Tracker) snapshotListenersLocked() []Listener {
	out := make([]Listener, 0, len(t.listeners))
	for _, fn := range t.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []Listener, list []internal.Observation) {
	for _, fn := range listeners {
		fn(list)
	}
}
