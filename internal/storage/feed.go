package storage

import (
	"context"
	"sync"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

type loadFunc func(ctx context.Context, ownerID string) ([]internal.Observation, error)

// feed fans owner snapshots out to live watchers. Loads and sends happen
// under mu so a watcher never receives an older snapshot after a newer one.
type feed struct {
	mu     sync.Mutex
	subs   map[string]map[chan []internal.Observation]struct{}
	load   loadFunc
	logger internal.Logger
}

func newFeed(load loadFunc, logger internal.Logger) *feed {
	return &feed{
		subs:   make(map[string]map[chan []internal.Observation]struct{}),
		load:   load,
		logger: logger,
	}
}

func (f *feed) subscribe(ctx context.Context, ownerID string) (<-chan []internal.Observation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	initial, err := f.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ch := make(chan []internal.Observation, 1)
	ch <- initial
	if f.subs[ownerID] == nil {
		f.subs[ownerID] = make(map[chan []internal.Observation]struct{})
	}
	f.subs[ownerID][ch] = struct{}{}

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs[ownerID], ch)
		if len(f.subs[ownerID]) == 0 {
			delete(f.subs, ownerID)
		}
		close(ch)
	}()
	return ch, nil
}

// publish reloads the owner's list and offers it to every watcher.
func (f *feed) publish(ctx context.Context, ownerID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.subs[ownerID]) == 0 {
		return
	}
	list, err := f.load(ctx, ownerID)
	if err != nil {
		f.logger.Errorf("storage: reload for watchers of %s failed: %v", ownerID, err)
		return
	}
	for ch := range f.subs[ownerID] {
		offer(ch, list)
	}
}

func (f *feed) watchers(ownerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[ownerID])
}

// offer replaces any undelivered snapshot with the latest one.
func offer(ch chan []internal.Observation, list []internal.Observation) {
	select {
	case ch <- list:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- list:
	default:
	}
}
