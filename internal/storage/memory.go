package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

// MemoryStorage keeps everything in process. FileStorage persists it.
type MemoryStorage struct {
	observations map[string]*internal.Observation   // id -> Observation
	ownerIndex   map[string][]*internal.Observation // ownerID -> newest first
	credentials  map[string]*internal.Credential    // lower(email) -> Credential
	users        map[string]*internal.Credential    // userID -> Credential
	mu           sync.RWMutex
	feed         *feed
	now          func() time.Time
	afterWrite   func(kind string)
	logger       internal.Logger
}

func NewMemoryStorage(logger internal.Logger) *MemoryStorage {
	s := &MemoryStorage{
		observations: make(map[string]*internal.Observation),
		ownerIndex:   make(map[string][]*internal.Observation),
		credentials:  make(map[string]*internal.Credential),
		users:        make(map[string]*internal.Credential),
		now:          time.Now,
		afterWrite:   func(string) {},
		logger:       logger,
	}
	s.feed = newFeed(s.ListObservations, logger)
	return s
}

func (s *MemoryStorage) Close() error { return nil }

// insertLocked keeps the owner index sorted by CreatedAt descending.
func (s *MemoryStorage) insertLocked(obs *internal.Observation) {
	s.observations[obs.ID] = obs
	list := s.ownerIndex[obs.OwnerID]
	i := sort.Search(len(list), func(i int) bool {
		return !list[i].CreatedAt.After(obs.CreatedAt)
	})
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = obs
	s.ownerIndex[obs.OwnerID] = list
}

// --- ObservationRepository ---
func (s *MemoryStorage) AddObservation(ctx context.Context, obs *internal.Observation) error {
	if obs.OwnerID == "" {
		return fmt.Errorf("storage: observation has no owner")
	}
	s.mu.Lock()
	if obs.ID == "" {
		obs.ID = uuid.NewString()
	}
	if _, exists := s.observations[obs.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("storage: observation %s already exists", obs.ID)
	}
	obs.CreatedAt = s.now().UTC()
	stored := *obs
	s.insertLocked(&stored)
	s.mu.Unlock()

	s.afterWrite("observations")
	s.feed.publish(context.Background(), obs.OwnerID)
	return nil
}

func (s *MemoryStorage) DeleteObservation(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	obs, ok := s.observations[id]
	if !ok || obs.OwnerID != ownerID {
		s.mu.Unlock()
		return fmt.Errorf("storage: observation %s: %w", id, internal.ErrNotFound)
	}
	delete(s.observations, id)
	list := s.ownerIndex[ownerID]
	for i, o := range list {
		if o.ID == id {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(s.ownerIndex, ownerID)
	} else {
		s.ownerIndex[ownerID] = list
	}
	s.mu.Unlock()

	s.afterWrite("observations")
	s.feed.publish(context.Background(), ownerID)
	return nil
}

func (s *MemoryStorage) ListObservations(ctx context.Context, ownerID string) ([]internal.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ptrs := s.ownerIndex[ownerID]
	out := make([]internal.Observation, len(ptrs))
	for i, o := range ptrs {
		out[i] = *o
	}
	return out, nil
}

func (s *MemoryStorage) WatchObservations(ctx context.Context, ownerID string) (<-chan []internal.Observation, error) {
	return s.feed.subscribe(ctx, ownerID)
}

func (s *MemoryStorage) allObservations() []*internal.Observation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*internal.Observation, 0, len(s.observations))
	for _, o := range s.observations {
		cp := *o
		out = append(out, &cp)
	}
	return out
}

// --- UserRepository ---
func (s *MemoryStorage) CreateCredential(ctx context.Context, cred *internal.Credential) error {
	key := normalizeEmail(cred.Email)
	s.mu.Lock()
	if _, exists := s.credentials[key]; exists {
		s.mu.Unlock()
		return internal.ErrAccountExists
	}
	if cred.User.ID == "" {
		cred.User.ID = uuid.NewString()
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = s.now().UTC()
	}
	stored := *cred
	s.credentials[key] = &stored
	s.users[stored.User.ID] = &stored
	s.mu.Unlock()

	s.afterWrite("users")
	return nil
}

func (s *MemoryStorage) GetCredentialByEmail(ctx context.Context, email string) (*internal.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.credentials[normalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("storage: credential %s: %w", email, internal.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStorage) GetUser(ctx context.Context, id string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("storage: user %s: %w", id, internal.ErrNotFound)
	}
	u := c.User
	return &u, nil
}

func (s *MemoryStorage) UpsertFederatedUser(ctx context.Context, cred *internal.Credential) (*internal.User, error) {
	key := normalizeEmail(cred.Email)
	s.mu.Lock()
	if existing, ok := s.credentials[key]; ok {
		// Refresh the profile fields the provider owns.
		if cred.User.DisplayName != "" {
			existing.User.DisplayName = cred.User.DisplayName
		}
		if cred.User.AvatarURL != "" {
			existing.User.AvatarURL = cred.User.AvatarURL
		}
		u := existing.User
		s.mu.Unlock()
		s.afterWrite("users")
		return &u, nil
	}
	stored := *cred
	if stored.User.ID == "" {
		stored.User.ID = uuid.NewString()
	}
	stored.CreatedAt = s.now().UTC()
	s.credentials[key] = &stored
	s.users[stored.User.ID] = &stored
	u := stored.User
	s.mu.Unlock()

	s.afterWrite("users")
	return &u, nil
}

func (s *MemoryStorage) allCredentials() []*internal.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*internal.Credential, 0, len(s.credentials))
	for _, c := range s.credentials {
		cp := *c
		out = append(out, &cp)
	}
	return out
}

// --- Compile-time assertions ---
var _ Store = (*MemoryStorage)(nil)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
