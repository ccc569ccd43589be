// Package session holds the signed-in identity shared by every view of the
// explorer and notifies subscribers when it changes.
package session

import (
	"context"
	"sync"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/auth"
)

type Listener func(user *internal.User)

type Holder struct {
	provider auth.Provider
	// notifyMu keeps notifications in the order identities were set.
	notifyMu  sync.Mutex
	mu        sync.RWMutex
	session   *internal.Session
	listeners map[int]Listener
	nextID    int
	logger    internal.Logger
}

func NewHolder(provider auth.Provider, logger internal.Logger) *Holder {
	return &Holder{provider: provider, listeners: make(map[int]Listener), logger: logger}
}

// Current returns the signed-in user, or nil when signed out.
func (h *Holder) Current() *internal.User {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.session == nil {
		return nil
	}
	u := h.session.User
	return &u
}

func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.session == nil {
		return ""
	}
	return h.session.Token
}

// Subscribe registers fn for identity changes and returns the unsubscribe func.
// Notifications are serialized; fn must not sign in or out.
func (h *Holder) Subscribe(fn Listener) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

func (h *Holder) SignIn(ctx context.Context, email, password string) (*internal.User, error) {
	sess, err := h.provider.SignIn(ctx, email, password)
	if err != nil {
		h.logger.Warnf("session: sign-in failed: %v", err)
		return nil, err
	}
	return h.set(sess), nil
}

func (h *Holder) SignUp(ctx context.Context, email, password string) (*internal.User, error) {
	sess, err := h.provider.SignUp(ctx, email, password)
	if err != nil {
		h.logger.Warnf("session: sign-up failed: %v", err)
		return nil, err
	}
	return h.set(sess), nil
}

func (h *Holder) SignInWithFederatedProvider(ctx context.Context, code string) (*internal.User, error) {
	sess, err := h.provider.SignInFederated(ctx, code)
	if err != nil {
		h.logger.Warnf("session: federated sign-in failed: %v", err)
		return nil, err
	}
	return h.set(sess), nil
}

// SignOut revokes the token at the provider, then clears the identity.
// A failed revoke leaves the user signed in.
func (h *Holder) SignOut(ctx context.Context) error {
	token := h.Token()
	if token == "" {
		return nil
	}
	if err := h.provider.SignOut(ctx, token); err != nil {
		h.logger.Warnf("session: sign-out failed: %v", err)
		return err
	}
	h.set(nil)
	return nil
}

func (h *Holder) set(sess *internal.Session) *internal.User {
	h.notifyMu.Lock()
	defer h.notifyMu.Unlock()

	h.mu.Lock()
	h.session = sess
	var user *internal.User
	if sess != nil {
		u := sess.User
		user = &u
	}
	listeners := make([]Listener, 0, len(h.listeners))
	for _, fn := range h.listeners {
		listeners = append(listeners, fn)
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(user)
	}
	return user
}
