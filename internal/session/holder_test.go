package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

type fakeProvider struct {
	signOutErr error
	signOuts   int
}

func (f *fakeProvider) SignUp(ctx context.Context, email, password string) (*internal.Session, error) {
	if email == "taken@example.com" {
		return nil, internal.ErrAccountExists
	}
	return &internal.Session{User: internal.User{ID: "new-" + email}, Token: "t-new"}, nil
}

func (f *fakeProvider) SignIn(ctx context.Context, email, password string) (*internal.Session, error) {
	if password != "secret1" {
		return nil, internal.ErrInvalidCredentials
	}
	return &internal.Session{User: internal.User{ID: email}, Token: "t-" + email}, nil
}

func (f *fakeProvider) SignInFederated(ctx context.Context, code string) (*internal.Session, error) {
	if code == "" {
		return nil, internal.ErrProviderCancelled
	}
	return &internal.Session{User: internal.User{ID: "fed"}, Token: "t-fed"}, nil
}

func (f *fakeProvider) FederatedLoginURL(state string) (string, error) { return "", nil }

func (f *fakeProvider) SignOut(ctx context.Context, token string) error {
	f.signOuts++
	return f.signOutErr
}

func (f *fakeProvider) Validate(ctx context.Context, token string) (*internal.User, error) {
	return nil, internal.ErrUnauthorized
}

func TestHolder_SignInNotifiesSubscribers(t *testing.T) {
	h := NewHolder(&fakeProvider{}, internal.NopLogger())
	var seen []string
	unsubscribe := h.Subscribe(func(u *internal.User) {
		if u == nil {
			seen = append(seen, "<nil>")
			return
		}
		seen = append(seen, u.ID)
	})

	assert.Nil(t, h.Current())

	u, err := h.SignIn(context.Background(), "a@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.ID)
	assert.Equal(t, "a@example.com", h.Current().ID)
	assert.Equal(t, "t-a@example.com", h.Token())

	require.NoError(t, h.SignOut(context.Background()))
	assert.Nil(t, h.Current())

	unsubscribe()
	_, err = h.SignInWithFederatedProvider(context.Background(), "code")
	require.NoError(t, err)

	assert.Equal(t, []string{"a@example.com", "<nil>"}, seen)
}

func TestHolder_FailuresKeepIdentity(t *testing.T) {
	p := &fakeProvider{}
	h := NewHolder(p, internal.NopLogger())
	ctx := context.Background()

	_, err := h.SignIn(ctx, "a@example.com", "secret1")
	require.NoError(t, err)

	notified := 0
	h.Subscribe(func(*internal.User) { notified++ })

	_, err = h.SignIn(ctx, "b@example.com", "bad")
	assert.ErrorIs(t, err, internal.ErrInvalidCredentials)
	_, err = h.SignUp(ctx, "taken@example.com", "secret1")
	assert.ErrorIs(t, err, internal.ErrAccountExists)
	_, err = h.SignInWithFederatedProvider(ctx, "")
	assert.ErrorIs(t, err, internal.ErrProviderCancelled)

	p.signOutErr = errors.New("offline")
	assert.Error(t, h.SignOut(ctx))

	assert.Equal(t, "a@example.com", h.Current().ID)
	assert.Equal(t, 0, notified)
	assert.Equal(t, 1, p.signOuts)
}

func TestHolder_SignOutWhenSignedOut(t *testing.T) {
	p := &fakeProvider{}
	h := NewHolder(p, internal.NopLogger())
	assert.NoError(t, h.SignOut(context.Background()))
	assert.Equal(t, 0, p.signOuts)
}

func TestHolder_ConcurrentSignInsNotifyInOrder(t *testing.T) {
	h := NewHolder(&fakeProvider{}, internal.NopLogger())
	var mu sync.Mutex
	var last string
	h.Subscribe(func(u *internal.User) {
		mu.Lock()
		defer mu.Unlock()
		last = u.ID
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.SignIn(context.Background(), fmt.Sprintf("u%d@example.com", i), "secret1")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, h.Current().ID, last)
}
