package tracker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/storage"
)

// countingRepo records write attempts and can be told to fail them.
type countingRepo struct {
	*storage.MemoryStorage
	adds    atomic.Int32
	deletes atomic.Int32
	failAdd bool
}

func (r *countingRepo) AddObservation(ctx context.Context, obs *internal.Observation) error {
	r.adds.Add(1)
	if r.failAdd {
		return errors.New("quota exceeded")
	}
	return r.MemoryStorage.AddObservation(ctx, obs)
}

func (r *countingRepo) DeleteObservation(ctx context.Context, ownerID, id string) error {
	r.deletes.Add(1)
	return r.MemoryStorage.DeleteObservation(ctx, ownerID, id)
}

func newCountingRepo() *countingRepo {
	return &countingRepo{MemoryStorage: storage.NewMemoryStorage(internal.NopLogger())}
}

// recorder keeps every list a listener was handed.
type recorder struct {
	mu    sync.Mutex
	lists [][]internal.Observation
}

func (r *recorder) listen(list []internal.Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists = append(r.lists, list)
}

func (r *recorder) all() [][]internal.Observation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]internal.Observation(nil), r.lists...)
}

func waitForLen(t *testing.T, tr *Tracker, n int) []internal.Observation {
	t.Helper()
	require.Eventually(t, func() bool { return len(tr.Observations()) == n }, time.Second, 5*time.Millisecond)
	return tr.Observations()
}

func TestTracker_AddGrowsListNewestFirst(t *testing.T) {
	repo := newCountingRepo()
	tr := New(repo, internal.NopLogger())
	defer tr.Close()
	ctx := context.Background()

	tr.SetIdentity(&internal.User{ID: "u1"})
	_, err := tr.Add(ctx, internal.Observation{Name: "Moon", Date: "2026-10-19"})
	require.NoError(t, err)
	waitForLen(t, tr, 1)

	added, err := tr.Add(ctx, internal.Observation{Name: "Saturn", Date: "2026-10-19"})
	require.NoError(t, err)
	assert.Equal(t, "u1", added.OwnerID)

	list := waitForLen(t, tr, 2)
	assert.Equal(t, added.ID, list[0].ID)
	assert.Equal(t, "Moon", list[1].Name)
}

func TestTracker_SignedOutAddNeverWrites(t *testing.T) {
	repo := newCountingRepo()
	tr := New(repo, internal.NopLogger())

	_, err := tr.Add(context.Background(), internal.Observation{Name: "Moon", Date: "2026-10-19"})
	assert.ErrorIs(t, err, internal.ErrNotSignedIn)
	assert.ErrorIs(t, tr.Remove(context.Background(), "x"), internal.ErrNotSignedIn)
	assert.Equal(t, int32(0), repo.adds.Load())
	assert.Equal(t, int32(0), repo.deletes.Load())
}

func TestTracker_StorageFailure(t *testing.T) {
	repo := newCountingRepo()
	repo.failAdd = true
	tr := New(repo, internal.NopLogger())
	defer tr.Close()
	tr.SetIdentity(&internal.User{ID: "u1"})

	_, err := tr.Add(context.Background(), internal.Observation{Name: "Moon", Date: "2026-10-19"})
	assert.ErrorIs(t, err, internal.ErrStorage)
	assert.Empty(t, tr.Observations())
}

func TestTracker_RemoveExactlyOne(t *testing.T) {
	repo := newCountingRepo()
	tr := New(repo, internal.NopLogger())
	defer tr.Close()
	ctx := context.Background()
	tr.SetIdentity(&internal.User{ID: "u1"})

	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		o, err := tr.Add(ctx, internal.Observation{Name: name, Date: "2026-10-19"})
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}
	waitForLen(t, tr, 3)

	require.NoError(t, tr.Remove(ctx, ids[1]))
	list := waitForLen(t, tr, 2)
	for _, o := range list {
		assert.NotEqual(t, ids[1], o.ID)
	}

	err := tr.Remove(ctx, ids[1])
	assert.ErrorIs(t, err, internal.ErrStorage)
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestTracker_IdentitySwitchClearsBeforeRepopulating(t *testing.T) {
	repo := newCountingRepo()
	ctx := context.Background()
	require.NoError(t, repo.MemoryStorage.AddObservation(ctx, &internal.Observation{OwnerID: "alice", Name: "Vega", Date: "2026-10-18"}))
	require.NoError(t, repo.MemoryStorage.AddObservation(ctx, &internal.Observation{OwnerID: "bob", Name: "Deneb", Date: "2026-10-18"}))
	require.NoError(t, repo.MemoryStorage.AddObservation(ctx, &internal.Observation{OwnerID: "bob", Name: "Altair", Date: "2026-10-19"}))

	tr := New(repo, internal.NopLogger())
	defer tr.Close()

	tr.SetIdentity(&internal.User{ID: "alice"})
	waitForLen(t, tr, 1)

	rec := &recorder{}
	tr.Subscribe(rec.listen)
	tr.SetIdentity(&internal.User{ID: "bob"})
	list := waitForLen(t, tr, 2)
	assert.Equal(t, "Altair", list[0].Name)

	lists := rec.all()
	require.GreaterOrEqual(t, len(lists), 2)
	assert.Empty(t, lists[0], "first notification after a switch must be the cleared list")
	for _, l := range lists[1:] {
		for _, o := range l {
			assert.Equal(t, "bob", o.OwnerID)
		}
	}

	// Writes by the previous owner no longer reach the view.
	require.NoError(t, repo.MemoryStorage.AddObservation(ctx, &internal.Observation{OwnerID: "alice", Name: "Mizar", Date: "2026-10-19"}))
	time.Sleep(20 * time.Millisecond)
	for _, o := range tr.Observations() {
		assert.Equal(t, "bob", o.OwnerID)
	}
}

func TestTracker_SignOutEmptiesList(t *testing.T) {
	repo := newCountingRepo()
	ctx := context.Background()
	require.NoError(t, repo.MemoryStorage.AddObservation(ctx, &internal.Observation{OwnerID: "u1", Name: "Vega", Date: "2026-10-18"}))

	tr := New(repo, internal.NopLogger())
	tr.SetIdentity(&internal.User{ID: "u1"})
	waitForLen(t, tr, 1)

	tr.SetIdentity(nil)
	assert.Empty(t, tr.Observations())
	assert.Nil(t, tr.Identity())
}

type brokenWatchRepo struct{ *countingRepo }

func (brokenWatchRepo) WatchObservations(ctx context.Context, ownerID string) (<-chan []internal.Observation, error) {
	return nil, errors.New("permission denied")
}

func TestTracker_WatchErrorFallsBackToEmpty(t *testing.T) {
	tr := New(brokenWatchRepo{newCountingRepo()}, internal.NopLogger())
	tr.SetIdentity(&internal.User{ID: "u1"})
	assert.Empty(t, tr.Observations())
	assert.NotNil(t, tr.Identity())
}

func TestTracker_HeldOldOwnerSnapshotNeverFollowsSwitch(t *testing.T) {
	repo := newCountingRepo()
	tr := New(repo, internal.NopLogger())
	defer tr.Close()
	ctx := context.Background()
	require.NoError(t, repo.AddObservation(ctx, &internal.Observation{OwnerID: "bob", Name: "Deneb", Date: "2026-10-18"}))

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var seen []string
	held := false
	tr.Subscribe(func(list []internal.Observation) {
		owner := "empty"
		if len(list) > 0 {
			owner = list[0].OwnerID
		}
		mu.Lock()
		seen = append(seen, owner)
		block := owner == "alice" && !held
		if block {
			held = true
		}
		mu.Unlock()
		if block {
			close(entered)
			<-release
		}
	})

	tr.SetIdentity(&internal.User{ID: "alice"})
	_, err := tr.Add(ctx, internal.Observation{Name: "Vega", Date: "2026-10-18"})
	require.NoError(t, err)
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("alice snapshot was never delivered")
	}

	switched := make(chan struct{})
	go func() {
		tr.SetIdentity(&internal.User{ID: "bob"})
		close(switched)
	}()
	require.Eventually(t, func() bool {
		u := tr.Identity()
		return u != nil && u.ID == "bob"
	}, time.Second, 5*time.Millisecond)
	close(release)

	select {
	case <-switched:
	case <-time.After(time.Second):
		t.Fatal("SetIdentity did not return")
	}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == "bob"
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	first := -1
	for i, owner := range seen {
		if owner == "alice" {
			first = i
			break
		}
	}
	require.GreaterOrEqual(t, first, 0)
	assert.Equal(t, []string{"empty", "bob"}, seen[first+1:])
}

func TestTracker_CloseNotifiesEmpty(t *testing.T) {
	repo := newCountingRepo()
	tr := New(repo, internal.NopLogger())
	rec := &recorder{}
	tr.Subscribe(rec.listen)

	tr.SetIdentity(&internal.User{ID: "u1"})
	_, err := tr.Add(context.Background(), internal.Observation{Name: "Moon", Date: "2026-10-19"})
	require.NoError(t, err)
	waitForLen(t, tr, 1)

	tr.Close()
	lists := rec.all()
	require.NotEmpty(t, lists)
	assert.Empty(t, lists[len(lists)-1])
	assert.Nil(t, tr.Identity())
	assert.Empty(t, tr.Observations())
}
