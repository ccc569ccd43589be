package tracker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

func TestForm_SubmitSuccessResetsToIdle(t *testing.T) {
	repo := newCountingRepo()
	tr := New(repo, internal.NopLogger())
	defer tr.Close()
	tr.SetIdentity(&internal.User{ID: "u1"})

	f := NewForm(tr)
	assert.Equal(t, FormIdle, f.State())
	f.Open()
	assert.Equal(t, FormOpen, f.State())
	require.NoError(t, f.Set("name", "Ring Nebula"))
	require.NoError(t, f.Set("date", "2026-10-19"))
	require.NoError(t, f.Set("time", "22:10"))
	require.NoError(t, f.Set("equipment", "8\" Dobsonian"))

	obs, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", obs.OwnerID)
	assert.Equal(t, "8\" Dobsonian", obs.Equipment)
	assert.Equal(t, FormIdle, f.State())
	assert.Empty(t, f.Draft().Name)
	assert.NoError(t, f.Err())

	waitForLen(t, tr, 1)
}

func TestForm_SignedOutNeverWrites(t *testing.T) {
	repo := newCountingRepo()
	tr := New(repo, internal.NopLogger())
	f := NewForm(tr)
	require.NoError(t, f.Set("name", "Moon"))
	require.NoError(t, f.Set("date", "2026-10-19"))

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, internal.ErrNotSignedIn)
	assert.Equal(t, int32(0), repo.adds.Load())
	assert.Equal(t, FormOpen, f.State())
	assert.Equal(t, "Moon", f.Draft().Name)
}

func TestForm_ValidationFailureKeepsDraft(t *testing.T) {
	repo := newCountingRepo()
	tr := New(repo, internal.NopLogger())
	defer tr.Close()
	tr.SetIdentity(&internal.User{ID: "u1"})

	f := NewForm(tr)
	require.NoError(t, f.Set("name", "Moon"))
	require.NoError(t, f.Set("date", "tonight"))

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, internal.ErrValidation)
	assert.ErrorIs(t, f.Err(), internal.ErrValidation)
	assert.Equal(t, FormOpen, f.State())
	assert.Equal(t, "tonight", f.Draft().Date)
	assert.Equal(t, int32(0), repo.adds.Load())

	assert.ErrorIs(t, f.Set("colour", "red"), internal.ErrValidation)
}

func TestForm_StorageFailureStaysOpen(t *testing.T) {
	repo := newCountingRepo()
	repo.failAdd = true
	tr := New(repo, internal.NopLogger())
	defer tr.Close()
	tr.SetIdentity(&internal.User{ID: "u1"})

	f := NewForm(tr)
	require.NoError(t, f.Set("name", "Moon"))
	require.NoError(t, f.Set("date", "2026-10-19"))

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, internal.ErrStorage)
	assert.Equal(t, FormOpen, f.State())
	assert.Equal(t, "Moon", f.Draft().Name)
	assert.Equal(t, int32(1), repo.adds.Load())
}

func TestForm_Cancel(t *testing.T) {
	f := NewForm(New(newCountingRepo(), internal.NopLogger()))
	require.NoError(t, f.Set("name", "Moon"))
	require.NoError(t, f.Cancel())
	assert.Equal(t, FormIdle, f.State())
	assert.Empty(t, f.Draft().Name)
	assert.Equal(t, "idle", f.State().String())
}
