package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"kombio/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestLoadEmptyStore(t *testing.T) {
	store, _ := openTestStore(t)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got, "no saved settings yet")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	want := &ports.Settings{
		PointLimit: 21,
		SoundOn:    true,
		Roster: []ports.SavedPlayer{
			{Name: "Maya", AvatarIndex: 1, IsAI: true, Level: "advanced"},
			{Name: "You", AvatarIndex: 0},
		},
	}
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveOverwrites(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &ports.Settings{PointLimit: 15}))
	require.NoError(t, store.Save(ctx, &ports.Settings{PointLimit: 30, SoundOn: true}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int32(30), got.PointLimit)
	assert.True(t, got.SoundOn)
}

func TestReopenKeepsData(t *testing.T) {
	store, path := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &ports.Settings{PointLimit: 12}))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int32(12), got.PointLimit)
}
