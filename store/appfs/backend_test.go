package appfs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/poiesic/stride/core"
	"github.com/poiesic/stride/prefs"
	"github.com/poiesic/stride/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *Backend {
	t.Helper()
	p, err := prefs.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	return New(store.NewSelector(p), t.TempDir())
}

func TestIsAvailable(t *testing.T) {
	b := newBackend(t)
	assert.True(t, b.IsAvailable())

	none := New(store.NewSelector(mustPrefs(t)), "")
	assert.False(t, none.IsAvailable())
}

func mustPrefs(t *testing.T) *prefs.Store {
	t.Helper()
	p, err := prefs.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	return p
}

func TestSelectRoot_FixedTarget(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	ref, err := b.SelectRoot(ctx, "ignored")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, core.ModePrivate, ref.Mode)
	assert.Equal(t, "photolog", ref.BaseName)
	assert.Equal(t, "photolog", filepath.Base(ref.Ref))

	verified := b.VerifyRoot(ctx)
	require.NotNil(t, verified)
	assert.Equal(t, ref, verified)
}

func TestWriteListRoundTrip(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	_, err := b.SelectRoot(ctx, "")
	require.NoError(t, err)

	meta := &core.Item{
		ID:        core.NewID(),
		Client:    "ACME",
		CreatedAt: core.NowMilli(),
		Images:    []core.ImageRef{{ID: "i1", Name: "a.webp", Mime: "image/webp"}},
	}
	require.NoError(t, b.WriteItem(ctx, meta, map[string][]byte{"i1": []byte("webp")}))

	items, err := b.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, meta.ID, items[0].Meta.ID)

	require.NoError(t, b.ClearAll(ctx))
	items, err = b.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOperationsRequireConfiguredRoot(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	_, err := b.ListItems(ctx)
	assert.ErrorIs(t, err, store.ErrRootLost)
	assert.ErrorIs(t, b.ClearAll(ctx), store.ErrRootLost)
}
