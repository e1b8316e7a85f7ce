package dirfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/stride/core"
	"github.com/poiesic/stride/prefs"
	"github.com/poiesic/stride/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	p, err := prefs.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	b := New(store.NewSelector(p))
	root := filepath.Join(t.TempDir(), "photos")
	return b, root
}

func sampleItem() (*core.Item, map[string][]byte) {
	meta := &core.Item{
		ID:        core.NewID(),
		Client:    "ACME",
		Location:  "North depot",
		CreatedAt: core.NowMilli(),
		Images: []core.ImageRef{
			{ID: "img-1", Name: "front.jpg", Mime: "image/jpeg"},
			{ID: "img-2", Name: "back.jpg", Mime: "image/jpeg"},
		},
	}
	blobs := map[string][]byte{
		"img-1": []byte("front-bytes"),
		"img-2": []byte("back-bytes"),
	}
	return meta, blobs
}

func TestSelectRoot_PersistsSelection(t *testing.T) {
	b, root := newBackend(t)
	ctx := context.Background()

	ref, err := b.SelectRoot(ctx, root)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, core.ModeDirectory, ref.Mode)
	assert.Equal(t, filepath.Base(root), ref.BaseName)
	assert.DirExists(t, root)

	got := b.GetRoot()
	require.NotNil(t, got)
	assert.Equal(t, ref, got)
}

func TestSelectRoot_EmptyPath(t *testing.T) {
	b, _ := newBackend(t)
	_, err := b.SelectRoot(context.Background(), "")
	assert.Error(t, err)
}

func TestVerifyRoot_Unconfigured(t *testing.T) {
	b, _ := newBackend(t)
	assert.Nil(t, b.VerifyRoot(context.Background()))
}

func TestVerifyRoot_Idempotent(t *testing.T) {
	b, root := newBackend(t)
	ctx := context.Background()
	_, err := b.SelectRoot(ctx, root)
	require.NoError(t, err)

	first := b.VerifyRoot(ctx)
	second := b.VerifyRoot(ctx)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first, second)
}

func TestVerifyRoot_RootDeletedExternally(t *testing.T) {
	b, root := newBackend(t)
	ctx := context.Background()
	_, err := b.SelectRoot(ctx, root)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(root))
	assert.Nil(t, b.VerifyRoot(ctx))

	// operations abort before mutating anything
	meta, blobs := sampleItem()
	assert.ErrorIs(t, b.WriteItem(ctx, meta, blobs), store.ErrRootLost)
	_, err = b.ListItems(ctx)
	assert.ErrorIs(t, err, store.ErrRootLost)
}

func TestWriteListDeleteRoundTrip(t *testing.T) {
	b, root := newBackend(t)
	ctx := context.Background()
	_, err := b.SelectRoot(ctx, root)
	require.NoError(t, err)

	meta, blobs := sampleItem()
	require.NoError(t, b.WriteItem(ctx, meta, blobs))

	items, err := b.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, meta.ID, items[0].Meta.ID)
	assert.Len(t, items[0].Blobs, 2)

	require.NoError(t, b.DeleteItem(ctx, meta.ID, meta.ImageIDs()))
	items, err = b.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestClearAll_KeepsRoot(t *testing.T) {
	b, root := newBackend(t)
	ctx := context.Background()
	_, err := b.SelectRoot(ctx, root)
	require.NoError(t, err)

	meta, blobs := sampleItem()
	require.NoError(t, b.WriteItem(ctx, meta, blobs))
	require.NoError(t, b.ClearAll(ctx))

	items, err := b.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.DirExists(t, root)
	require.NotNil(t, b.GetRoot()) // configuration survives
}
