package store

import (
	"path/filepath"
	"testing"

	"github.com/poiesic/stride/core"
	"github.com/poiesic/stride/prefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSelector(t *testing.T) *Selector {
	t.Helper()
	p, err := prefs.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	return NewSelector(p)
}

func TestSelector_Unconfigured(t *testing.T) {
	sel := newSelector(t)
	assert.Nil(t, sel.Current())
	assert.Equal(t, core.BackendMode(""), sel.Mode())
	assert.Nil(t, sel.RootFor(core.ModeDirectory))
}

func TestSelector_SaveAndCurrent(t *testing.T) {
	sel := newSelector(t)
	ref := &RootRef{Mode: core.ModeDirectory, Ref: "/data/photos", BaseName: "photos"}
	require.NoError(t, sel.Save(ref))

	got := sel.Current()
	require.NotNil(t, got)
	assert.Equal(t, ref, got)
	assert.Equal(t, core.ModeDirectory, sel.Mode())
}

func TestSelector_ModesAreIsolated(t *testing.T) {
	sel := newSelector(t)
	require.NoError(t, sel.Save(&RootRef{Mode: core.ModeKeyValue, Ref: "/data/db", BaseName: "db"}))

	assert.Nil(t, sel.RootFor(core.ModeDirectory))
	assert.Nil(t, sel.RootFor(core.ModeRemote))
	require.NotNil(t, sel.RootFor(core.ModeKeyValue))
}

func TestSelector_SaveRejectsInvalidMode(t *testing.T) {
	sel := newSelector(t)
	err := sel.Save(&RootRef{Mode: "cloud", Ref: "x"})
	assert.ErrorIs(t, err, core.ErrInvalidMode)
}

func TestSelector_Clear(t *testing.T) {
	sel := newSelector(t)
	require.NoError(t, sel.Save(&RootRef{Mode: core.ModeRemote, Ref: "bucket", BaseName: "bucket"}))
	require.NoError(t, sel.Clear())
	assert.Nil(t, sel.Current())
}
