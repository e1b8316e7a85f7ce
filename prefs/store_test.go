package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	return s
}

func TestStore_SetGetRoundTrip(t *testing.T) {
	s := openStore(t)

	type pref struct {
		Mode string `json:"mode"`
		Cols int    `json:"cols"`
	}
	require.NoError(t, s.Set("display", pref{Mode: "grid", Cols: 3}))

	var got pref
	require.True(t, s.Get("display", &got))
	assert.Equal(t, pref{Mode: "grid", Cols: 3}, got)
}

func TestStore_GetMissing(t *testing.T) {
	s := openStore(t)
	var v string
	assert.False(t, s.Get("nope", &v))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("greeting", "hello"))

	reopened, err := Open(path)
	require.NoError(t, err)
	var got string
	require.True(t, reopened.Get("greeting", &got))
	assert.Equal(t, "hello", got)
}

func TestStore_Delete(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Set("k", 1))
	require.NoError(t, s.Delete("k"))
	var v int
	assert.False(t, s.Get("k", &v))

	// deleting again is a no-op
	require.NoError(t, s.Delete("k"))
}

func TestStore_KeysAndClearPrefix(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Set("sheet.autosave.2025-01-02", []int{1}))
	require.NoError(t, s.Set("sheet.autosave.2025-01-01", []int{2}))
	require.NoError(t, s.Set("sheet.snapshots", []int{3}))

	keys := s.Keys("sheet.autosave.")
	assert.Equal(t, []string{"sheet.autosave.2025-01-01", "sheet.autosave.2025-01-02"}, keys)

	require.NoError(t, s.ClearPrefix("sheet.autosave."))
	assert.Empty(t, s.Keys("sheet.autosave."))

	var v []int
	assert.True(t, s.Get("sheet.snapshots", &v))
}

func TestOpen_CorruptFileResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	var v string
	assert.False(t, s.Get("anything", &v))
	require.NoError(t, s.Set("anything", "works"))
}

func TestStore_CorruptValueSkipped(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Set("n", 42))
	var str string
	assert.False(t, s.Get("n", &str)) // type mismatch reads as absent
}
