package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_Unique(t *testing.T) {
	a := NewID()
	b := NewID()
	require.NotEmpty(t, a)
	require.NotEmpty(t, b)
	assert.NotEqual(t, a, b)
}

func TestFingerprint_Deterministic(t *testing.T) {
	data := []byte("same bytes")
	assert.Equal(t, Fingerprint(data), Fingerprint(data))
	assert.NotEqual(t, Fingerprint(data), Fingerprint([]byte("other bytes")))
	assert.Len(t, Fingerprint(data), 16) // 8 bytes hex encoded
}

func TestBackendMode_Valid(t *testing.T) {
	for _, m := range []BackendMode{ModeDirectory, ModePrivate, ModeKeyValue, ModeRemote} {
		assert.True(t, m.Valid(), string(m))
	}
	assert.False(t, BackendMode("").Valid())
	assert.False(t, BackendMode("cloud").Valid())
}

func TestItem_DateISO(t *testing.T) {
	ts := time.Date(2025, time.March, 7, 15, 4, 5, 0, time.Local)
	item := &Item{CreatedAt: ts.UnixMilli()}
	assert.Equal(t, "2025-03-07", item.DateISO())
}

func TestItem_ImageIDs(t *testing.T) {
	item := &Item{Images: []ImageRef{{ID: "a"}, {ID: "b"}}}
	assert.Equal(t, []string{"a", "b"}, item.ImageIDs())

	empty := &Item{}
	assert.Empty(t, empty.ImageIDs())
}
