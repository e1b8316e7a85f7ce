package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// BackendMode identifies which storage backend is active for the photo log.
// At most one mode is active at a time; switching modes does not migrate data.
type BackendMode string

const (
	// ModeDirectory stores items under a user-selected directory.
	ModeDirectory BackendMode = "directory"
	// ModePrivate stores items under the application-private data directory.
	ModePrivate BackendMode = "private"
	// ModeKeyValue stores items in an embedded key-value database.
	ModeKeyValue BackendMode = "keyvalue"
	// ModeRemote stores items in an S3-compatible object store.
	ModeRemote BackendMode = "remote"
)

// Valid reports whether m is one of the known backend modes.
func (m BackendMode) Valid() bool {
	switch m {
	case ModeDirectory, ModePrivate, ModeKeyValue, ModeRemote:
		return true
	}
	return false
}

// NewID returns a new opaque unique identifier for items and images.
func NewID() string {
	return uuid.NewString()
}

// Fingerprint returns a short content fingerprint used for duplicate-image
// detection. Identical bytes always produce identical fingerprints.
func Fingerprint(data []byte) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ImageRef is the lightweight metadata half of an image. The binary payload
// is stored separately, keyed by item ID + image ID.
type ImageRef struct {
	ID   string `json:"id" msgpack:"id"`
	Name string `json:"name" msgpack:"name"`
	Mime string `json:"mime" msgpack:"mime"`
}

// Item is one client visit/photo-set record. ID and CreatedAt are assigned at
// creation and never change; edits are modeled as full replacement.
type Item struct {
	ID        string     `json:"id" msgpack:"id"`
	Client    string     `json:"client" msgpack:"client"`
	Location  string     `json:"location" msgpack:"location"`
	Note      string     `json:"note" msgpack:"note"`
	CreatedAt int64      `json:"createdAt" msgpack:"createdAt"` // epoch milliseconds
	Images    []ImageRef `json:"images" msgpack:"images"`
}

// DateISO returns the item's creation date as a local YYYY-MM-DD string.
// This is the grouping key for the photo log's date view.
func (it *Item) DateISO() string {
	return time.UnixMilli(it.CreatedAt).Local().Format("2006-01-02")
}

// ImageIDs returns the IDs of all referenced images, in order.
func (it *Item) ImageIDs() []string {
	ids := make([]string, 0, len(it.Images))
	for _, im := range it.Images {
		ids = append(ids, im.ID)
	}
	return ids
}

// Row is one line of the daily parcel sheet. Amount and Cost hold free-text
// numeric expressions ("5k+300-1k") parsed by the sheet package.
type Row struct {
	ID        string `json:"id"`
	Num       *int   `json:"num"`
	Packed    bool   `json:"packed"`
	Type      string `json:"type"`
	Location  string `json:"location"`
	Paid      bool   `json:"paid"`
	Customer  string `json:"customer"`
	Amount    string `json:"amount"`
	Delivered bool   `json:"delivered"`
	Courier   string `json:"courier"`
	Cost      string `json:"cost"`
}

// Snapshot is an immutable point-in-time copy of a day's row collection.
// Renaming only changes Name; the row data is never touched after creation.
type Snapshot struct {
	ID      string `json:"id"`
	DateISO string `json:"dateISO"`
	Name    string `json:"name"`
	SavedAt int64  `json:"savedAt"` // epoch milliseconds
	Rows    []Row  `json:"rows"`
}

// NowMilli returns the current time as epoch milliseconds.
func NowMilli() int64 {
	return time.Now().UnixMilli()
}
