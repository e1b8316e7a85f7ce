package store

import (
	"context"

	"github.com/poiesic/stride/core"
)

// RootRef denotes where an item tree is stored: a directory path, a database
// directory, or a bucket identity, depending on the mode. The Ref string is
// opaque to callers.
type RootRef struct {
	Mode     core.BackendMode `json:"mode"`
	Ref      string           `json:"ref"`
	BaseName string           `json:"baseName"`
}

// RawItem is one enumerated item as stored: parsed metadata plus the binary
// payloads that could be retrieved, keyed by image ID. An image whose blob is
// missing simply has no entry in Blobs; readers drop it rather than fail.
type RawItem struct {
	Meta  *core.Item
	Blobs map[string][]byte
}

// Backend is the uniform storage contract implemented by all four variants.
//
// Every mutating or enumerating method re-verifies the root first and returns
// ErrRootLost (or ErrNotConfigured) before touching any data when the root is
// no longer usable.
type Backend interface {
	// Mode returns the backend mode this implementation serves.
	Mode() core.BackendMode

	// IsAvailable reports whether this backend can run here. It never fails;
	// a capability probe only.
	IsAvailable() bool

	// SelectRoot establishes and persists the storage root. The target is
	// variant-specific: a directory path, a database directory, or a bucket
	// name; variants with a fixed root ignore it. Returns (nil, nil) when the
	// platform denies the root without a hard error.
	SelectRoot(ctx context.Context, target string) (*RootRef, error)

	// GetRoot returns the previously selected root without re-validating it,
	// or nil if none is configured for this mode.
	GetRoot() *RootRef

	// VerifyRoot re-validates the configured root with a cheap existence
	// probe (one enumeration step), not just a cached handle check. Returns
	// nil on any failure; failures are logged, never returned.
	VerifyRoot(ctx context.Context) *RootRef

	// WriteItem persists one item: all blobs first, then the metadata record.
	// On failure partial state may remain; no rollback is attempted.
	WriteItem(ctx context.Context, meta *core.Item, blobs map[string][]byte) error

	// ListItems enumerates all items under the root. Entries with corrupt or
	// missing metadata are skipped with a log, never abort the listing.
	ListItems(ctx context.Context) ([]*RawItem, error)

	// DeleteItem removes the item's blobs (best effort, failures swallowed
	// and logged) and then its metadata record, which is the operation of
	// record.
	DeleteItem(ctx context.Context, id string, imageIDs []string) error

	// ClearAll deletes every item under the current root. The root itself
	// and the persisted configuration survive.
	ClearAll(ctx context.Context) error
}

// SessionBackend is implemented by variants holding an authenticated session
// (the remote variant). ForgetConfiguration ends the session and erases the
// locally cached root and mode state.
type SessionBackend interface {
	Backend
	ForgetConfiguration(ctx context.Context) error
}
