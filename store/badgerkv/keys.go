package badgerkv

// Key families for the key-value layout. The logical item tree maps to two
// prefixes: meta:<itemID> for the metadata record and blob:<itemID>:<imageID>
// for each binary payload. Enumeration scans the meta: prefix.
const (
	metaPrefix = "meta:"
	blobPrefix = "blob:"
)

// makeMetaKey generates the metadata key for an item.
func makeMetaKey(itemID string) []byte {
	return []byte(metaPrefix + itemID)
}

// makeBlobKey generates the payload key for one image of an item.
func makeBlobKey(itemID, imageID string) []byte {
	return []byte(blobPrefix + itemID + ":" + imageID)
}

// itemIDFromMetaKey recovers the item ID from a metadata key.
func itemIDFromMetaKey(key []byte) string {
	return string(key[len(metaPrefix):])
}
