package medium

// Medium is a flat item store. All implementations must be safe for
// concurrent use.
//
// Operations are synchronous and best-effort: the store's contract treats a
// failed write as a logged, swallowed event, so callers are expected to log
// returned errors rather than propagate them.
type Medium interface {
	// GetItem returns the stored value for id. The second return is false
	// when no such item exists.
	GetItem(id string) (string, bool, error)

	// SetItem stores value under id, overwriting any existing item.
	SetItem(id, value string) error

	// RemoveItem deletes the item. Removing a missing item is not an error.
	RemoveItem(id string) error

	// Keys returns every item identifier in the medium. Order is not
	// guaranteed.
	Keys() ([]string, error)

	// Close releases any resources held by the medium.
	Close() error
}
