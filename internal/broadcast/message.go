package broadcast

// Kind discriminates sync message variants.
type Kind string

const (
	// KindSet announces a single-path write. Value nil means the path was
	// deleted.
	KindSet Kind = "set"
	// KindClearApp announces that an application's whole tree was cleared.
	// The sender has already removed persisted storage; receivers only
	// clear their in-memory copy, and only when the storage key matches
	// their own.
	KindClearApp Kind = "clearApp"
)

// Message is the unit transmitted between store instances. It crosses the
// transport as JSON; Value therefore carries JSON-typed data on arrival.
type Message struct {
	Kind          Kind   `json:"kind"`
	Path          string `json:"path,omitempty"`
	Value         any    `json:"value,omitempty"`
	AppStorageKey string `json:"appStorageKey,omitempty"`

	// Sender is the publishing endpoint's instance ID. Receivers drop
	// messages carrying their own ID, which keeps echo loops impossible
	// even on transports that deliver to the publisher.
	Sender string `json:"sender,omitempty"`
}
