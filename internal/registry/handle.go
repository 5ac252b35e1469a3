package registry

// Handle is an opaque reference to a caller-side callback. Two registrations
// of the same callback must present equal handles. Handles are plain values:
// copying one is the owned clone, and equality is value equality.
type Handle struct {
	// Scope names the owner that minted the handle (a script runtime, an
	// HTTP stream).
	Scope string
	// Key identifies the callback within its scope.
	Key string
}

// NewHandle builds a Handle.
func NewHandle(scope, key string) Handle { return Handle{Scope: scope, Key: key} }

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h == Handle{} }

func (h Handle) String() string { return h.Scope + "/" + h.Key }
