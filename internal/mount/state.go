package mount

// State describes what is currently at a local mount point.
type State string

const (
	StateMissing   State = "missing"   // Mount point does not exist
	StateUnmounted State = "unmounted" // Plain directory, nothing mounted
	StateMounted   State = "mounted"   // A different filesystem is mounted
	StateStale     State = "stale"     // Mounted but the transport is gone
	StateUnknown   State = "unknown"
)
