package secondary

import "context"

// ConnectivityChecker defines the secondary port for online/offline
// detection. Field connectivity is unreliable; every delivery decision asks
// first.
type ConnectivityChecker interface {
	// Online reports whether the record store is believed reachable right now.
	Online(ctx context.Context) bool
}
