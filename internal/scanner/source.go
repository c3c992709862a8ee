package scanner

import (
	"context"

	"github.com/healthyair/btscan/internal/registry"
)

// Source delivers discovery events from the platform.
type Source interface {
	// Enable prepares the adapter. It is called before the first scan.
	Enable() error

	// Scan blocks, calling fn for every discovery event, until ctx is done
	// or the source stops on its own. Cancellation is not an error.
	Scan(ctx context.Context, fn func(registry.Observation)) error
}

// PowerController is implemented by sources that can report and change the
// adapter power state.
type PowerController interface {
	Powered() (bool, error)
	PowerOn() error
}
