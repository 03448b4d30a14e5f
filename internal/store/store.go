// Package store implements the record-store adapters that load the eight
// entity collections into memory. Loading happens once at startup (or on an
// explicit reload); the engine never writes back.
package store

import (
	"context"
	"errors"

	"github.com/rohanmhetar/failsight/internal/dataset"
)

// ErrNoData is returned when the backing source yields no rows at all.
// The engine must refuse to analyze against an empty dataset.
var ErrNoData = errors.New("record store returned no data")

// Store is the data access interface. All collection loads go through here.
type Store interface {
	// LoadAll fetches every collection into an immutable Dataset.
	LoadAll(ctx context.Context) (*dataset.Dataset, error)
	Ping(ctx context.Context) error
}
