// package catalog defines interface Source for enumerating the external media catalog
//
// The indexer and the incremental rescan path depend only on this shape; any
// media-server backend implementing it is substitutable.
package catalog

import (
	"context"

	"trackdex/internal/models"
)

// Source is the boundary contract to the authoritative external catalog of
// tracks physically present in the library.
type Source interface {
	// Ping verifies the catalog is reachable and the configured library exists.
	Ping(ctx context.Context) error

	// CountTracks returns a best-effort estimate of the total track count.
	CountTracks(ctx context.Context) (int, error)

	// ListAllTracks retrieves the entire track listing in one round trip.
	// The listing is held in memory and sliced into batches by the caller.
	ListAllTracks(ctx context.Context) ([]models.CatalogTrack, error)

	// ListRecentlyAdded retrieves up to limit tracks sorted by addition
	// time, newest first.
	ListRecentlyAdded(ctx context.Context, limit int) ([]models.CatalogTrack, error)

	// Name returns a human-readable identifier for the catalog backend.
	Name() string
}
