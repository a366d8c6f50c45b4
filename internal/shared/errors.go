package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Catalog source errors
	ErrCatalogUnavailable = fmt.Errorf("catalog source unavailable")
	ErrCatalogTimeout     = fmt.Errorf("catalog request timed out")
	ErrLibraryNotFound    = fmt.Errorf("library not found")

	// Index and ledger errors
	ErrTrackNotFound   = fmt.Errorf("track not found")
	ErrIndexerBusy     = fmt.Errorf("an indexing run is already active")
	ErrStoreContention = fmt.Errorf("backing store busy")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidStatus   = fmt.Errorf("invalid track status")
)
