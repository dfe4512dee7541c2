package core

import "github.com/m-mizutani/goerr/v2"

// Error taxonomy for the memory subsystem. The hot path (store, search)
// degrades instead of surfacing these; explicit management operations
// propagate them to the caller.
var (
	// ErrNotInitialized means the engine never completed its one-time setup,
	// e.g. the vector store could not be opened at startup.
	ErrNotInitialized = goerr.New("memory engine is not initialized")

	// ErrStoreUnavailable wraps transient vector store failures.
	ErrStoreUnavailable = goerr.New("vector store is unavailable")

	// ErrEmbeddingUnavailable wraps embedding provider failures.
	ErrEmbeddingUnavailable = goerr.New("embedding provider is unavailable")

	// ErrInvalidArgument is raised synchronously, before any I/O is
	// attempted, when a required argument is missing or out of range.
	ErrInvalidArgument = goerr.New("invalid argument")
)
