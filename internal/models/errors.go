package models

import "errors"

var (
	// ErrMissingInput marks a required upload, path or field that was not supplied.
	ErrMissingInput = errors.New("missing input")
	// ErrIndexBuild marks a vector index that could not be built or loaded.
	ErrIndexBuild = errors.New("failed to build vector database")
	// ErrNoChunks is returned when there is nothing to index.
	ErrNoChunks = errors.New("no chunks to index")
	// ErrUpstreamUnavailable wraps failures of the embedding or completion services.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)
