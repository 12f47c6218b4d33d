package service

import "errors"

// Sentinel errors for pipeline runs.
var (
	// ErrUnknownGraph is returned for a name that is neither a configured
	// seed graph nor a configured community.
	ErrUnknownGraph = errors.New("unknown graph")
	// ErrNoSources is returned when not a single source document of a graph
	// could be read.
	ErrNoSources = errors.New("no source documents")
	// ErrMissingInput is returned when the primary table of a step is absent
	// or unreadable.
	ErrMissingInput = errors.New("missing input table")
)
