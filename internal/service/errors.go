package service

import "errors"

var (
	// ErrValidation marks a request that can never succeed, regardless of
	// retries.
	ErrValidation = errors.New("invalid request")

	// ErrAlreadyProcessing means another worker holds the run lock for the
	// session.
	ErrAlreadyProcessing = errors.New("session is already being processed")

	// ErrNotFound is returned for reads of sessions outside the workspace
	// or that never existed.
	ErrNotFound = errors.New("session not found")

	// Stage sentinels. A stage failure never fails the session, it degrades
	// to a canned answer; the sentinel keeps logs and the stored reasoning
	// attributable to the stage that broke.
	ErrRetrieval  = errors.New("retrieval failed")
	ErrRerank     = errors.New("rerank failed")
	ErrGeneration = errors.New("generation failed")

	// ErrPersistence marks a failed answer commit. The only error class
	// that warrants a redelivery: the pipeline already produced a result,
	// the database just did not take it.
	ErrPersistence = errors.New("failed to persist answer")
)
