// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across client layers.
var (
	// ErrNoSession indicates an operation that requires an active session ran without one.
	ErrNoSession = errors.New("no active session")

	// ErrSchemaInvalid indicates structural validation blocked the final submission.
	ErrSchemaInvalid = errors.New("schema validation failed")

	// ErrObjections indicates the remote validation pass reported at least one objection.
	ErrObjections = errors.New("remote validation objections")
)
