// Package certerr defines the error classes shared by the certificate store,
// the fenced block codec, the inspection parser and the signing engine.
package certerr

import "errors"

var (
	// ErrNotFound is returned when a required artifact is missing in the store.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when an artifact is present but its absence
	// is required, e.g. before issuing a certificate under an existing name.
	ErrAlreadyExists = errors.New("already exists")

	// ErrMalformedInput is returned for fenced block label mismatches, unknown
	// block labels and unparsable inspection output.
	ErrMalformedInput = errors.New("malformed input")

	// ErrEngineFailure is returned when the signing engine exits with a
	// non-zero status or does not finish in time.
	ErrEngineFailure = errors.New("signing engine failure")

	// ErrConfiguration is returned for invalid request parameters.
	ErrConfiguration = errors.New("invalid configuration")
)
