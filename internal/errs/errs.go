// Package errs defines the error taxonomy shared by the tagging pipeline.
//
// Callers wrap one of the sentinels with context using fmt.Errorf and %w, and
// inspect failures with errors.Is.
package errs

import "errors"

var (
	// ErrConfiguration covers feature set mismatches, missing required
	// collaborators and scoring before a model is trained or loaded.
	ErrConfiguration = errors.New("configuration error")

	// ErrData covers unusable input such as an empty corpus or a document
	// that yields no candidates.
	ErrData = errors.New("data error")

	// ErrCollaboratorUnavailable reports a failing stemmer or knowledge service.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

	// ErrModelMismatch reports a feature vector or serialized model that does
	// not match the feature configuration recorded at training time.
	ErrModelMismatch = errors.New("model mismatch")
)
