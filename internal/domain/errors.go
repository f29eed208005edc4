package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent misuse or missing prerequisites. None of them are
// transient, so callers should not retry.
var (
	// ErrEmptyCorpus indicates a term model was fitted on no usable text.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrEmptyIndex indicates build was called with no documents added.
	ErrEmptyIndex = errors.New("empty index")

	// ErrIndexNotBuilt indicates a search before any index was built or loaded.
	ErrIndexNotBuilt = errors.New("index not built")

	// ErrIndexFrozen indicates a document was added after build.
	// A new builder must be used to produce a replacement index.
	ErrIndexFrozen = errors.New("index is frozen")

	// ErrInvalidTopK indicates a non-positive result count.
	ErrInvalidTopK = errors.New("top_k must be positive")

	// ErrStoreNotFound indicates the persisted index artifact is absent.
	ErrStoreNotFound = errors.New("index store not found")

	// ErrCorruptStore indicates the persisted artifact failed consistency checks.
	ErrCorruptStore = errors.New("index store corrupt")

	// ErrMetadataUnavailable indicates the corpus metadata source could not be read.
	ErrMetadataUnavailable = errors.New("metadata unavailable")
)

// OpError tags an error with the pipeline stage that produced it.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError wraps err with op. It returns nil when err is nil.
func NewOpError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}
