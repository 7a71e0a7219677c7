package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig covers bad chunking/index parameters. Fatal at startup.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrIndexNotReady means a query arrived before any successful index build.
	ErrIndexNotReady = errors.New("index not ready")

	// ErrRetrievalBackend means the vector store or embedding oracle was
	// unreachable and no degraded lexical path could serve the query.
	ErrRetrievalBackend = errors.New("retrieval backend unavailable")

	// ErrGenerationTimeout means the generative oracle exceeded its budget.
	// Always absorbed into a templated answer before reaching the end user.
	ErrGenerationTimeout = errors.New("generation timeout")

	ErrInvalidInput     = errors.New("invalid input")
	ErrDocumentNotFound = errors.New("document not found")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
