package fixtures

import (
	"errors"

	"github.com/okian/babellm/internal/domain/model"
)

// Sentinel error kinds for this package.
var (
	// ErrMissingFixture is model.ErrMissingFixture, re-exported for callers
	// that only depend on this package.
	ErrMissingFixture = model.ErrMissingFixture
	ErrInvalidFixture = errors.New("invalid fixture file")
)
