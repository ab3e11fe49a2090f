package session

import (
	"errors"
	"fmt"

	"github.com/okian/babellm/internal/domain/model"
)

// Sentinel error kinds for this package.
var (
	// ErrStorageRead means a handoff value was absent or malformed. It
	// matches model.ErrMissingFixture under errors.Is.
	ErrStorageRead  = fmt.Errorf("session storage read failed: %w", model.ErrMissingFixture)
	ErrStorageWrite = errors.New("session storage write failed")
)
