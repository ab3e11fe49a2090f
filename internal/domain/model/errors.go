package model

import "errors"

// ErrMissingFixture marks a question, translation, score or session value
// that is absent from the backing data.
var ErrMissingFixture = errors.New("missing fixture data")
