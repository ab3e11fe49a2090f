// Package site serves the embedded quiz page.
package site

import (
	"context"
	"errors"
	"net/http"
)

// Error constants
var (
	ErrServe = errors.New("quiz site serve failed")
)

// Register attaches the embedded quiz page and its assets to mux at /.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /", http.FileServer(FS()))
}
