// Package surface implements the UI surfaces a launch can navigate.
package surface

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrSurfaceUnavailable is returned when the surface cannot take a
// navigation yet, for instance before the window or program exists.
var ErrSurfaceUnavailable = errors.New("ui surface unavailable")

// Navigator is the primary UI surface.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}
