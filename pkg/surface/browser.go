package surface

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"
)

// Browser navigates by opening the URL in the system's default browser.
type Browser struct {
	logger zerolog.Logger
	open   func(url string) error
}

func NewBrowser(logger zerolog.Logger) *Browser {
	return &Browser{
		logger: logger.With().Str("component", "browser").Logger(),
		open:   browser.OpenURL,
	}
}

func (b *Browser) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.open == nil {
		return ErrSurfaceUnavailable
	}

	b.logger.Info().Str("url", url).Msg("Opening browser")
	if err := b.open(url); err != nil {
		return errors.Wrapf(err, "open browser at %s", url)
	}
	return nil
}
