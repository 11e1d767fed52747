package surface

import (
	"context"

	"github.com/enescakir/emoji"
	"github.com/rs/zerolog"
)

// Headless has no UI; navigating just logs where the frontend lives.
type Headless struct {
	logger zerolog.Logger
}

func NewHeadless(logger zerolog.Logger) *Headless {
	return &Headless{logger: logger}
}

func (h *Headless) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.logger.Info().Str("url", url).Msgf("%v Frontend available", emoji.GlobeWithMeridians)
	return nil
}
