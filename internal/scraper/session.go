package scraper

import (
	"context"

	"sjsage522/pricepeek/logger"
	apperrors "sjsage522/pricepeek/pkg/errors"
)

// WithSession acquires a session, runs fn with it and always closes it afterwards
func WithSession(ctx context.Context, browser Browser, userAgent string, fn func(Session) error) error {
	session, err := browser.NewSession(ctx, userAgent)
	if err != nil {
		return apperrors.NewScrape("browser", "failed to open browser session", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Debug("closing browser session: %v", cerr)
		}
	}()

	return fn(session)
}
