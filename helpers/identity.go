package helpers

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// Default think-time bounds
const (
	DefaultDelayMin = 1500 * time.Millisecond
	DefaultDelayMax = 2200 * time.Millisecond
)

var (
	desktopPlatforms = []string{
		"Windows NT 10.0; Win64; x64",
		"Windows NT 11.0; Win64; x64",
		"Macintosh; Intel Mac OS X 10_15_7",
		"Macintosh; Intel Mac OS X 13_6_1",
		"X11; Linux x86_64",
		"X11; Ubuntu; Linux x86_64",
	}

	referers = []string{
		"https://www.google.com/",
		"https://www.bing.com/",
		"https://duckduckgo.com/",
	}
)

// RandomDelay blocks for a uniformly random duration in [min, max], or until ctx is done.
func RandomDelay(ctx context.Context, min, max time.Duration) error {
	if max < min {
		min, max = max, min
	}
	d := min
	if span := int64(max - min); span > 0 {
		d += time.Duration(rand.Int64N(span + 1))
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RandomUserAgent builds a plausible desktop user agent with a randomized platform and version
func RandomUserAgent() string {
	platform := desktopPlatforms[rand.IntN(len(desktopPlatforms))]

	switch rand.IntN(4) {
	case 0:
		version := 121 + rand.IntN(13)
		return fmt.Sprintf("Mozilla/5.0 (%s; rv:%d.0) Gecko/20100101 Firefox/%d.0", platform, version, version)
	case 1:
		chrome := chromeVersion()
		return fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s Safari/537.36 Edg/%s", platform, chrome, chrome)
	case 2:
		if strings.HasPrefix(platform, "Macintosh") {
			return fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.%d Safari/605.1.15", platform, rand.IntN(6))
		}
	}
	return fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s Safari/537.36", platform, chromeVersion())
}

func chromeVersion() string {
	return fmt.Sprintf("%d.0.%d.%d", 120+rand.IntN(12), 6000+rand.IntN(800), rand.IntN(200))
}

// RandomReferer picks a search-engine referer
func RandomReferer() string {
	return referers[rand.IntN(len(referers))]
}
