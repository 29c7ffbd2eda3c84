package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithField(t *testing.T) {
	var buf bytes.Buffer
	l := (&Logger{logger: zerolog.New(&buf)}).WithField("platform", "amazon")

	l.Warn().Err(errors.New("price not found")).Str("url", "https://www.amazon.in/dp/X").Msg("Scrape failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "amazon", entry["platform"])
	assert.Equal(t, "price not found", entry["error"])
	assert.Equal(t, "Scrape failed", entry["message"])
	assert.Equal(t, "warn", entry["level"])
}

func TestComponentLoggers(t *testing.T) {
	Init()
	assert.NotNil(t, Default)
	assert.NotNil(t, ForCache())
	assert.NotNil(t, ForScraper("flipkart"))
	assert.NotNil(t, ForDispatcher())
	assert.NotNil(t, ForPublisher())
}
