package monitor

import (
	"testing"
	"time"

	"github.com/aleister1102/feedtap/internal/config"
	"github.com/aleister1102/feedtap/internal/endpoint"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.NewDefaultMonitorConfig()
	cfg.Endpoints = []string{"feed-list", "comment-page"}
	cfg.SiteDomain = "example.com"
	cfg.PollIntervalMs = 50
	cfg.DefaultWaitTimeoutSecs = 12
	cfg.RedactFields = []string{"session_key"}

	opts, err := OptionsFromConfig(&cfg, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []endpoint.Endpoint{endpoint.FeedList, endpoint.CommentPage}, opts.Endpoints)
	assert.Equal(t, 50*time.Millisecond, opts.PollInterval)
	assert.Equal(t, 12*time.Second, opts.DefaultWaitTimeout)
	assert.Equal(t, config.DefaultMonitorQueueWarnDepth, opts.QueueWarnDepth)

	// configured fields extend the built-in list
	assert.True(t, opts.Redactor.IsSensitive("session_key"))
	assert.True(t, opts.Redactor.IsSensitive("xsec_token"))

	// site scope applies to classification
	assert.Equal(t, endpoint.FeedList, opts.Classifier.Classify("https://edith.example.com/api/sns/web/v1/homefeed"))
	assert.Equal(t, endpoint.None, opts.Classifier.Classify("https://edith.other.org/api/sns/web/v1/homefeed"))

	assert.True(t, opts.Registry.Has(endpoint.FeedList))
}

func TestOptionsFromConfig_Errors(t *testing.T) {
	_, err := OptionsFromConfig(nil, zerolog.Nop())
	require.Error(t, err)

	cfg := config.NewDefaultMonitorConfig()
	cfg.Endpoints = []string{"timeline"}
	_, err = OptionsFromConfig(&cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown endpoint")
}

func TestOptions_WithDefaults(t *testing.T) {
	opts := Options{}.withDefaults(zerolog.Nop())

	assert.NotNil(t, opts.Classifier)
	assert.NotNil(t, opts.Registry)
	assert.NotNil(t, opts.Redactor)
	assert.Equal(t, DefaultWaitTimeout, opts.DefaultWaitTimeout)
	assert.Equal(t, DefaultPollInterval, opts.PollInterval)
	assert.Equal(t, DefaultQueueWarnDepth, opts.QueueWarnDepth)
	assert.Equal(t, DefaultBodyPreviewBytes, opts.BodyPreviewBytes)

	// a negative preview size disables the cap and is kept
	opts = Options{BodyPreviewBytes: -1}.withDefaults(zerolog.Nop())
	assert.Equal(t, -1, opts.BodyPreviewBytes)
}
