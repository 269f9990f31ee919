package monitor

import (
	"time"

	"github.com/aleister1102/feedtap/internal/common"
	"github.com/aleister1102/feedtap/internal/config"
	"github.com/aleister1102/feedtap/internal/decoder"
	"github.com/aleister1102/feedtap/internal/endpoint"
	"github.com/aleister1102/feedtap/internal/models"
	"github.com/aleister1102/feedtap/internal/redact"

	"github.com/rs/zerolog"
)

const (
	DefaultWaitTimeout      = 5 * time.Minute
	DefaultPollInterval     = 100 * time.Millisecond
	DefaultQueueWarnDepth   = 256
	DefaultBodyPreviewBytes = 512
)

// InteractionHook receives every stored interaction confirmation. It runs on
// the ingest worker, outside the monitor lock.
type InteractionHook func(models.InteractionConfirmation)

// Options tune a Monitor. Zero values fall back to the defaults above and to
// the default classifier, registry and redactor.
type Options struct {
	Classifier *endpoint.Classifier
	Registry   *decoder.Registry
	Redactor   *redact.Redactor

	DefaultWaitTimeout time.Duration
	PollInterval       time.Duration
	// QueueWarnDepth is the ingest backlog above which a warning is logged.
	QueueWarnDepth   int
	BodyPreviewBytes int

	// Endpoints is the active set used when SetupMonitor gets an empty list.
	Endpoints []endpoint.Endpoint

	OnInteraction InteractionHook
}

func (o Options) withDefaults(logger zerolog.Logger) Options {
	if o.Classifier == nil {
		o.Classifier = endpoint.MustNewClassifier()
	}
	if o.Registry == nil {
		o.Registry = decoder.NewDefaultRegistry(logger)
	}
	if o.Redactor == nil {
		o.Redactor = redact.New()
	}
	if o.DefaultWaitTimeout <= 0 {
		o.DefaultWaitTimeout = DefaultWaitTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.QueueWarnDepth <= 0 {
		o.QueueWarnDepth = DefaultQueueWarnDepth
	}
	if o.BodyPreviewBytes == 0 {
		o.BodyPreviewBytes = DefaultBodyPreviewBytes
	}
	return o
}

// OptionsFromConfig builds Options from the monitor configuration section.
func OptionsFromConfig(cfg *config.MonitorConfig, logger zerolog.Logger) (Options, error) {
	if cfg == nil {
		return Options{}, common.NewValidationError("monitor_config", nil, "configuration is nil")
	}

	var classifierOpts []endpoint.ClassifierOption
	if cfg.SiteDomain != "" {
		classifierOpts = append(classifierOpts, endpoint.WithSiteDomain(cfg.SiteDomain))
	}
	classifier, err := endpoint.NewClassifier(classifierOpts...)
	if err != nil {
		return Options{}, common.WrapError(err, "build endpoint classifier")
	}

	endpoints := make([]endpoint.Endpoint, 0, len(cfg.Endpoints))
	for _, name := range cfg.Endpoints {
		ep, ok := endpoint.Parse(name)
		if !ok {
			return Options{}, common.NewValidationError("monitor_config.endpoints", name, "unknown endpoint")
		}
		endpoints = append(endpoints, ep)
	}

	return Options{
		Classifier:         classifier,
		Registry:           decoder.NewDefaultRegistry(logger),
		Redactor:           redact.New(append(append([]string{}, redact.DefaultKeys...), cfg.RedactFields...)...),
		DefaultWaitTimeout: time.Duration(cfg.DefaultWaitTimeoutSecs) * time.Second,
		PollInterval:       time.Duration(cfg.PollIntervalMs) * time.Millisecond,
		QueueWarnDepth:     cfg.QueueWarnDepth,
		BodyPreviewBytes:   cfg.LogBodyPreviewBytes,
		Endpoints:          endpoints,
	}, nil
}
