package monitor

import (
	"sync"
	"time"

	"github.com/aleister1102/feedtap/internal/dedup"
	"github.com/aleister1102/feedtap/internal/endpoint"
	"github.com/aleister1102/feedtap/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Monitor captures API responses from a browser page, decodes them and keeps
// the results for one monitoring session.
//
// Two locks are used: bindMu serialises setup, stop and dispose so that a
// source is never subscribed twice, and mu guards every piece of captured data
// together with the binding state read by the event callback. Subscribe and
// Unsubscribe are always called without mu held.
type Monitor struct {
	opts       Options
	baseLogger zerolog.Logger

	bindMu sync.Mutex

	mu           sync.Mutex
	logger       zerolog.Logger
	source       ResponseSource
	subscription Subscription
	generation   uint64
	bound        bool
	disposed     bool
	active       endpoint.Set
	sessionID    string

	responses    map[endpoint.Endpoint][]models.CapturedResponse
	interactions map[endpoint.Endpoint][]models.InteractionConfirmation
	comments     map[endpoint.Endpoint][]models.Comment
	store        *dedup.Store

	queue *ingestQueue
}

// NewMonitor creates an unbound monitor.
func NewMonitor(opts Options, logger zerolog.Logger) *Monitor {
	componentLogger := logger.With().Str("component", "ResponseMonitor").Logger()
	opts = opts.withDefaults(componentLogger)

	m := &Monitor{
		opts:         opts,
		baseLogger:   componentLogger,
		logger:       componentLogger,
		active:       endpoint.NewSet(),
		responses:    make(map[endpoint.Endpoint][]models.CapturedResponse),
		interactions: make(map[endpoint.Endpoint][]models.InteractionConfirmation),
		comments:     make(map[endpoint.Endpoint][]models.Comment),
		store:        dedup.NewStore(componentLogger),
	}
	m.queue = newIngestQueue(m.ingest, componentLogger)
	return m
}

// SetupMonitor binds the monitor to src and makes endpoints the active set. An
// empty list falls back to the configured endpoints, then to every endpoint
// with a decoder. Calling it again with the same source only replaces the
// active set; a different source is unbound first. Sources are compared by
// identity. The monitor counts as bound from the moment Subscribe is called,
// so responses the source delivers before Subscribe returns are captured. It
// returns false, leaving the monitor unbound, when binding fails.
func (m *Monitor) SetupMonitor(src ResponseSource, endpoints []endpoint.Endpoint) bool {
	if src == nil {
		m.baseLogger.Error().Err(ErrNilSource).Msg("Cannot set up response monitoring")
		return false
	}

	active := m.resolveActive(endpoints)
	if len(active) == 0 {
		m.baseLogger.Error().Msg("No requested endpoint has a decoder, monitoring not set up")
		return false
	}

	m.bindMu.Lock()
	defer m.bindMu.Unlock()

	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		m.baseLogger.Warn().Msg("Monitor already disposed, ignoring setup")
		return false
	}
	if m.bound && m.source == src {
		m.active = active
		logger := m.logger
		m.mu.Unlock()
		logger.Info().Strs("endpoints", endpointNames(active)).Msg("Active endpoints replaced")
		return true
	}
	previous := m.detachLocked()
	generation := m.generation + 1
	m.mu.Unlock()

	if previous != nil {
		previous.Unsubscribe()
		m.baseLogger.Info().Msg("Previous response source unbound")
	}

	sessionID := uuid.NewString()
	sessionLogger := m.baseLogger.With().Str("session_id", sessionID).Logger()

	// bound before Subscribe so responses delivered while subscribing are kept
	m.mu.Lock()
	prevActive, prevSessionID, prevLogger := m.active, m.sessionID, m.logger
	m.generation = generation
	m.source = src
	m.bound = true
	m.active = active
	m.sessionID = sessionID
	m.logger = sessionLogger
	m.mu.Unlock()
	m.queue.start()

	sub, err := src.Subscribe(func(ev ResponseEvent) {
		m.onResponse(generation, sessionLogger, ev)
	})
	if err != nil {
		m.mu.Lock()
		m.detachLocked()
		m.active, m.sessionID, m.logger = prevActive, prevSessionID, prevLogger
		m.mu.Unlock()
		sessionLogger.Error().Err(err).Msg("Failed to subscribe to browser responses")
		return false
	}
	if sub == nil {
		sub = noopSubscription{}
	}

	m.mu.Lock()
	m.subscription = sub
	m.mu.Unlock()

	sessionLogger.Info().Strs("endpoints", endpointNames(active)).Msg("Response monitoring started")
	return true
}

// detachLocked marks the monitor unbound and returns the subscription the
// caller must revoke once mu is released.
func (m *Monitor) detachLocked() Subscription {
	if !m.bound {
		return nil
	}
	sub := m.subscription
	m.bound = false
	m.source = nil
	m.subscription = nil
	m.generation++
	return sub
}

func (m *Monitor) resolveActive(endpoints []endpoint.Endpoint) endpoint.Set {
	if len(endpoints) == 0 {
		endpoints = m.opts.Endpoints
	}
	if len(endpoints) == 0 {
		endpoints = m.opts.Registry.Endpoints()
	}

	active := endpoint.NewSet()
	for _, ep := range endpoints {
		if !m.opts.Registry.Has(ep) {
			m.baseLogger.Warn().Str("endpoint", ep.String()).Msg("Endpoint has no decoder, not monitored")
			continue
		}
		active[ep] = struct{}{}
	}
	return active
}

// onResponse runs on the driver's event goroutine. It only filters and hands
// the event to the ingest queue.
func (m *Monitor) onResponse(generation uint64, logger zerolog.Logger, ev ResponseEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("Recovered panic in response callback")
		}
	}()

	rawURL := ev.URL()
	ep := m.opts.Classifier.Classify(rawURL)
	if ep == endpoint.None {
		return
	}

	m.mu.Lock()
	accept := m.bound && m.generation == generation && m.active.Has(ep)
	m.mu.Unlock()
	if !accept {
		return
	}

	status := ev.Status()
	if status != 200 {
		logger.Debug().Str("endpoint", ep.String()).Int("status", status).Msg("Ignoring non-200 response")
		return
	}

	depth := m.queue.push(ingestJob{
		endpoint:   ep,
		event:      ev,
		logger:     logger,
		receivedAt: time.Now(),
	})
	if depth > m.opts.QueueWarnDepth {
		logger.Warn().Int("backlog", depth).Msg("Ingest backlog is growing")
	}
}

// IsMonitoring reports whether a source is bound.
func (m *Monitor) IsMonitoring() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bound
}

// SessionID identifies the latest monitoring session; empty before the first setup.
func (m *Monitor) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// ActiveEndpoints returns the current filter in declaration order.
func (m *Monitor) ActiveEndpoints() []endpoint.Endpoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active.Slice()
}

func endpointNames(set endpoint.Set) []string {
	eps := set.Slice()
	names := make([]string, len(eps))
	for i, ep := range eps {
		names[i] = ep.String()
	}
	return names
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}
