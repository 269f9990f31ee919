package monitor

import (
	"github.com/aleister1102/feedtap/internal/endpoint"
	"github.com/aleister1102/feedtap/internal/models"

	"github.com/rs/zerolog"
)

// StopMonitoring unbinds the event callback. It is safe to call when never
// bound or already stopped. Responses already queued are still ingested.
func (m *Monitor) StopMonitoring() {
	m.bindMu.Lock()
	defer m.bindMu.Unlock()
	m.stopLocked()
}

func (m *Monitor) stopLocked() {
	m.mu.Lock()
	sub := m.detachLocked()
	logger := m.logger
	m.mu.Unlock()

	if sub == nil {
		logger.Debug().Msg("Response monitoring not active, nothing to stop")
		return
	}
	sub.Unsubscribe()
	logger.Info().Msg("Response monitoring stopped")
}

// ClearData drops everything captured for ep: its responses, the notes it
// first produced, its interactions and comments.
func (m *Monitor) ClearData(ep endpoint.Endpoint) {
	m.mu.Lock()
	delete(m.responses, ep)
	delete(m.interactions, ep)
	delete(m.comments, ep)
	m.store.Clear(ep)
	logger := m.logger
	m.mu.Unlock()

	logger.Info().Str("endpoint", ep.String()).Msg("Captured data cleared")
}

// ClearAllData drops all captured data and resets the statistics.
func (m *Monitor) ClearAllData() {
	m.mu.Lock()
	m.clearAllLocked()
	logger := m.logger
	m.mu.Unlock()

	logger.Info().Msg("All captured data cleared")
}

func (m *Monitor) clearAllLocked() {
	m.responses = make(map[endpoint.Endpoint][]models.CapturedResponse)
	m.interactions = make(map[endpoint.Endpoint][]models.InteractionConfirmation)
	m.comments = make(map[endpoint.Endpoint][]models.Comment)
	m.store.ClearAll()
}

// Dispose stops monitoring, halts the ingest worker and clears all data. It
// never panics and may be called repeatedly.
func (m *Monitor) Dispose() {
	defer func() {
		if rec := recover(); rec != nil {
			m.baseLogger.Error().Interface("panic", rec).Msg("Recovered panic while disposing monitor")
		}
	}()

	m.bindMu.Lock()
	defer m.bindMu.Unlock()

	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true
	m.mu.Unlock()

	m.stopLocked()
	m.queue.close()

	m.mu.Lock()
	m.clearAllLocked()
	logger := m.logger
	m.mu.Unlock()

	logger.Info().Msg("Response monitor disposed")
}

func (m *Monitor) currentLogger() zerolog.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logger
}
