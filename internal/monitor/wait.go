package monitor

import (
	"context"
	"time"

	"github.com/aleister1102/feedtap/internal/endpoint"
)

// WaitForResponses blocks until ep has captured at least expected responses or
// the default timeout elapses.
func (m *Monitor) WaitForResponses(ep endpoint.Endpoint, expected int) bool {
	return m.WaitForResponsesTimeout(ep, expected, m.opts.DefaultWaitTimeout)
}

// WaitForResponsesTimeout is WaitForResponses with an explicit timeout.
func (m *Monitor) WaitForResponsesTimeout(ep endpoint.Endpoint, expected int, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return m.WaitForResponsesContext(ctx, ep, expected)
}

// WaitForResponsesContext polls the capture count of ep until it reaches
// expected or ctx is done. Timing out only ends the wait: captured data and
// the ingestion stream are left untouched.
func (m *Monitor) WaitForResponsesContext(ctx context.Context, ep endpoint.Endpoint, expected int) bool {
	if expected < 1 {
		expected = 1
	}
	if m.ResponseCount(ep) >= expected {
		return true
	}

	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			got := m.ResponseCount(ep)
			if got >= expected {
				return true
			}
			logger := m.currentLogger()
			logger.Debug().
				Str("endpoint", ep.String()).
				Int("expected", expected).
				Int("captured", got).
				Msg("Wait for responses timed out")
			return false
		case <-ticker.C:
			if m.ResponseCount(ep) >= expected {
				return true
			}
		}
	}
}
