package monitor

import (
	"github.com/aleister1102/feedtap/internal/endpoint"
	"github.com/aleister1102/feedtap/internal/models"
)

// ResponseCount is the number of responses captured for ep.
func (m *Monitor) ResponseCount(ep endpoint.Endpoint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.responses[ep])
}

// GetRawResponses returns the responses captured for ep in arrival order.
// Bodies are the original, unredacted text.
func (m *Monitor) GetRawResponses(ep endpoint.Endpoint) []models.CapturedResponse {
	m.mu.Lock()
	defer m.mu.Unlock()

	src := m.responses[ep]
	out := make([]models.CapturedResponse, len(src))
	for i := range src {
		out[i] = src[i].Clone()
	}
	return out
}

// GetDecodedEntities returns the unique notes first produced by ep.
func (m *Monitor) GetDecodedEntities(ep endpoint.Endpoint) []models.Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.ByEndpoint(ep)
}

// GetAllEntities returns every unique note in insertion order.
func (m *Monitor) GetAllEntities() []models.Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.All()
}

// GetEntity looks a note up by identity.
func (m *Monitor) GetEntity(id string) (models.Note, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Get(id)
}

// GetInteractions returns the confirmations produced by an action endpoint.
func (m *Monitor) GetInteractions(ep endpoint.Endpoint) []models.InteractionConfirmation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.InteractionConfirmation{}, m.interactions[ep]...)
}

// GetComments returns the comments decoded from ep.
func (m *Monitor) GetComments(ep endpoint.Endpoint) []models.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Comment{}, m.comments[ep]...)
}

// Stats returns the deduplication counters.
func (m *Monitor) Stats() models.DedupStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Stats()
}

// Summary is a snapshot of what one session captured.
type Summary struct {
	SessionID    string                    `json:"session_id"`
	Monitoring   bool                      `json:"monitoring"`
	Responses    map[endpoint.Endpoint]int `json:"responses"`
	Interactions int                       `json:"interactions"`
	Comments     int                       `json:"comments"`
	Dedup        models.DedupStats         `json:"dedup"`
}

// Summary returns counts per endpoint and the deduplication counters.
func (m *Monitor) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Summary{
		SessionID:  m.sessionID,
		Monitoring: m.bound,
		Responses:  make(map[endpoint.Endpoint]int, len(m.responses)),
		Dedup:      m.store.Stats(),
	}
	for ep, list := range m.responses {
		s.Responses[ep] = len(list)
	}
	for _, list := range m.interactions {
		s.Interactions += len(list)
	}
	for _, list := range m.comments {
		s.Comments += len(list)
	}
	return s
}
