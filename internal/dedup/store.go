package dedup

import (
	"github.com/aleister1102/feedtap/internal/endpoint"
	"github.com/aleister1102/feedtap/internal/models"
	"github.com/rs/zerolog"
)

// Store is a first-writer-wins map from note identity to the canonical note.
// It is not safe for concurrent use; the owner serialises access.
type Store struct {
	notes map[string]models.Note
	order []string
	stats map[endpoint.Endpoint]*models.DedupStats

	logger zerolog.Logger
}

// NewStore creates an empty store.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		notes:  make(map[string]models.Note),
		stats:  make(map[endpoint.Endpoint]*models.DedupStats),
		logger: logger.With().Str("component", "DedupStore").Logger(),
	}
}

// Apply inserts every note whose identity is unknown, tagging it with ep, and
// returns the accepted notes. Known identities are counted as duplicates and
// discarded without merging.
func (s *Store) Apply(notes []models.Note, ep endpoint.Endpoint) []models.Note {
	if len(notes) == 0 {
		return nil
	}

	st := s.statsFor(ep)
	accepted := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if n.ID == "" {
			s.logger.Warn().
				Str("endpoint", ep.String()).
				Str("title", n.Title).
				Msg("Note without identity skipped")
			continue
		}

		st.TotalSeen++
		if _, known := s.notes[n.ID]; known {
			st.Duplicates++
			continue
		}

		n = n.Clone()
		n.SourceEndpoint = ep
		s.notes[n.ID] = n
		s.order = append(s.order, n.ID)
		st.Unique++
		accepted = append(accepted, n.Clone())
	}

	if len(accepted) < len(notes) {
		s.logger.Debug().
			Str("endpoint", ep.String()).
			Int("received", len(notes)).
			Int("accepted", len(accepted)).
			Msg("Deduplicated notes")
	}
	return accepted
}

func (s *Store) statsFor(ep endpoint.Endpoint) *models.DedupStats {
	st, ok := s.stats[ep]
	if !ok {
		st = &models.DedupStats{}
		s.stats[ep] = st
	}
	return st
}

// Get returns the canonical note for id.
func (s *Store) Get(id string) (models.Note, bool) {
	n, ok := s.notes[id]
	if !ok {
		return models.Note{}, false
	}
	return n.Clone(), true
}

// Len is the number of unique notes.
func (s *Store) Len() int {
	return len(s.notes)
}

// All returns every unique note in insertion order.
func (s *Store) All() []models.Note {
	out := make([]models.Note, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.notes[id].Clone())
	}
	return out
}

// ByEndpoint returns the unique notes first produced by ep, in insertion order.
func (s *Store) ByEndpoint(ep endpoint.Endpoint) []models.Note {
	out := make([]models.Note, 0)
	for _, id := range s.order {
		if n := s.notes[id]; n.SourceEndpoint == ep {
			out = append(out, n.Clone())
		}
	}
	return out
}

// Stats returns the counters summed over all endpoints.
func (s *Store) Stats() models.DedupStats {
	var total models.DedupStats
	for _, st := range s.stats {
		total.TotalSeen += st.TotalSeen
		total.Duplicates += st.Duplicates
		total.Unique += st.Unique
	}
	return total
}

// EndpointStats returns the counters attributed to ep.
func (s *Store) EndpointStats(ep endpoint.Endpoint) models.DedupStats {
	if st, ok := s.stats[ep]; ok {
		return *st
	}
	return models.DedupStats{}
}

// Clear removes the identities sourced from ep together with the counters
// attributed to it. An identity removed here may be accepted again later.
func (s *Store) Clear(ep endpoint.Endpoint) {
	kept := s.order[:0]
	for _, id := range s.order {
		if s.notes[id].SourceEndpoint == ep {
			delete(s.notes, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	delete(s.stats, ep)
}

// ClearAll resets the store.
func (s *Store) ClearAll() {
	s.notes = make(map[string]models.Note)
	s.order = nil
	s.stats = make(map[endpoint.Endpoint]*models.DedupStats)
}
