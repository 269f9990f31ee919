package monitor

import (
	"sync"
	"time"

	"github.com/aleister1102/feedtap/internal/endpoint"
	"github.com/aleister1102/feedtap/internal/models"

	"github.com/rs/zerolog"
)

type ingestJob struct {
	endpoint   endpoint.Endpoint
	event      ResponseEvent
	logger     zerolog.Logger
	receivedAt time.Time
}

// ingestQueue is an unbounded FIFO drained by a single worker goroutine, so
// the event callback never waits and arrival order is kept.
type ingestQueue struct {
	handle func(ingestJob)
	logger zerolog.Logger

	mu      sync.Mutex
	jobs    []ingestJob
	wake    chan struct{}
	done    chan struct{}
	exited  chan struct{}
	running bool
	closed  bool
}

func newIngestQueue(handle func(ingestJob), logger zerolog.Logger) *ingestQueue {
	return &ingestQueue{
		handle: handle,
		logger: logger,
		wake:   make(chan struct{}, 1),
	}
}

// start launches the worker unless it is already running or the queue was closed.
func (q *ingestQueue) start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running || q.closed {
		return
	}
	q.running = true
	q.done = make(chan struct{})
	q.exited = make(chan struct{})
	go q.loop(q.done, q.exited)
	q.logger.Debug().Msg("Ingest worker started")
}

// push appends a job and returns the backlog length. Jobs pushed after close
// are dropped.
func (q *ingestQueue) push(job ingestJob) int {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0
	}
	q.jobs = append(q.jobs, job)
	depth := len(q.jobs)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return depth
}

func (q *ingestQueue) next() (ingestJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return ingestJob{}, false
	}
	job := q.jobs[0]
	q.jobs[0] = ingestJob{}
	q.jobs = q.jobs[1:]
	return job, true
}

func (q *ingestQueue) loop(done <-chan struct{}, exited chan<- struct{}) {
	defer close(exited)
	for {
		select {
		case <-done:
			return
		case <-q.wake:
		}
		for {
			select {
			case <-done:
				return
			default:
			}
			job, ok := q.next()
			if !ok {
				break
			}
			q.handle(job)
		}
	}
}

// close stops the worker, discards the backlog and waits for the worker to
// finish its current job. It must not be called from the worker itself.
func (q *ingestQueue) close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	dropped := len(q.jobs)
	q.jobs = nil
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.done)
	exited := q.exited
	q.mu.Unlock()

	<-exited
	q.logger.Debug().Int("dropped", dropped).Msg("Ingest worker stopped")
}

// ingest reads, decodes and stores one accepted response.
func (m *Monitor) ingest(job ingestJob) {
	logger := job.logger
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Str("endpoint", job.endpoint.String()).Msg("Recovered panic while ingesting response")
		}
	}()

	rawURL := job.event.URL()
	safeURL := m.opts.Redactor.URL(rawURL)

	body, err := job.event.Body()
	if err != nil {
		logger.Warn().Str("error", m.opts.Redactor.Text(err.Error())).Str("endpoint", job.endpoint.String()).Str("url", safeURL).Msg("Failed to read response body")
		return
	}

	logger.Debug().
		Str("endpoint", job.endpoint.String()).
		Str("url", safeURL).
		Int("body_bytes", len(body)).
		Str("body_preview", m.opts.Redactor.Preview(body, m.opts.BodyPreviewBytes)).
		Msg("Captured API response")

	result, err := m.opts.Registry.Decode(job.endpoint, rawURL, body)
	if err != nil {
		logger.Warn().
			Str("error", m.opts.Redactor.Text(err.Error())).
			Str("endpoint", job.endpoint.String()).
			Str("url", safeURL).
			Msg("Failed to decode response")
		result = nil
	}

	captured := models.CapturedResponse{
		CapturedAt:  job.receivedAt,
		URL:         rawURL,
		Method:      job.event.Method(),
		StatusCode:  job.event.Status(),
		Body:        body,
		Endpoint:    job.endpoint,
		EntityCount: result.EntityCount(),
	}
	if result != nil {
		for i := range result.Notes {
			result.Notes[i].CapturedAt = job.receivedAt
			result.Notes[i].SourceEndpoint = job.endpoint
		}
		for i := range result.Interactions {
			result.Interactions[i].ConfirmedAt = job.receivedAt
		}
		captured.Notes = result.Notes
		captured.Comments = result.Comments
		captured.Interactions = result.Interactions
	}

	m.mu.Lock()
	m.responses[job.endpoint] = append(m.responses[job.endpoint], captured)
	accepted := m.store.Apply(captured.Notes, job.endpoint)
	if len(captured.Interactions) > 0 {
		m.interactions[job.endpoint] = append(m.interactions[job.endpoint], captured.Interactions...)
	}
	if len(captured.Comments) > 0 {
		m.comments[job.endpoint] = append(m.comments[job.endpoint], captured.Comments...)
	}
	count := len(m.responses[job.endpoint])
	m.mu.Unlock()

	logger.Debug().
		Str("endpoint", job.endpoint.String()).
		Int("entities", captured.EntityCount).
		Int("new_notes", len(accepted)).
		Int("responses", count).
		Msg("Response stored")

	if hook := m.opts.OnInteraction; hook != nil {
		for _, conf := range captured.Interactions {
			m.notifyInteraction(hook, conf, logger)
		}
	}
}

func (m *Monitor) notifyInteraction(hook InteractionHook, conf models.InteractionConfirmation, logger zerolog.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Str("note_id", conf.NoteID).Msg("Recovered panic in interaction hook")
		}
	}()
	hook(conf)
}
