package browser

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/aleister1102/feedtap/internal/monitor"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/rs/zerolog"
)

// maxPendingRequests bounds the requests tracked between response headers
// and the end of loading. Streams and long polls never finish, so the oldest
// entry is evicted to make room.
const maxPendingRequests = 4096

// PageSource publishes the completed responses of one page. Each subscription
// listens on its own event stream, so several consumers can share a page.
type PageSource struct {
	page   *rod.Page
	logger zerolog.Logger
}

// NewPageSource wraps page as a monitor.ResponseSource
func NewPageSource(page *rod.Page, logger zerolog.Logger) *PageSource {
	return &PageSource{
		page:   page,
		logger: logger.With().Str("component", "PageSource").Logger(),
	}
}

// Subscribe enables the Network domain and starts delivering one event per
// finished response. Bodies are fetched only when the event's Body is called.
func (s *PageSource) Subscribe(handler func(monitor.ResponseEvent)) (monitor.Subscription, error) {
	if s.page == nil {
		return nil, monitor.ErrNilSource
	}
	if err := (proto.NetworkEnable{}).Call(s.page); err != nil {
		return nil, fmt.Errorf("failed to enable network events: %w", err)
	}

	ctx, cancel := context.WithCancel(s.page.GetContext())
	tracker := newRequestTracker(maxPendingRequests)

	// EachEvent calls the handlers from a single goroutine
	evictions := 0
	evicted := func(id string) {
		if id == "" {
			return
		}
		evictions++
		ev := s.logger.Debug()
		if evictions == 1 {
			ev = s.logger.Warn()
		}
		ev.Str("request_id", id).
			Int("evictions", evictions).
			Int("limit", maxPendingRequests).
			Msg("Pending request table full, oldest request evicted")
	}

	wait := s.page.Context(ctx).EachEvent(
		func(e *proto.NetworkRequestWillBeSent) {
			if e.Request != nil {
				evicted(tracker.request(string(e.RequestID), e.Request.Method))
			}
		},
		func(e *proto.NetworkResponseReceived) {
			if e.Response == nil {
				return
			}
			evicted(tracker.response(string(e.RequestID), e.Response.URL, e.Response.Status))
		},
		func(e *proto.NetworkLoadingFinished) {
			pending, ok := tracker.finish(string(e.RequestID))
			if !ok {
				return
			}
			handler(&pageEvent{
				pendingResponse: pending,
				fetch:           s.bodyFetcher(e.RequestID),
			})
		},
		func(e *proto.NetworkLoadingFailed) {
			tracker.forget(string(e.RequestID))
		},
	)

	go wait()

	return &pageSubscription{cancel: cancel}, nil
}

// bodyFetcher reads a response body through the page, outside any
// subscription context, so a queued event stays readable after unsubscribe.
func (s *PageSource) bodyFetcher(id proto.NetworkRequestID) func() (string, error) {
	return func() (string, error) {
		res, err := proto.NetworkGetResponseBody{RequestID: id}.Call(s.page)
		if err != nil {
			return "", fmt.Errorf("failed to read response body: %w", err)
		}
		return decodeBody(res.Body, res.Base64Encoded)
	}
}

func decodeBody(body string, base64Encoded bool) (string, error) {
	if !base64Encoded {
		return body, nil
	}
	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 body: %w", err)
	}
	return string(raw), nil
}

type pageSubscription struct {
	once   sync.Once
	cancel context.CancelFunc
}

// Unsubscribe stops the event stream. It does not wait for the listener
// goroutine, which may be delivering the last event.
func (s *pageSubscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// pageEvent implements monitor.ResponseEvent
type pageEvent struct {
	pendingResponse
	fetch func() (string, error)
}

func (e *pageEvent) URL() string    { return e.url }
func (e *pageEvent) Method() string { return e.method }
func (e *pageEvent) Status() int    { return e.status }

func (e *pageEvent) Body() (string, error) {
	return e.fetch()
}

type pendingResponse struct {
	url      string
	method   string
	status   int
	received bool
}

// requestTracker joins request, response and loading events by request id.
// Entries are kept in arrival order; peeks never refresh an entry.
type requestTracker struct {
	mu      sync.Mutex
	pending *simplelru.LRU[string, *pendingResponse]
	limit   int
}

func newRequestTracker(limit int) *requestTracker {
	if limit < 1 {
		limit = 1
	}
	pending, _ := simplelru.NewLRU[string, *pendingResponse](limit, nil)
	return &requestTracker{pending: pending, limit: limit}
}

// insert adds a new entry, evicting the oldest one when the table is full.
// It returns the evicted id or "".
func (t *requestTracker) insert(id string, p *pendingResponse) string {
	var evicted string
	if t.pending.Len() >= t.limit {
		evicted, _, _ = t.pending.RemoveOldest()
	}
	t.pending.Add(id, p)
	return evicted
}

// request records the request method and returns the id it evicted, if any.
func (t *requestTracker) request(id, method string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.pending.Peek(id); ok {
		p.method = method
		return ""
	}
	return t.insert(id, &pendingResponse{method: method})
}

// response records the response headers and returns the id it evicted, if any.
func (t *requestTracker) response(id, url string, status int) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var evicted string
	p, ok := t.pending.Peek(id)
	if !ok {
		p = &pendingResponse{method: "GET"}
		evicted = t.insert(id, p)
	}
	p.url = url
	p.status = status
	p.received = true
	return evicted
}

// finish returns the completed response and forgets it. Requests that never
// received headers are dropped.
func (t *requestTracker) finish(id string) (pendingResponse, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.pending.Peek(id)
	if !ok {
		return pendingResponse{}, false
	}
	t.pending.Remove(id)
	if !p.received {
		return pendingResponse{}, false
	}
	return *p, true
}

func (t *requestTracker) forget(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending.Remove(id)
}

func (t *requestTracker) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending.Len()
}
