package monitor

import "errors"

// ErrNilSource is returned when monitoring is requested without an event source.
var ErrNilSource = errors.New("response source is nil")

// ResponseEvent is one completed network response observed by the browser.
type ResponseEvent interface {
	URL() string
	Method() string
	Status() int
	// Body reads the response body as text. It may block on the driver and is
	// only called from the ingest worker, never from the event callback.
	Body() (string, error)
}

// Subscription revokes a handler registered with a ResponseSource.
type Subscription interface {
	Unsubscribe()
}

// ResponseSource fires a handler once per completed response. Sources are
// shared with other consumers, so unsubscribing must only remove this handler.
type ResponseSource interface {
	Subscribe(handler func(ResponseEvent)) (Subscription, error)
}

// StaticEvent is a ResponseEvent whose body is already known.
type StaticEvent struct {
	RequestURL    string
	RequestMethod string
	StatusCode    int
	Content       string
	Err           error
}

func (e StaticEvent) URL() string    { return e.RequestURL }
func (e StaticEvent) Method() string { return e.RequestMethod }
func (e StaticEvent) Status() int    { return e.StatusCode }

// Body returns Content, or Err when set.
func (e StaticEvent) Body() (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	return e.Content, nil
}
