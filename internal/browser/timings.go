package browser

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/tidwall/gjson"
)

// ResourceTiming is one entry of the page's resource timing buffer.
type ResourceTiming struct {
	Name          string  `json:"name"`
	InitiatorType string  `json:"initiator_type"`
	DurationMs    float64 `json:"duration_ms"`
	TransferSize  int64   `json:"transfer_size"`
}

const resourceTimingsJS = `() => JSON.stringify(performance.getEntriesByType("resource").map(e => ({
	name: e.name,
	initiatorType: e.initiatorType,
	duration: e.duration,
	transferSize: e.transferSize || 0
})))`

// ResourceTimings lists the resources the page has fetched so far. It is a
// diagnostic for runs where an expected endpoint never shows up.
func ResourceTimings(page *rod.Page) ([]ResourceTiming, error) {
	obj, err := page.Eval(resourceTimingsJS)
	if err != nil {
		return nil, fmt.Errorf("failed to read resource timings: %w", err)
	}
	return parseResourceTimings(obj.Value.Str()), nil
}

func parseResourceTimings(raw string) []ResourceTiming {
	entries := gjson.Parse(raw).Array()
	out := make([]ResourceTiming, 0, len(entries))
	for _, e := range entries {
		name := e.Get("name").String()
		if name == "" {
			continue
		}
		out = append(out, ResourceTiming{
			Name:          name,
			InitiatorType: e.Get("initiatorType").String(),
			DurationMs:    e.Get("duration").Float(),
			TransferSize:  e.Get("transferSize").Int(),
		})
	}
	return out
}

// FilterTimings keeps entries accepted by keep, preserving order.
func FilterTimings(timings []ResourceTiming, keep func(ResourceTiming) bool) []ResourceTiming {
	out := make([]ResourceTiming, 0, len(timings))
	for _, t := range timings {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
