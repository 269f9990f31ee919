package redact

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Placeholder replaces every sensitive value.
const Placeholder = "[REDACTED]"

// DefaultKeys are the field names whose values never reach the logs.
var DefaultKeys = []string{
	"xsec_token",
	"a1",
	"web_session",
	"access_token",
	"token",
	"cookie",
	"x-s",
	"x-t",
	"authorization",
	"password",
	"secret",
}

// Redactor masks sensitive values in URLs and bodies before they are logged.
// It never modifies stored data: every method returns a new string.
type Redactor struct {
	keys    map[string]struct{}
	pattern *regexp.Regexp
}

// New creates a redactor for keys, or DefaultKeys when none are given. Keys
// match case-insensitively.
func New(keys ...string) *Redactor {
	if len(keys) == 0 {
		keys = DefaultKeys
	}

	r := &Redactor{keys: make(map[string]struct{}, len(keys))}
	alternatives := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := r.keys[k]; dup {
			continue
		}
		r.keys[k] = struct{}{}
		alternatives = append(alternatives, regexp.QuoteMeta(k))
	}
	// longest first so "token" never shadows "xsec_token"
	sort.Slice(alternatives, func(i, j int) bool { return len(alternatives[i]) > len(alternatives[j]) })

	if len(alternatives) > 0 {
		r.pattern = regexp.MustCompile(`(?i)((?:^|[^a-z0-9_\-])"?(?:` + strings.Join(alternatives, "|") + `)"?\s*[:=]\s*"?)([^"'&;,\s}]+)`)
	}
	return r
}

// IsSensitive reports whether key names a redacted field.
func (r *Redactor) IsSensitive(key string) bool {
	_, ok := r.keys[strings.ToLower(key)]
	return ok
}

// URL masks sensitive query parameter values, keeping parameter order.
func (r *Redactor) URL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return r.Text(rawURL)
	}
	if u.RawQuery == "" {
		return rawURL
	}

	parts := strings.Split(u.RawQuery, "&")
	changed := false
	for i, part := range parts {
		name, _, hasValue := strings.Cut(part, "=")
		decoded, err := url.QueryUnescape(name)
		if err != nil {
			decoded = name
		}
		if !hasValue || !r.IsSensitive(decoded) {
			continue
		}
		parts[i] = name + "=" + Placeholder
		changed = true
	}
	if !changed {
		return rawURL
	}
	u.RawQuery = strings.Join(parts, "&")
	return u.String()
}

// Body masks a response body: JSON is rewritten field by field at any depth,
// anything else goes through the text fallback.
func (r *Redactor) Body(body string) string {
	if body == "" {
		return body
	}
	if gjson.Valid(body) {
		return r.JSON(body)
	}
	return r.Text(body)
}

// span is a byte range of the original document and its masked JSON text.
type span struct {
	start, end int
	raw        string
}

// JSON masks the values of sensitive keys while keeping names and structure.
// Edits are spliced by byte offset, so repeated keys in one object are all
// masked. String values that embed key=value pairs are masked through Text.
func (r *Redactor) JSON(body string) string {
	if !gjson.Valid(body) {
		return r.Text(body)
	}

	root := gjson.Parse(body)
	root.Index = len(body) - len(strings.TrimLeft(body, " \t\r\n"))

	var edits []span
	r.collect(root, &edits)
	if len(edits) == 0 {
		return body
	}

	// collect walks in document order; splice from the end so earlier
	// offsets stay valid
	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	out := body
	for _, e := range edits {
		if e.start < 0 || e.end > len(out) || e.start > e.end {
			return r.Text(body)
		}
		out = out[:e.start] + e.raw + out[e.end:]
	}
	return out
}

func (r *Redactor) collect(res gjson.Result, edits *[]span) {
	switch {
	case res.IsObject():
		res.ForEach(func(key, value gjson.Result) bool {
			if r.IsSensitive(key.String()) {
				if value.Type != gjson.Null {
					*edits = append(*edits, spanOf(value, quotedPlaceholder))
				}
				return true
			}
			r.collect(value, edits)
			return true
		})
	case res.IsArray():
		res.ForEach(func(_, value gjson.Result) bool {
			r.collect(value, edits)
			return true
		})
	case res.Type == gjson.String:
		if masked := r.Text(res.Str); masked != res.Str {
			*edits = append(*edits, spanOf(res, string(gjson.AppendJSONString(nil, masked))))
		}
	}
}

func spanOf(res gjson.Result, raw string) span {
	return span{start: res.Index, end: res.Index + len(res.Raw), raw: raw}
}

var quotedPlaceholder = string(gjson.AppendJSONString(nil, Placeholder))

// Text masks key=value and "key":"value" pairs in free-form text such as
// cookie headers or truncated JSON.
func (r *Redactor) Text(s string) string {
	if r.pattern == nil || s == "" {
		return s
	}
	return r.pattern.ReplaceAllString(s, "${1}"+strings.ReplaceAll(Placeholder, "$", "$$"))
}

// Preview redacts body and cuts it to at most max bytes on a rune boundary.
// A non-positive max disables the cut.
func (r *Redactor) Preview(body string, max int) string {
	masked := r.Body(body)
	if max <= 0 || len(masked) <= max {
		return masked
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(masked[cut]) {
		cut--
	}
	return masked[:cut] + "...(truncated)"
}
