package endpoint

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// VersionPlaceholder marks the API version segment inside a rule pattern.
// It matches segments such as "v1", "v2" or "3".
const VersionPlaceholder = "{version}"

const versionExpr = `v?\d+`

// Rule maps a URL path shape to an endpoint.
type Rule struct {
	Endpoint Endpoint
	Pattern  string
}

// DefaultRules are the path shapes of the content-feed web API.
var DefaultRules = []Rule{
	{Endpoint: FeedList, Pattern: "/api/sns/web/{version}/homefeed"},
	{Endpoint: ItemDetail, Pattern: "/api/sns/web/{version}/feed"},
	{Endpoint: SearchResults, Pattern: "/api/sns/web/{version}/search/notes"},
	{Endpoint: CommentPage, Pattern: "/api/sns/web/{version}/comment/page"},
	{Endpoint: LikeAction, Pattern: "/api/sns/web/{version}/note/like"},
	{Endpoint: UnlikeAction, Pattern: "/api/sns/web/{version}/note/dislike"},
	{Endpoint: CollectAction, Pattern: "/api/sns/web/{version}/note/collect"},
	{Endpoint: UncollectAction, Pattern: "/api/sns/web/{version}/note/uncollect"},
	{Endpoint: CommentPost, Pattern: "/api/sns/web/{version}/comment/post"},
	{Endpoint: CommentDelete, Pattern: "/api/sns/web/{version}/comment/delete"},
}

type compiledRule struct {
	endpoint Endpoint
	regex    *regexp.Regexp
}

// Classifier maps response URLs to endpoints. It holds no mutable state and is
// safe for concurrent use.
type Classifier struct {
	rules      []compiledRule
	siteDomain string
}

// ClassifierOption customises a Classifier at construction.
type ClassifierOption func(*classifierSettings)

type classifierSettings struct {
	rules      []Rule
	siteDomain string
}

// WithRules replaces the default rule set.
func WithRules(rules []Rule) ClassifierOption {
	return func(s *classifierSettings) {
		s.rules = rules
	}
}

// WithSiteDomain restricts classification to hosts whose registrable domain
// equals domain. An empty domain disables the restriction.
func WithSiteDomain(domain string) ClassifierOption {
	return func(s *classifierSettings) {
		s.siteDomain = strings.ToLower(strings.TrimSpace(domain))
	}
}

// NewClassifier compiles the rule set. Two rules with the same shape or the
// same endpoint are rejected because they could not be told apart at runtime.
func NewClassifier(opts ...ClassifierOption) (*Classifier, error) {
	settings := classifierSettings{rules: DefaultRules}
	for _, opt := range opts {
		opt(&settings)
	}

	c := &Classifier{}
	if settings.siteDomain != "" {
		site, err := registrableDomain(settings.siteDomain)
		if err != nil {
			return nil, fmt.Errorf("invalid site domain %q: %w", settings.siteDomain, err)
		}
		c.siteDomain = site
	}

	seenPatterns := make(map[string]Endpoint, len(settings.rules))
	seenEndpoints := make(map[Endpoint]struct{}, len(settings.rules))
	for _, r := range settings.rules {
		if !r.Endpoint.Valid() {
			return nil, fmt.Errorf("rule %q has unknown endpoint %q", r.Pattern, r.Endpoint)
		}
		shape := normalizeShape(r.Pattern)
		if prev, dup := seenPatterns[shape]; dup {
			return nil, fmt.Errorf("rules for %s and %s share the shape %q", prev, r.Endpoint, r.Pattern)
		}
		if _, dup := seenEndpoints[r.Endpoint]; dup {
			return nil, fmt.Errorf("endpoint %s has more than one rule", r.Endpoint)
		}
		seenPatterns[shape] = r.Endpoint
		seenEndpoints[r.Endpoint] = struct{}{}

		re, err := compilePattern(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile rule for %s: %w", r.Endpoint, err)
		}
		c.rules = append(c.rules, compiledRule{endpoint: r.Endpoint, regex: re})
	}
	return c, nil
}

// MustNewClassifier is NewClassifier for static rule sets.
func MustNewClassifier(opts ...ClassifierOption) *Classifier {
	c, err := NewClassifier(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns the endpoint a URL belongs to, or None. Only the path takes
// part in matching; query strings and fragments are ignored.
func (c *Classifier) Classify(rawURL string) Endpoint {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return None
	}
	if c.siteDomain != "" && !c.inScope(u.Hostname()) {
		return None
	}

	path := u.EscapedPath()
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	for _, r := range c.rules {
		if r.regex.MatchString(path) {
			return r.endpoint
		}
	}
	return None
}

// Endpoints lists the endpoints this classifier can produce.
func (c *Classifier) Endpoints() []Endpoint {
	out := make([]Endpoint, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, r.endpoint)
	}
	return out
}

func (c *Classifier) inScope(host string) bool {
	if host == "" {
		return false
	}
	domain, err := registrableDomain(host)
	if err != nil {
		return false
	}
	return domain == c.siteDomain
}

func registrableDomain(host string) (string, error) {
	return publicsuffix.EffectiveTLDPlusOne(strings.ToLower(strings.TrimSuffix(host, ".")))
}

func normalizeShape(pattern string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(pattern)), "/")
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	shape := normalizeShape(pattern)
	if !strings.HasPrefix(shape, "/") {
		return nil, fmt.Errorf("pattern %q must start with '/'", pattern)
	}
	parts := strings.Split(shape, VersionPlaceholder)
	for i := range parts {
		parts[i] = regexp.QuoteMeta(parts[i])
	}
	return regexp.Compile("^" + strings.Join(parts, versionExpr) + "$")
}
