package endpoint

import (
	"slices"
	"strings"
)

// Endpoint is a logical category of API traffic, stable across API versions.
type Endpoint string

const (
	None Endpoint = ""

	FeedList      Endpoint = "feed-list"
	ItemDetail    Endpoint = "item-detail"
	SearchResults Endpoint = "search-results"
	CommentPage   Endpoint = "comment-page"

	LikeAction      Endpoint = "like-action"
	UnlikeAction    Endpoint = "unlike-action"
	CollectAction   Endpoint = "collect-action"
	UncollectAction Endpoint = "uncollect-action"
	CommentPost     Endpoint = "comment-post"
	CommentDelete   Endpoint = "comment-delete"
)

var all = []Endpoint{
	FeedList,
	ItemDetail,
	SearchResults,
	CommentPage,
	LikeAction,
	UnlikeAction,
	CollectAction,
	UncollectAction,
	CommentPost,
	CommentDelete,
}

// All returns every known endpoint in declaration order.
func All() []Endpoint {
	out := make([]Endpoint, len(all))
	copy(out, all)
	return out
}

// Parse maps a configuration string to an Endpoint. Matching is case-insensitive
// and accepts underscores in place of dashes.
func Parse(s string) (Endpoint, bool) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for _, ep := range all {
		if string(ep) == norm {
			return ep, true
		}
	}
	return None, false
}

// IsAction reports whether the endpoint confirms a user action rather than
// delivering content.
func (e Endpoint) IsAction() bool {
	switch e {
	case LikeAction, UnlikeAction, CollectAction, UncollectAction, CommentPost, CommentDelete:
		return true
	}
	return false
}

// Valid reports whether e is exactly one of the known endpoints. Unlike Parse
// it does not normalise, so "FEED_LIST" is not valid.
func (e Endpoint) Valid() bool {
	return e != None && slices.Contains(all, e)
}

func (e Endpoint) String() string {
	if e == None {
		return "unclassified"
	}
	return string(e)
}

// Set is a read-only membership filter over endpoints.
type Set map[Endpoint]struct{}

// NewSet builds a Set from the given endpoints, ignoring None.
func NewSet(eps ...Endpoint) Set {
	s := make(Set, len(eps))
	for _, ep := range eps {
		if ep == None {
			continue
		}
		s[ep] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(ep Endpoint) bool {
	_, ok := s[ep]
	return ok
}

// Slice returns the members in declaration order.
func (s Set) Slice() []Endpoint {
	out := make([]Endpoint, 0, len(s))
	for _, ep := range all {
		if s.Has(ep) {
			out = append(out, ep)
		}
	}
	return out
}
