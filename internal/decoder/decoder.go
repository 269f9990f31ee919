package decoder

import (
	"fmt"
	"sort"

	"github.com/aleister1102/feedtap/internal/common"
	"github.com/aleister1102/feedtap/internal/endpoint"
	"github.com/aleister1102/feedtap/internal/models"
	"github.com/rs/zerolog"
)

// Decoder turns one endpoint's raw JSON body into typed entities. A nil result
// with a nil error means the body was well-formed but carried nothing.
type Decoder interface {
	Decode(rawURL, body string) (*models.DecodedResult, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(rawURL, body string) (*models.DecodedResult, error)

// Decode calls f.
func (f DecoderFunc) Decode(rawURL, body string) (*models.DecodedResult, error) {
	return f(rawURL, body)
}

// Registry holds one decoder per endpoint. It is populated during construction
// and only read afterwards, so lookups need no locking.
type Registry struct {
	decoders map[endpoint.Endpoint]Decoder
	logger   zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		decoders: make(map[endpoint.Endpoint]Decoder),
		logger:   logger.With().Str("component", "DecoderRegistry").Logger(),
	}
}

// NewDefaultRegistry creates a registry with a decoder for every known endpoint.
func NewDefaultRegistry(logger zerolog.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register(endpoint.FeedList, DecoderFunc(decodeFeedList))
	r.Register(endpoint.ItemDetail, DecoderFunc(decodeItemDetail))
	r.Register(endpoint.SearchResults, DecoderFunc(decodeSearchResults))
	r.Register(endpoint.CommentPage, DecoderFunc(decodeCommentPage))
	for _, ep := range endpoint.All() {
		if ep.IsAction() {
			r.Register(ep, NewActionDecoder(ep))
		}
	}
	return r
}

// Register binds a decoder to an endpoint, replacing any previous one. It must
// only be called while the registry is being built.
func (r *Registry) Register(ep endpoint.Endpoint, d Decoder) {
	if d == nil {
		return
	}
	r.decoders[ep] = d
	r.logger.Debug().Str("endpoint", ep.String()).Msg("Decoder registered")
}

// Has reports whether ep has a decoder.
func (r *Registry) Has(ep endpoint.Endpoint) bool {
	_, ok := r.decoders[ep]
	return ok
}

// Endpoints returns the endpoints with a registered decoder, sorted.
func (r *Registry) Endpoints() []endpoint.Endpoint {
	out := make([]endpoint.Endpoint, 0, len(r.decoders))
	for ep := range r.decoders {
		out = append(out, ep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Decode runs the endpoint's decoder. A panicking decoder is contained and
// reported as an error so one bad payload cannot break the ingestion stream.
func (r *Registry) Decode(ep endpoint.Endpoint, rawURL, body string) (result *models.DecodedResult, err error) {
	d, ok := r.decoders[ep]
	if !ok {
		return nil, common.NewDecodeError(ep.String(), rawURL, "no decoder registered", common.ErrNotFound)
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = common.NewDecodeError(ep.String(), rawURL, "decoder panicked", fmt.Errorf("%v", rec))
		}
	}()

	result, err = d.Decode(rawURL, body)
	if err != nil {
		return nil, err
	}
	if result != nil {
		result.URL = rawURL
		result.Endpoint = ep
	}
	return result, nil
}
