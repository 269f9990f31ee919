package decoder

import (
	"errors"
	"testing"

	"github.com/aleister1102/feedtap/internal/common"
	"github.com/aleister1102/feedtap/internal/endpoint"
	"github.com/aleister1102/feedtap/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultRegistry_CoversEveryEndpoint(t *testing.T) {
	r := NewDefaultRegistry(zerolog.Nop())

	for _, ep := range endpoint.All() {
		assert.True(t, r.Has(ep), "missing decoder for %s", ep)
	}
	assert.False(t, r.Has(endpoint.None))
	assert.Len(t, r.Endpoints(), len(endpoint.All()))
}

func TestRegistry_DecodeStampsMetadata(t *testing.T) {
	r := NewDefaultRegistry(zerolog.Nop())

	result, err := r.Decode(endpoint.FeedList, feedURL, feedBody)
	require.NoError(t, err)
	assert.Equal(t, feedURL, result.URL)
	assert.Equal(t, endpoint.FeedList, result.Endpoint)
	assert.Equal(t, 2, result.EntityCount())
}

func TestRegistry_MissingDecoder(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	result, err := r.Decode(endpoint.FeedList, feedURL, feedBody)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRegistry_RecoversPanics(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Register(endpoint.FeedList, DecoderFunc(func(rawURL, body string) (*models.DecodedResult, error) {
		panic("boom")
	}))
	r.Register(endpoint.ItemDetail, DecoderFunc(decodeItemDetail))

	var result *models.DecodedResult
	var err error
	require.NotPanics(t, func() {
		result, err = r.Decode(endpoint.FeedList, feedURL, `{"crafted":true}`)
	})
	assert.Nil(t, result)

	var decodeErr *common.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "decoder panicked", decodeErr.Reason)

	// the registry keeps working for other endpoints
	result, err = r.Decode(endpoint.ItemDetail, "https://edith.example.com/api/sns/web/v1/feed",
		`{"success":true,"data":{"items":[{"id":"d1","note_card":{}}]}}`)
	require.NoError(t, err)
	assert.Equal(t, 1, result.EntityCount())
}

func TestRegistry_DecodeErrorPassedThrough(t *testing.T) {
	r := NewDefaultRegistry(zerolog.Nop())

	result, err := r.Decode(endpoint.SearchResults, "https://edith.example.com/api/sns/web/v1/search/notes", `{"success":false}`)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, common.ErrMalformedPayload)
}

func TestRegistry_RegisterNilIgnored(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Register(endpoint.FeedList, nil)
	assert.False(t, r.Has(endpoint.FeedList))
}
