package decoder

import (
	"testing"

	"github.com/aleister1102/feedtap/internal/common"
	"github.com/aleister1102/feedtap/internal/endpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionDecoder_Like(t *testing.T) {
	d := NewActionDecoder(endpoint.LikeAction)

	result, err := d.Decode("https://edith.example.com/api/sns/web/v1/note/like?note_oid=n1",
		`{"code":0,"success":true,"msg":"ok","data":{"new_like":true,"like_count":"1.3万"}}`)
	require.NoError(t, err)
	require.Len(t, result.Interactions, 1)

	conf := result.Interactions[0]
	assert.Equal(t, "n1", conf.NoteID)
	assert.Equal(t, endpoint.LikeAction, conf.Action)
	assert.True(t, conf.Success)
	require.NotNil(t, conf.LikeCount)
	assert.Equal(t, int64(13000), *conf.LikeCount)
	assert.Nil(t, conf.CollectCount)
	assert.Nil(t, conf.CommentCount)
	assert.Empty(t, conf.CommentID)
	assert.True(t, conf.ConfirmedAt.IsZero())
}

func TestActionDecoder_NoteIDLookupOrder(t *testing.T) {
	d := NewActionDecoder(endpoint.CollectAction)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"note_id", "?note_id=a&target_id=z", "a"},
		{"camel case", "?noteId=b", "b"},
		{"note_oid", "?note_oid=c", "c"},
		{"target_id", "?target_id=d", "d"},
		{"blank note_id falls through", "?note_id=%20&target_id=e", "e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := d.Decode("https://edith.example.com/api/sns/web/v1/note/collect"+tt.query,
				`{"code":0,"success":true,"data":{"collected_count":5}}`)
			require.NoError(t, err)
			require.Len(t, result.Interactions, 1)
			assert.Equal(t, tt.want, result.Interactions[0].NoteID)
			require.NotNil(t, result.Interactions[0].CollectCount)
			assert.Equal(t, int64(5), *result.Interactions[0].CollectCount)
		})
	}
}

func TestActionDecoder_IgnoresBodyNoteID(t *testing.T) {
	d := NewActionDecoder(endpoint.LikeAction)

	_, err := d.Decode("https://edith.example.com/api/sns/web/v1/note/like",
		`{"code":0,"success":true,"data":{"note_id":"from-body"}}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMalformedPayload)
}

func TestActionDecoder_RejectedEnvelopes(t *testing.T) {
	d := NewActionDecoder(endpoint.UnlikeAction)
	const u = "https://edith.example.com/api/sns/web/v1/note/dislike?note_oid=n1"

	bodies := map[string]string{
		"success false":   `{"code":0,"success":false}`,
		"non zero code":   `{"code":-1,"success":true}`,
		"missing success": `{"code":0}`,
		"missing code":    `{"success":true}`,
		"string code":     `{"code":"0","success":true}`,
		"invalid json":    `not json`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			result, err := d.Decode(u, body)
			assert.Nil(t, result)
			assert.Error(t, err)
		})
	}
}

func TestActionDecoder_CommentPost(t *testing.T) {
	d := NewActionDecoder(endpoint.CommentPost)

	result, err := d.Decode("https://edith.example.com/api/sns/web/v1/comment/post?note_id=n1",
		`{"code":0,"success":true,"data":{"comment":{"id":"c9","content":"hi"},"comment_count":12}}`)
	require.NoError(t, err)
	require.Len(t, result.Interactions, 1)

	conf := result.Interactions[0]
	assert.Equal(t, "n1", conf.NoteID)
	assert.Equal(t, "c9", conf.CommentID)
	require.NotNil(t, conf.CommentCount)
	assert.Equal(t, int64(12), *conf.CommentCount)
}

func TestActionDecoder_CommentDeleteFromQuery(t *testing.T) {
	d := NewActionDecoder(endpoint.CommentDelete)

	result, err := d.Decode("https://edith.example.com/api/sns/web/v1/comment/delete?note_id=n1&comment_id=c3",
		`{"code":0,"success":true,"data":{}}`)
	require.NoError(t, err)
	assert.Equal(t, "c3", result.Interactions[0].CommentID)
}
