package decoder

import (
	"net/url"
	"strings"

	"github.com/aleister1102/feedtap/internal/common"
	"github.com/aleister1102/feedtap/internal/endpoint"
	"github.com/aleister1102/feedtap/internal/models"
	"github.com/tidwall/gjson"
)

// query parameters that name the acted-upon note, in lookup order
var noteIDParams = []string{"note_id", "noteId", "note_oid", "target_id"}

// ActionDecoder confirms like/collect/comment actions. The acted-upon note is
// read from the request URL query, never from the response body.
type ActionDecoder struct {
	action endpoint.Endpoint
}

// NewActionDecoder creates a decoder for one action endpoint.
func NewActionDecoder(action endpoint.Endpoint) *ActionDecoder {
	return &ActionDecoder{action: action}
}

// Decode implements Decoder. Only a {code==0, success==true} envelope
// produces a confirmation.
func (d *ActionDecoder) Decode(rawURL, body string) (*models.DecodedResult, error) {
	ep := d.action.String()
	if !gjson.Valid(body) {
		return nil, common.NewDecodeError(ep, rawURL, "invalid json", nil)
	}
	root := gjson.Parse(body)
	code := root.Get("code")
	success := root.Get("success")
	if code.Type != gjson.Number || code.Int() != 0 || success.Type != gjson.True {
		return nil, common.NewDecodeError(ep, rawURL, "action not confirmed: "+envelopeMessage(root), nil)
	}

	noteID := queryParam(rawURL, noteIDParams...)
	if noteID == "" {
		return nil, common.NewDecodeError(ep, rawURL, "request url carries no note id", nil)
	}

	conf := models.InteractionConfirmation{
		NoteID:  noteID,
		Action:  d.action,
		Success: true,
	}
	if d.action == endpoint.CommentPost || d.action == endpoint.CommentDelete {
		conf.CommentID = queryParam(rawURL, "comment_id", "commentId")
		if conf.CommentID == "" {
			conf.CommentID = firstString(root, "data.comment.id", "data.comment_id")
		}
	}

	data := root.Get("data")
	conf.LikeCount = optionalCount(data, "like_count", "liked_count", "likedCount")
	conf.CollectCount = optionalCount(data, "collected_count", "collect_count", "collectedCount")
	conf.CommentCount = optionalCount(data, "comment_count", "commentCount")

	return &models.DecodedResult{Interactions: []models.InteractionConfirmation{conf}}, nil
}

func optionalCount(data gjson.Result, paths ...string) *int64 {
	v := firstOf(data, paths...)
	if !v.Exists() {
		return nil
	}
	n := ParseCount(v)
	return &n
}

// queryParam returns the first non-empty value among keys.
func queryParam(rawURL string, keys ...string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	return ""
}
