package decoder

import (
	"strings"
	"time"

	"github.com/aleister1102/feedtap/internal/common"
	"github.com/aleister1102/feedtap/internal/models"
	"github.com/tidwall/gjson"
)

// firstOf returns the first path that exists under r.
func firstOf(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

func firstString(r gjson.Result, paths ...string) string {
	return strings.TrimSpace(firstOf(r, paths...).String())
}

// parseEnvelope validates the body and the content envelope. success==true is
// accepted; without a success flag, code==0 is accepted.
func parseEnvelope(ep, rawURL, body string) (gjson.Result, error) {
	if strings.TrimSpace(body) == "" {
		return gjson.Result{}, common.NewDecodeError(ep, rawURL, "empty body", nil)
	}
	if !gjson.Valid(body) {
		return gjson.Result{}, common.NewDecodeError(ep, rawURL, "invalid json", nil)
	}
	root := gjson.Parse(body)
	if !root.IsObject() {
		return gjson.Result{}, common.NewDecodeError(ep, rawURL, "body is not an object", nil)
	}

	success := root.Get("success")
	code := root.Get("code")
	switch {
	case success.Exists():
		if !success.Bool() {
			return gjson.Result{}, common.NewDecodeError(ep, rawURL, "envelope rejected: "+envelopeMessage(root), nil)
		}
	case code.Exists():
		if code.Int() != 0 {
			return gjson.Result{}, common.NewDecodeError(ep, rawURL, "envelope rejected: "+envelopeMessage(root), nil)
		}
	default:
		return gjson.Result{}, common.NewDecodeError(ep, rawURL, "envelope has neither success nor code", nil)
	}
	return root, nil
}

func envelopeMessage(root gjson.Result) string {
	if msg := firstString(root, "msg", "message"); msg != "" {
		return msg
	}
	return "code " + root.Get("code").String()
}

// parseNoteCard decodes one note. item is the list entry (it may carry the
// identity and token), card the nested note card; they may be the same object.
func parseNoteCard(item, card gjson.Result) models.Note {
	var presence Presence

	n := models.Note{
		ID:        firstString(item, "id", "note_id", "noteId"),
		XsecToken: firstString(item, "xsec_token", "xsecToken"),
	}
	if n.ID == "" {
		n.ID = firstString(card, "note_id", "noteId", "id")
	}
	if n.XsecToken == "" {
		n.XsecToken = firstString(card, "xsec_token", "xsecToken")
	}

	n.Title = firstString(card, "display_title", "displayTitle", "title")
	presence.Title = n.Title != ""

	n.Description = firstString(card, "desc", "description")
	presence.Description = n.Description != ""

	if user := firstOf(card, "user", "user_info", "userInfo"); user.Exists() {
		n.Author = models.Author{
			UserID:   firstString(user, "user_id", "userId"),
			Nickname: firstString(user, "nickname", "nick_name", "nickName"),
			Avatar:   firstString(user, "avatar", "image"),
		}
	}
	presence.Author = !n.Author.IsEmpty()

	n.Cover = firstString(card, "cover.url_default", "cover.urlDefault", "cover.url", "cover.info_list.0.url", "cover.infoList.0.url")
	for _, img := range firstOf(card, "image_list", "imageList").Array() {
		if u := firstString(img, "url_default", "urlDefault", "url", "info_list.0.url", "infoList.0.url"); u != "" {
			n.ImageURLs = append(n.ImageURLs, u)
		}
	}
	if n.Cover == "" && len(n.ImageURLs) > 0 {
		n.Cover = n.ImageURLs[0]
	}
	presence.Cover = n.Cover != ""

	n.VideoURL = firstString(card, "video.media.stream.h264.0.master_url", "video.media.stream.h265.0.master_url", "video.consumer.origin_video_key")

	switch strings.ToLower(firstString(card, "type")) {
	case "video":
		n.Type = models.NoteTypeVideo
	case "normal":
		n.Type = models.NoteTypeNormal
	default:
		if n.VideoURL != "" {
			n.Type = models.NoteTypeVideo
		}
	}
	presence.Type = n.Type != ""

	if interact := firstOf(card, "interact_info", "interactInfo"); interact.IsObject() {
		presence.Interact = true
		n.Interact = models.InteractCounters{
			Likes:    ParseCount(firstOf(interact, "liked_count", "likedCount")),
			Comments: ParseCount(firstOf(interact, "comment_count", "commentCount")),
			Collects: ParseCount(firstOf(interact, "collected_count", "collectedCount")),
			Shares:   ParseCount(firstOf(interact, "share_count", "shareCount")),
		}
		n.Liked = interact.Get("liked").Bool()
		n.Collected = interact.Get("collected").Bool()
	}

	for _, tag := range firstOf(card, "tag_list", "tagList").Array() {
		if name := firstString(tag, "name"); name != "" {
			n.Tags = append(n.Tags, name)
		}
	}
	presence.Tags = len(n.Tags) > 0

	n.PublishedAt = parseEpoch(firstOf(card, "time", "publish_time", "publishTime"))
	presence.PublishedAt = !n.PublishedAt.IsZero()

	n.Quality = RateQuality(presence)
	return n
}

// parseEpoch accepts seconds or milliseconds since the epoch.
func parseEpoch(r gjson.Result) time.Time {
	if !r.Exists() {
		return time.Time{}
	}
	v := r.Int()
	switch {
	case v <= 0:
		return time.Time{}
	case v > 1e12:
		return time.UnixMilli(v).UTC()
	default:
		return time.Unix(v, 0).UTC()
	}
}

func decodeItems(items gjson.Result, accept func(gjson.Result) bool) []models.Note {
	notes := make([]models.Note, 0, len(items.Array()))
	for _, item := range items.Array() {
		if !item.IsObject() {
			continue
		}
		if accept != nil && !accept(item) {
			continue
		}
		card := firstOf(item, "note_card", "noteCard")
		if !card.Exists() {
			card = item
		}
		notes = append(notes, parseNoteCard(item, card))
	}
	return notes
}

func decodeFeedList(rawURL, body string) (*models.DecodedResult, error) {
	root, err := parseEnvelope("feed-list", rawURL, body)
	if err != nil {
		return nil, err
	}
	items := root.Get("data.items")
	if !items.IsArray() {
		return nil, common.NewDecodeError("feed-list", rawURL, "data.items is not a list", nil)
	}
	return &models.DecodedResult{Notes: decodeItems(items, nil)}, nil
}

func decodeItemDetail(rawURL, body string) (*models.DecodedResult, error) {
	root, err := parseEnvelope("item-detail", rawURL, body)
	if err != nil {
		return nil, err
	}
	if items := root.Get("data.items"); items.IsArray() {
		return &models.DecodedResult{Notes: decodeItems(items, nil)}, nil
	}
	if note := firstOf(root, "data.note", "data.note_card", "data.noteCard"); note.IsObject() {
		return &models.DecodedResult{Notes: []models.Note{parseNoteCard(note, note)}}, nil
	}
	return nil, common.NewDecodeError("item-detail", rawURL, "no note in data", nil)
}

func decodeSearchResults(rawURL, body string) (*models.DecodedResult, error) {
	root, err := parseEnvelope("search-results", rawURL, body)
	if err != nil {
		return nil, err
	}
	items := root.Get("data.items")
	if !items.IsArray() {
		// an exhausted search answers without items
		if root.Get("data").IsObject() && !root.Get("data.has_more").Bool() {
			return &models.DecodedResult{}, nil
		}
		return nil, common.NewDecodeError("search-results", rawURL, "data.items is not a list", nil)
	}
	notesOnly := func(item gjson.Result) bool {
		mt := item.Get("model_type")
		return !mt.Exists() || mt.String() == "note"
	}
	return &models.DecodedResult{Notes: decodeItems(items, notesOnly)}, nil
}
