package decoder

import (
	"github.com/aleister1102/feedtap/internal/common"
	"github.com/aleister1102/feedtap/internal/models"
	"github.com/tidwall/gjson"
)

func decodeCommentPage(rawURL, body string) (*models.DecodedResult, error) {
	root, err := parseEnvelope("comment-page", rawURL, body)
	if err != nil {
		return nil, err
	}
	list := root.Get("data.comments")
	if !list.IsArray() {
		return nil, common.NewDecodeError("comment-page", rawURL, "data.comments is not a list", nil)
	}

	noteID := queryParam(rawURL, "note_id", "noteId")
	comments := make([]models.Comment, 0, len(list.Array()))
	for _, c := range list.Array() {
		if !c.IsObject() {
			continue
		}
		comments = append(comments, parseComment(c, noteID))
	}
	return &models.DecodedResult{Comments: comments}, nil
}

func parseComment(c gjson.Result, noteID string) models.Comment {
	out := models.Comment{
		ID:              firstString(c, "id", "comment_id"),
		NoteID:          noteID,
		Content:         firstString(c, "content"),
		LikeCount:       ParseCount(firstOf(c, "like_count", "likeCount")),
		SubCommentCount: ParseCount(firstOf(c, "sub_comment_count", "subCommentCount")),
		CreatedAt:       parseEpoch(firstOf(c, "create_time", "createTime")),
	}
	if out.NoteID == "" {
		out.NoteID = firstString(c, "note_id", "noteId")
	}
	if user := firstOf(c, "user_info", "userInfo", "user"); user.Exists() {
		out.Author = models.Author{
			UserID:   firstString(user, "user_id", "userId"),
			Nickname: firstString(user, "nickname", "nick_name"),
			Avatar:   firstString(user, "image", "avatar"),
		}
	}
	return out
}
