package models

import (
	"time"

	"github.com/aleister1102/feedtap/internal/endpoint"
)

// DataQuality rates how many expected fields a decoder populated.
type DataQuality string

const (
	QualityComplete DataQuality = "complete"
	QualityPartial  DataQuality = "partial"
	QualityMinimal  DataQuality = "minimal"
)

// NoteType distinguishes image notes from video notes.
type NoteType string

const (
	NoteTypeNormal NoteType = "normal"
	NoteTypeVideo  NoteType = "video"
)

// Author is the user that published a note or comment.
type Author struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar,omitempty"`
}

// IsEmpty reports whether no author field was populated.
func (a Author) IsEmpty() bool {
	return a.UserID == "" && a.Nickname == ""
}

// InteractCounters are the engagement counters of a note.
type InteractCounters struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Collects int64 `json:"collects"`
	Shares   int64 `json:"shares"`
}

// Note is the canonical decoded content item.
type Note struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Type        NoteType         `json:"type,omitempty"`
	Author      Author           `json:"author"`
	Cover       string           `json:"cover,omitempty"`
	ImageURLs   []string         `json:"image_urls,omitempty"`
	VideoURL    string           `json:"video_url,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Interact    InteractCounters `json:"interact"`
	Liked       bool             `json:"liked"`
	Collected   bool             `json:"collected"`
	PublishedAt time.Time        `json:"published_at,omitempty"`
	XsecToken   string           `json:"xsec_token,omitempty"`

	Quality        DataQuality       `json:"quality"`
	SourceEndpoint endpoint.Endpoint `json:"source_endpoint"`
	CapturedAt     time.Time         `json:"captured_at"`
}

// Clone returns a deep copy so callers never share slices with the store.
func (n Note) Clone() Note {
	out := n
	if n.ImageURLs != nil {
		out.ImageURLs = append([]string(nil), n.ImageURLs...)
	}
	if n.Tags != nil {
		out.Tags = append([]string(nil), n.Tags...)
	}
	return out
}

// Comment is one entry of a comment page.
type Comment struct {
	ID              string    `json:"id"`
	NoteID          string    `json:"note_id"`
	Content         string    `json:"content"`
	Author          Author    `json:"author"`
	LikeCount       int64     `json:"like_count"`
	SubCommentCount int64     `json:"sub_comment_count"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}
