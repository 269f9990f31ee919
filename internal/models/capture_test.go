package models

import (
	"testing"

	"github.com/aleister1102/feedtap/internal/endpoint"
	"github.com/stretchr/testify/assert"
)

func TestDedupStats_DuplicateRate(t *testing.T) {
	tests := []struct {
		name     string
		stats    DedupStats
		expected float64
	}{
		{"nothing seen", DedupStats{}, 0},
		{"no duplicates", DedupStats{TotalSeen: 4, Unique: 4}, 0},
		{"half duplicates", DedupStats{TotalSeen: 4, Duplicates: 2, Unique: 2}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.stats.DuplicateRate(), 1e-9)
		})
	}
}

func TestCapturedResponse_CloneIsolation(t *testing.T) {
	orig := CapturedResponse{
		Endpoint: endpoint.FeedList,
		Notes:    []Note{{ID: "n1", Tags: []string{"go"}}},
		Comments: []Comment{{ID: "c1"}},
	}

	cp := orig.Clone()
	cp.Notes[0].Tags[0] = "rust"
	cp.Notes[0].ID = "n2"
	cp.Comments[0].ID = "c2"

	assert.Equal(t, "n1", orig.Notes[0].ID)
	assert.Equal(t, "go", orig.Notes[0].Tags[0])
	assert.Equal(t, "c1", orig.Comments[0].ID)
}

func TestDecodedResult_EntityCount(t *testing.T) {
	var nilResult *DecodedResult
	assert.Equal(t, 0, nilResult.EntityCount())

	r := &DecodedResult{
		Notes:        []Note{{ID: "a"}, {ID: "b"}},
		Interactions: []InteractionConfirmation{{NoteID: "a"}},
	}
	assert.Equal(t, 3, r.EntityCount())
}

func TestAuthor_IsEmpty(t *testing.T) {
	assert.True(t, Author{}.IsEmpty())
	assert.True(t, Author{Avatar: "x"}.IsEmpty())
	assert.False(t, Author{Nickname: "n"}.IsEmpty())
}
