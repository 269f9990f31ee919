package decoder

import "github.com/aleister1102/feedtap/internal/models"

// Presence records which checklist fields a decoder found in the payload.
type Presence struct {
	Title       bool
	Author      bool
	Cover       bool
	Interact    bool
	Type        bool
	Tags        bool
	Description bool
	PublishedAt bool
}

// field weights; title, author, cover and counters dominate the rating
const (
	weightTitle       = 3
	weightAuthor      = 3
	weightCover       = 2
	weightInteract    = 2
	weightType        = 1
	weightTags        = 1
	weightDescription = 1
	weightPublishedAt = 1

	totalWeight = weightTitle + weightAuthor + weightCover + weightInteract +
		weightType + weightTags + weightDescription + weightPublishedAt
)

// Score returns the weighted share of present fields in [0,1].
func (p Presence) Score() float64 {
	score := 0
	add := func(present bool, weight int) {
		if present {
			score += weight
		}
	}
	add(p.Title, weightTitle)
	add(p.Author, weightAuthor)
	add(p.Cover, weightCover)
	add(p.Interact, weightInteract)
	add(p.Type, weightType)
	add(p.Tags, weightTags)
	add(p.Description, weightDescription)
	add(p.PublishedAt, weightPublishedAt)
	return float64(score) / float64(totalWeight)
}

// RateQuality maps a checklist to a data-quality rating.
func RateQuality(p Presence) models.DataQuality {
	switch s := p.Score(); {
	case s >= 0.8:
		return models.QualityComplete
	case s >= 0.5:
		return models.QualityPartial
	default:
		return models.QualityMinimal
	}
}
