package dedup

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/draftpress/draftpress/internal/models"
)

// SuggestionRecords is the suggestion-collection view the detector needs.
type SuggestionRecords interface {
	TitleExists(ctx context.Context, exact, pattern string, since time.Time) (bool, error)
	TopicExists(ctx context.Context, uniqueID, source string, since time.Time) (bool, error)
}

// PostRecords is the post-collection view the detector needs.
type PostRecords interface {
	TitleExists(ctx context.Context, exact, pattern string, since time.Time) (bool, error)
}

// Detector runs keyword- and identifier-based duplicate checks against the
// suggestion and post collections.
type Detector struct {
	matcher     SimilarityMatcher
	suggestions SuggestionRecords
	posts       PostRecords
}

func NewDetector(matcher SimilarityMatcher, suggestions SuggestionRecords, posts PostRecords) *Detector {
	return &Detector{
		matcher:     matcher,
		suggestions: suggestions,
		posts:       posts,
	}
}

// IsDuplicateTopic is the pre-generation check, run before spending a
// generative call. It matches similar titles within the window and exact
// uniqueId+source pairs.
func (d *Detector) IsDuplicateTopic(ctx context.Context, topic models.TopicItem, windowHours int) (bool, error) {
	since := time.Now().Add(-time.Duration(windowHours) * time.Hour)
	pattern := d.matcher.TitlePattern(topic.Title)

	if found, err := d.suggestions.TitleExists(ctx, "", pattern, since); err != nil {
		return false, fmt.Errorf("suggestion title check: %w", err)
	} else if found {
		return true, nil
	}

	if found, err := d.posts.TitleExists(ctx, "", pattern, since); err != nil {
		return false, fmt.Errorf("post title check: %w", err)
	} else if found {
		return true, nil
	}

	if topic.UniqueID != "" {
		if found, err := d.suggestions.TopicExists(ctx, topic.UniqueID, topic.Source, since); err != nil {
			return false, fmt.Errorf("topic identity check: %w", err)
		} else if found {
			return true, nil
		}
	}

	return false, nil
}

// IsDuplicateTitle is the post-generation check against the finished title.
// It has no time window: the entire history of both collections is checked.
func (d *Detector) IsDuplicateTitle(ctx context.Context, title string) (bool, error) {
	pattern := d.matcher.TitlePattern(title)

	if found, err := d.suggestions.TitleExists(ctx, title, pattern, time.Time{}); err != nil {
		return false, fmt.Errorf("suggestion title check: %w", err)
	} else if found {
		return true, nil
	}

	if found, err := d.posts.TitleExists(ctx, title, pattern, time.Time{}); err != nil {
		return false, fmt.Errorf("post title check: %w", err)
	} else if found {
		return true, nil
	}

	return false, nil
}

// suffixes disambiguate a colliding title without discarding the completed
// generation.
var suffixes = []string{
	"A Closer Look",
	"What It Means",
	"Key Takeaways",
	"The Full Picture",
	"Another Perspective",
}

// Disambiguate appends a random suffix and an HH:MM timestamp so the title
// no longer collides literally.
func Disambiguate(title string) string {
	suffix := suffixes[rand.Intn(len(suffixes))]
	return fmt.Sprintf("%s: %s (%s)", title, suffix, time.Now().Format("15:04"))
}
