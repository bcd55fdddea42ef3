package dedup

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/draftpress/draftpress/internal/models"
)

// memRecords is an in-memory stand-in for a titled collection.
type memRecords struct {
	titles  []recordedTitle
	topics  []recordedTopic
	failErr error
}

type recordedTitle struct {
	title string
	at    time.Time
}

type recordedTopic struct {
	uniqueID string
	source   string
	at       time.Time
}

func (m *memRecords) addTitle(title string, at time.Time) {
	m.titles = append(m.titles, recordedTitle{title: title, at: at})
}

func (m *memRecords) addTopic(uniqueID, source string, at time.Time) {
	m.topics = append(m.topics, recordedTopic{uniqueID: uniqueID, source: source, at: at})
}

func (m *memRecords) TitleExists(_ context.Context, exact, pattern string, since time.Time) (bool, error) {
	if m.failErr != nil {
		return false, m.failErr
	}
	var re *regexp.Regexp
	if pattern != "" {
		re = regexp.MustCompile("(?i)" + pattern)
	}
	for _, r := range m.titles {
		if !since.IsZero() && r.at.Before(since) {
			continue
		}
		if exact != "" && strings.EqualFold(r.title, exact) {
			return true, nil
		}
		if re != nil && re.MatchString(r.title) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRecords) TopicExists(_ context.Context, uniqueID, source string, since time.Time) (bool, error) {
	if m.failErr != nil {
		return false, m.failErr
	}
	for _, r := range m.topics {
		if !since.IsZero() && r.at.Before(since) {
			continue
		}
		if r.uniqueID == uniqueID && r.source == source {
			return true, nil
		}
	}
	return false, nil
}

func newTestDetector() (*Detector, *memRecords, *memRecords) {
	suggestions := &memRecords{}
	posts := &memRecords{}
	return NewDetector(KeywordMatcher{}, suggestions, posts), suggestions, posts
}

func TestIsDuplicateTopicKeywordMatchInsideWindow(t *testing.T) {
	d, suggestions, _ := newTestDetector()
	suggestions.addTitle("Kubernetes Networking Explained For Beginners", time.Now().Add(-2*time.Hour))

	topic := models.TopicItem{Title: "Kubernetes networking explained simply"}
	dup, err := d.IsDuplicateTopic(context.Background(), topic, 72)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dup {
		t.Error("similar title inside window must be a duplicate")
	}
}

func TestIsDuplicateTopicOutsideWindow(t *testing.T) {
	d, suggestions, _ := newTestDetector()
	suggestions.addTitle("Kubernetes Networking Explained For Beginners", time.Now().Add(-100*time.Hour))

	topic := models.TopicItem{Title: "Kubernetes Networking Explained Again"}
	dup, err := d.IsDuplicateTopic(context.Background(), topic, 72)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dup {
		t.Error("title older than the window must not count as duplicate")
	}
}

func TestIsDuplicateTopicChecksPostsToo(t *testing.T) {
	d, _, posts := newTestDetector()
	posts.addTitle("Observability Pipelines Compared Thoroughly", time.Now().Add(-time.Hour))

	topic := models.TopicItem{Title: "Observability pipelines compared: thoroughly tested"}
	dup, err := d.IsDuplicateTopic(context.Background(), topic, 72)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dup {
		t.Error("published post titles participate in the pre-generation check")
	}
}

func TestIsDuplicateTopicByIdentity(t *testing.T) {
	d, suggestions, _ := newTestDetector()
	suggestions.addTopic("abc123", "newsapi", time.Now().Add(-time.Hour))

	topic := models.TopicItem{
		Title:    "Entirely Different Wording Here",
		UniqueID: "abc123",
		Source:   "newsapi",
	}
	dup, err := d.IsDuplicateTopic(context.Background(), topic, 72)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dup {
		t.Error("same uniqueID+source must be a duplicate regardless of title")
	}

	other := models.TopicItem{Title: "Entirely Different Wording Here", UniqueID: "abc123", Source: "feed"}
	dup, err = d.IsDuplicateTopic(context.Background(), other, 72)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dup {
		t.Error("same uniqueID from a different source is not a duplicate")
	}
}

func TestIsDuplicateTitleWholeHistory(t *testing.T) {
	d, suggestions, _ := newTestDetector()
	suggestions.addTitle("Ancient But Still Matching Title", time.Now().Add(-10000*time.Hour))

	dup, err := d.IsDuplicateTitle(context.Background(), "Ancient But Still Matching Title")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dup {
		t.Error("post-generation check has no time window")
	}
}

func TestDetectorPropagatesStoreError(t *testing.T) {
	d, suggestions, _ := newTestDetector()
	suggestions.failErr = errors.New("connection reset")

	if _, err := d.IsDuplicateTopic(context.Background(), models.TopicItem{Title: "Anything At All Here"}, 72); err == nil {
		t.Error("store failure must surface as an error")
	}
	if _, err := d.IsDuplicateTitle(context.Background(), "Anything At All Here"); err == nil {
		t.Error("store failure must surface as an error")
	}
}

func TestDisambiguate(t *testing.T) {
	original := "Colliding Title"
	got := Disambiguate(original)

	if !strings.HasPrefix(got, original+": ") {
		t.Errorf("disambiguated title must keep the original as prefix: %q", got)
	}
	if got == original {
		t.Error("disambiguation must change the title")
	}
	if !regexp.MustCompile(`\(\d{2}:\d{2}\)$`).MatchString(got) {
		t.Errorf("expected trailing HH:MM stamp: %q", got)
	}
}
