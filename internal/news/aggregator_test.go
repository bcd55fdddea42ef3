package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/draftpress/draftpress/internal/logger"
	"github.com/draftpress/draftpress/internal/models"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Config{Level: "error", Output: "stderr"})
	os.Exit(m.Run())
}

type stubSource struct {
	name  string
	items []models.TopicItem
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(context.Context) ([]models.TopicItem, error) {
	s.calls++
	return s.items, s.err
}

func TestFetchTopicsPriorityOrder(t *testing.T) {
	first := &stubSource{name: "first", items: []models.TopicItem{{Title: "From First"}}}
	second := &stubSource{name: "second", items: []models.TopicItem{{Title: "From Second"}}}

	a := NewAggregator(first, second)
	items := a.FetchTopics(context.Background())

	if len(items) != 1 || items[0].Title != "From First" {
		t.Errorf("first healthy source must win, got %v", items)
	}
	if second.calls != 0 {
		t.Error("lower-priority source must not be queried when the first succeeds")
	}
}

func TestFetchTopicsSkipsFailedAndEmptySources(t *testing.T) {
	broken := &stubSource{name: "broken", err: ErrSourceUnavailable}
	empty := &stubSource{name: "empty"}
	healthy := &stubSource{name: "healthy", items: []models.TopicItem{{Title: "Works"}}}

	a := NewAggregator(broken, empty, healthy)
	items := a.FetchTopics(context.Background())

	if len(items) != 1 || items[0].Title != "Works" {
		t.Errorf("expected the healthy source's items, got %v", items)
	}
}

func TestFetchTopicsFallbackPool(t *testing.T) {
	broken := &stubSource{name: "broken", err: errors.New("boom")}

	a := NewAggregator(broken)
	items := a.FetchTopics(context.Background())

	if len(items) != len(fallbackTopics) {
		t.Fatalf("expected the full fallback pool, got %d items", len(items))
	}

	ids := make(map[string]bool)
	for _, item := range items {
		if item.Source != "editorial" {
			t.Errorf("fallback item missing editorial source: %+v", item)
		}
		if item.UniqueID == "" {
			t.Errorf("fallback item missing unique id: %q", item.Title)
		}
		ids[item.UniqueID] = true
	}
	if len(ids) != len(items) {
		t.Error("fallback unique ids must be distinct")
	}
}

func TestFetchTopicsNoSources(t *testing.T) {
	a := NewAggregator()
	if items := a.FetchTopics(context.Background()); len(items) == 0 {
		t.Error("aggregator must always return topics")
	}
}

func TestAPISourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") != "k" {
			t.Errorf("missing apiKey query param")
		}
		if r.URL.Query().Get("category") != "technology" {
			t.Errorf("missing category query param")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok","articles":[
			{"title":"Big Launch","description":"Details inside.","url":"https://n/1","source":{"name":"Wire"}},
			{"title":"","description":"untitled, must be dropped","url":"https://n/2","source":{"name":"Wire"}}
		]}`)
	}))
	defer srv.Close()

	s := NewAPISource("k", "technology", time.Second)
	s.baseURL = srv.URL

	items, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("untitled articles must be dropped, got %d items", len(items))
	}
	got := items[0]
	if got.Title != "Big Launch" || got.Source != "Wire" || got.Category != "technology" {
		t.Errorf("unexpected item: %+v", got)
	}
	if got.UniqueID == "" {
		t.Error("unique id must be derived from the title")
	}
}

func TestAPISourceMissingKey(t *testing.T) {
	s := NewAPISource("", "technology", time.Second)
	if _, err := s.Fetch(context.Background()); !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestFeedSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"title":"Feed Story","description":"d","url":"https://f/1","category":"engineering"},
			{"title":"Named Source","source":"Upstream","url":"https://f/2"}
		]`)
	}))
	defer srv.Close()

	s := NewFeedSource(srv.URL, time.Second)
	items, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Source != "feed" {
		t.Errorf("empty source must default to the feed name, got %q", items[0].Source)
	}
	if items[1].Source != "Upstream" {
		t.Errorf("explicit source must be kept, got %q", items[1].Source)
	}
}

func TestFeedSourceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewFeedSource(srv.URL, time.Second)
	if _, err := s.Fetch(context.Background()); !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}
