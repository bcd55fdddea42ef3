package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/draftpress/draftpress/internal/models"
	"github.com/draftpress/draftpress/internal/utils"
	"github.com/go-resty/resty/v2"
)

// ErrSourceUnavailable marks a single news source failure. The aggregator
// logs it and moves on to the next source.
var ErrSourceUnavailable = errors.New("news source unavailable")

// Source supplies candidate topics. Implementations own their transport and
// timeout; a fresh Fetch re-queries the source.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.TopicItem, error)
}

// APISource queries a NewsAPI-style headlines endpoint keyed by category.
type APISource struct {
	client   *resty.Client
	apiKey   string
	category string
	baseURL  string
}

type apiResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

func NewAPISource(apiKey, category string, timeout time.Duration) *APISource {
	return &APISource{
		client:   resty.New().SetTimeout(timeout),
		apiKey:   apiKey,
		category: category,
		baseURL:  "https://newsapi.org/v2/top-headlines",
	}
}

func (s *APISource) Name() string { return "newsapi" }

func (s *APISource) Fetch(ctx context.Context) ([]models.TopicItem, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrSourceUnavailable)
	}

	var body apiResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"category": s.category,
			"pageSize": "20",
			"apiKey":   s.apiKey,
		}).
		SetResult(&body).
		Get(s.baseURL)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrSourceUnavailable, resp.StatusCode())
	}

	items := make([]models.TopicItem, 0, len(body.Articles))
	for _, a := range body.Articles {
		if a.Title == "" {
			continue
		}
		items = append(items, models.TopicItem{
			Title:       a.Title,
			Description: a.Description,
			Source:      a.Source.Name,
			URL:         a.URL,
			Category:    s.category,
			UniqueID:    utils.ShortHash(a.Title),
		})
	}
	return items, nil
}

// FeedSource fetches a JSON feed of topic items from a configured URL.
type FeedSource struct {
	client *resty.Client
	url    string
}

type feedItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	Category    string `json:"category"`
}

func NewFeedSource(url string, timeout time.Duration) *FeedSource {
	return &FeedSource{
		client: resty.New().SetTimeout(timeout),
		url:    url,
	}
}

func (s *FeedSource) Name() string { return "feed" }

func (s *FeedSource) Fetch(ctx context.Context) ([]models.TopicItem, error) {
	if s.url == "" {
		return nil, fmt.Errorf("%w: no feed URL configured", ErrSourceUnavailable)
	}

	var body []feedItem
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetResult(&body).
		Get(s.url)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", ErrSourceUnavailable, resp.StatusCode(), s.url)
	}

	items := make([]models.TopicItem, 0, len(body))
	for _, f := range body {
		if f.Title == "" {
			continue
		}
		source := f.Source
		if source == "" {
			source = s.Name()
		}
		items = append(items, models.TopicItem{
			Title:       f.Title,
			Description: f.Description,
			Source:      source,
			URL:         f.URL,
			Category:    f.Category,
			UniqueID:    utils.ShortHash(f.Title),
		})
	}
	return items, nil
}
