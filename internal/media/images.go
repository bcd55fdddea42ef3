package media

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/draftpress/draftpress/internal/logger"
	"github.com/draftpress/draftpress/internal/models"
	"github.com/draftpress/draftpress/internal/utils"
	"github.com/go-resty/resty/v2"
)

// ImageClient searches a stock-photo API for a featured image. Failures are
// never fatal: a deterministic placeholder is returned instead so the text
// pipeline is never blocked on imagery.
type ImageClient struct {
	client  *resty.Client
	apiKey  string
	baseURL string
}

type searchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	} `json:"results"`
}

func NewImageClient(apiKey string, timeout time.Duration) *ImageClient {
	return &ImageClient{
		client:  resty.New().SetTimeout(timeout),
		apiKey:  apiKey,
		baseURL: "https://api.unsplash.com",
	}
}

// Search returns an image for the phrase, falling back to a placeholder on
// any failure or missing credential.
func (c *ImageClient) Search(ctx context.Context, phrase string) models.FeaturedImage {
	log := logger.Get()

	if c.apiKey == "" {
		log.Debug().Msg("No image API key configured, using placeholder")
		return Placeholder(phrase)
	}

	var body searchResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Client-ID "+c.apiKey).
		SetQueryParams(map[string]string{
			"query":    phrase,
			"per_page": "1",
		}).
		SetResult(&body).
		Get(c.baseURL + "/search/photos")

	if err != nil || resp.StatusCode() != http.StatusOK || len(body.Results) == 0 {
		log.Warn().
			Err(err).
			Str("phrase", phrase).
			Msg("Image search failed, using placeholder")
		return Placeholder(phrase)
	}

	first := body.Results[0]
	return models.FeaturedImage{
		URL:    first.URLs.Regular,
		Credit: first.User.Name,
	}
}

// Placeholder builds a deterministic placeholder image URL from the phrase.
func Placeholder(phrase string) models.FeaturedImage {
	return models.FeaturedImage{
		URL: fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", utils.ShortHash(phrase)),
	}
}
