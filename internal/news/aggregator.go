package news

import (
	"context"
	"math/rand"

	"github.com/draftpress/draftpress/internal/logger"
	"github.com/draftpress/draftpress/internal/models"
	"github.com/draftpress/draftpress/internal/utils"
)

// fallbackTopics is a category-balanced pool used when every source fails or
// comes back empty, so downstream stages always have input.
var fallbackTopics = []models.TopicItem{
	{Title: "The State of Artificial Intelligence in Everyday Software", Description: "How AI features are reshaping the tools developers and teams rely on.", Category: "technology"},
	{Title: "Cloud Cost Optimization Strategies That Actually Work", Description: "Practical approaches to keeping infrastructure bills under control.", Category: "business"},
	{Title: "Why Developer Experience Is the New Competitive Advantage", Description: "Companies are investing in internal platforms and tooling.", Category: "engineering"},
	{Title: "Cybersecurity Trends Every Team Should Watch", Description: "From supply chain attacks to passkeys, the threat landscape keeps moving.", Category: "security"},
	{Title: "Open Source Sustainability and the Future of Maintainership", Description: "Funding models and burnout in critical open source projects.", Category: "open-source"},
	{Title: "Remote Work Tooling Beyond the Video Call", Description: "Async collaboration practices that outlast the hype cycle.", Category: "workplace"},
}

// Aggregator tries each configured source in priority order and falls back to
// the static topic pool.
type Aggregator struct {
	sources []Source
}

func NewAggregator(sources ...Source) *Aggregator {
	return &Aggregator{sources: sources}
}

// FetchTopics returns candidate topics. Source failures are non-fatal; if
// every source yields nothing the shuffled fallback pool is returned.
func (a *Aggregator) FetchTopics(ctx context.Context) []models.TopicItem {
	log := logger.Get()

	for _, src := range a.sources {
		items, err := src.Fetch(ctx)
		if err != nil {
			log.Warn().
				Err(err).
				Str("source", src.Name()).
				Msg("News source failed, trying next")
			continue
		}
		if len(items) == 0 {
			log.Warn().
				Str("source", src.Name()).
				Msg("News source returned no items, trying next")
			continue
		}

		log.Info().
			Str("source", src.Name()).
			Int("items", len(items)).
			Msg("Fetched topics")
		return items
	}

	log.Warn().Msg("All news sources failed, using fallback topic pool")
	return fallbackPool()
}

func fallbackPool() []models.TopicItem {
	out := make([]models.TopicItem, len(fallbackTopics))
	copy(out, fallbackTopics)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })

	for i := range out {
		out[i].Source = "editorial"
		out[i].UniqueID = utils.ShortHash(out[i].Title)
	}
	return out
}
