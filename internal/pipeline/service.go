package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/draftpress/draftpress/internal/ai"
	"github.com/draftpress/draftpress/internal/dedup"
	"github.com/draftpress/draftpress/internal/logger"
	"github.com/draftpress/draftpress/internal/models"
)

// Options bounds the generation pipeline.
type Options struct {
	DuplicateWindowHours int
	BatchMaxPending      int
	BatchMaxTopics       int
	SeenTTL              time.Duration
	Prompt               ai.PromptOptions
}

// Service runs the end-to-end suggestion generation pipeline:
// topics -> prompt -> generation -> parse -> dedup -> persistence.
type Service struct {
	topics      TopicSource
	generator   Generator
	parser      *ai.Parser
	dedup       DuplicateChecker
	images      ImageFinder
	mirror      ImageMirror // optional
	suggestions SuggestionRepo
	seen        SeenMarker
	opts        Options
}

func NewService(
	topics TopicSource,
	generator Generator,
	parser *ai.Parser,
	dup DuplicateChecker,
	images ImageFinder,
	mirror ImageMirror,
	suggestions SuggestionRepo,
	seen SeenMarker,
	opts Options,
) *Service {
	if opts.DuplicateWindowHours <= 0 {
		opts.DuplicateWindowHours = 72
	}
	if opts.BatchMaxPending <= 0 {
		opts.BatchMaxPending = 8
	}
	if opts.BatchMaxTopics <= 0 {
		opts.BatchMaxTopics = 10
	}
	if opts.SeenTTL <= 0 {
		opts.SeenTTL = 168 * time.Hour
	}
	return &Service{
		topics:      topics,
		generator:   generator,
		parser:      parser,
		dedup:       dup,
		images:      images,
		mirror:      mirror,
		suggestions: suggestions,
		seen:        seen,
		opts:        opts,
	}
}

// PendingCount reports how many suggestions await review.
func (s *Service) PendingCount(ctx context.Context) (int64, error) {
	return s.suggestions.CountByStatus(ctx, models.SuggestionPending)
}

// GenerateOne runs the pipeline for the first eligible topic and persists a
// single pending suggestion.
func (s *Service) GenerateOne(ctx context.Context) (*models.Suggestion, error) {
	for _, topic := range s.topics.FetchTopics(ctx) {
		eligible, err := s.eligible(ctx, topic)
		if err != nil {
			return nil, err
		}
		if !eligible {
			continue
		}
		return s.generateFromTopic(ctx, topic)
	}
	return nil, ErrNoTopics
}

// GenerateBatch runs the pipeline sequentially for up to max topics. A
// failure on one topic never aborts the batch; the produced count is
// returned. Generation is skipped entirely when too many suggestions are
// already pending.
func (s *Service) GenerateBatch(ctx context.Context, max int) (int, error) {
	log := logger.Get()

	if max <= 0 || max > s.opts.BatchMaxTopics {
		max = s.opts.BatchMaxTopics
	}

	pending, err := s.PendingCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending suggestions: %w", err)
	}
	if pending >= int64(s.opts.BatchMaxPending) {
		log.Info().
			Int64("pending", pending).
			Int("limit", s.opts.BatchMaxPending).
			Msg("Too many pending suggestions, skipping batch generation")
		return 0, nil
	}

	produced := 0
	for _, topic := range s.topics.FetchTopics(ctx) {
		if produced >= max {
			break
		}

		eligible, err := s.eligible(ctx, topic)
		if err != nil {
			log.Error().
				Err(err).
				Str("title", topic.Title).
				Msg("Duplicate check failed, skipping topic")
			continue
		}
		if !eligible {
			continue
		}

		// Strictly sequential: each save is visible to the next topic's
		// duplicate check within the same batch.
		if _, err := s.generateFromTopic(ctx, topic); err != nil {
			log.Error().
				Err(err).
				Str("title", topic.Title).
				Msg("Failed to generate suggestion for topic")
			continue
		}
		produced++
	}

	log.Info().
		Int("produced", produced).
		Msg("Finished batch generation")
	return produced, nil
}

// eligible applies the seen-cache and pre-generation duplicate checks.
func (s *Service) eligible(ctx context.Context, topic models.TopicItem) (bool, error) {
	log := logger.Get()

	if s.seen != nil && topic.UniqueID != "" {
		seen, err := s.seen.IsSeen(ctx, topic.UniqueID)
		if err != nil {
			log.Warn().
				Err(err).
				Str("unique_id", topic.UniqueID).
				Msg("Seen-cache check failed, continuing without it")
		} else if seen {
			log.Debug().
				Str("title", topic.Title).
				Msg("Topic already seen, skipping")
			return false, nil
		}
	}

	dup, err := s.dedup.IsDuplicateTopic(ctx, topic, s.opts.DuplicateWindowHours)
	if err != nil {
		return false, err
	}
	if dup {
		log.Info().
			Str("title", topic.Title).
			Str("source", topic.Source).
			Msg("Duplicate topic detected, skipping")
		return false, nil
	}
	return true, nil
}

// generateFromTopic spends one generative call on the topic and persists the
// resulting pending suggestion.
func (s *Service) generateFromTopic(ctx context.Context, topic models.TopicItem) (*models.Suggestion, error) {
	log := logger.Get()
	start := time.Now()

	req := ai.BuildRequest(topic, s.opts.Prompt)

	var parsed ai.ParsedSuggestion
	raw, err := s.generator.Generate(ctx, req.Prompt)
	switch {
	case err == nil:
		parsed = s.parser.Parse(raw)
	case errors.Is(err, ai.ErrInvalidRequest), errors.Is(err, ai.ErrAuthorizationDenied):
		// Vendor rejected the call outright; nothing to salvage.
		return nil, err
	case errors.Is(err, ai.ErrAIServiceUnavailable):
		log.Warn().
			Err(err).
			Str("title", topic.Title).
			Msg("AI unavailable, building minimal fallback suggestion from topic")
		parsed = fallbackFromTopic(topic)
	default:
		return nil, err
	}

	sg := &models.Suggestion{
		UniqueID:    topic.UniqueID,
		Title:       parsed.Title,
		Content:     parsed.Content,
		Summary:     parsed.Summary,
		Tags:        parsed.Tags,
		Category:    parsed.Category,
		Source:      topic.Source,
		URL:         topic.URL,
		ReadTime:    parsed.ReadTime,
		PublishDate: parsed.PublishDate,
		Featured:    parsed.Featured,
		Status:      models.SuggestionPending,
		GeneratedAt: time.Now(),
	}

	// Post-generation check: an already-completed generation is not
	// discarded; the title is disambiguated instead.
	dup, err := s.dedup.IsDuplicateTitle(ctx, sg.Title)
	if err != nil {
		log.Warn().
			Err(err).
			Str("title", sg.Title).
			Msg("Post-generation duplicate check failed, saving as-is")
	} else if dup {
		disambiguated := dedup.Disambiguate(sg.Title)
		log.Info().
			Str("title", sg.Title).
			Str("disambiguated", disambiguated).
			Msg("Duplicate title after generation, disambiguating")
		sg.Title = disambiguated
	}

	if s.images != nil {
		sg.Image = s.images.Search(ctx, sg.Title)
		if s.mirror != nil && sg.Image.URL != "" {
			key := fmt.Sprintf("featured/%s.jpg", sg.UniqueID)
			if mirrored, err := s.mirror.MirrorImage(ctx, sg.Image.URL, key); err != nil {
				log.Warn().
					Err(err).
					Str("url", sg.Image.URL).
					Msg("Image mirror failed, keeping source URL")
			} else {
				sg.Image.URL = mirrored
			}
		}
	}

	if err := s.suggestions.Insert(ctx, sg); err != nil {
		return nil, fmt.Errorf("failed to save suggestion: %w", err)
	}

	if s.seen != nil && topic.UniqueID != "" {
		if err := s.seen.MarkSeen(ctx, topic.UniqueID, s.opts.SeenTTL); err != nil {
			log.Warn().
				Err(err).
				Str("unique_id", topic.UniqueID).
				Msg("Failed to mark topic as seen")
		}
	}

	log.Info().
		Str("id", sg.ID.Hex()).
		Str("title", sg.Title).
		Dur("duration", time.Since(start)).
		Msg("Generated suggestion")
	return sg, nil
}

// fallbackFromTopic builds a minimal pending suggestion from the raw topic
// when generation is unavailable.
func fallbackFromTopic(topic models.TopicItem) ai.ParsedSuggestion {
	content := topic.Description
	if content == "" {
		content = topic.Title
	}
	category := topic.Category
	if category == "" {
		category = "technology"
	}
	return ai.ParsedSuggestion{
		Title:    topic.Title,
		Summary:  topic.Description,
		Content:  content,
		Tags:     []string{"news", category},
		Category: category,
		ReadTime: 1,
	}
}
