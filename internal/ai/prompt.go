package ai

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/draftpress/draftpress/internal/models"
)

// angles diversify generated content; one is chosen at random per request,
// so equal inputs do not produce repeatable prompts.
var angles = []string{
	"in-depth analysis",
	"expert insight",
	"practical guide",
	"industry impact",
	"future outlook",
}

// PromptOptions tunes the generation request.
type PromptOptions struct {
	TargetWords int
	MinSections int
}

// DefaultPromptOptions matches the standard article shape.
var DefaultPromptOptions = PromptOptions{
	TargetWords: 900,
	MinSections: 4,
}

const promptTemplate = `You are a professional technology blogger writing an original article.

Topic: %s
Context: %s
Angle: write this as %s.

Requirements:
- Markdown only, no HTML.
- At least %d words and at least %d sections with ## headings.
- Original prose; do not copy the source material.

Respond with a single valid JSON object exactly matching this schema:
{
  "title": "article title, max 75 characters",
  "summary": "2-3 sentence summary",
  "content": "full markdown article body",
  "tags": ["tag1", "tag2", "tag3"],
  "category": "%s",
  "featured": false,
  "read_time": 5,
  "publish_date": "YYYY-MM-DD"
}

Return only the JSON object, with no surrounding commentary or code fences.`

// BuildRequest turns a topic into a generation request. A random angle is
// picked per call, so equal inputs do not yield equal prompts.
func BuildRequest(topic models.TopicItem, opts PromptOptions) models.GenerationRequest {
	if opts.TargetWords <= 0 {
		opts.TargetWords = DefaultPromptOptions.TargetWords
	}
	if opts.MinSections <= 0 {
		opts.MinSections = DefaultPromptOptions.MinSections
	}

	angle := angles[rand.Intn(len(angles))]
	category := topic.Category
	if category == "" {
		category = "technology"
	}

	prompt := fmt.Sprintf(promptTemplate,
		escapeForPrompt(topic.Title),
		escapeForPrompt(topic.Description),
		angle,
		opts.TargetWords,
		opts.MinSections,
		escapeForPrompt(category),
	)

	return models.GenerationRequest{
		Topic:       topic,
		Angle:       angle,
		TargetWords: opts.TargetWords,
		Prompt:      prompt,
	}
}

// escapeForPrompt flattens user-controlled text before embedding it.
func escapeForPrompt(s string) string {
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}
