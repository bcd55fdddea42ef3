package models

// TopicItem is an ephemeral candidate subject sourced from a news feed or the
// fallback topic pool. It is never persisted; the pipeline consumes it once.
type TopicItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	UniqueID    string `json:"unique_id"`
}

// GenerationRequest carries one topic into a single generative call.
type GenerationRequest struct {
	Topic       TopicItem `json:"topic"`
	Angle       string    `json:"angle"`
	TargetWords int       `json:"target_words"`
	Prompt      string    `json:"prompt"`
}
