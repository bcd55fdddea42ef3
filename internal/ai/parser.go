package ai

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/draftpress/draftpress/internal/logger"
)

// ParsedSuggestion is the structured result recovered from raw model output.
type ParsedSuggestion struct {
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
	Featured    bool     `json:"featured"`
	ReadTime    int      `json:"read_time"`
	PublishDate string   `json:"publish_date"`
}

// ParseStrategy is one attempt at recovering structure from raw text. The
// parser tries strategies in order; a strategy failure is not fatal.
type ParseStrategy interface {
	Name() string
	Parse(raw string) (*ParsedSuggestion, error)
}

const (
	minContentLength = 500
	maxTitleLength   = 75
	fallbackTitle    = "Latest Industry Insights"
)

// Parser turns raw AI output into suggestion fields. Parse never fails: the
// final fallback wraps whatever text survives cleanup.
type Parser struct {
	strategies []ParseStrategy
}

func NewParser() *Parser {
	return &Parser{
		strategies: []ParseStrategy{
			jsonStrategy{},
			regexStrategy{},
		},
	}
}

// Parse runs the strategy chain and always returns a usable result with
// non-empty title and content.
func (p *Parser) Parse(raw string) ParsedSuggestion {
	log := logger.Get()

	for _, st := range p.strategies {
		result, err := st.Parse(raw)
		if err != nil {
			log.Debug().
				Err(err).
				Str("strategy", st.Name()).
				Msg("Parse strategy failed")
			continue
		}
		return finalize(*result)
	}

	// Final fallback: generic wrapper around whatever text survived cleanup.
	content := repairContent(stripCodeFences(raw))
	if strings.TrimSpace(content) == "" {
		content = "Our editorial pipeline could not recover this article. A fresh take on current industry developments will follow shortly."
	}
	log.Warn().Msg("All parse strategies failed, using generic placeholder")
	return finalize(ParsedSuggestion{
		Title:   fallbackTitle,
		Content: content,
	})
}

// jsonStrategy parses the outermost {...} span as the structured schema.
type jsonStrategy struct{}

func (jsonStrategy) Name() string { return "json" }

func (jsonStrategy) Parse(raw string) (*ParsedSuggestion, error) {
	stripped := stripCodeFences(raw)

	start := strings.Index(stripped, "{")
	end := strings.LastIndex(stripped, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object span found")
	}
	span := stripped[start : end+1]

	var result ParsedSuggestion
	if err := json.Unmarshal([]byte(span), &result); err != nil {
		// Models often leave raw newlines inside string literals; escape
		// control characters and retry once.
		if err2 := json.Unmarshal([]byte(escapeControlInStrings(span)), &result); err2 != nil {
			return nil, fmt.Errorf("failed to parse JSON span: %w", err)
		}
	}

	if strings.TrimSpace(result.Title) == "" || strings.TrimSpace(result.Content) == "" {
		return nil, fmt.Errorf("parsed JSON missing title or content")
	}
	return &result, nil
}

// regexStrategy recovers individual fields straight from the raw text and
// derives title/summary heuristically when explicit fields are absent.
type regexStrategy struct{}

func (regexStrategy) Name() string { return "regex" }

var (
	titleFieldRe    = regexp.MustCompile(`"title"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	summaryFieldRe  = regexp.MustCompile(`"summary"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	contentFieldRe  = regexp.MustCompile(`"content"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	categoryFieldRe = regexp.MustCompile(`"category"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	tagsFieldRe     = regexp.MustCompile(`"tags"\s*:\s*\[([^\]]*)\]`)
	quotedItemRe    = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
)

func (regexStrategy) Parse(raw string) (*ParsedSuggestion, error) {
	stripped := stripCodeFences(raw)
	result := &ParsedSuggestion{}

	if m := titleFieldRe.FindStringSubmatch(stripped); m != nil {
		result.Title = m[1]
	}
	if m := summaryFieldRe.FindStringSubmatch(stripped); m != nil {
		result.Summary = m[1]
	}
	if m := categoryFieldRe.FindStringSubmatch(stripped); m != nil {
		result.Category = m[1]
	}
	if m := tagsFieldRe.FindStringSubmatch(stripped); m != nil {
		for _, item := range quotedItemRe.FindAllStringSubmatch(m[1], -1) {
			if tag := strings.TrimSpace(item[1]); tag != "" {
				result.Tags = append(result.Tags, tag)
			}
		}
	}

	if m := contentFieldRe.FindStringSubmatch(stripped); m != nil {
		result.Content = m[1]
	} else {
		result.Content = stripped
	}
	result.Content = repairContent(result.Content)

	// Heuristic fallbacks when explicit fields were absent.
	if result.Title == "" {
		result.Title = firstLine(result.Content)
	}
	if result.Summary == "" {
		result.Summary = secondParagraph(result.Content)
	}

	if len(result.Content) < minContentLength {
		return nil, fmt.Errorf("recovered content too short: %d < %d characters", len(result.Content), minContentLength)
	}
	if strings.TrimSpace(result.Title) == "" {
		return nil, fmt.Errorf("no title recoverable from text")
	}
	return result, nil
}

// finalize applies the shared text-repair pass and fills derived defaults.
func finalize(s ParsedSuggestion) ParsedSuggestion {
	s.Content = repairContent(s.Content)
	s.Title = collapseTitle(repairText(s.Title))
	s.Summary = repairText(s.Summary)
	s.Category = strings.TrimSpace(s.Category)

	if s.Title == "" {
		s.Title = fallbackTitle
	}
	if s.Summary == "" {
		s.Summary = secondParagraph(s.Content)
	}
	if s.Summary == "" {
		s.Summary = truncate(s.Content, 200)
	}
	if s.Category == "" {
		s.Category = "technology"
	}
	if len(s.Tags) == 0 {
		s.Tags = []string{"industry", s.Category}
	}
	if s.ReadTime <= 0 {
		s.ReadTime = estimateReadTime(s.Content)
	}
	return s
}

// repairText un-escapes embedded sequences, decodes entities, strips HTML
// tags and collapses whitespace. Used for single-line fields.
func repairText(s string) string {
	s = unescape(s)
	s = html.UnescapeString(s)
	s = htmlTagRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

// repairContent is the same pass but preserves line structure for markdown.
func repairContent(s string) string {
	s = unescape(s)
	s = html.UnescapeString(s)
	s = htmlTagRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(s)
}

var (
	htmlTagRe      = regexp.MustCompile(`<[^>]*>`)
	yearRe         = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	dateRe         = regexp.MustCompile(`\b\d{1,2}[/.-]\d{1,2}(?:[/.-]\d{2,4})?\b`)
	parenNumberRe  = regexp.MustCompile(`\(\s*\d+\s*\)`)
	danglingSepRe  = regexp.MustCompile(`\s*[-–—:|,]\s*$`)
	codeFenceRe    = regexp.MustCompile("(?m)^```[a-zA-Z]*\\s*$")
	escapedQuoteRe = regexp.MustCompile(`\\+"`)
)

// collapseTitle removes embedded dates, years and parenthetical numbers, then
// caps the title at 75 characters.
func collapseTitle(title string) string {
	title = yearRe.ReplaceAllString(title, "")
	title = dateRe.ReplaceAllString(title, "")
	title = parenNumberRe.ReplaceAllString(title, "")
	title = strings.Join(strings.Fields(title), " ")
	title = danglingSepRe.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)

	if len(title) > maxTitleLength {
		title = strings.TrimSpace(title[:maxTitleLength-3]) + "..."
	}
	return title
}

func unescape(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, " ")
	s = escapedQuoteRe.ReplaceAllString(s, `"`)
	return s
}

func stripCodeFences(s string) string {
	return strings.TrimSpace(codeFenceRe.ReplaceAllString(s, ""))
}

// escapeControlInStrings escapes raw control characters that appear inside
// JSON string literals so the span becomes parseable.
func escapeControlInStrings(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false

	for _, r := range s {
		if inString && !escaped {
			switch r {
			case '\n':
				b.WriteString(`\n`)
				continue
			case '\t':
				b.WriteString(`\t`)
				continue
			case '\r':
				continue
			}
		}

		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inString = !inString
		}
		b.WriteRune(r)
	}
	return b.String()
}

func firstLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line != "" {
			return line
		}
	}
	return ""
}

func secondParagraph(content string) string {
	paragraphs := strings.Split(content, "\n\n")
	var seen int
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" || strings.HasPrefix(para, "#") {
			continue
		}
		seen++
		if seen == 2 {
			return truncate(strings.Join(strings.Fields(para), " "), 300)
		}
	}
	return ""
}

func estimateReadTime(content string) int {
	words := len(strings.Fields(content))
	minutes := words / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n-3]) + "..."
}
