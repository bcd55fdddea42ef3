package ai

import (
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/draftpress/draftpress/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Config{Level: "error", Output: "stderr"})
	os.Exit(m.Run())
}

const wellFormedResponse = `{
  "title": "Why Edge Computing Changes Application Design",
  "summary": "Edge computing moves work closer to users. That shift reshapes how applications are built.",
  "content": "## Introduction\n\nEdge computing moves computation closer to the user.\n\n## Why It Matters\n\nLatency budgets shrink every year and users notice.\n\n## Conclusion\n\nDesign for locality first.",
  "tags": ["edge", "architecture", "cloud"],
  "category": "technology",
  "featured": true,
  "read_time": 4,
  "publish_date": "2026-01-15"
}`

func TestParseWellFormedJSON(t *testing.T) {
	p := NewParser()
	result := p.Parse(wellFormedResponse)

	if result.Title != "Why Edge Computing Changes Application Design" {
		t.Errorf("unexpected title: %q", result.Title)
	}
	if !strings.Contains(result.Content, "## Introduction") {
		t.Errorf("content lost markdown structure: %q", result.Content)
	}
	if !reflect.DeepEqual(result.Tags, []string{"edge", "architecture", "cloud"}) {
		t.Errorf("unexpected tags: %v", result.Tags)
	}
	if result.Category != "technology" {
		t.Errorf("unexpected category: %q", result.Category)
	}
	if !result.Featured {
		t.Error("expected featured flag to survive parsing")
	}
	if result.ReadTime != 4 {
		t.Errorf("unexpected read time: %d", result.ReadTime)
	}
}

func TestParseIdempotent(t *testing.T) {
	p := NewParser()
	first := p.Parse(wellFormedResponse)
	second := p.Parse(wellFormedResponse)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-parsing the same response changed the result:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestParseCodeFencedJSON(t *testing.T) {
	p := NewParser()
	fenced := "```json\n" + wellFormedResponse + "\n```"
	result := p.Parse(fenced)

	if result.Title != "Why Edge Computing Changes Application Design" {
		t.Errorf("code fences broke parsing, got title %q", result.Title)
	}
}

func TestParseEscapedNewlinesInsideStrings(t *testing.T) {
	p := NewParser()
	// Raw newlines inside the content string literal are a common model
	// output defect.
	raw := `{"title": "Broken But Recoverable", "content": "## Heading
First paragraph of the article body.

Second paragraph with more detail."}`

	result := p.Parse(raw)
	if result.Title != "Broken But Recoverable" {
		t.Errorf("unexpected title: %q", result.Title)
	}
	if !strings.Contains(result.Content, "First paragraph") {
		t.Errorf("content not recovered: %q", result.Content)
	}
}

func TestParseRegexFallback(t *testing.T) {
	p := NewParser()
	body := strings.Repeat("A reasonably long paragraph about infrastructure and tooling. ", 12)
	raw := `The model said: "title": "Platform Teams Reconsidered", "category": "engineering", "tags": ["platform", "teams"] and then wrote ` + body

	result := p.Parse(raw)
	if result.Title != "Platform Teams Reconsidered" {
		t.Errorf("regex extraction failed, got title %q", result.Title)
	}
	if result.Category != "engineering" {
		t.Errorf("unexpected category: %q", result.Category)
	}
	if len(result.Tags) != 2 {
		t.Errorf("unexpected tags: %v", result.Tags)
	}
}

func TestParseNeverFails(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"<html><body><h1>Not JSON at all</h1><p>plain page</p></body></html>",
		`{"title": "Truncated`,
		"just a couple of words",
		"{}",
		"```\n```",
	}

	p := NewParser()
	for _, in := range inputs {
		result := p.Parse(in)
		if strings.TrimSpace(result.Title) == "" {
			t.Errorf("empty title for input %q", in)
		}
		if strings.TrimSpace(result.Content) == "" {
			t.Errorf("empty content for input %q", in)
		}
	}
}

func TestParsePlaceholderOnShortContent(t *testing.T) {
	p := NewParser()
	result := p.Parse("too short to be an article")

	if result.Title != fallbackTitle {
		t.Errorf("expected placeholder title, got %q", result.Title)
	}
	if result.Content == "" {
		t.Error("placeholder must keep the surviving text")
	}
}

func TestParseTitleRepair(t *testing.T) {
	p := NewParser()
	longTitle := "Breaking News 2025: The Extremely Long And Winding Announcement Title That Keeps Going (3) And Going Beyond Any Reasonable Limit"
	raw := `{"title": "` + longTitle + `", "content": "## Body\n\nEnough content to pass validation and fill the article out properly."}`

	result := p.Parse(raw)
	if len(result.Title) > 75 {
		t.Errorf("title not capped: %d chars: %q", len(result.Title), result.Title)
	}
	if strings.Contains(result.Title, "2025") {
		t.Errorf("year not removed from title: %q", result.Title)
	}
	if strings.Contains(result.Title, "(3)") {
		t.Errorf("parenthetical number not removed: %q", result.Title)
	}
}

func TestParseStripsHTML(t *testing.T) {
	p := NewParser()
	raw := `{"title": "Clean Output", "content": "<p>First paragraph.</p><script>alert(1)</script>\n\nSecond &amp; final paragraph."}`

	result := p.Parse(raw)
	if strings.Contains(result.Content, "<") {
		t.Errorf("raw HTML tags survived: %q", result.Content)
	}
	if !strings.Contains(result.Content, "Second & final") {
		t.Errorf("HTML entities not decoded: %q", result.Content)
	}
}
