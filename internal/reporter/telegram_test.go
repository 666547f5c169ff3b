package reporter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"krjobs-scraper/internal/runner"
	"krjobs-scraper/internal/storage"
)

func TestSummaryText(t *testing.T) {
	started := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	summary := &runner.Summary{
		StartedAt:   started,
		CompletedAt: started.Add(12500 * time.Millisecond),
		Sites: map[string]runner.SiteResult{
			"kowork": {Status: "ok", NewPostings: 3},
			"klik":   {Status: "error", Error: "list fetch failed (page 1)"},
		},
		TotalNew:     3,
		StorageStats: &storage.Stats{Total: 42},
	}

	text := summaryText(summary)

	assert.Contains(t, text, "📦 *Job scrape complete*")
	assert.Contains(t, text, "🆕 New postings: 3")
	assert.Contains(t, text, "⏱ Duration: 12\\.5s")
	assert.Contains(t, text, "✅ kowork: 3 new")
	assert.Contains(t, text, "❌ klik: list fetch failed \\(page 1\\)")
	assert.Contains(t, text, "💾 Stored total: 42")
}

func TestSummaryText_NoStorageStats(t *testing.T) {
	summary := &runner.Summary{
		Sites: map[string]runner.SiteResult{
			"komate": {Status: "ok", NewPostings: 0},
		},
	}

	assert.NotContains(t, summaryText(summary), "Stored total")
}

func TestErrorText(t *testing.T) {
	err := errors.New("2 site(s) failed: kowork timeout; klik timeout")
	assert.Equal(t, "❌ Error: 2 site(s) failed: kowork timeout; klik timeout", errorText(err))
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, "E\\-7\\-4 \\(신입\\)", escapeMarkdown("E-7-4 (신입)"))
	assert.Equal(t, "12\\.5s", escapeMarkdown("12.5s"))
}
