// Package runner orchestrates pipeline runs across the configured
// sites. Sites run sequentially so only one browser is alive at a time
// and the boards never see parallel traffic from us.
package runner

import (
	"context"
	"fmt"
	"log"
	"time"

	"krjobs-scraper/internal/config"
	"krjobs-scraper/internal/models"
	"krjobs-scraper/internal/scraper"
	"krjobs-scraper/internal/scraper/klik"
	"krjobs-scraper/internal/scraper/komate"
	"krjobs-scraper/internal/scraper/kowork"
	"krjobs-scraper/internal/storage"
)

// SiteResult is the outcome of one site's pipeline run.
type SiteResult struct {
	Status      string `json:"status"`
	NewPostings int    `json:"new_postings"`
	Error       string `json:"error,omitempty"`
}

// Summary aggregates a full run across sites.
type Summary struct {
	StartedAt    time.Time             `json:"started_at"`
	CompletedAt  time.Time             `json:"completed_at"`
	Sites        map[string]SiteResult `json:"sites"`
	TotalNew     int                   `json:"total_new"`
	Errors       []string              `json:"errors,omitempty"`
	StorageStats *storage.Stats        `json:"storage_stats,omitempty"`
}

// Duration is the wall time the run took.
func (s *Summary) Duration() time.Duration {
	return s.CompletedAt.Sub(s.StartedAt)
}

// Runner drives the per-site pipelines against one storage backend.
type Runner struct {
	cfg   *config.Config
	store storage.Storage

	// Adapters maps site name to its scraper. Populated with the real
	// site adapters by New; tests swap in fakes.
	Adapters map[string]scraper.SiteAdapter
}

func New(cfg *config.Config, store storage.Storage) *Runner {
	return &Runner{
		cfg:   cfg,
		store: store,
		Adapters: map[string]scraper.SiteAdapter{
			models.SourceKowork: kowork.New(cfg),
			models.SourceKomate: komate.New(cfg),
			models.SourceKlik:   klik.New(cfg),
		},
	}
}

// AllSites lists the supported site names in run order.
func AllSites() []string {
	return []string{models.SourceKowork, models.SourceKomate, models.SourceKlik}
}

// Run executes the pipeline for each named site in order. One site
// failing does not stop the others; its error is recorded in the
// summary instead.
func (r *Runner) Run(ctx context.Context, sites []string, deepScrape bool) *Summary {
	if len(sites) == 0 {
		sites = AllSites()
	}

	summary := &Summary{
		StartedAt: time.Now(),
		Sites:     map[string]SiteResult{},
	}

	log.Printf("🏁 Starting run for %d site(s)", len(sites))
	for _, site := range sites {
		adapter, ok := r.Adapters[site]
		if !ok {
			msg := fmt.Sprintf("unknown site %q", site)
			summary.Sites[site] = SiteResult{Status: "error", Error: msg}
			summary.Errors = append(summary.Errors, msg)
			log.Printf("❌ %s", msg)
			continue
		}

		saved, err := scraper.NewPipeline(adapter, r.store).Run(ctx, deepScrape)
		if err != nil {
			summary.Sites[site] = SiteResult{Status: "error", Error: err.Error()}
			summary.Errors = append(summary.Errors, err.Error())
			log.Printf("❌ [%s] Run failed: %v", site, err)
			continue
		}

		summary.Sites[site] = SiteResult{Status: "ok", NewPostings: saved}
		summary.TotalNew += saved
	}

	if stats, err := r.store.Stats(ctx); err != nil {
		log.Printf("⚠️ Could not read storage stats: %v", err)
	} else {
		summary.StorageStats = stats
	}

	summary.CompletedAt = time.Now()
	log.Printf("🏁 Run complete: %d new postings in %.1fs", summary.TotalNew, summary.Duration().Seconds())
	return summary
}
