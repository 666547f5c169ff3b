// Package scraper defines the site adapter contract and the
// list-filter-detail-save pipeline every job board runs through.
package scraper

import (
	"context"

	"krjobs-scraper/internal/models"
)

// SiteAdapter is implemented once per job board.
//
// ScrapeDetail never loses a posting: when the detail page cannot be
// fetched or parsed, the adapter returns the list-derived posting it
// was given so the run still persists a usable record.
type SiteAdapter interface {
	// Source returns the site identifier written into every posting.
	Source() string

	// ScrapeList fetches the listing page(s) and returns shallow
	// postings, one per unique posting URL.
	ScrapeList(ctx context.Context) ([]*models.JobPosting, error)

	// ScrapeDetail enriches one posting from its detail page.
	ScrapeDetail(ctx context.Context, posting *models.JobPosting) (*models.JobPosting, error)

	// ScrapeAllDetails enriches a batch reusing one browser session,
	// pacing requests so the site is not hammered.
	ScrapeAllDetails(ctx context.Context, postings []*models.JobPosting) []*models.JobPosting
}
