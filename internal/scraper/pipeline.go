package scraper

import (
	"context"
	"log"

	"krjobs-scraper/internal/models"
	"krjobs-scraper/internal/storage"
)

// State names the phase a pipeline run is in. Mostly useful for the
// HTTP surface and for log lines.
type State string

const (
	StateIdle        State = "idle"
	StateListFetch   State = "list_fetch"
	StateFilter      State = "filter"
	StateDetailFetch State = "detail_fetch"
	StateValidate    State = "validate"
	StatePersist     State = "persist"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Pipeline runs one site through list, dedup, detail, validate and
// persist.
type Pipeline struct {
	adapter SiteAdapter
	store   storage.Storage
	state   State
}

func NewPipeline(adapter SiteAdapter, store storage.Storage) *Pipeline {
	return &Pipeline{adapter: adapter, store: store, state: StateIdle}
}

// State reports the phase of the most recent Run.
func (p *Pipeline) State() State {
	return p.state
}

// Run scrapes the adapter's site and persists whatever survives. It
// returns the number of new postings saved. A listing or storage
// failure aborts the run; a single posting failing its detail fetch or
// validation does not.
func (p *Pipeline) Run(ctx context.Context, deepScrape bool) (int, error) {
	site := p.adapter.Source()

	p.state = StateListFetch
	log.Printf("🔍 [%s] Phase 1: fetching listing", site)
	listed, err := p.adapter.ScrapeList(ctx)
	if err != nil {
		p.state = StateFailed
		return 0, &ListFetchError{Site: site, Err: err}
	}
	log.Printf("📋 [%s] Found %d postings on the listing", site, len(listed))
	if len(listed) == 0 {
		p.state = StateDone
		return 0, nil
	}

	p.state = StateFilter
	log.Printf("🔍 [%s] Phase 2: filtering against stored postings", site)
	fresh, err := p.store.FilterNew(ctx, listed)
	if err != nil {
		p.state = StateFailed
		return 0, err
	}
	if len(fresh) == 0 {
		log.Printf("ℹ️ [%s] Nothing new, skipping", site)
		p.state = StateDone
		return 0, nil
	}

	if deepScrape {
		p.state = StateDetailFetch
		log.Printf("📦 [%s] Phase 3: deep scraping %d postings", site, len(fresh))
		fresh = p.adapter.ScrapeAllDetails(ctx, fresh)
	} else {
		log.Printf("ℹ️ [%s] Phase 3 skipped (deep scrape disabled)", site)
	}

	p.state = StateValidate
	valid := make([]*models.JobPosting, 0, len(fresh))
	for _, posting := range fresh {
		if err := posting.Validate(); err != nil {
			log.Printf("⚠️ [%s] Dropping invalid posting: %v", site, err)
			continue
		}
		valid = append(valid, posting)
	}
	if len(valid) == 0 {
		log.Printf("⚠️ [%s] No postings survived validation", site)
		p.state = StateDone
		return 0, nil
	}

	p.state = StatePersist
	log.Printf("💾 [%s] Phase 4: saving %d postings", site, len(valid))
	saved, err := p.store.Save(ctx, valid, true)
	if err != nil {
		p.state = StateFailed
		return 0, err
	}

	p.state = StateDone
	log.Printf("✅ [%s] Run complete: %d new postings", site, saved)
	return saved, nil
}
