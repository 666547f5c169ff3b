// Identity-based novelty check. A posting is new when its URL is not in
// the set of identities the storage backend already holds.

package dedup

import (
	"context"
	"log"

	mapset "github.com/deckarep/golang-set/v2"

	"krjobs-scraper/internal/models"
)

// IdentitySource is the slice of the storage contract the filter needs.
type IdentitySource interface {
	LoadExistingIdentities(ctx context.Context) (mapset.Set[string], error)
}

type Filter struct {
	src IdentitySource
}

func NewFilter(src IdentitySource) *Filter {
	return &Filter{src: src}
}

// FilterNew returns the postings whose URL the source has not seen.
// Input order is preserved.
func (f *Filter) FilterNew(ctx context.Context, postings []*models.JobPosting) ([]*models.JobPosting, error) {
	existing, err := f.src.LoadExistingIdentities(ctx)
	if err != nil {
		return nil, err
	}

	fresh := make([]*models.JobPosting, 0, len(postings))
	for _, p := range postings {
		if !existing.Contains(p.URL) {
			fresh = append(fresh, p)
		}
	}
	log.Printf("🔍 Deduplication: %d total -> %d new postings", len(postings), len(fresh))
	return fresh, nil
}

// Identities collects the URL set of a batch. Storage backends use it
// to keep their cached identity set in sync after a save.
func Identities(postings []*models.JobPosting) mapset.Set[string] {
	set := mapset.NewSet[string]()
	for _, p := range postings {
		set.Add(p.URL)
	}
	return set
}
