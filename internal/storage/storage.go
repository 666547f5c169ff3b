// Storage backends for scraped postings. Two implementations: a local
// file backend (CSV or XLSX) and a Supabase Postgres backend. Both key
// records on the posting URL.

package storage

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"krjobs-scraper/internal/config"
	"krjobs-scraper/internal/models"
)

type Stats struct {
	Total    int            `json:"total"`
	BySource map[string]int `json:"by_source"`
	Location string         `json:"location"`
}

type Storage interface {
	//LoadExistingIdentities returns the URL set of everything stored.
	//Backends cache the set per run; a successful Save folds the saved
	//URLs into the cache, a failed Save invalidates it.
	LoadExistingIdentities(ctx context.Context) (mapset.Set[string], error)

	//FilterNew keeps only postings whose URL is not stored yet.
	FilterNew(ctx context.Context, postings []*models.JobPosting) ([]*models.JobPosting, error)

	//Save persists the postings, merging on URL. With append=false any
	//existing data is replaced. Returns the number of records written.
	Save(ctx context.Context, postings []*models.JobPosting, append bool) (int, error)

	Stats(ctx context.Context) (*Stats, error)
}

// StorageError marks backend failures. A storage failure is fatal for the
// site run that hit it, but never for sibling site runs.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// FromConfig builds the backend the config selects.
func FromConfig(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageType {
	case "supabase":
		return ConnectSupabase(ctx, cfg.DatabaseURL)
	default:
		return NewLocal(cfg.DataDir, cfg.FileFormat)
	}
}
