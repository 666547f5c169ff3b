package runner

import (
	"context"
	"errors"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krjobs-scraper/internal/config"
	"krjobs-scraper/internal/models"
	"krjobs-scraper/internal/scraper"
	"krjobs-scraper/internal/storage"
)

type stubStore struct {
	saved []*models.JobPosting
}

func (s *stubStore) LoadExistingIdentities(_ context.Context) (mapset.Set[string], error) {
	return mapset.NewSet[string](), nil
}

func (s *stubStore) FilterNew(_ context.Context, postings []*models.JobPosting) ([]*models.JobPosting, error) {
	return postings, nil
}

func (s *stubStore) Save(_ context.Context, postings []*models.JobPosting, _ bool) (int, error) {
	s.saved = append(s.saved, postings...)
	return len(postings), nil
}

func (s *stubStore) Stats(_ context.Context) (*storage.Stats, error) {
	return &storage.Stats{Total: len(s.saved)}, nil
}

type stubAdapter struct {
	source  string
	listed  []*models.JobPosting
	listErr error
}

func (a *stubAdapter) Source() string { return a.source }

func (a *stubAdapter) ScrapeList(_ context.Context) ([]*models.JobPosting, error) {
	return a.listed, a.listErr
}

func (a *stubAdapter) ScrapeDetail(_ context.Context, p *models.JobPosting) (*models.JobPosting, error) {
	return p, nil
}

func (a *stubAdapter) ScrapeAllDetails(_ context.Context, ps []*models.JobPosting) []*models.JobPosting {
	return ps
}

func posting(url, source string) *models.JobPosting {
	return &models.JobPosting{
		URL:        url,
		Title:      "외국인 환영 생산직 채용 공고",
		Source:     source,
		CompanyKor: "한국전자",
	}
}

func newTestRunner(store storage.Storage) *Runner {
	r := New(&config.Config{}, store)
	r.Adapters = map[string]scraper.SiteAdapter{}
	return r
}

func TestRun_AllSitesAggregated(t *testing.T) {
	store := &stubStore{}
	r := newTestRunner(store)
	r.Adapters[models.SourceKowork] = &stubAdapter{
		source: models.SourceKowork,
		listed: []*models.JobPosting{posting("https://kowork.kr/en/post/1", models.SourceKowork)},
	}
	r.Adapters[models.SourceKomate] = &stubAdapter{
		source: models.SourceKomate,
		listed: []*models.JobPosting{
			posting("https://komate.saramin.co.kr/recruits/1", models.SourceKomate),
			posting("https://komate.saramin.co.kr/recruits/2", models.SourceKomate),
		},
	}

	summary := r.Run(context.Background(), []string{models.SourceKowork, models.SourceKomate}, true)

	assert.Equal(t, 3, summary.TotalNew)
	assert.Empty(t, summary.Errors)
	assert.Equal(t, "ok", summary.Sites[models.SourceKowork].Status)
	assert.Equal(t, 2, summary.Sites[models.SourceKomate].NewPostings)
	require.NotNil(t, summary.StorageStats)
	assert.Equal(t, 3, summary.StorageStats.Total)
}

func TestRun_SiteFailureIsIsolated(t *testing.T) {
	store := &stubStore{}
	r := newTestRunner(store)
	r.Adapters[models.SourceKowork] = &stubAdapter{
		source:  models.SourceKowork,
		listErr: errors.New("net::ERR_CONNECTION_REFUSED"),
	}
	r.Adapters[models.SourceKlik] = &stubAdapter{
		source: models.SourceKlik,
		listed: []*models.JobPosting{posting("https://www.klik.co.kr/jobs/ab12", models.SourceKlik)},
	}

	summary := r.Run(context.Background(), []string{models.SourceKowork, models.SourceKlik}, true)

	assert.Equal(t, "error", summary.Sites[models.SourceKowork].Status)
	assert.Equal(t, "ok", summary.Sites[models.SourceKlik].Status)
	assert.Equal(t, 1, summary.TotalNew)
	assert.Len(t, summary.Errors, 1)
}

func TestRun_UnknownSite(t *testing.T) {
	r := newTestRunner(&stubStore{})

	summary := r.Run(context.Background(), []string{"linkedin"}, false)

	assert.Equal(t, "error", summary.Sites["linkedin"].Status)
	assert.Contains(t, summary.Sites["linkedin"].Error, "unknown site")
	assert.Equal(t, 0, summary.TotalNew)
}

func TestRun_DefaultsToAllSites(t *testing.T) {
	r := newTestRunner(&stubStore{})
	for _, site := range AllSites() {
		r.Adapters[site] = &stubAdapter{source: site}
	}

	summary := r.Run(context.Background(), nil, false)
	assert.Len(t, summary.Sites, 3)
}

func TestNew_RegistersRealAdapters(t *testing.T) {
	r := New(&config.Config{}, &stubStore{})
	for _, site := range AllSites() {
		adapter, ok := r.Adapters[site]
		require.True(t, ok, site)
		assert.Equal(t, site, adapter.Source())
	}
}
