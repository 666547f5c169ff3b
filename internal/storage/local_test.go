package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krjobs-scraper/internal/models"
)

func testPosting(t *testing.T, url, source string) *models.JobPosting {
	t.Helper()
	p, err := models.NewJobPosting(models.JobPosting{
		URL:        url,
		Title:      "비자 지원 가능한 생산직 채용",
		Source:     source,
		CompanyKor: "한국전자",
		Deadline:   "D-7",
		ScrapedAt:  time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return p
}

func TestNewLocal_BadFormat(t *testing.T) {
	_, err := NewLocal(t.TempDir(), "parquet")
	assert.Error(t, err)
}

func TestLocalCSV_SaveAndReload(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir(), "csv")
	require.NoError(t, err)

	in := []*models.JobPosting{
		testPosting(t, "https://kowork.kr/en/post/1", models.SourceKowork),
		testPosting(t, "https://www.klik.co.kr/jobs/ab12", models.SourceKlik),
	}
	n, err := store.Save(ctx, in, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, in[0], loaded[0])

	ids, err := store.LoadExistingIdentities(ctx)
	require.NoError(t, err)
	assert.True(t, ids.Contains("https://kowork.kr/en/post/1"))
	assert.Equal(t, 2, ids.Cardinality())
}

func TestLocalCSV_SaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir(), "csv")
	require.NoError(t, err)

	in := []*models.JobPosting{testPosting(t, "https://kowork.kr/en/post/1", models.SourceKowork)}
	_, err = store.Save(ctx, in, true)
	require.NoError(t, err)
	_, err = store.Save(ctx, in, true)
	require.NoError(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total, "double save must merge on the identity key")
}

func TestLocalCSV_FilterNew(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir(), "csv")
	require.NoError(t, err)

	a := testPosting(t, "https://a", models.SourceKomate)
	b := testPosting(t, "https://b", models.SourceKomate)
	_, err = store.Save(ctx, []*models.JobPosting{a, b}, true)
	require.NoError(t, err)

	c := testPosting(t, "https://c", models.SourceKomate)
	fresh, err := store.FilterNew(ctx, []*models.JobPosting{a, c})
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "https://c", fresh[0].URL)
}

func TestLocalCSV_IdentityCacheTracksSaves(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir(), "csv")
	require.NoError(t, err)

	ids, err := store.LoadExistingIdentities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, ids.Cardinality())

	_, err = store.Save(ctx, []*models.JobPosting{testPosting(t, "https://a", models.SourceKlik)}, true)
	require.NoError(t, err)

	// Saved URLs are folded into the cache without a re-read.
	require.NotNil(t, store.identities)
	ids, err = store.LoadExistingIdentities(ctx)
	require.NoError(t, err)
	assert.True(t, ids.Contains("https://a"))
}

func TestLocalCSV_FailedSaveInvalidatesIdentityCache(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir(), "csv")
	require.NoError(t, err)

	_, err = store.Save(ctx, []*models.JobPosting{testPosting(t, "https://a", models.SourceKlik)}, true)
	require.NoError(t, err)
	_, err = store.LoadExistingIdentities(ctx)
	require.NoError(t, err)
	require.NotNil(t, store.identities)

	// The data file may be partially written when the write fails, so
	// the cache must not survive.
	store.dir = filepath.Join(store.dir, "missing")
	_, err = store.Save(ctx, []*models.JobPosting{testPosting(t, "https://b", models.SourceKlik)}, true)
	require.Error(t, err)
	assert.Nil(t, store.identities)
}

func TestLocalXLSX_SheetPerSource(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir(), "xlsx")
	require.NoError(t, err)

	in := []*models.JobPosting{
		testPosting(t, "https://kowork.kr/en/post/1", models.SourceKowork),
		testPosting(t, "https://kowork.kr/en/post/2", models.SourceKowork),
		testPosting(t, "https://komate.saramin.co.kr/recruits/9", models.SourceKomate),
	}
	n, err := store.Save(ctx, in, true)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.BySource[models.SourceKowork])
	assert.Equal(t, 1, stats.BySource[models.SourceKomate])
}

func TestLocalXLSX_UpsertAcrossSaves(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir(), "xlsx")
	require.NoError(t, err)

	first := testPosting(t, "https://kowork.kr/en/post/1", models.SourceKowork)
	_, err = store.Save(ctx, []*models.JobPosting{first}, true)
	require.NoError(t, err)

	updated := testPosting(t, "https://kowork.kr/en/post/1", models.SourceKowork)
	updated.ContentRaw = "[Job Description]\nOperate the production line"
	_, err = store.Save(ctx, []*models.JobPosting{updated}, true)
	require.NoError(t, err)

	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0].IsComplete(), "second save must replace the row, not duplicate it")
}

func TestLocal_SaveNothing(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "csv")
	require.NoError(t, err)

	n, err := store.Save(context.Background(), nil, true)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLocal_Backup(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir(), "csv")
	require.NoError(t, err)

	_, err = store.Save(ctx, []*models.JobPosting{testPosting(t, "https://a", models.SourceKlik)}, true)
	require.NoError(t, err)

	path, err := store.Backup()
	require.NoError(t, err)
	assert.FileExists(t, path)
}
