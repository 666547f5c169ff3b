package dedup

import (
	"context"
	"errors"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krjobs-scraper/internal/models"
)

type fakeSource struct {
	urls []string
	err  error
}

func (f *fakeSource) LoadExistingIdentities(ctx context.Context) (mapset.Set[string], error) {
	if f.err != nil {
		return nil, f.err
	}
	return mapset.NewSet(f.urls...), nil
}

func posting(t *testing.T, url string) *models.JobPosting {
	t.Helper()
	p, err := models.NewJobPosting(models.JobPosting{
		URL:        url,
		Title:      "Test posting title",
		Source:     models.SourceKlik,
		CompanyKor: "회사",
	})
	require.NoError(t, err)
	return p
}

func TestFilterNew(t *testing.T) {
	f := NewFilter(&fakeSource{urls: []string{"https://a", "https://b"}})

	fresh, err := f.FilterNew(context.Background(), []*models.JobPosting{
		posting(t, "https://a"),
		posting(t, "https://c"),
	})
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "https://c", fresh[0].URL)
}

func TestFilterNew_EmptyStore(t *testing.T) {
	f := NewFilter(&fakeSource{})
	in := []*models.JobPosting{posting(t, "https://a"), posting(t, "https://b")}

	fresh, err := f.FilterNew(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, fresh)
}

func TestFilterNew_SourceError(t *testing.T) {
	f := NewFilter(&fakeSource{err: errors.New("backend down")})
	_, err := f.FilterNew(context.Background(), []*models.JobPosting{posting(t, "https://a")})
	assert.Error(t, err)
}

func TestIdentities(t *testing.T) {
	set := Identities([]*models.JobPosting{posting(t, "https://a"), posting(t, "https://a")})
	assert.Equal(t, 1, set.Cardinality())
	assert.True(t, set.Contains("https://a"))
}
