package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPosting() JobPosting {
	return JobPosting{
		URL:        "https://komate.saramin.co.kr/recruits/123",
		Title:      "Production line operator (E-7 sponsorship)",
		Source:     SourceKomate,
		CompanyKor: "테스트전자",
	}
}

func TestNewJobPosting_Valid(t *testing.T) {
	p, err := NewJobPosting(validPosting())
	require.NoError(t, err)
	assert.False(t, p.ScrapedAt.IsZero(), "ScrapedAt should default to creation time")
	assert.False(t, p.IsComplete())
}

func TestNewJobPosting_MissingURL(t *testing.T) {
	in := validPosting()
	in.URL = ""
	_, err := NewJobPosting(in)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "url", verr.Field)
}

func TestNewJobPosting_MissingTitle(t *testing.T) {
	in := validPosting()
	in.Title = ""
	_, err := NewJobPosting(in)
	assert.Error(t, err)
}

func TestNewJobPosting_MissingSource(t *testing.T) {
	in := validPosting()
	in.Source = ""
	_, err := NewJobPosting(in)
	assert.Error(t, err)
}

func TestNewJobPosting_MissingBothCompanies(t *testing.T) {
	in := validPosting()
	in.CompanyKor = ""
	in.CompanyEng = ""
	_, err := NewJobPosting(in)
	assert.Error(t, err)
}

func TestNewJobPosting_EnglishCompanyOnly(t *testing.T) {
	in := validPosting()
	in.CompanyKor = ""
	in.CompanyEng = "Test Electronics Inc."
	_, err := NewJobPosting(in)
	assert.NoError(t, err)
}

func TestIsComplete(t *testing.T) {
	p, err := NewJobPosting(validPosting())
	require.NoError(t, err)
	assert.False(t, p.IsComplete())

	p.ContentRaw = "[담당 업무]\n라인 오퍼레이션"
	assert.True(t, p.IsComplete())
}

func TestRecordRoundTrip(t *testing.T) {
	in := validPosting()
	in.CompanyEng = "Test Electronics"
	in.Location = "경기 평택시"
	in.Visa = "E-7, F-2"
	in.E7Support = true
	in.KoreanRequirement = "일상 대화 가능"
	in.JobCategory = "생산 · 제조"
	in.JobType = "정규직"
	in.Deadline = "D-14"
	in.ContentRaw = "[담당 업무]\n설비 운전"
	in.ScrapedAt = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	p, err := NewJobPosting(in)
	require.NoError(t, err)

	row := p.Record()
	require.Len(t, row, len(ColumnOrder()))
	assert.Equal(t, p.URL, row[0], "identity URL must be the first column")
	assert.Equal(t, "Y", row[6])

	back, err := FromRecord(row)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestRecord_SponsorshipToken(t *testing.T) {
	p, err := NewJobPosting(validPosting())
	require.NoError(t, err)
	assert.Equal(t, "N", p.Record()[6])

	p.E7Support = true
	assert.Equal(t, "Y", p.Record()[6])
}

func TestFromRecord_TooShort(t *testing.T) {
	_, err := FromRecord([]string{"https://example.com", "title"})
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "한국어", Truncate("한국어 능력", 3))
	assert.Equal(t, "short", Truncate("short", 100))
}
