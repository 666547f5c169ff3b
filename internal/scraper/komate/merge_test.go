package komate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"krjobs-scraper/internal/models"
)

func TestComposeContent_SectionOrder(t *testing.T) {
	d := &detail{
		Duties:    "생산 라인 운영",
		Preferred: "지게차 면허",
		Benefits:  "기숙사 제공",
		Career:    "신입",
		Education: "학력무관",
	}

	got := composeContent(d)
	want := "[담당 업무]\n생산 라인 운영\n\n" +
		"[우대 조건]\n지게차 면허\n\n" +
		"[복지 및 혜택]\n기숙사 제공\n\n" +
		"[경력] 신입\n\n" +
		"[학력] 학력무관"
	assert.Equal(t, want, got)
}

func TestComposeContent_RawFallback(t *testing.T) {
	d := &detail{ContentRaw: "페이지 전체 텍스트"}
	assert.Equal(t, "페이지 전체 텍스트", composeContent(d))
}

func TestMergeDetail_DetailFieldsOverwrite(t *testing.T) {
	p := &models.JobPosting{
		Location:          "서울 강남구",
		Visa:              "E-7",
		KoreanRequirement: "일상 대화 가능",
	}
	mergeDetail(p, &detail{
		LocationFull: "경기 화성시 삼성전자로 1",
		Visas:        []string{"E-7", "F-2", "F-4"},
		KoreanLevel:  "기초 회화 가능",
	})
	assert.Equal(t, "경기 화성시 삼성전자로 1", p.Location)
	assert.Equal(t, "E-7, F-2, F-4", p.Visa)
	assert.Equal(t, "기초 회화 가능", p.KoreanRequirement)
}

func TestMergeDetail_LocationWhitespaceCollapsed(t *testing.T) {
	p := &models.JobPosting{}
	mergeDetail(p, &detail{LocationFull: "경기 화성시\n  삼성전자로 1\t"})
	assert.Equal(t, "경기 화성시 삼성전자로 1", p.Location)
}

func TestMergeDetail_CompanyFillsOnlyWhenEmpty(t *testing.T) {
	p := &models.JobPosting{CompanyKor: "목록회사"}
	mergeDetail(p, &detail{Company: "상세회사"})
	assert.Equal(t, "목록회사", p.CompanyKor)

	p2 := &models.JobPosting{}
	mergeDetail(p2, &detail{Company: "상세회사"})
	assert.Equal(t, "상세회사", p2.CompanyKor)
}

func TestMergeDetail_E7IsMonotonic(t *testing.T) {
	p := &models.JobPosting{E7Support: true}
	mergeDetail(p, &detail{})
	assert.True(t, p.E7Support)
}

func TestMergeDetail_EmptyDetailKeepsContent(t *testing.T) {
	p := &models.JobPosting{ContentRaw: "기존 내용"}
	mergeDetail(p, &detail{})
	assert.Equal(t, "기존 내용", p.ContentRaw)
}
