package klik

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"krjobs-scraper/internal/models"
)

func TestComposeContent_SectionOrder(t *testing.T) {
	d := &detail{
		Duties:    "홀 서빙 및 주방 보조",
		Salary:    "시급 12,000원",
		WorkTime:  "09:00~18:00",
		WorkDays:  "월~금",
		Preferred: "경력자 우대",
	}

	got := composeContent(d)
	want := "[담당업무]\n홀 서빙 및 주방 보조\n\n" +
		"[급여] 시급 12,000원\n\n" +
		"[근무시간] 09:00~18:00\n\n" +
		"[근무요일] 월~금\n\n" +
		"[우대조건] 경력자 우대"
	assert.Equal(t, want, got)
}

func TestComposeContent_RawFallback(t *testing.T) {
	d := &detail{ContentRaw: "페이지 전체 텍스트"}
	assert.Equal(t, "페이지 전체 텍스트", composeContent(d))
}

func TestMergeDetail_TitleAndCompanyFillOnlyWhenEmpty(t *testing.T) {
	p := &models.JobPosting{Title: "목록 제목", CompanyKor: "목록회사"}
	mergeDetail(p, &detail{Title: "상세 제목", Company: "상세회사"})
	assert.Equal(t, "목록 제목", p.Title)
	assert.Equal(t, "목록회사", p.CompanyKor)

	p2 := &models.JobPosting{}
	mergeDetail(p2, &detail{Title: "상세 제목", Company: "상세회사"})
	assert.Equal(t, "상세 제목", p2.Title)
	assert.Equal(t, "상세회사", p2.CompanyKor)
}

func TestMergeDetail_KoreanLevelWithDescription(t *testing.T) {
	p := &models.JobPosting{}
	mergeDetail(p, &detail{KoreanLevel: "중급", KoreanLevelDesc: "일상대화 가능"})
	assert.Equal(t, "중급 (일상대화 가능)", p.KoreanRequirement)

	p2 := &models.JobPosting{}
	mergeDetail(p2, &detail{KoreanLevel: "무관"})
	assert.Equal(t, "무관", p2.KoreanRequirement)
}

func TestMergeDetail_VisaNoteFallback(t *testing.T) {
	p := &models.JobPosting{}
	mergeDetail(p, &detail{VisaNote: "확인필요"})
	assert.Equal(t, "확인필요", p.Visa)

	p2 := &models.JobPosting{}
	mergeDetail(p2, &detail{Visa: "E-7, F-4", VisaNote: "확인필요"})
	assert.Equal(t, "E-7, F-4", p2.Visa)
}

func TestMergeDetail_E7IsMonotonic(t *testing.T) {
	p := &models.JobPosting{E7Support: true}
	mergeDetail(p, &detail{})
	assert.True(t, p.E7Support)
}

func TestMergeDetail_OverwriteFields(t *testing.T) {
	p := &models.JobPosting{Location: "서울", JobType: "아르바이트"}
	mergeDetail(p, &detail{Location: "경기 수원시", JobType: "정규직, 계약직"})
	assert.Equal(t, "경기 수원시", p.Location)
	assert.Equal(t, "정규직, 계약직", p.JobType)
}
