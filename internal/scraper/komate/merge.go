package komate

import (
	"fmt"
	"strings"

	"krjobs-scraper/internal/models"
	"krjobs-scraper/internal/scraper"
)

// detail is the typed form of the object detailScript returns.
type detail struct {
	Company      string
	Title        string
	Deadline     string
	LocationFull string
	KoreanLevel  string
	Visas        []string
	E7Support    bool
	Career       string
	Education    string
	Duties       string
	Preferred    string
	Benefits     string
	ContentRaw   string
}

func decodeDetail(m map[string]interface{}) *detail {
	return &detail{
		Company:      scraper.AsString(m, "company"),
		Title:        scraper.AsString(m, "title"),
		Deadline:     scraper.AsString(m, "deadline"),
		LocationFull: scraper.AsString(m, "locationFull"),
		KoreanLevel:  scraper.AsString(m, "koreanLevel"),
		Visas:        scraper.AsStrings(m, "visas"),
		E7Support:    scraper.AsBool(m, "e7Support"),
		Career:       scraper.AsString(m, "career"),
		Education:    scraper.AsString(m, "education"),
		Duties:       scraper.AsString(m, "duties"),
		Preferred:    scraper.AsString(m, "preferred"),
		Benefits:     scraper.AsString(m, "benefits"),
		ContentRaw:   scraper.AsString(m, "contentRaw"),
	}
}

func composeContent(d *detail) string {
	var parts []string

	if d.Duties != "" {
		parts = append(parts, fmt.Sprintf("[담당 업무]\n%s", d.Duties))
	}
	if d.Preferred != "" {
		parts = append(parts, fmt.Sprintf("[우대 조건]\n%s", d.Preferred))
	}
	if d.Benefits != "" {
		parts = append(parts, fmt.Sprintf("[복지 및 혜택]\n%s", d.Benefits))
	}
	if d.Career != "" {
		parts = append(parts, fmt.Sprintf("[경력] %s", d.Career))
	}
	if d.Education != "" {
		parts = append(parts, fmt.Sprintf("[학력] %s", d.Education))
	}

	if len(parts) > 0 {
		return strings.Join(parts, "\n\n")
	}
	return d.ContentRaw
}

// mergeDetail folds detail-page data into a list-derived posting. The
// detail page's level text and visa badges are authoritative; the
// company only fills when the list card had none, and e7 support never
// flips back to false.
func mergeDetail(posting *models.JobPosting, d *detail) {
	if d.Company != "" && posting.CompanyKor == "" {
		posting.CompanyKor = d.Company
	}
	if d.KoreanLevel != "" {
		posting.KoreanRequirement = d.KoreanLevel
	}
	if len(d.Visas) > 0 {
		posting.Visa = strings.Join(d.Visas, ", ")
	}
	if d.E7Support {
		posting.E7Support = true
	}
	if d.LocationFull != "" {
		// 근무지 text keeps the newlines left behind by the stripped
		// 지도/복사 buttons.
		posting.Location = scraper.CleanWhitespace(d.LocationFull)
	}

	if content := composeContent(d); content != "" {
		posting.ContentRaw = models.Truncate(content, models.ContentRawLimit)
	}
}
