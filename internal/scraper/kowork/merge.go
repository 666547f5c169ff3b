package kowork

import (
	"fmt"
	"strings"

	"krjobs-scraper/internal/models"
	"krjobs-scraper/internal/scraper"
)

// detail is the typed form of the object detailScript returns.
type detail struct {
	Title             string
	Company           string
	CompanyEng        string
	Deadline          string
	Visas             []string
	E7Support         bool
	KoreanRequirement string
	JobDescription    string
	Qualifications    string
	Preferred         string
	Etc               string
	Benefits          []string
	JobType           string
	JobCategory       string
	Location          string
	ContentRaw        string
}

func decodeDetail(m map[string]interface{}) *detail {
	return &detail{
		Title:             scraper.AsString(m, "title"),
		Company:           scraper.AsString(m, "company"),
		CompanyEng:        scraper.AsString(m, "companyEng"),
		Deadline:          scraper.AsString(m, "deadline"),
		Visas:             scraper.AsStrings(m, "visas"),
		E7Support:         scraper.AsBool(m, "e7Support"),
		KoreanRequirement: scraper.AsString(m, "koreanRequirement"),
		JobDescription:    scraper.AsString(m, "jobDescription"),
		Qualifications:    scraper.AsString(m, "qualifications"),
		Preferred:         scraper.AsString(m, "preferred"),
		Etc:               scraper.AsString(m, "etc"),
		Benefits:          scraper.AsStrings(m, "benefits"),
		JobType:           scraper.AsString(m, "jobType"),
		JobCategory:       scraper.AsString(m, "jobCategory"),
		Location:          scraper.AsString(m, "location"),
		ContentRaw:        scraper.AsString(m, "contentRaw"),
	}
}

// koreanLevels maps English level keywords to a standard description.
// Order matters: more specific keywords first.
var koreanLevels = []struct {
	keyword string
	level   string
}{
	{"native", "Native level"},
	{"advanced", "Business level"},
	{"intermediate", "Intermediate (everyday conversation)"},
	{"basic", "Basic level"},
	{"not required", "Not required"},
	{"none", "Not required"},
}

// normalizeKoreanLevel standardizes the extracted requirement text. An
// unmatched value is returned as is so no information is lost.
func normalizeKoreanLevel(raw string) string {
	if raw == "" {
		return ""
	}
	lower := scraper.NormalizeText(raw)
	for _, entry := range koreanLevels {
		if strings.Contains(lower, entry.keyword) {
			return entry.level
		}
	}
	return raw
}

// composeContent builds a sectioned content body matching the layout
// the Korean-language sites use. Falls back to the raw page text when
// no section was found.
func composeContent(d *detail) string {
	var parts []string

	if d.JobDescription != "" {
		parts = append(parts, fmt.Sprintf("[Job Description]\n%s", d.JobDescription))
	}
	if d.Qualifications != "" {
		parts = append(parts, fmt.Sprintf("[Qualifications]\n%s", d.Qualifications))
	}
	if d.Preferred != "" {
		parts = append(parts, fmt.Sprintf("[Preferred]\n%s", d.Preferred))
	}
	if d.Etc != "" {
		parts = append(parts, fmt.Sprintf("[Etc]\n%s", d.Etc))
	}
	if len(d.Benefits) > 0 {
		lines := make([]string, len(d.Benefits))
		for i, b := range d.Benefits {
			lines[i] = "- " + b
		}
		parts = append(parts, fmt.Sprintf("[Benefits]\n%s", strings.Join(lines, "\n")))
	}

	if len(parts) > 0 {
		return strings.Join(parts, "\n\n")
	}
	return d.ContentRaw
}

// mergeDetail folds detail-page data into a list-derived posting.
// Companies only fill empty fields, e7 support never flips back to
// false, the rest overwrites when the detail page had a value.
func mergeDetail(posting *models.JobPosting, d *detail) {
	if d.Company != "" && posting.CompanyKor == "" {
		posting.CompanyKor = d.Company
	}
	if d.CompanyEng != "" && posting.CompanyEng == "" {
		posting.CompanyEng = d.CompanyEng
	}
	if len(d.Visas) > 0 {
		posting.Visa = strings.Join(d.Visas, ", ")
	}
	if d.E7Support {
		posting.E7Support = true
	}
	if d.KoreanRequirement != "" {
		posting.KoreanRequirement = normalizeKoreanLevel(d.KoreanRequirement)
	}
	if d.JobType != "" {
		posting.JobType = d.JobType
	}
	if d.JobCategory != "" {
		posting.JobCategory = d.JobCategory
	}
	if d.Location != "" {
		posting.Location = d.Location
	}
	if d.Deadline != "" {
		posting.Deadline = d.Deadline
	}
	posting.ContentRaw = models.Truncate(composeContent(d), models.ContentRawLimit)
}
