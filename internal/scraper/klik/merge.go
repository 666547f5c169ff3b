package klik

import (
	"fmt"
	"strings"

	"krjobs-scraper/internal/models"
	"krjobs-scraper/internal/scraper"
)

// detail is the typed form of the object detailScript returns.
type detail struct {
	Title           string
	Company         string
	Deadline        string
	Location        string
	Salary          string
	WorkTime        string
	WorkDays        string
	JobType         string
	JobCategory     string
	KoreanLevel     string
	KoreanLevelDesc string
	Visa            string
	VisaNote        string
	Preferred       string
	Duties          string
	ContentRaw      string
	E7Support       bool
}

func decodeDetail(m map[string]interface{}) *detail {
	return &detail{
		Title:           scraper.AsString(m, "title"),
		Company:         scraper.AsString(m, "company"),
		Deadline:        scraper.AsString(m, "deadline"),
		Location:        scraper.AsString(m, "location"),
		Salary:          scraper.AsString(m, "salary"),
		WorkTime:        scraper.AsString(m, "workTime"),
		WorkDays:        scraper.AsString(m, "workDays"),
		JobType:         scraper.AsString(m, "jobType"),
		JobCategory:     scraper.AsString(m, "jobCategory"),
		KoreanLevel:     scraper.AsString(m, "koreanLevel"),
		KoreanLevelDesc: scraper.AsString(m, "koreanLevelDesc"),
		Visa:            scraper.AsString(m, "visa"),
		VisaNote:        scraper.AsString(m, "visaNote"),
		Preferred:       scraper.AsString(m, "preferred"),
		Duties:          scraper.AsString(m, "duties"),
		ContentRaw:      scraper.AsString(m, "contentRaw"),
		E7Support:       scraper.AsBool(m, "e7Support"),
	}
}

func composeContent(d *detail) string {
	var parts []string

	if d.Duties != "" {
		parts = append(parts, fmt.Sprintf("[담당업무]\n%s", d.Duties))
	}
	if d.Salary != "" {
		parts = append(parts, fmt.Sprintf("[급여] %s", d.Salary))
	}
	if d.WorkTime != "" {
		parts = append(parts, fmt.Sprintf("[근무시간] %s", d.WorkTime))
	}
	if d.WorkDays != "" {
		parts = append(parts, fmt.Sprintf("[근무요일] %s", d.WorkDays))
	}
	if d.Preferred != "" {
		parts = append(parts, fmt.Sprintf("[우대조건] %s", d.Preferred))
	}

	if len(parts) > 0 {
		return strings.Join(parts, "\n\n")
	}
	return d.ContentRaw
}

// mergeDetail folds detail-page data into a list-derived posting.
// Title and company only fill gaps; detail-page fields otherwise win.
// A posting whose visas the board could not confirm gets the 확인필요
// note instead of a visa list.
func mergeDetail(posting *models.JobPosting, d *detail) {
	if d.Title != "" && posting.Title == "" {
		posting.Title = d.Title
	}
	if d.Company != "" && posting.CompanyKor == "" {
		posting.CompanyKor = d.Company
	}
	if d.Location != "" {
		posting.Location = d.Location
	}
	if d.JobType != "" {
		posting.JobType = d.JobType
	}
	if d.JobCategory != "" {
		posting.JobCategory = d.JobCategory
	}

	if d.KoreanLevel != "" {
		level := d.KoreanLevel
		if d.KoreanLevelDesc != "" {
			level += fmt.Sprintf(" (%s)", d.KoreanLevelDesc)
		}
		posting.KoreanRequirement = level
	}

	if d.Visa != "" {
		posting.Visa = d.Visa
	} else if d.VisaNote != "" {
		posting.Visa = d.VisaNote
	}

	if d.E7Support {
		posting.E7Support = true
	}

	if content := composeContent(d); content != "" {
		posting.ContentRaw = models.Truncate(content, models.ContentRawLimit)
	}
}
