// JobPosting is the record every site scraper produces.
// The posting URL is the primary key for dedup and upsert.

package models

import (
	"fmt"
	"time"
)

// Known source site identifiers.
const (
	SourceKowork = "kowork"
	SourceKomate = "komate"
	SourceKlik   = "klik"
)

// ContentRawLimit caps the stored body text (runes).
const ContentRawLimit = 8000

type JobPosting struct {
	//required, collected from the list page
	URL    string `json:"url"`
	Title  string `json:"title"`
	Source string `json:"source"`

	//list-page fields
	CompanyKor  string `json:"company_kor"`
	CompanyEng  string `json:"company_eng"`
	Location    string `json:"location"`
	JobType     string `json:"job_type"`
	JobCategory string `json:"job_category"`
	Deadline    string `json:"deadline"` //"D-30", "D-day", "상시채용" or a date
	E7Support   bool   `json:"e7_support"`

	//detail-page fields (deep scraping)
	Visa              string `json:"visa"`
	KoreanRequirement string `json:"korean_requirement"`
	ContentRaw        string `json:"content_raw"`

	//metadata
	ScrapedAt time.Time `json:"scraped_at"`
}

// ValidationError reports a posting that fails the required-field invariants.
// It is never fatal to a batch; the offending record is dropped.
type ValidationError struct {
	Field string
	URL   string
}

func (e *ValidationError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("posting validation: %s is required", e.Field)
	}
	return fmt.Sprintf("posting validation: %s is required (%s)", e.Field, e.URL)
}

// NewJobPosting validates p and returns it with ScrapedAt defaulted.
// Construction fails if url, title or source is empty, or if neither
// company name is set.
func NewJobPosting(p JobPosting) (*JobPosting, error) {
	if p.ScrapedAt.IsZero() {
		p.ScrapedAt = time.Now()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate re-runs the construction-time invariants. The pipeline calls
// this again after detail merging, since merges mutate the record.
func (p *JobPosting) Validate() error {
	if p.URL == "" {
		return &ValidationError{Field: "url"}
	}
	if p.Title == "" {
		return &ValidationError{Field: "title", URL: p.URL}
	}
	if p.Source == "" {
		return &ValidationError{Field: "source", URL: p.URL}
	}
	if p.CompanyKor == "" && p.CompanyEng == "" {
		return &ValidationError{Field: "company_kor or company_eng", URL: p.URL}
	}
	return nil
}

// IsComplete reports whether the posting went through deep scraping.
func (p *JobPosting) IsComplete() bool {
	return p.ContentRaw != ""
}

// Truncate caps s at limit runes. Site pages routinely dump tens of
// thousands of characters into a single block.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
