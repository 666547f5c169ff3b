package models

import (
	"fmt"
	"time"
)

// ColumnOrder is the persisted column layout. Consumers read the CSV/XLSX
// files directly, so this order is a compatibility contract.
func ColumnOrder() []string {
	return []string{
		"url",
		"title",
		"company_kor",
		"company_eng",
		"location",
		"visa",
		"e7_support",
		"korean_requirement",
		"job_category",
		"job_type",
		"deadline",
		"content_raw",
		"scraped_at",
		"source",
	}
}

// Record serializes the posting in ColumnOrder. The sponsorship flag is
// stored as a Y/N token for spreadsheet compatibility, the timestamp as
// RFC 3339.
func (p *JobPosting) Record() []string {
	e7 := "N"
	if p.E7Support {
		e7 = "Y"
	}
	return []string{
		p.URL,
		p.Title,
		p.CompanyKor,
		p.CompanyEng,
		p.Location,
		p.Visa,
		e7,
		p.KoreanRequirement,
		p.JobCategory,
		p.JobType,
		p.Deadline,
		p.ContentRaw,
		p.ScrapedAt.Format(time.RFC3339),
		p.Source,
	}
}

// FromRecord parses a persisted row back into a validated posting.
func FromRecord(row []string) (*JobPosting, error) {
	cols := ColumnOrder()
	if len(row) < len(cols) {
		return nil, fmt.Errorf("record has %d columns, want %d", len(row), len(cols))
	}

	scrapedAt, err := time.Parse(time.RFC3339, row[12])
	if err != nil {
		return nil, fmt.Errorf("parse scraped_at %q: %w", row[12], err)
	}

	return NewJobPosting(JobPosting{
		URL:               row[0],
		Title:             row[1],
		CompanyKor:        row[2],
		CompanyEng:        row[3],
		Location:          row[4],
		Visa:              row[5],
		E7Support:         row[6] == "Y" || row[6] == "y",
		KoreanRequirement: row[7],
		JobCategory:       row[8],
		JobType:           row[9],
		Deadline:          row[10],
		ContentRaw:        row[11],
		ScrapedAt:         scrapedAt,
		Source:            row[13],
	})
}
