package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"krjobs-scraper/internal/dedup"
	"krjobs-scraper/internal/models"
)

// pgPool is the slice of pgxpool.Pool the store uses; pgxmock satisfies
// it in tests.
type pgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// SupabaseStorage stores postings in a Supabase Postgres table, upserting
// on the posting URL.
type SupabaseStorage struct {
	pool pgPool
	url  string

	identities mapset.Set[string]
}

func ConnectSupabase(ctx context.Context, connString string) (*SupabaseStorage, error) {
	if connString == "" {
		return nil, &StorageError{Op: "connect", Err: fmt.Errorf("database URL is required (set SUPABASE_DB_URL)")}
	}

	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, &StorageError{Op: "connect", Err: fmt.Errorf("unable to parse database url: %w", err)}
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// IMPORTANT: Supabase connection pooler (PgBouncer in Transaction mode)
	// does not support prepared statements easily. We MUST disable the statement cache.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, &StorageError{Op: "connect", Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &StorageError{Op: "connect", Err: fmt.Errorf("database unreachable: %w", err)}
	}

	return &SupabaseStorage{pool: pool, url: connString}, nil
}

func (s *SupabaseStorage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the postings table if it does not exist.
func (s *SupabaseStorage) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS job_postings (
	url                TEXT PRIMARY KEY,
	title              TEXT NOT NULL,
	company_kor        TEXT NOT NULL DEFAULT '',
	company_eng        TEXT NOT NULL DEFAULT '',
	location           TEXT NOT NULL DEFAULT '',
	visa               TEXT NOT NULL DEFAULT '',
	e7_support         BOOLEAN NOT NULL DEFAULT false,
	korean_requirement TEXT NOT NULL DEFAULT '',
	job_category       TEXT NOT NULL DEFAULT '',
	job_type           TEXT NOT NULL DEFAULT '',
	deadline           TEXT NOT NULL DEFAULT '',
	content_raw        TEXT NOT NULL DEFAULT '',
	scraped_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	source             TEXT NOT NULL
);`)
	if err != nil {
		return &StorageError{Op: "migrate", Err: err}
	}
	return nil
}

func (s *SupabaseStorage) LoadExistingIdentities(ctx context.Context) (mapset.Set[string], error) {
	if s.identities != nil {
		return s.identities, nil
	}

	rows, err := s.pool.Query(ctx, `SELECT url FROM job_postings`)
	if err != nil {
		return nil, &StorageError{Op: "load identities", Err: err}
	}
	defer rows.Close()

	set := mapset.NewSet[string]()
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, &StorageError{Op: "load identities", Err: err}
		}
		set.Add(url)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "load identities", Err: err}
	}

	s.identities = set
	log.Printf("📋 Loaded %d existing URLs from Supabase", set.Cardinality())
	return set, nil
}

func (s *SupabaseStorage) FilterNew(ctx context.Context, postings []*models.JobPosting) ([]*models.JobPosting, error) {
	return dedup.NewFilter(s).FilterNew(ctx, postings)
}

// Save upserts every posting on the URL conflict target. The append flag
// is ignored; the table is always merged.
func (s *SupabaseStorage) Save(ctx context.Context, postings []*models.JobPosting, _ bool) (int, error) {
	if len(postings) == 0 {
		log.Println("ℹ️ No postings to save")
		return 0, nil
	}

	saved := 0
	for _, p := range postings {
		tag, err := s.pool.Exec(ctx, `
INSERT INTO job_postings
	(url, title, company_kor, company_eng, location, visa, e7_support,
	 korean_requirement, job_category, job_type, deadline, content_raw, scraped_at, source)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (url) DO UPDATE SET
	title = EXCLUDED.title,
	company_kor = EXCLUDED.company_kor,
	company_eng = EXCLUDED.company_eng,
	location = EXCLUDED.location,
	visa = EXCLUDED.visa,
	e7_support = EXCLUDED.e7_support,
	korean_requirement = EXCLUDED.korean_requirement,
	job_category = EXCLUDED.job_category,
	job_type = EXCLUDED.job_type,
	deadline = EXCLUDED.deadline,
	content_raw = EXCLUDED.content_raw,
	scraped_at = EXCLUDED.scraped_at,
	source = EXCLUDED.source`,
			p.URL, p.Title, p.CompanyKor, p.CompanyEng, p.Location, p.Visa, p.E7Support,
			p.KoreanRequirement, p.JobCategory, p.JobType, p.Deadline, p.ContentRaw, p.ScrapedAt, p.Source)
		if err != nil {
			// earlier rows in the batch are already committed
			s.identities = nil
			return saved, &StorageError{Op: "save", Err: err}
		}
		saved += int(tag.RowsAffected())
	}

	if s.identities != nil {
		s.identities = s.identities.Union(dedup.Identities(postings))
	}

	log.Printf("💾 Saved %d postings to Supabase", saved)
	return saved, nil
}

func (s *SupabaseStorage) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{BySource: map[string]int{}, Location: "supabase"}

	rows, err := s.pool.Query(ctx, `SELECT source, count(*) FROM job_postings GROUP BY source`)
	if err != nil {
		return nil, &StorageError{Op: "stats", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, &StorageError{Op: "stats", Err: err}
		}
		stats.BySource[source] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "stats", Err: err}
	}
	return stats, nil
}

// LoadAll returns stored postings, newest scrape first, optionally
// filtered to one source.
func (s *SupabaseStorage) LoadAll(ctx context.Context, source string) ([]*models.JobPosting, error) {
	query := `SELECT url, title, company_kor, company_eng, location, visa, e7_support,
	korean_requirement, job_category, job_type, deadline, content_raw, scraped_at, source
FROM job_postings`
	args := []any{}
	if source != "" {
		query += ` WHERE source = $1`
		args = append(args, source)
	}
	query += ` ORDER BY scraped_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}
	defer rows.Close()

	var postings []*models.JobPosting
	for rows.Next() {
		var p models.JobPosting
		if err := rows.Scan(&p.URL, &p.Title, &p.CompanyKor, &p.CompanyEng, &p.Location, &p.Visa,
			&p.E7Support, &p.KoreanRequirement, &p.JobCategory, &p.JobType, &p.Deadline,
			&p.ContentRaw, &p.ScrapedAt, &p.Source); err != nil {
			return nil, &StorageError{Op: "load", Err: err}
		}
		valid, err := models.NewJobPosting(p)
		if err != nil {
			log.Printf("⚠️ Skipping invalid stored row %s: %v", p.URL, err)
			continue
		}
		postings = append(postings, valid)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}
	return postings, nil
}

// DeleteBySource removes every posting of one site. Administrative only;
// the pipeline never deletes.
func (s *SupabaseStorage) DeleteBySource(ctx context.Context, source string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM job_postings WHERE source = $1`, source)
	if err != nil {
		return 0, &StorageError{Op: "delete", Err: err}
	}
	s.identities = nil
	return int(tag.RowsAffected()), nil
}
