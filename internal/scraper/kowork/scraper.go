// Package kowork scrapes kowork.kr, the public employment service for
// foreign workers. The English listing carries an "E-7 Sponsors" tag,
// which makes visa sponsorship detection reliable here.
package kowork

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/time/rate"

	"krjobs-scraper/internal/browser"
	"krjobs-scraper/internal/config"
	"krjobs-scraper/internal/models"
	"krjobs-scraper/internal/scraper"
)

const (
	listURL = "https://kowork.kr/en"

	waitPageLoadMs = 2000
	waitDetailMs   = 1500
	waitBatchMs    = 1000
)

type Scraper struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Scraper {
	return &Scraper{cfg: cfg}
}

func (s *Scraper) Source() string {
	return models.SourceKowork
}

// listScript pulls the job cards off the English listing. The page is
// client rendered, so everything is read from the DOM after networkidle.
const listScript = `() => {
	const jobs = [];
	const jobCards = document.querySelectorAll('a[href*="/en/post/"]');

	jobCards.forEach(card => {
		const url = card.href || '';
		if (!url.includes('/en/post/')) return;

		const text = card.textContent || '';
		const paragraphs = card.querySelectorAll('p');

		let title = '';
		let company = '';
		let deadline = '';
		let location = '';
		let jobType = '';
		let jobCategory = '';
		let e7Support = text.includes('E-7 Sponsors');

		paragraphs.forEach((p, i) => {
			const t = p.textContent.trim();
			if (i === 0) title = t;
			if (t.match(/^D-\d+$/)) deadline = t;
			if (t.includes('-gu,') || t.includes('-si,') || t.includes('-do')) {
				location = t;
			}
			if (['Full Time', 'Part Time', 'Temporary', 'Freelance', 'Contract'].includes(t)) {
				jobType = t;
			}
		});

		const spans = card.querySelectorAll('div > span, div > div > span');
		spans.forEach(sp => {
			const t = sp.textContent.trim();
			if (t && !t.match(/^D-/) && t !== title && !['Full Time', 'Part Time'].includes(t)) {
				if (!company) company = t;
			}
		});

		if (!company && paragraphs.length > 1) {
			for (let i = 1; i < paragraphs.length; i++) {
				const t = paragraphs[i].textContent.trim();
				if (t && !t.match(/^D-/) && !t.includes('-gu,') &&
					!['Full Time', 'Part Time', 'Temporary', 'Freelance'].includes(t)) {
					company = t;
					break;
				}
			}
		}

		const categories = ['IT', 'Marketing/Ads', 'Office/Administration', 'Service',
			'Education', 'Production/Manufacturing', 'Interpretation/Translation',
			'Design', 'Sales', 'Etc'];
		paragraphs.forEach(p => {
			const t = p.textContent.trim();
			if (categories.includes(t)) jobCategory = t;
		});

		if (url && title) {
			jobs.push({ url, title, company, deadline, location, jobType, jobCategory, e7Support });
		}
	});

	return jobs;
}`

// detailScript extracts one posting's detail page into a flat object.
// Shared by ScrapeDetail and ScrapeAllDetails.
const detailScript = `() => {
	const data = {
		title: '',
		company: '',
		companyEng: '',
		deadline: '',
		visas: [],
		e7Support: false,
		koreanRequirement: '',
		jobDescription: '',
		qualifications: '',
		preferred: '',
		etc: '',
		benefits: [],
		jobType: '',
		jobCategory: '',
		location: '',
		contentRaw: ''
	};

	const h1 = document.querySelector('h1');
	if (h1) data.title = h1.textContent.trim();

	const logoImg = document.querySelector('img[alt*="posting"][alt*="logo"]');
	if (logoImg) {
		const parent = logoImg.parentElement;
		if (parent) {
			const p = parent.querySelector('p');
			if (p) data.company = p.textContent.trim();
		}
	}

	if (!data.company) {
		const companyLink = document.querySelector('a[href*="/company/"]');
		if (companyLink) {
			data.company = companyLink.textContent.trim();
		}
	}

	const allP = document.querySelectorAll('p');
	for (const p of allP) {
		const txt = p.textContent.trim();
		if (txt.match(/^D-\d+$/) || txt === 'D-day') {
			data.deadline = txt;
			break;
		}
	}

	const h2s = document.querySelectorAll('h2');
	h2s.forEach(h2 => {
		const name = h2.textContent.trim();
		const next = h2.nextElementSibling;
		if (!next) return;

		switch(name) {
			case 'Job Description':
				data.jobDescription = next.textContent.trim().substring(0, 3000);
				break;
			case 'Qualifications':
				data.qualifications = next.textContent.trim().substring(0, 3000);
				const koreanMatch = next.textContent.match(/(?:korean|한국어|TOPIK)[^.;\n]*/gi);
				if (koreanMatch) {
					data.koreanRequirement = koreanMatch.join('; ').trim();
				}
				break;
			case 'Preferred':
				data.preferred = next.textContent.trim().substring(0, 3000);
				if (!data.koreanRequirement) {
					const prefKorean = next.textContent.match(/(?:korean|한국어|TOPIK)[^.;\n]*/gi);
					if (prefKorean) {
						data.koreanRequirement = prefKorean.join('; ').trim();
					}
				}
				break;
			case 'Etc':
				data.etc = next.textContent.trim().substring(0, 2000);
				break;
			case 'Preferred Visas':
				next.querySelectorAll('p').forEach(p =>
					data.visas.push(p.textContent.trim())
				);
				break;
			case 'Benefits':
				next.querySelectorAll('p').forEach(p => {
					const txt = p.textContent.trim();
					data.benefits.push(txt);
					if (txt.toLowerCase().includes('e-7') ||
						txt.toLowerCase().includes('visa sponsorship')) {
						data.e7Support = true;
					}
				});
				break;
		}
	});

	for (let i = 0; i < allP.length; i++) {
		const text = allP[i].textContent.trim();
		if (text === 'Job Type' && allP[i+1])
			data.jobType = allP[i+1].textContent.trim();
		if (text === 'Job Category' && allP[i+1])
			data.jobCategory = allP[i+1].textContent.trim();
		if (text === 'Location' && allP[i+1])
			data.location = allP[i+1].textContent.trim();
	}

	const main = document.querySelector('main');
	data.contentRaw = main ? main.innerText.substring(0, 8000) : '';

	return data;
}`

func (s *Scraper) ScrapeList(ctx context.Context) ([]*models.JobPosting, error) {
	log.Printf("🔍 [kowork] Scraping list from %s", listURL)

	session, err := browser.Launch(browser.Options{Headless: s.cfg.Headless})
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if err := session.NavigateIdle(listURL, float64(s.cfg.NavTimeoutMs)); err != nil {
		return nil, err
	}
	session.Wait(waitPageLoadMs)

	result, err := session.Page().Evaluate(listScript)
	if err != nil {
		return nil, fmt.Errorf("list extraction failed: %w", err)
	}

	seen := map[string]bool{}
	var postings []*models.JobPosting
	for _, item := range scraper.EvalObjects(result) {
		url := scraper.AsString(item, "url")
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true

		posting, err := models.NewJobPosting(models.JobPosting{
			URL:         url,
			Title:       scraper.AsString(item, "title"),
			Source:      models.SourceKowork,
			CompanyKor:  scraper.AsString(item, "company"),
			Location:    scraper.AsString(item, "location"),
			JobType:     scraper.AsString(item, "jobType"),
			JobCategory: scraper.AsString(item, "jobCategory"),
			Deadline:    scraper.AsString(item, "deadline"),
			E7Support:   scraper.AsBool(item, "e7Support"),
		})
		if err != nil {
			log.Printf("⚠️ [kowork] Skipping listing item: %v", err)
			continue
		}
		postings = append(postings, posting)
	}

	log.Printf("📋 [kowork] Found %d jobs from list page", len(postings))
	return postings, nil
}

func (s *Scraper) ScrapeDetail(ctx context.Context, posting *models.JobPosting) (*models.JobPosting, error) {
	session, err := browser.Launch(browser.Options{Headless: s.cfg.Headless})
	if err != nil {
		return posting, &scraper.DetailFetchError{URL: posting.URL, Err: err}
	}
	defer session.Close()

	return s.scrapeDetailOn(session, posting, waitDetailMs)
}

func (s *Scraper) scrapeDetailOn(session *browser.Session, posting *models.JobPosting, settleMs float64) (*models.JobPosting, error) {
	if err := session.Navigate(posting.URL, float64(s.cfg.NavTimeoutMs)); err != nil {
		return posting, &scraper.DetailFetchError{URL: posting.URL, Err: err}
	}
	session.Wait(settleMs)

	result, err := session.Page().Evaluate(detailScript)
	if err != nil {
		return posting, &scraper.DetailFetchError{URL: posting.URL, Err: err}
	}

	raw, ok := scraper.EvalObject(result)
	if !ok {
		return posting, &scraper.DetailFetchError{URL: posting.URL, Err: fmt.Errorf("unexpected evaluate result %T", result)}
	}

	mergeDetail(posting, decodeDetail(raw))
	return posting, nil
}

// ScrapeAllDetails enriches every posting with one shared browser
// session. A failed posting keeps its list-derived data.
func (s *Scraper) ScrapeAllDetails(ctx context.Context, postings []*models.JobPosting) []*models.JobPosting {
	if len(postings) == 0 {
		return nil
	}

	session, err := browser.Launch(browser.Options{Headless: s.cfg.Headless})
	if err != nil {
		log.Printf("❌ [kowork] Browser launch failed, keeping list data: %v", err)
		return postings
	}
	defer session.Close()

	limiter := rate.NewLimiter(rate.Every(s.cfg.ScrapeDelay()), 1)
	out := make([]*models.JobPosting, 0, len(postings))
	for i, posting := range postings {
		log.Printf("  [%d/%d] %s", i+1, len(postings), models.Truncate(posting.Title, 40))
		enriched, err := s.scrapeDetailOn(session, posting, waitBatchMs)
		if err != nil {
			log.Printf("⚠️ [kowork] %v", err)
		}
		out = append(out, enriched)

		if err := limiter.Wait(ctx); err != nil {
			break
		}
	}
	return out
}
