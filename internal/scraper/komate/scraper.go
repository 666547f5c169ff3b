// Package komate scrapes komate.saramin.co.kr, Saramin's job board for
// foreign workers. Korean-language pages only, no login required; the
// listing already names the Korean level and sponsored visas.
package komate

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
	listURL = "https://komate.saramin.co.kr/recruits/list"

	waitPageLoadMs = 3000
	waitDetailMs   = 2000
	waitBatchMs    = 1500

	scrollCount    = 3
	scrollSettleMs = 1000
)

type Scraper struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Scraper {
	return &Scraper{cfg: cfg}
}

func (s *Scraper) Source() string {
	return models.SourceKomate
}

// listScript walks every recruit link and parses the card text line by
// line. The markup carries no stable classes, so parsing leans on the
// text patterns the board renders (D-XX deadlines, region prefixes,
// fixed Korean-level phrases).
const listScript = `() => {
	const jobs = [];
	const allLinks = Array.from(document.querySelectorAll('a'));
	const listItems = allLinks.filter(a => {
		const href = a.getAttribute('href') || '';
		return href.includes('/recruits/') && !href.includes('resume');
	});

	listItems.forEach(link => {
		const href = link.getAttribute('href');
		if (!href || !href.includes('/recruits/')) return;

		const urlMatch = href.match(/\/recruits\/(\d+)/);
		if (!urlMatch) return;
		const recruitId = urlMatch[1];
		const url = 'https://komate.saramin.co.kr/recruits/' + recruitId;

		const text = link.textContent || '';
		const innerText = link.innerText || '';
		const lines = innerText.split('\n').map(l => l.trim()).filter(l => l);

		let company = '';
		let deadline = '';
		let title = '';
		let e7Support = false;
		let jobType = '';
		let jobCategory = '';
		let location = '';
		let koreanLevel = '';
		let visas = [];

		if (text.includes('E-7 비자지원') || text.includes('E-7 비자 지원')) {
			e7Support = true;
		}

		const deadlineMatch = text.match(/D-\d+|D-day|상시\s*채용/i);
		if (deadlineMatch) deadline = deadlineMatch[0];

		const koreanPatterns = [
			'원어민 수준 대화 가능',
			'비즈니스 회화 가능',
			'일상 대화 가능',
			'기초 회화 가능'
		];
		for (const pattern of koreanPatterns) {
			if (text.includes(pattern)) {
				koreanLevel = pattern;
				break;
			}
		}

		const jobTypes = ['정규직', '계약직', '프리랜서', '인턴', '파견직', '위촉직'];
		for (const jt of jobTypes) {
			if (text.includes(jt)) {
				jobType = jt;
				break;
			}
		}

		const visaPatterns = ['E-7', 'F-2', 'F-4', 'F-5', 'F-6', 'D-10', 'C-4', 'H-2'];
		for (const visa of visaPatterns) {
			if (text.includes(visa)) {
				visas.push(visa);
			}
		}

		for (let i = 0; i < lines.length; i++) {
			const line = lines[i];

			if (i === 0 && !company) {
				company = line;
			}

			if (line.match(/^D-\d+$|^D-day$|^상시 채용$/i)) {
				deadline = line;
				if (i + 1 < lines.length && !title) {
					const nextLine = lines[i + 1];
					if (nextLine.length > 10 && !nextLine.match(/^(정규직|계약직|프리랜서|E-7)/)) {
						title = nextLine;
					}
				}
			}

			if (line.match(/^(서울|경기|인천|부산|대구|광주|대전|울산|세종|강원|충북|충남|전북|전남|경북|경남|제주)\s/)) {
				location = line;
			}

			if (line.includes('·') && line.length < 80 && !line.match(/^(서울|경기)/)) {
				if (!jobCategory) jobCategory = line;
			}
		}

		if (!title) {
			for (const line of lines) {
				if (line.length > 15 &&
					line !== company &&
					!line.match(/^D-|^(정규직|계약직|프리랜서)$/) &&
					!koreanPatterns.some(p => line.includes(p)) &&
					!line.match(/^(서울|경기|인천|부산)/) &&
					!line.includes('·')) {
					title = line;
					break;
				}
			}
		}

		if (url && title && company) {
			jobs.push({
				url,
				title,
				company,
				deadline,
				location,
				jobType,
				jobCategory,
				koreanLevel,
				visas: visas.join(', '),
				e7Support
			});
		}
	});

	const seen = new Set();
	return jobs.filter(job => {
		if (seen.has(job.url)) return false;
		seen.add(job.url);
		return true;
	});
}`

// detailScript reads the labeled sections of a recruit page. Visa
// badges render like "E-7 특정활동", so only the leading code is kept.
const detailScript = `() => {
	const data = {
		company: '',
		title: '',
		deadline: '',
		location: '',
		locationFull: '',
		jobType: '',
		jobCategory: '',
		koreanLevel: '',
		visas: [],
		e7Support: false,
		career: '',
		education: '',
		duties: '',
		preferred: '',
		benefits: '',
		contentRaw: ''
	};

	const text = document.body.textContent || '';

	const companyElem = document.querySelector('a[href*="company-info"] div');
	if (companyElem) data.company = companyElem.textContent.trim();

	const titleElem = document.querySelector('main div > div > div:nth-child(2)');
	if (titleElem) {
		const titleText = titleElem.textContent.trim();
		if (titleText.length > 10 && titleText.length < 200) {
			data.title = titleText;
		}
	}

	const deadlineMatch = text.match(/D-\d+|상시\s*채용/);
	if (deadlineMatch) data.deadline = deadlineMatch[0];

	if (text.includes('E-7 비자지원') || text.includes('E-7 비자 지원')) {
		data.e7Support = true;
	}

	const allDivs = document.querySelectorAll('div');
	allDivs.forEach(div => {
		const divText = div.textContent.trim();
		const nextSibling = div.nextElementSibling;

		if (divText === '담당 업무' && nextSibling) {
			data.duties = nextSibling.textContent.trim().substring(0, 3000);
		}
		if (divText === '우대 조건' && nextSibling) {
			data.preferred = nextSibling.textContent.trim().substring(0, 1000);
		}
		if (divText === '복지 및 혜택' && nextSibling) {
			data.benefits = nextSibling.textContent.trim().substring(0, 1000);
		}
		if (divText === '근무지' && nextSibling) {
			data.locationFull = nextSibling.textContent.trim()
				.replace('지도', '')
				.replace('복사', '')
				.trim();
		}
		if (divText === '경력' && nextSibling) {
			const careerText = nextSibling.textContent.trim();
			if (careerText.length < 50) data.career = careerText;
		}
		if (divText === '학력' && nextSibling) {
			const eduText = nextSibling.textContent.trim();
			if (eduText.length < 50) data.education = eduText;
		}
		if (divText === '한국어 수준' && nextSibling) {
			const levelText = nextSibling.textContent.trim();
			if (levelText.length < 50) data.koreanLevel = levelText;
		}
		if (divText === '지원 가능한 비자' && nextSibling) {
			const visaElements = nextSibling.querySelectorAll('span');
			visaElements.forEach(ve => {
				const visaText = ve.textContent.trim();
				const visaMatch = visaText.match(/^([A-Z]-\d+)/);
				if (visaMatch && !data.visas.includes(visaMatch[1])) {
					data.visas.push(visaMatch[1]);
				}
			});
		}
	});

	const main = document.querySelector('main');
	if (main) {
		data.contentRaw = main.innerText.substring(0, 8000);
	}

	return data;
}`

func (s *Scraper) ScrapeList(ctx context.Context) ([]*models.JobPosting, error) {
	log.Printf("🔍 [komate] Scraping list from %s", listURL)

	session, err := browser.Launch(browser.Options{Headless: s.cfg.Headless})
	if err != nil {
		return nil, err
	}
	defer session.Close()

	// networkidle tends to time out here, domcontentloaded plus a
	// settle wait is enough.
	if err := session.Navigate(listURL, float64(s.cfg.NavTimeoutMs)); err != nil {
		return nil, err
	}
	session.Wait(waitPageLoadMs)
	session.ScrollToBottom(scrollCount, scrollSettleMs)

	result, err := session.Page().Evaluate(listScript)
	if err != nil {
		return nil, fmt.Errorf("list extraction failed: %w", err)
	}

	var postings []*models.JobPosting
	for _, item := range scraper.EvalObjects(result) {
		posting, err := models.NewJobPosting(models.JobPosting{
			URL:               scraper.AsString(item, "url"),
			Title:             scraper.AsString(item, "title"),
			Source:            models.SourceKomate,
			CompanyKor:        scraper.AsString(item, "company"),
			Location:          scraper.AsString(item, "location"),
			JobType:           scraper.AsString(item, "jobType"),
			JobCategory:       scraper.AsString(item, "jobCategory"),
			Deadline:          scraper.AsString(item, "deadline"),
			KoreanRequirement: scraper.AsString(item, "koreanLevel"),
			Visa:              scraper.AsString(item, "visas"),
			E7Support:         scraper.AsBool(item, "e7Support"),
		})
		if err != nil {
			log.Printf("⚠️ [komate] Skipping listing item: %v", err)
			continue
		}
		postings = append(postings, posting)
	}

	log.Printf("📋 [komate] Found %d jobs from list page", len(postings))
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

func (s *Scraper) ScrapeAllDetails(ctx context.Context, postings []*models.JobPosting) []*models.JobPosting {
	if len(postings) == 0 {
		return nil
	}

	session, err := browser.Launch(browser.Options{Headless: s.cfg.Headless})
	if err != nil {
		log.Printf("❌ [komate] Browser launch failed, keeping list data: %v", err)
		return postings
	}
	defer session.Close()

	limiter := rate.NewLimiter(rate.Every(s.cfg.ScrapeDelay()), 1)
	out := make([]*models.JobPosting, 0, len(postings))
	for i, posting := range postings {
		log.Printf("  [%d/%d] %s", i+1, len(postings), models.Truncate(posting.Title, 40))
		enriched, err := s.scrapeDetailOn(session, posting, waitBatchMs)
		if err != nil {
			log.Printf("⚠️ [komate] %v", err)
		}
		out = append(out, enriched)

		if err := limiter.Wait(ctx); err != nil {
			break
		}
	}
	return out
}
