// Package klik scrapes www.klik.co.kr, a multilingual job platform.
// Public pages, no login; postings live under /jobs/{alphanumeric id}.
package klik

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
	listURL = "https://www.klik.co.kr/jobs"

	waitPageLoadMs = 3000
	waitDetailMs   = 2000
	waitBatchMs    = 1500

	scrollCount    = 5
	scrollSettleMs = 1500
)

type Scraper struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Scraper {
	return &Scraper{cfg: cfg}
}

func (s *Scraper) Source() string {
	return models.SourceKlik
}

// listScript collects /jobs/{id} cards after the lazy-loading scrolls.
// Cards carry no stable classes, so parsing leans on text patterns.
const listScript = `() => {
	const jobs = [];

	const allLinks = Array.from(document.querySelectorAll('a[href*="/jobs/"]'));
	const jobLinks = allLinks.filter(a => {
		const href = a.getAttribute('href') || '';
		return /\/jobs\/[A-Za-z0-9]+$/.test(href);
	});

	const seenUrls = new Set();

	jobLinks.forEach(link => {
		const href = link.getAttribute('href');
		if (!href) return;

		const url = href.startsWith('http')
			? href
			: 'https://www.klik.co.kr' + href;

		if (seenUrls.has(url)) return;
		seenUrls.add(url);

		const text = link.textContent || '';
		const innerText = link.innerText || '';
		const lines = innerText.split('\n').map(l => l.trim()).filter(l => l);

		let company = '';
		let deadline = '';
		let title = '';
		let location = '';
		let salary = '';
		let jobType = '';
		let jobCategory = '';

		const deadlineMatch = text.match(/D-\d+|D-day/i);
		if (deadlineMatch) deadline = deadlineMatch[0];

		const salaryMatch = text.match(/(시급|월급|연봉)\s*[\d,]+원/);
		if (salaryMatch) salary = salaryMatch[0];

		const jobTypes = ['정규직', '계약직', '프리랜서', '인턴', '파견직', '아르바이트'];
		const foundTypes = [];
		for (const jt of jobTypes) {
			if (text.includes(jt)) {
				foundTypes.push(jt);
			}
		}
		jobType = foundTypes.join(', ');

		for (let i = 0; i < lines.length; i++) {
			const line = lines[i];

			if (i === 0 && !company && line.length < 50 && !line.match(/^D-/)) {
				company = line;
			}

			if (line.match(/^D-\d+$|^D-day$/i)) {
				deadline = line;
				if (i + 1 < lines.length && !title) {
					const nextLine = lines[i + 1];
					if (nextLine.length > 5 &&
						!nextLine.match(/^(정규직|계약직|아르바이트|시급|월급)/) &&
						!nextLine.match(/^(서울|경기|인천|부산)/)) {
						title = nextLine;
					}
				}
			}

			if (line.match(/^(서울|경기|인천|부산|대구|광주|대전|울산|세종|강원|충북|충남|전북|전남|경북|경남|제주|재택)/)) {
				location = line.replace('cash', '').trim();
			}

			if (line.includes('·') && line.length < 50 && !line.match(/^(서울|경기)/)) {
				jobCategory = line;
			}
		}

		if (!title) {
			for (const line of lines) {
				if (line.length > 10 && line.length < 150 &&
					line !== company &&
					!line.match(/^D-|^(정규직|계약직|아르바이트)$/) &&
					!line.match(/^(서울|경기|인천|부산)/) &&
					!line.match(/^(시급|월급)/) &&
					!line.includes('저장하기')) {
					title = line;
					break;
				}
			}
		}

		if (url && (title || company)) {
			jobs.push({
				url,
				title: title || '',
				company,
				deadline,
				location,
				salary,
				jobType,
				jobCategory
			});
		}
	});

	return jobs;
}`

// detailScript walks the posting's li elements, where the board renders
// location, salary, schedule, Korean level and visas.
const detailScript = `() => {
	const data = {
		title: '',
		company: '',
		deadline: '',
		location: '',
		salary: '',
		workTime: '',
		workDays: '',
		jobType: '',
		jobCategory: '',
		koreanLevel: '',
		koreanLevelDesc: '',
		visa: '',
		visaNote: '',
		preferred: '',
		duties: '',
		contentRaw: '',
		e7Support: false
	};

	const text = document.body.textContent || '';

	const h1 = document.querySelector('h1');
	if (h1) {
		data.title = h1.textContent.trim();
	}

	const articleHeader = document.querySelector('article');
	if (articleHeader) {
		const companyElem = articleHeader.querySelector('div > div:first-child');
		if (companyElem) {
			const spans = articleHeader.querySelectorAll('div');
			for (const span of spans) {
				const t = span.textContent.trim();
				if (t.length > 2 && t.length < 50 && !t.match(/^D-/) && !t.match(/^(식·음료|사무|제조)/)) {
					data.company = t;
					break;
				}
			}
		}
	}

	const timeElem = document.querySelector('time');
	if (timeElem) {
		data.deadline = timeElem.textContent.trim();
	}

	const categoryMatch = text.match(/(식·음료|서비스|사무|제조|교육|IT|판매|기타)[^\n]*/);
	if (categoryMatch) {
		data.jobCategory = categoryMatch[0].substring(0, 50);
	}

	const jobTypes = ['정규직', '계약직', '프리랜서', '인턴', '파견직', '아르바이트'];
	const foundTypes = [];
	for (const jt of jobTypes) {
		if (text.includes(jt)) {
			foundTypes.push(jt);
		}
	}
	data.jobType = foundTypes.join(', ');

	const listItems = document.querySelectorAll('li');
	listItems.forEach(li => {
		const liText = li.textContent.trim();

		if (liText.includes('location') || liText.match(/^(서울|경기|인천|부산|대구|광주|대전|울산|세종|강원|충북|충남|전북|전남|경북|경남|제주)/)) {
			const locMatch = liText.match(/(서울|경기|인천|부산|대구|광주|대전|울산|세종|강원|충북|충남|전북|전남|경북|경남|제주)[^\n]*/);
			if (locMatch) data.location = locMatch[0].trim();
		}
		if (liText.includes('salary') || liText.match(/(시급|월급|연봉)/)) {
			const salaryMatch = liText.match(/(시급|월급|연봉)[^\n]*/);
			if (salaryMatch) data.salary = salaryMatch[0].trim();
		}
		if (liText.includes('요일')) {
			data.workDays = liText.replace('요일', '').trim();
		}
		if (liText.includes('jobWorkTime') || liText.match(/\d{1,2}:\d{2}~\d{1,2}:\d{2}/)) {
			const timeMatch = liText.match(/\d{1,2}:\d{2}~\d{1,2}:\d{2}/);
			if (timeMatch) data.workTime = timeMatch[0];
		}

		if (liText.includes('한국어 능력') || liText.includes('한국어능력')) {
			const levels = ['고급', '중급', '초급', '무관'];
			for (const level of levels) {
				if (liText.includes(level)) {
					data.koreanLevel = level;
					break;
				}
			}
			if (liText.includes('비지니스')) data.koreanLevelDesc = '비지니스 회의 가능';
			else if (liText.includes('일상')) data.koreanLevelDesc = '일상대화 가능';
			else if (liText.includes('기초')) data.koreanLevelDesc = '기초적인 의사소통 가능';
		}

		if (liText.includes('VISA') || liText.includes('비자')) {
			const visaPatterns = ['E-7', 'F-2', 'F-4', 'F-5', 'F-6', 'D-10', 'D-2', 'C-4', 'H-2'];
			const foundVisas = [];
			for (const visa of visaPatterns) {
				if (liText.includes(visa)) {
					foundVisas.push(visa);
				}
			}
			if (foundVisas.length > 0) {
				data.visa = foundVisas.join(', ');
			}
			if (liText.includes('확인필요') || liText.includes('확인이 필요')) {
				data.visaNote = '확인필요';
			}
		}

		if (liText.includes('우대조건') || liText.includes('우대 조건')) {
			data.preferred = liText.replace('우대조건', '').replace('우대 조건', '').trim();
		}
	});

	const allDivs = document.querySelectorAll('div');
	allDivs.forEach(div => {
		const divText = div.textContent.trim();
		if (divText === '담당업무' || divText === '담당 업무') {
			const nextSibling = div.nextElementSibling || div.parentElement?.nextElementSibling;
			if (nextSibling) {
				const dutiesText = nextSibling.textContent.trim();
				if (dutiesText.length > 10 && dutiesText.length < 3000) {
					data.duties = dutiesText;
				}
			}
		}
	});

	if (text.includes('E-7') && (text.includes('지원') || text.includes('sponsor'))) {
		data.e7Support = true;
	}

	const article = document.querySelector('article') || document.querySelector('main');
	if (article) {
		data.contentRaw = article.innerText.substring(0, 8000);
	}

	return data;
}`

func (s *Scraper) ScrapeList(ctx context.Context) ([]*models.JobPosting, error) {
	log.Printf("🔍 [klik] Scraping list from %s", listURL)

	session, err := browser.Launch(browser.Options{Headless: s.cfg.Headless})
	if err != nil {
		return nil, err
	}
	defer session.Close()

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
			URL:         scraper.AsString(item, "url"),
			Title:       scraper.AsString(item, "title"),
			Source:      models.SourceKlik,
			CompanyKor:  scraper.AsString(item, "company"),
			Location:    scraper.AsString(item, "location"),
			JobType:     scraper.AsString(item, "jobType"),
			JobCategory: scraper.AsString(item, "jobCategory"),
			Deadline:    scraper.AsString(item, "deadline"),
		})
		if err != nil {
			log.Printf("⚠️ [klik] Skipping listing item: %v", err)
			continue
		}
		postings = append(postings, posting)
	}

	log.Printf("📋 [klik] Found %d jobs from list page", len(postings))
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
		log.Printf("❌ [klik] Browser launch failed, keeping list data: %v", err)
		return postings
	}
	defer session.Close()

	limiter := rate.NewLimiter(rate.Every(s.cfg.ScrapeDelay()), 1)
	out := make([]*models.JobPosting, 0, len(postings))
	for i, posting := range postings {
		label := posting.Title
		if label == "" {
			label = posting.URL
		}
		log.Printf("  [%d/%d] %s", i+1, len(postings), models.Truncate(label, 40))
		enriched, err := s.scrapeDetailOn(session, posting, waitBatchMs)
		if err != nil {
			log.Printf("⚠️ [klik] %v", err)
		}
		out = append(out, enriched)

		if err := limiter.Wait(ctx); err != nil {
			break
		}
	}
	return out
}
