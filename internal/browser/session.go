// Package browser wraps playwright-go with the launch profile the site
// scrapers share: headless Chromium, a desktop viewport and a small
// stealth script so the job boards serve the same markup they serve a
// real visitor.
package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Headless Chromium advertises navigator.webdriver; hide it before
	// any page script runs.
	stealthScript = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`
)

// Options controls how a session is launched.
type Options struct {
	Headless  bool
	UserAgent string
}

// Session owns one playwright instance, browser, context and page.
// Close releases all of them.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

// Launch starts Chromium and opens a single prepared page.
func Launch(opts Options) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--no-sandbox",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		Viewport:  &playwright.Size{Width: 1280, Height: 800},
		UserAgent: playwright.String(ua),
	})
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("could not open page: %w", err)
	}

	if err := page.AddInitScript(playwright.Script{Content: playwright.String(stealthScript)}); err != nil {
		bctx.Close()
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("could not install init script: %w", err)
	}

	return &Session{pw: pw, browser: b, context: bctx, page: page}, nil
}

// Page returns the session's single page.
func (s *Session) Page() playwright.Page {
	return s.page
}

// Navigate loads url and waits for DOMContentLoaded.
func (s *Session) Navigate(url string, timeoutMs float64) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(timeoutMs),
	})
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// NavigateIdle loads url and waits for the network to settle. Listing
// pages that render client side need this before their links exist.
func (s *Session) NavigateIdle(url string, timeoutMs float64) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(timeoutMs),
	})
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// ScrollToBottom scrolls the page end repeatedly so infinite lists load
// more items, waiting settleMs between scrolls.
func (s *Session) ScrollToBottom(times int, settleMs float64) {
	for i := 0; i < times; i++ {
		s.page.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`)
		s.page.WaitForTimeout(settleMs)
	}
}

// Wait pauses the page for ms milliseconds.
func (s *Session) Wait(ms float64) {
	s.page.WaitForTimeout(ms)
}

// Close tears the whole session down. Safe to call on a nil session.
func (s *Session) Close() {
	if s == nil {
		return
	}
	if s.context != nil {
		s.context.Close()
	}
	if s.browser != nil {
		s.browser.Close()
	}
	if s.pw != nil {
		s.pw.Stop()
	}
}
