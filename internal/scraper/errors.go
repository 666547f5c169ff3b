package scraper

import "fmt"

// ListFetchError means a site's listing page could not be scraped at
// all. The pipeline treats it as fatal for that site.
type ListFetchError struct {
	Site string
	Err  error
}

func (e *ListFetchError) Error() string {
	return fmt.Sprintf("%s: listing fetch failed: %v", e.Site, e.Err)
}

func (e *ListFetchError) Unwrap() error { return e.Err }

// DetailFetchError means one posting's detail page failed. It is
// per-item: the adapter logs it and keeps the list-derived posting.
type DetailFetchError struct {
	URL string
	Err error
}

func (e *DetailFetchError) Error() string {
	return fmt.Sprintf("detail fetch failed for %s: %v", e.URL, e.Err)
}

func (e *DetailFetchError) Unwrap() error { return e.Err }
