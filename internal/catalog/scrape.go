package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/pdiddy/forms-engine/internal/httputil"
	"github.com/pdiddy/forms-engine/pkg/types"
)

// scrapeBase is the VA find-forms site root. Declared as a var so tests
// can substitute an httptest server.
var scrapeBase = "https://www.va.gov"

const findFormsPath = "/find-forms/"

// Scrape crawls the VA find-forms pages and collects form entries whose
// detail pages link to a PDF. It is the fallback catalog source for when
// the Forms API is unavailable; results use the detail-page slug as the
// form name when no better value is present.
func Scrape(ctx context.Context, client *http.Client, cfg types.CatalogConfig, w io.Writer) ([]types.Form, error) {
	base := cfg.APIBase
	if base == "" {
		base = scrapeBase
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	limiter := rate.NewLimiter(rate.Limit(rps), 1)

	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}
	index, err := fetchDocument(ctx, client, base+findFormsPath, cfg.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("fetching forms index: %w", err)
	}

	detailURLs := collectDetailLinks(index, base)
	fmt.Fprintf(w, "found %d form detail pages\n", len(detailURLs))

	var forms []types.Form
	for _, detailURL := range detailURLs {
		if err := limiter.Wait(ctx); err != nil {
			return forms, err
		}

		doc, err := fetchDocument(ctx, client, detailURL, cfg.UserAgent)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", detailURL, err)
			continue
		}

		form, ok := parseDetailPage(doc, detailURL, base)
		if !ok {
			fmt.Fprintf(w, "no pdf:  %s\n", detailURL)
			continue
		}
		fmt.Fprintf(w, "scraped: %s\n", form.FormName)
		forms = append(forms, form)
	}
	return forms, nil
}

func fetchDocument(ctx context.Context, client *http.Client, pageURL, userAgent string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, pageURL)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// collectDetailLinks extracts unique form detail URLs from the index page.
func collectDetailLinks(doc *goquery.Document, base string) []string {
	seen := make(map[string]bool)
	var links []string
	doc.Find(`a[href*="/find-forms/about-"]`).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		full := absoluteURL(base, href)
		if full != "" && !seen[full] {
			seen[full] = true
			links = append(links, full)
		}
	})
	return links
}

// parseDetailPage pulls the form title and PDF link from a detail page.
func parseDetailPage(doc *goquery.Document, detailURL, base string) (types.Form, bool) {
	var pdfURL string
	doc.Find(`a[href$=".pdf"], a[href$=".PDF"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if href, ok := s.Attr("href"); ok {
			pdfURL = absoluteURL(base, href)
			return false
		}
		return true
	})
	if pdfURL == "" {
		return types.Form{}, false
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	name := slugFromDetailURL(detailURL)
	if name == "" {
		name = strings.TrimSuffix(path.Base(pdfURL), path.Ext(pdfURL))
	}

	return types.Form{
		ID:       name,
		FormName: name,
		Title:    title,
		URL:      pdfURL,
	}, true
}

// slugFromDetailURL turns ".../find-forms/about-va-form-21-0781" into
// "va-form-21-0781".
func slugFromDetailURL(detailURL string) string {
	base := path.Base(strings.TrimSuffix(detailURL, "/"))
	return strings.TrimPrefix(base, "about-")
}

func absoluteURL(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return b.ResolveReference(u).String()
}
