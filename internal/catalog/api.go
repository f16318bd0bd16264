package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/pdiddy/forms-engine/internal/httputil"
	"github.com/pdiddy/forms-engine/pkg/types"
)

// apiBase is the VA Forms API endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.va.gov/v0/forms"

// apiResponse mirrors one page of the VA Forms API.
type apiResponse struct {
	Data []entry `json:"data"`
	Meta struct {
		TotalPages int `json:"total_pages"`
	} `json:"meta"`
}

// Fetch pages through the VA Forms API and returns every catalog entry,
// including non-PDF ones; filtering happens at Load time. Requests are
// rate limited and 429 responses are retried with backoff.
func Fetch(ctx context.Context, client *http.Client, cfg types.CatalogConfig, w io.Writer) ([]types.Form, error) {
	base := cfg.APIBase
	if base == "" {
		base = apiBase
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = 100
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	limiter := rate.NewLimiter(rate.Limit(rps), 1)

	var forms []types.Form
	for page := 1; ; page++ {
		if err := limiter.Wait(ctx); err != nil {
			return forms, err
		}

		entries, totalPages, err := fetchPage(ctx, client, base, page, perPage, cfg.UserAgent)
		if err != nil {
			return forms, fmt.Errorf("fetching catalog page %d: %w", page, err)
		}
		if len(entries) == 0 {
			break
		}

		for _, e := range entries {
			forms = append(forms, types.Form{
				ID:       e.ID,
				FormName: e.Attributes.FormName,
				Title:    e.Attributes.Title,
				URL:      e.Attributes.URL,
			})
		}
		fmt.Fprintf(w, "fetched page %d (%d forms, total %d)\n", page, len(entries), len(forms))

		if totalPages > 0 && page >= totalPages {
			break
		}
		if totalPages == 0 && len(entries) < perPage {
			break
		}
	}
	return forms, nil
}

func fetchPage(ctx context.Context, client *http.Client, base string, page, perPage int, userAgent string) ([]entry, int, error) {
	params := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("HTTP %d from %s", resp.StatusCode, base)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("parsing response: %w", err)
	}
	return parsed.Data, parsed.Meta.TotalPages, nil
}
