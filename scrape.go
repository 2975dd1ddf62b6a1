package logofy

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FindLogoURL fetches the homepage of domain over HTTPS and returns the most
// likely logo asset URL: the first <img> whose src contains "logo"
// (case-insensitive), falling back to the <link rel="icon"> href. Relative
// URLs are resolved against the final page URL. Returns "" when the page is
// unreachable or carries no logo-like asset.
func (cfg *Config) FindLogoURL(ctx context.Context, domain string) string {
	cfg.defaults()

	ctx, cancel := context.WithTimeout(ctx, cfg.PageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+domain, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := cfg.HTTPClient.Do(req) //nolint:gosec // G704: domain comes from the caller's dataset by design
	if err != nil {
		slog.Debug("logofy: homepage unreachable", "domain", domain, "error", err.Error())
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("logofy: homepage returned non-200", "domain", domain, "status", resp.StatusCode)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	raw := scanForLogo(doc)
	if raw == "" {
		slog.Debug("logofy: no logo-like asset on page", "domain", domain)
		return ""
	}

	// resp.Request.URL is the post-redirect page URL, the right base for
	// resolving relative asset paths.
	u, err := resp.Request.URL.Parse(raw)
	if err != nil {
		return ""
	}
	return u.String()
}

// scanForLogo returns the raw (possibly relative) asset reference from the
// parsed page: logo <img> first, icon <link> as fallback.
func scanForLogo(doc *goquery.Document) string {
	var logo string
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if ok && strings.Contains(strings.ToLower(src), "logo") {
			logo = src
			return false
		}
		return true
	})
	if logo != "" {
		return logo
	}

	if href, ok := doc.Find(`link[rel="icon"]`).First().Attr("href"); ok {
		return href
	}
	return ""
}
