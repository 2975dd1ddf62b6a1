package logofy

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// maxLogoBytes caps a single logo download. Brand assets are small; anything
// larger is almost certainly not a logo.
const maxLogoBytes = 2 * 1024 * 1024

// DownloadLogo locates and downloads the logo for domain, writing it to
// cfg.LogosDir as "<label>.png" where label is the domain's first
// dot-separated part. Returns the written path, or "" on any recoverable
// failure (unreachable site, no logo found, fetch error, write error).
func (cfg *Config) DownloadLogo(ctx context.Context, domain string) string {
	cfg.defaults()

	logoURL := cfg.FindLogoURL(ctx, domain)
	if logoURL == "" {
		return ""
	}

	data := cfg.fetchLogoData(ctx, logoURL)
	if data == nil {
		slog.Debug("logofy: logo fetch failed", "domain", domain, "url", logoURL)
		return ""
	}

	path := filepath.Join(cfg.LogosDir, fileLabel(domain)+".png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Warn("logofy: cannot write logo", "path", path, "error", err.Error())
		return ""
	}
	slog.Debug("logofy: downloaded", "domain", domain, "path", path)
	return path
}

// fetchLogoData gets the logo bytes. Tries cfg.StealthClient first (if set),
// falls back to cfg.HTTPClient.
func (cfg *Config) fetchLogoData(ctx context.Context, logoURL string) []byte {
	if cfg.StealthClient != nil {
		if b := fetchBytes(ctx, cfg.StealthClient, logoURL, cfg.UserAgent, cfg.LogoTimeout); b != nil {
			return b
		}
	}
	return fetchBytes(ctx, cfg.HTTPClient, logoURL, cfg.UserAgent, cfg.LogoTimeout)
}

// fetchBytes performs one GET and returns the body, or nil on any failure.
// No content-type gate here: favicons are routinely served with wrong MIME
// types, so validity is decided by the decode step downstream.
func fetchBytes(ctx context.Context, client *http.Client, rawURL, ua string, timeout time.Duration) []byte {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", ua)

	resp, err := client.Do(req) //nolint:gosec // G704: URL was discovered on the scraped page by design
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes))
	if err != nil || len(data) == 0 {
		return nil
	}
	return data
}
