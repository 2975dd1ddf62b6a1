// Package logofy downloads company logos from web domains, removes exact and
// near duplicates, and classifies the survivors by dominant color, minimalism,
// and emotional tone.
package logofy

import (
	"net/http"
	"time"
)

const (
	// DefaultFetchWorkers bounds the parallel logo downloads.
	DefaultFetchWorkers = 10

	// DefaultCompareWorkers bounds the parallel pairwise comparisons.
	DefaultCompareWorkers = 5

	// DefaultSimilarityThreshold is the histogram-similarity percentage above
	// which two same-brand logos are treated as near duplicates.
	DefaultSimilarityThreshold = 49.0

	defaultPageTimeout = 20 * time.Second
	defaultLogoTimeout = 5 * time.Second
)

// Config holds all dependencies injected by the consumer.
type Config struct {
	StealthClient *http.Client // optional: TLS-fingerprinted client for downloads
	HTTPClient    *http.Client // optional: default http client (nil = http.DefaultClient)
	UserAgent     string       // default: "Mozilla/5.0 (compatible; go-logofy/1.0)"

	LogosDir      string // downloaded logos (default: "logos")
	DuplicatesDir string // near-duplicate sink (default: "duplicates")
	PalettesDir   string // generated palettes (default: "palettes")
	ReportDir     string // analysis reports (default: ".")
	ManifestPath  string // provenance manifest ("" = disabled)

	FetchWorkers        int     // default: DefaultFetchWorkers
	CompareWorkers      int     // default: DefaultCompareWorkers
	SimilarityThreshold float64 // default: DefaultSimilarityThreshold

	PageTimeout time.Duration // homepage scrape timeout (default: 20s)
	LogoTimeout time.Duration // logo byte fetch timeout (default: 5s)

	// OnPanic is an optional callback for panics recovered in worker goroutines.
	OnPanic func(tag string, r any)
}

// defaults fills zero-value fields with sensible defaults.
// Called by every exported method on Config before use.
func (c *Config) defaults() {
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (compatible; go-logofy/1.0)"
	}
	if c.LogosDir == "" {
		c.LogosDir = "logos"
	}
	if c.DuplicatesDir == "" {
		c.DuplicatesDir = "duplicates"
	}
	if c.PalettesDir == "" {
		c.PalettesDir = "palettes"
	}
	if c.ReportDir == "" {
		c.ReportDir = "."
	}
	if c.FetchWorkers <= 0 {
		c.FetchWorkers = DefaultFetchWorkers
	}
	if c.CompareWorkers <= 0 {
		c.CompareWorkers = DefaultCompareWorkers
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if c.PageTimeout <= 0 {
		c.PageTimeout = defaultPageTimeout
	}
	if c.LogoTimeout <= 0 {
		c.LogoTimeout = defaultLogoTimeout
	}
}
