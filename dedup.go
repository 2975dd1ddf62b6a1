package logofy

import (
	"bytes"
	"context"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// brandPrefixLen is how many leading filename bytes two logos must share to
// be considered the same brand in the near-duplicate check. Cheap heuristic:
// collisions and misses are both possible, kept for compatibility with the
// downstream reports.
const brandPrefixLen = 3

// RunStats aggregates per-item outcomes across one run. The run itself never
// fails; these counters (and the debug log) are the only record of dropped
// items.
type RunStats struct {
	Fetched         int // logos downloaded, decoded, and kept
	FetchFailed     int // domains that yielded no usable download
	ExactDuplicates int // files deleted by the hash registry
	NearDuplicates  int // files moved to the duplicates directory
	Corrupted       int // files deleted as unreadable or undecodable, both fresh downloads and sweep finds
	SkippedPairs    int // comparisons abandoned (vanished or unreadable file)
}

// Engine coordinates the three pipeline phases: concurrent fetch with exact
// dedup, pairwise near-dedup, and the corruption sweep.
type Engine struct {
	cfg      *Config
	registry *HashRegistry
	manifest *Manifest

	mu    sync.Mutex
	stats RunStats
}

// NewEngine returns an engine with a fresh hash registry and manifest.
func NewEngine(cfg *Config) *Engine {
	cfg.defaults()
	return &Engine{
		cfg:      cfg,
		registry: NewHashRegistry(),
		manifest: NewManifest(),
	}
}

// Run executes the full pipeline over domains and returns the aggregated
// counters. Individual failures are logged and counted, never surfaced: the
// only way the run is "worse" is by producing fewer surviving images.
func (e *Engine) Run(ctx context.Context, domains []string) RunStats {
	if err := os.MkdirAll(e.cfg.LogosDir, 0o755); err != nil {
		slog.Warn("logofy: cannot create logos dir", "dir", e.cfg.LogosDir, "error", err.Error())
		return e.snapshot()
	}

	e.fetchAll(ctx, domains)
	e.moveNearDuplicates()
	e.sweepCorrupted()

	if e.cfg.ManifestPath != "" {
		if err := e.manifest.WriteCSV(e.cfg.ManifestPath); err != nil {
			slog.Warn("logofy: cannot write manifest", "path", e.cfg.ManifestPath, "error", err.Error())
		}
	}
	return e.snapshot()
}

// fetchAll downloads one logo per domain over a bounded worker pool and
// applies the exact-dedup check inline.
func (e *Engine) fetchAll(ctx context.Context, domains []string) {
	bar := progressbar.Default(int64(len(domains)), "downloading logos")

	sem := make(chan struct{}, e.cfg.FetchWorkers)
	var wg sync.WaitGroup
	for _, d := range domains {
		wg.Add(1)
		go func(domain string) {
			defer wg.Done()
			defer e.recoverPanic("fetch")
			sem <- struct{}{}
			defer func() { <-sem }()
			defer func() { _ = bar.Add(1) }()

			e.processDomain(ctx, domain)
		}(d)
	}
	wg.Wait()
}

// processDomain downloads, decodes, and hashes one domain's logo. The
// registry lock covers only the check-and-insert; network and hashing run
// outside it.
func (e *Engine) processDomain(ctx context.Context, domain string) {
	path := e.cfg.DownloadLogo(ctx, domain)
	if path == "" {
		e.bump(func(s *RunStats) { s.FetchFailed++ })
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		e.discard(path, "unreadable download", err)
		return
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		e.discard(path, "undecodable download", err)
		return
	}
	hash, err := HashImage(img)
	if err != nil {
		e.discard(path, "unhashable download", err)
		return
	}

	if canonical, fresh := e.registry.Register(hash, path); !fresh {
		if err := os.Remove(path); err != nil {
			slog.Debug("logofy: cannot remove duplicate", "path", path, "error", err.Error())
		}
		slog.Debug("logofy: exact duplicate removed", "path", path, "canonical", canonical)
		e.bump(func(s *RunStats) { s.ExactDuplicates++ })
		return
	}

	e.manifest.Add(filepath.Base(path), format, ExtractProvenance(data))
	e.bump(func(s *RunStats) { s.Fetched++ })
}

// moveNearDuplicates compares every unordered pair of surviving files on a
// bounded pool and relocates near duplicates. Moves happen while other
// comparisons are in flight; a pair whose file vanished underneath it is
// skipped, not retried.
func (e *Engine) moveNearDuplicates() {
	entries, err := os.ReadDir(e.cfg.LogosDir)
	if err != nil {
		slog.Warn("logofy: cannot list logos dir", "dir", e.cfg.LogosDir, "error", err.Error())
		return
	}
	if err := os.MkdirAll(e.cfg.DuplicatesDir, 0o755); err != nil {
		slog.Warn("logofy: cannot create duplicates dir", "dir", e.cfg.DuplicatesDir, "error", err.Error())
		return
	}

	var names []string
	for _, ent := range entries {
		if !ent.IsDir() {
			names = append(names, ent.Name())
		}
	}

	sem := make(chan struct{}, e.cfg.CompareWorkers)
	var wg sync.WaitGroup
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			wg.Add(1)
			go func(a, b string) {
				defer wg.Done()
				defer e.recoverPanic("compare")
				sem <- struct{}{}
				defer func() { <-sem }()

				e.comparePair(a, b)
			}(names[i], names[j])
		}
	}
	wg.Wait()
}

// comparePair moves b into the duplicates directory when it is a likely near
// duplicate of a: same brand prefix and histogram similarity above the
// threshold. The prefix check runs first as it is free; the histogram
// comparison decodes both files.
func (e *Engine) comparePair(a, b string) {
	if !sameBrandPrefix(a, b) {
		return
	}

	score, err := Similarity(
		filepath.Join(e.cfg.LogosDir, a),
		filepath.Join(e.cfg.LogosDir, b),
	)
	if err != nil {
		// Benign race: another comparison may already have moved the file.
		slog.Debug("logofy: pair skipped", "a", a, "b", b, "error", err.Error())
		e.bump(func(s *RunStats) { s.SkippedPairs++ })
		return
	}
	if score <= e.cfg.SimilarityThreshold {
		return
	}

	src := filepath.Join(e.cfg.LogosDir, b)
	dest := filepath.Join(e.cfg.DuplicatesDir, b)
	if err := os.Rename(src, dest); err != nil {
		slog.Debug("logofy: cannot move near duplicate", "path", src, "error", err.Error())
		e.bump(func(s *RunStats) { s.SkippedPairs++ })
		return
	}
	slog.Info("logofy: near duplicate moved", "file", b, "match", a, "similarity", score)
	e.bump(func(s *RunStats) { s.NearDuplicates++ })
}

// sweepCorrupted deletes every remaining file that no longer decodes.
func (e *Engine) sweepCorrupted() {
	entries, err := os.ReadDir(e.cfg.LogosDir)
	if err != nil {
		return
	}
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		path := filepath.Join(e.cfg.LogosDir, ent.Name())
		if _, _, err := decodeImageFile(path); err != nil {
			e.discard(path, "corrupted file swept", err)
		}
	}
}

func sameBrandPrefix(a, b string) bool {
	pa, pb := a, b
	if len(pa) > brandPrefixLen {
		pa = pa[:brandPrefixLen]
	}
	if len(pb) > brandPrefixLen {
		pb = pb[:brandPrefixLen]
	}
	return pa == pb
}

// discard deletes path, logs the reason, and counts it as corrupted.
func (e *Engine) discard(path, reason string, cause error) {
	if err := os.Remove(path); err != nil {
		slog.Debug("logofy: cannot remove file", "path", path, "error", err.Error())
	}
	slog.Debug("logofy: "+reason, "path", path, "error", cause.Error())
	e.bump(func(s *RunStats) { s.Corrupted++ })
}

// recoverPanic absorbs a worker panic. Must be used directly as a deferred
// call. Routed to OnPanic when set; logged otherwise, so a crashing worker
// never disappears silently.
func (e *Engine) recoverPanic(tag string) {
	r := recover()
	if r == nil {
		return
	}
	if e.cfg.OnPanic != nil {
		e.cfg.OnPanic(tag, r)
		return
	}
	slog.Warn("logofy: recovered worker panic", "tag", tag, "panic", r)
}

func (e *Engine) bump(f func(*RunStats)) {
	e.mu.Lock()
	f(&e.stats)
	e.mu.Unlock()
}

func (e *Engine) snapshot() RunStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}
