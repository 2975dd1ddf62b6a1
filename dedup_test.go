package logofy

import (
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestSameBrandPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want bool
	}{
		{"abc_1.png", "abc_2.png", true},
		{"abc_1.png", "xyz_1.png", false},
		{"ab.png", "ab.png", true},
		{"ab", "abc", false},
		{"a", "a", true},
	}

	for _, tc := range tests {
		if got := sameBrandPrefix(tc.a, tc.b); got != tc.want {
			t.Errorf("sameBrandPrefix(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func newTestEngine(t *testing.T, cfg *Config) *Engine {
	t.Helper()
	if cfg.LogosDir == "" {
		cfg.LogosDir = filepath.Join(t.TempDir(), "logos")
	}
	if cfg.DuplicatesDir == "" {
		cfg.DuplicatesDir = filepath.Join(filepath.Dir(cfg.LogosDir), "duplicates")
	}
	if err := os.MkdirAll(cfg.LogosDir, 0o755); err != nil {
		t.Fatalf("mkdir logos: %v", err)
	}
	return NewEngine(cfg)
}

func TestMoveNearDuplicates(t *testing.T) {
	e := newTestEngine(t, &Config{})

	img := gradientImage(40, 40)
	// abc_1 and abc_2 are identical (similarity 100, shared prefix) so the
	// second must move. xyz_1 has the same pixels but a different prefix and
	// must stay put.
	writePNG(t, filepath.Join(e.cfg.LogosDir, "abc_1.png"), img)
	writePNG(t, filepath.Join(e.cfg.LogosDir, "abc_2.png"), img)
	writePNG(t, filepath.Join(e.cfg.LogosDir, "xyz_1.png"), img)

	e.moveNearDuplicates()

	if _, err := os.Stat(filepath.Join(e.cfg.DuplicatesDir, "abc_2.png")); err != nil {
		t.Errorf("abc_2.png not moved to duplicates: %v", err)
	}
	if _, err := os.Stat(filepath.Join(e.cfg.LogosDir, "abc_1.png")); err != nil {
		t.Errorf("abc_1.png should remain in logos: %v", err)
	}
	if _, err := os.Stat(filepath.Join(e.cfg.LogosDir, "xyz_1.png")); err != nil {
		t.Errorf("xyz_1.png should remain in logos (prefix mismatch): %v", err)
	}
	if got := e.snapshot().NearDuplicates; got != 1 {
		t.Errorf("NearDuplicates = %d, want 1", got)
	}
}

func TestMoveNearDuplicates_DissimilarSameBrandKept(t *testing.T) {
	e := newTestEngine(t, &Config{})

	writePNG(t, filepath.Join(e.cfg.LogosDir, "abc_1.png"), solidImage(40, 40, color.RGBA{255, 0, 0, 255}))
	writePNG(t, filepath.Join(e.cfg.LogosDir, "abc_2.png"), solidImage(40, 40, color.RGBA{0, 0, 255, 255}))

	e.moveNearDuplicates()

	if _, err := os.Stat(filepath.Join(e.cfg.LogosDir, "abc_2.png")); err != nil {
		t.Errorf("dissimilar abc_2.png should not move: %v", err)
	}
	if got := e.snapshot().NearDuplicates; got != 0 {
		t.Errorf("NearDuplicates = %d, want 0", got)
	}
}

func TestComparePair_VanishedFileSkipped(t *testing.T) {
	e := newTestEngine(t, &Config{})

	// abc_2.png is already gone, as if a concurrent comparison had moved it.
	// The pair must be skipped without disturbing the first file.
	writePNG(t, filepath.Join(e.cfg.LogosDir, "abc_1.png"), gradientImage(40, 40))

	e.comparePair("abc_1.png", "abc_2.png")

	stats := e.snapshot()
	if stats.SkippedPairs != 1 {
		t.Errorf("SkippedPairs = %d, want 1", stats.SkippedPairs)
	}
	if stats.NearDuplicates != 0 {
		t.Errorf("NearDuplicates = %d, want 0", stats.NearDuplicates)
	}
	if _, err := os.Stat(filepath.Join(e.cfg.LogosDir, "abc_1.png")); err != nil {
		t.Errorf("abc_1.png disturbed by skipped pair: %v", err)
	}
}

func TestRecoverPanic(t *testing.T) {
	var gotTag string
	var gotVal any
	e := newTestEngine(t, &Config{OnPanic: func(tag string, r any) {
		gotTag, gotVal = tag, r
	}})

	func() {
		defer e.recoverPanic("compare")
		panic("boom")
	}()
	if gotTag != "compare" || gotVal != "boom" {
		t.Errorf("OnPanic got (%q, %v), want (compare, boom)", gotTag, gotVal)
	}

	// Without a callback the panic is still absorbed.
	e2 := newTestEngine(t, &Config{})
	func() {
		defer e2.recoverPanic("fetch")
		panic("boom")
	}()
}

func TestSweepCorrupted(t *testing.T) {
	e := newTestEngine(t, &Config{})

	good := filepath.Join(e.cfg.LogosDir, "good.png")
	bad := filepath.Join(e.cfg.LogosDir, "bad.png")
	writePNG(t, good, gradientImage(20, 20))
	if err := writeGarbage(bad); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	e.sweepCorrupted()

	if _, err := os.Stat(good); err != nil {
		t.Errorf("valid file removed by sweep: %v", err)
	}
	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Error("corrupted file survived sweep")
	}
	if got := e.snapshot().Corrupted; got != 1 {
		t.Errorf("Corrupted = %d, want 1", got)
	}
}

func TestEngineRun_ExactDuplicateRemoved(t *testing.T) {
	// Every domain resolves to the same served logo, so all fetches after
	// the first are exact duplicates.
	logoData := encodePNG(t, gradientImage(32, 32))
	srv := logoServer(t, logoData)
	defer srv.Close()

	dir := t.TempDir()
	cfg := &Config{
		HTTPClient:    testClientFor(srv),
		LogosDir:      filepath.Join(dir, "logos"),
		DuplicatesDir: filepath.Join(dir, "duplicates"),
		ManifestPath:  filepath.Join(dir, "manifest.csv"),
	}
	stats := NewEngine(cfg).Run(context.Background(), []string{"alpha.com", "beta.com", "gamma.com"})

	if stats.Fetched != 1 {
		t.Errorf("Fetched = %d, want 1", stats.Fetched)
	}
	if stats.ExactDuplicates != 2 {
		t.Errorf("ExactDuplicates = %d, want 2", stats.ExactDuplicates)
	}

	entries, err := os.ReadDir(cfg.LogosDir)
	if err != nil {
		t.Fatalf("read logos dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("surviving files = %d, want 1", len(entries))
	}
	if _, err := os.Stat(cfg.ManifestPath); err != nil {
		t.Errorf("manifest not written: %v", err)
	}
}

func TestEngineRun_UnreachableDomains(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := &Config{
		HTTPClient:    testClientFor(srv),
		LogosDir:      filepath.Join(dir, "logos"),
		DuplicatesDir: filepath.Join(dir, "duplicates"),
	}
	stats := NewEngine(cfg).Run(context.Background(), []string{"alpha.com", "beta.com"})

	if stats.FetchFailed != 2 {
		t.Errorf("FetchFailed = %d, want 2", stats.FetchFailed)
	}
	if stats.Fetched != 0 {
		t.Errorf("Fetched = %d, want 0", stats.Fetched)
	}
}

func TestEngineRun_UndecodableDownloadDiscarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/assets/logo.png" {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("not an image"))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><img src="/assets/logo.png"></body></html>`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := &Config{
		HTTPClient:    testClientFor(srv),
		LogosDir:      filepath.Join(dir, "logos"),
		DuplicatesDir: filepath.Join(dir, "duplicates"),
	}
	stats := NewEngine(cfg).Run(context.Background(), []string{"alpha.com"})

	if stats.Corrupted != 1 {
		t.Errorf("Corrupted = %d, want 1", stats.Corrupted)
	}
	entries, _ := os.ReadDir(cfg.LogosDir)
	if len(entries) != 0 {
		t.Errorf("undecodable download left on disk: %v", entries)
	}
}
