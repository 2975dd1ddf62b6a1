package logofy

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// PerceptualHash is the 64-bit difference hash of an image: the picture is
// reduced to a 9×8 luminance grid and each cell is compared to its right
// neighbor, one bit per comparison, row-major. Rendered as a fixed-length
// string so it can key a map. Equal hashes mean exact (or near-exact,
// compression-artifact level) duplicates.
type PerceptualHash string

// HashImage computes the difference hash of img. Deterministic: the same
// decoded pixels always produce the same hash.
func HashImage(img image.Image) (PerceptualHash, error) {
	h, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return "", err
	}
	return PerceptualHash(h.ToString()), nil
}

// HashRegistry maps each hash to the first-seen path carrying it. Safe for
// concurrent use; the lock covers only the check-and-insert, callers hash
// and do I/O outside it. Lifetime is one download run.
type HashRegistry struct {
	mu   sync.Mutex
	seen map[PerceptualHash]string
}

// NewHashRegistry returns an empty registry.
func NewHashRegistry() *HashRegistry {
	return &HashRegistry{seen: make(map[PerceptualHash]string)}
}

// Register records path as the canonical holder of hash and returns
// (path, true). If the hash was already registered it returns the existing
// canonical path and false.
func (r *HashRegistry) Register(hash PerceptualHash, path string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.seen[hash]; ok {
		return prev, false
	}
	r.seen[hash] = path
	return path, true
}

// Len reports the number of distinct hashes registered.
func (r *HashRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}
