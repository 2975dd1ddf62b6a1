package logofy

import (
	"fmt"
	"image"
	"math"
	"math/rand"

	"github.com/nfnt/resize"
)

// RGB is an 8-bit-per-channel color triple.
type RGB [3]int

// String renders the triple as "(R, G, B)", the form used in reports.
func (c RGB) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c[0], c[1], c[2])
}

// broadColor is one entry of the fixed coarse classification palette.
// Kept as a slice: iteration order breaks distance ties, first entry wins.
type broadColor struct {
	Name string
	RGB  RGB
}

// BroadColors is the fixed 7-entry classification palette.
var BroadColors = []broadColor{
	{"Red", RGB{220, 20, 60}},
	{"Orange", RGB{255, 165, 0}},
	{"Yellow", RGB{255, 255, 0}},
	{"Green", RGB{34, 139, 34}},
	{"Blue", RGB{30, 144, 255}},
	{"White", RGB{255, 255, 255}},
	{"Black", RGB{0, 0, 0}},
}

// colorWarmth weights each broad bucket for the emotional-tone score.
var colorWarmth = map[string]int{
	"Red":    1,
	"Orange": 1,
	"Yellow": 1,
	"Green":  -1,
	"Blue":   -1,
	"White":  0,
	"Black":  0,
}

// Emotional-tone labels, from warmest to coolest.
const (
	EmotionEnergetic = "Energetic & Passionate"
	EmotionWarm      = "Warm & Friendly"
	EmotionCalm      = "Calm & Trustworthy"
	EmotionCool      = "Cool & Professional"
	EmotionNeutral   = "Balanced & Neutral"
)

// ClosestBroadColor maps rgb to the nearest palette entry by Euclidean RGB
// distance. Total: every triple maps to exactly one name.
func ClosestBroadColor(rgb RGB) string {
	best := BroadColors[0].Name
	bestDist := math.Inf(1)
	for _, bc := range BroadColors {
		var d float64
		for i := 0; i < 3; i++ {
			diff := float64(rgb[i] - bc.RGB[i])
			d += diff * diff
		}
		if d < bestDist {
			bestDist = d
			best = bc.Name
		}
	}
	return best
}

// broadColorCounts buckets each color into its broad category and counts
// occurrences per bucket.
func broadColorCounts(colors []RGB) map[string]int {
	counts := make(map[string]int)
	for _, c := range colors {
		counts[ClosestBroadColor(c)]++
	}
	return counts
}

// ClassifyMinimalism reports whether the clustered colors span at most two
// distinct broad-color buckets.
func ClassifyMinimalism(colors []RGB) bool {
	return len(broadColorCounts(colors)) <= 2
}

// ClassifyEmotion maps the warmth of the clustered colors to one of five
// labels. Each broad bucket contributes its warmth weight times its count;
// the sum is averaged over the number of distinct buckets present.
func ClassifyEmotion(colors []RGB) string {
	counts := broadColorCounts(colors)
	if len(counts) == 0 {
		return EmotionNeutral
	}

	var score float64
	for name, n := range counts {
		score += float64(colorWarmth[name] * n)
	}
	score /= float64(len(counts))

	switch {
	case score > 0.5:
		return EmotionEnergetic
	case score > 0:
		return EmotionWarm
	case score < -0.5:
		return EmotionCool
	case score < 0:
		return EmotionCalm
	default:
		return EmotionNeutral
	}
}

const (
	kmeansSeed    = 42
	kmeansMaxIter = 20

	// clusterMaxDim bounds the image size fed into clustering; larger inputs
	// are thumbnailed first.
	clusterMaxDim = 256

	// dominantSampleStride: DominantColor looks at every Nth pixel only.
	dominantSampleStride = 6
)

// MainColors clusters the image's pixels into k representative colors using
// k-means with a fixed seed, so results are deterministic for a given image.
func MainColors(img image.Image, k int) []RGB {
	colors, _ := kMeans(clusterPixels(img), k)
	return colors
}

// DominantColor extracts the single most representative color: pixels are
// sampled at a coarse stride, clustered, and the centroid of the largest
// cluster wins.
func DominantColor(img image.Image) RGB {
	colors, counts := kMeans(sampledPixels(img, dominantSampleStride), 5)
	if len(colors) == 0 {
		return RGB{}
	}
	best := 0
	for i, n := range counts {
		if n > counts[best] {
			best = i
		}
	}
	return colors[best]
}

// clusterPixels collects every pixel of a thumbnailed copy of img.
func clusterPixels(img image.Image) [][3]float64 {
	small := resize.Thumbnail(clusterMaxDim, clusterMaxDim, img, resize.Lanczos3)
	return sampledPixels(small, 1)
}

func sampledPixels(img image.Image, stride int) [][3]float64 {
	if stride < 1 {
		stride = 1
	}
	b := img.Bounds()
	px := make([][3]float64, 0, (b.Dx()*b.Dy())/stride+1)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if i%stride == 0 {
				r, g, bl, _ := img.At(x, y).RGBA()
				px = append(px, [3]float64{
					float64(r >> 8),
					float64(g >> 8),
					float64(bl >> 8),
				})
			}
			i++
		}
	}
	return px
}

// kMeans clusters px into k centroids and returns them with their member
// counts. The RNG is seeded with kmeansSeed so runs are repeatable.
func kMeans(px [][3]float64, k int) ([]RGB, []int) {
	if len(px) == 0 || k <= 0 {
		return nil, nil
	}
	if k > len(px) {
		k = len(px)
	}

	rng := rand.New(rand.NewSource(kmeansSeed))

	cent := make([][3]float64, k)
	for i := range cent {
		cent[i] = px[rng.Intn(len(px))]
	}

	assign := make([]int, len(px))
	counts := make([]int, k)

	for iter := 0; iter < kmeansMaxIter; iter++ {
		changed := false
		for i, p := range px {
			best, bestDist := 0, math.Inf(1)
			for j, c := range cent {
				d := sqDist(p, c)
				if d < bestDist {
					bestDist = d
					best = j
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		sums := make([][3]float64, k)
		for i := range counts {
			counts[i] = 0
		}
		for i, p := range px {
			j := assign[i]
			for d := 0; d < 3; d++ {
				sums[j][d] += p[d]
			}
			counts[j]++
		}
		for j := range cent {
			if counts[j] == 0 {
				// Empty cluster: reseed from a random pixel.
				cent[j] = px[rng.Intn(len(px))]
				continue
			}
			for d := 0; d < 3; d++ {
				cent[j][d] = sums[j][d] / float64(counts[j])
			}
		}
	}

	for i := range counts {
		counts[i] = 0
	}
	for _, j := range assign {
		counts[j]++
	}

	out := make([]RGB, k)
	for j, c := range cent {
		out[j] = RGB{
			int(math.Round(c[0])),
			int(math.Round(c[1])),
			int(math.Round(c[2])),
		}
	}
	return out, counts
}

func sqDist(a, b [3]float64) float64 {
	var d float64
	for i := 0; i < 3; i++ {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return d
}
