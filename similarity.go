package logofy

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Histogram shape: hue×saturation×value buckets over the HSV cube. Hue uses
// the halved-degree convention (0–180) so the bucket geometry matches the
// common computer-vision layout.
const (
	hueBins = 50
	satBins = 60
	valBins = 60

	histNormMax = 255.0
)

// Similarity compares the two image files by HSV histogram correlation and
// returns a percentage in [0,100]; higher means more similar. Approximately
// symmetric in its arguments. Fails when either file cannot be read or
// decoded.
func Similarity(pathA, pathB string) (float64, error) {
	ha, err := fileHistogram(pathA)
	if err != nil {
		return 0, err
	}
	hb, err := fileHistogram(pathB)
	if err != nil {
		return 0, err
	}
	corr := correlation(ha, hb)
	return (corr + 1) / 2 * 100, nil
}

func fileHistogram(path string) ([]float64, error) {
	img, _, err := decodeImageFile(path)
	if err != nil {
		return nil, err
	}
	return hsvHistogram(img), nil
}

// hsvHistogram bins every pixel of img into the 50×60×60 HSV grid and
// min-max normalizes the counts to [0,255].
func hsvHistogram(img image.Image) []float64 {
	hist := make([]float64, hueBins*satBins*valBins)

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				// Fully transparent pixel: bin as black.
				c = colorful.Color{}
			}
			h, s, v := c.Hsv()

			hi := int(h / 360 * hueBins)
			si := int(s * satBins)
			vi := int(v * valBins)
			if hi >= hueBins {
				hi = hueBins - 1
			}
			if si >= satBins {
				si = satBins - 1
			}
			if vi >= valBins {
				vi = valBins - 1
			}
			hist[(hi*satBins+si)*valBins+vi]++
		}
	}

	normalizeMinMax(hist)
	return hist
}

// normalizeMinMax rescales values to [0, histNormMax] in place. A constant
// histogram collapses to all zeros.
func normalizeMinMax(h []float64) {
	if len(h) == 0 {
		return
	}
	lo, hi := h[0], h[0]
	for _, v := range h {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		for i := range h {
			h[i] = 0
		}
		return
	}
	scale := histNormMax / (hi - lo)
	for i := range h {
		h[i] = (h[i] - lo) * scale
	}
}

// correlation is the Pearson correlation coefficient of a and b, in [-1,1].
// Returns 0 when either vector has no variance.
func correlation(a, b []float64) float64 {
	n := float64(len(a))
	if n == 0 || len(a) != len(b) {
		return 0
	}

	var ma, mb float64
	for i := range a {
		ma += a[i]
		mb += b[i]
	}
	ma /= n
	mb /= n

	var num, da, db float64
	for i := range a {
		x, y := a[i]-ma, b[i]-mb
		num += x * y
		da += x * x
		db += y * y
	}

	denom := math.Sqrt(da * db)
	if denom == 0 {
		return 0
	}
	return num / denom
}
