package logofy

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	paletteColors    = 5
	stepRepetitions  = 8
	paletteHeightDiv = 6
)

// BuildPalette extracts the main colors of the image at srcPath, orders them
// with the step sort for a visually pleasing sequence, and renders them as
// equal-width horizontal blocks sized to 1/6 of the source height. The
// palette is written under cfg.PalettesDir with the source file name.
// Returns the written path.
func (cfg *Config) BuildPalette(srcPath string) (string, error) {
	cfg.defaults()

	img, _, err := decodeImageFile(srcPath)
	if err != nil {
		return "", err
	}

	colors := MainColors(img, paletteColors)
	if len(colors) == 0 {
		return "", os.ErrInvalid
	}
	sortColorsByStep(colors)

	b := img.Bounds()
	width := b.Dx()
	height := b.Dy() / paletteHeightDiv
	if height < 1 {
		height = 1
	}

	palette := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(palette, palette.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	blockWidth := width / len(colors)
	x := 0
	for _, c := range colors {
		block := image.Rect(x, 0, x+blockWidth, height)
		fill := color.RGBA{uint8(c[0]), uint8(c[1]), uint8(c[2]), 255}
		draw.Draw(palette, block, image.NewUniform(fill), image.Point{}, draw.Src)
		x += blockWidth
	}

	if err := os.MkdirAll(cfg.PalettesDir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(cfg.PalettesDir, filepath.Base(srcPath))
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := png.Encode(f, palette); err != nil {
		return "", err
	}
	return dest, nil
}

// sortColorsByStep orders colors by quantized (hue, luminance, value). Plain
// hue or luminance sorts alternate between light and dark; the step
// quantization groups hues first and grades brightness within each group.
func sortColorsByStep(colors []RGB) {
	sort.SliceStable(colors, func(i, j int) bool {
		a, b := stepKey(colors[i]), stepKey(colors[j])
		for d := 0; d < 3; d++ {
			if a[d] != b[d] {
				return a[d] < b[d]
			}
		}
		return false
	})
}

func stepKey(c RGB) [3]int {
	r, g, b := float64(c[0]), float64(c[1]), float64(c[2])
	lum := math.Sqrt(0.241*r + 0.691*g + 0.068*b)

	col := colorful.Color{R: r / 255, G: g / 255, B: b / 255}
	h, _, v := col.Hsv()

	return [3]int{
		int(h / 360 * stepRepetitions),
		int(lum * stepRepetitions),
		int(v * stepRepetitions),
	}
}
