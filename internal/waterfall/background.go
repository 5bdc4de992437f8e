package waterfall

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/unkn0wn-root/netmon/internal/selectors"
	"github.com/unkn0wn-root/netmon/internal/state"
)

const (
	// TicksMultiple is the finest tick period in milliseconds.
	TicksMultiple = 5
	TicksScales   = 3
	// TicksSpacingMin is the closest two ticks may be, in pixels.
	TicksSpacingMin = 10
	TicksOpacityMin = 32
	TicksOpacityAdd = 32
)

var (
	TicksColor            = color.NRGBA{R: 128, G: 136, B: 144}
	DOMContentLoadedColor = color.NRGBA{R: 255, G: 0, B: 0, A: 128}
	LoadColor             = color.NRGBA{R: 0, G: 0, B: 255, A: 128}
)

// Background draws the one pixel high strip repeated behind every row:
// millisecond ticks at three densities plus the page lifecycle markers.
// Colors are stored unpremultiplied.
func Background(s state.State) *image.NRGBA {
	width := max(s.WaterfallWidth, 0)
	img := image.NewNRGBA(image.Rect(0, 0, width, 1))
	scale := selectors.WaterfallScale(s)

	scaledStep := scale * TicksMultiple
	for scaledStep < TicksSpacingMin {
		scaledStep *= 2
	}

	alpha := TicksOpacityMin
	for i := 1; i <= TicksScales; i++ {
		increment := scaledStep * math.Pow(2, float64(i))
		tick := TicksColor
		tick.A = uint8(alpha)
		for x := 0.0; x < float64(width); x += increment {
			img.SetNRGBA(int(x), 0, tick)
		}
		alpha += TicksOpacityAdd
	}

	drawMarker(img, s.FirstDocumentDOMContentLoadedTimestamp, s.FirstRequestStartedMillis, scale, DOMContentLoadedColor)
	drawMarker(img, s.FirstDocumentLoadTimestamp, s.FirstRequestStartedMillis, scale, LoadColor)
	return img
}

// MarkerOffset is the pixel column of timestamp t, or -1 when t is unset.
func MarkerOffset(t, first, scale float64) int {
	if t == state.Unset || first == state.Unset {
		return -1
	}
	return int(math.Floor((t - first) * scale))
}

func drawMarker(img *image.NRGBA, t, first, scale float64, c color.NRGBA) {
	x := MarkerOffset(t, first, scale)
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	img.SetNRGBA(x, 0, c)
}

func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode waterfall background: %w", err)
	}
	return nil
}
