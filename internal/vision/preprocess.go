package vision

import "image"

// CLIP preprocessing constants (per-channel mean and std).
var (
	clipMean = [3]float64{0.48145466, 0.4578275, 0.40821073}
	clipStd  = [3]float64{0.26862954, 0.26130258, 0.27577711}
)

// preprocess resizes the image to size×size with bilinear sampling and
// returns CHW float32 pixel data normalized the way the encoder was trained.
// Degenerate images map to the mean pixel rather than failing.
func preprocess(img image.Image, size int) []float32 {
	out := make([]float32, 3*size*size)
	if img == nil {
		return out
	}
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return out
	}

	plane := size * size
	for y := 0; y < size; y++ {
		srcY := (float64(y) + 0.5) * float64(height) / float64(size)
		for x := 0; x < size; x++ {
			srcX := (float64(x) + 0.5) * float64(width) / float64(size)
			r, g, b := bilinearSample(img, srcX, srcY)
			i := y*size + x
			out[i] = float32((r - clipMean[0]) / clipStd[0])
			out[plane+i] = float32((g - clipMean[1]) / clipStd[1])
			out[2*plane+i] = float32((b - clipMean[2]) / clipStd[2])
		}
	}
	return out
}

// bilinearSample returns the interpolated RGB value at a fractional source
// position, each channel scaled to [0,1].
func bilinearSample(img image.Image, x, y float64) (float64, float64, float64) {
	bounds := img.Bounds()
	x -= 0.5
	y -= 0.5

	x0 := int(x)
	y0 := int(y)
	fx := x - float64(x0)
	fy := y - float64(y0)
	if fx < 0 {
		fx, x0 = 0, 0
	}
	if fy < 0 {
		fy, y0 = 0, 0
	}

	r00, g00, b00 := rgbAt(img, bounds, x0, y0)
	r10, g10, b10 := rgbAt(img, bounds, x0+1, y0)
	r01, g01, b01 := rgbAt(img, bounds, x0, y0+1)
	r11, g11, b11 := rgbAt(img, bounds, x0+1, y0+1)

	lerp2 := func(v00, v10, v01, v11 float64) float64 {
		top := v00 + (v10-v00)*fx
		bottom := v01 + (v11-v01)*fx
		return top + (bottom-top)*fy
	}
	return lerp2(r00, r10, r01, r11), lerp2(g00, g10, g01, g11), lerp2(b00, b10, b01, b11)
}

func rgbAt(img image.Image, bounds image.Rectangle, x, y int) (float64, float64, float64) {
	px := bounds.Min.X + clampInt(x, 0, bounds.Dx()-1)
	py := bounds.Min.Y + clampInt(y, 0, bounds.Dy()-1)
	r, g, b, _ := img.At(px, py).RGBA()
	return float64(r) / 65535.0, float64(g) / 65535.0, float64(b) / 65535.0
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
