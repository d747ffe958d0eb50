package detect

import (
	"image"
	"math"
)

// hsvPlanes holds one frame split into 8-bit hue, saturation, and value
// channels (hue halved into [0,179] so it fits a byte).
type hsvPlanes struct {
	h, s, v []uint8
}

func splitHSV(img image.Image) *hsvPlanes {
	bounds := img.Bounds()
	n := bounds.Dx() * bounds.Dy()
	planes := &hsvPlanes{
		h: make([]uint8, 0, n),
		s: make([]uint8, 0, n),
		v: make([]uint8, 0, n),
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b := rgb8(img, x, y)
			h, s, v := rgbToHSV(r, g, b)
			planes.h = append(planes.h, h)
			planes.s = append(planes.s, s)
			planes.v = append(planes.v, v)
		}
	}
	return planes
}

func rgb8(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func rgbToHSV(r, g, b uint8) (uint8, uint8, uint8) {
	maxC := maxU8(r, maxU8(g, b))
	minC := minU8(r, minU8(g, b))
	v := maxC
	diff := int(maxC) - int(minC)

	var s uint8
	if maxC > 0 {
		s = uint8(math.Round(255 * float64(diff) / float64(maxC)))
	}

	var h uint8
	if diff > 0 {
		var degrees float64
		switch maxC {
		case r:
			degrees = 60 * float64(int(g)-int(b)) / float64(diff)
		case g:
			degrees = 120 + 60*float64(int(b)-int(r))/float64(diff)
		default:
			degrees = 240 + 60*float64(int(r)-int(g))/float64(diff)
		}
		if degrees < 0 {
			degrees += 360
		}
		h = uint8(math.Round(degrees / 2))
	}
	return h, s, v
}

// meanAbsDelta returns the average absolute difference between two planes
// of equal length.
func meanAbsDelta(a, b []uint8) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var sum int64
	for i := range a {
		d := int64(a[i]) - int64(b[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return float64(sum) / float64(len(a))
}

// meanIntensity returns the average of all R, G, and B channel values
// across the frame.
func meanIntensity(img image.Image) float64 {
	bounds := img.Bounds()
	n := bounds.Dx() * bounds.Dy()
	if n == 0 {
		return 0
	}
	var sum uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b := rgb8(img, x, y)
			sum += uint64(r) + uint64(g) + uint64(b)
		}
	}
	return float64(sum) / float64(n*3)
}

func maxU8(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

func minU8(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}
