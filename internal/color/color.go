// Package color derives label colors for book lists.
package color

import (
	"fmt"
	"strings"
)

// ForList returns a stable hex color for a list name. Names differing only in
// case or surrounding whitespace get the same color.
func ForList(name string) string {
	h := 0
	for _, c := range strings.ToLower(strings.TrimSpace(name)) {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	hue := float64(h % 360)

	// S=0.45, L=0.6 keeps label text readable on both themes
	r, g, b := hslToRGB(hue, 0.45, 0.6)

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// hslToRGB converts HSL (h in degrees, s and l in 0-1) to 8-bit RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360.0

	var r1, g1, b1 float64
	if s == 0 {
		r1, g1, b1 = l, l, l
	} else {
		q := l + s - l*s
		if l < 0.5 {
			q = l * (1 + s)
		}
		p := 2*l - q

		r1 = hueToRGB(p, q, h+1.0/3.0)
		g1 = hueToRGB(p, q, h)
		b1 = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(r1*255 + 0.5), uint8(g1*255 + 0.5), uint8(b1*255 + 0.5)
}

func hueToRGB(p, q, t float64) float64 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
