package eval

import "math"

// rgbToHSV converts an 8-bit RGB color into HSV with each component in
// [0,1].
func rgbToHSV(r, g, b uint8) (h, s, v float64) {
	rf := float64(r) / 255.0
	gf := float64(g) / 255.0
	bf := float64(b) / 255.0

	cmax := math.Max(rf, math.Max(gf, bf))
	cmin := math.Min(rf, math.Min(gf, bf))
	delta := cmax - cmin

	var hue float64
	switch {
	case delta < 1e-9:
		hue = 0
	case cmax == rf:
		hue = 60 * math.Mod((gf-bf)/delta, 6)
	case cmax == gf:
		hue = 60 * ((bf-rf)/delta + 2)
	default:
		hue = 60 * ((rf-gf)/delta + 4)
	}
	if hue < 0 {
		hue += 360
	}

	if cmax < 1e-9 {
		s = 0
	} else {
		s = delta / cmax
	}

	return hue / 360, s, cmax
}

// hsvToRGB converts an HSV color (components in [0,1]) back to 8-bit
// RGB.
func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	deg := h * 360
	c := v * s
	x := c * (1 - math.Abs(math.Mod(deg/60, 2)-1))
	m := v - c

	var rf, gf, bf float64
	switch {
	case deg < 60:
		rf, gf, bf = c, x, 0
	case deg < 120:
		rf, gf, bf = x, c, 0
	case deg < 180:
		rf, gf, bf = 0, c, x
	case deg < 240:
		rf, gf, bf = 0, x, c
	case deg < 300:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}

	to8 := func(f float64) uint8 {
		n := math.Round((f + m) * 255)
		if n < 0 {
			n = 0
		}
		if n > 255 {
			n = 255
		}
		return uint8(n)
	}
	return to8(rf), to8(gf), to8(bf)
}

// adjustBrightnessHSV scales the V component of the color by factor,
// clamped to [0,1], leaving hue and saturation alone.
func adjustBrightnessHSV(r, g, b uint8, factor float64) (uint8, uint8, uint8) {
	h, s, v := rgbToHSV(r, g, b)
	nv := v * factor
	if nv < 0 {
		nv = 0
	}
	if nv > 1 {
		nv = 1
	}
	return hsvToRGB(h, s, nv)
}
