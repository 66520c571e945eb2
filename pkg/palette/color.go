// Package palette holds the color model used for story backgrounds and the
// harmonizer that derives the second gradient stop from a sampled color.
package palette

import (
	"fmt"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a point in HSL space.
// H is in degrees [0, 360); S and L are percentages [0, 100].
type Color struct {
	H float64
	S float64
	L float64
}

// FromRGB builds a Color from 8-bit channels.
func FromRGB(r, g, b uint8) Color {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, s, l := c.Hsl()
	return Color{H: h, S: s * 100, L: l * 100}
}

// FromColor converts any color.Color, ignoring alpha.
func FromColor(c color.Color) Color {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return FromRGB(rgba.R, rgba.G, rgba.B)
}

// FromHSL builds a Color directly from HSL components.
func FromHSL(h, s, l float64) Color {
	return Color{H: h, S: s, L: l}
}

// RGBA projects the color to opaque 8-bit RGB.
func (c Color) RGBA() color.RGBA {
	r, g, b := colorful.Hsl(c.H, c.S/100, c.L/100).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// CSS renders the color as "rgb(r, g, b)".
func (c Color) CSS() string {
	rgba := c.RGBA()
	return fmt.Sprintf("rgb(%d, %d, %d)", rgba.R, rgba.G, rgba.B)
}

// Hex renders the color as "#rrggbb".
func (c Color) Hex() string {
	rgba := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

// Harmonize returns a lighter color next to base on the hue wheel:
// the hue is rotated by 20 degrees, saturation scaled by 0.7 with a floor
// of 20, lightness scaled by 1.8 with a cap of 95.
//
// base must be in range (H in [0,360), S and L in [0,100]); out-of-range
// inputs are not corrected.
func Harmonize(base Color) Color {
	return Color{
		H: math.Mod(base.H+hueShift, 360),
		S: math.Max(base.S*saturationScale, saturationFloor),
		L: math.Min(base.L*lightnessScale, lightnessCap),
	}
}

const (
	hueShift        = 20
	saturationScale = 0.7
	saturationFloor = 20
	lightnessScale  = 1.8
	lightnessCap    = 95
)
