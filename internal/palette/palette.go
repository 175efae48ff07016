// Package palette maps free-form color strings onto the fixed set of colors
// the drawing surface understands.
package palette

import (
	"encoding/hex"
	"image/color"
	"strings"
)

type Color string

const (
	Black       Color = "black"
	Grey        Color = "grey"
	LightViolet Color = "light-violet"
	Violet      Color = "violet"
	Blue        Color = "blue"
	LightBlue   Color = "light-blue"
	Yellow      Color = "yellow"
	Orange      Color = "orange"
	Green       Color = "green"
	LightGreen  Color = "light-green"
	LightRed    Color = "light-red"
	Red         Color = "red"
	White       Color = "white"

	Default = Black
)

var all = []Color{Black, Grey, LightViolet, Violet, Blue, LightBlue, Yellow, Orange, Green, LightGreen, LightRed, Red, White}

// render values, close to what whiteboard tools use for the same names
var rgb = map[Color]color.NRGBA{
	Black:       {R: 0x1d, G: 0x1d, B: 0x1d, A: 0xff},
	Grey:        {R: 0x9f, G: 0xa8, B: 0xb2, A: 0xff},
	LightViolet: {R: 0xe0, G: 0x85, B: 0xf4, A: 0xff},
	Violet:      {R: 0xae, G: 0x3e, B: 0xc9, A: 0xff},
	Blue:        {R: 0x44, G: 0x65, B: 0xe9, A: 0xff},
	LightBlue:   {R: 0x4b, G: 0xa1, B: 0xf1, A: 0xff},
	Yellow:      {R: 0xf1, G: 0xac, B: 0x4b, A: 0xff},
	Orange:      {R: 0xe1, G: 0x68, B: 0x19, A: 0xff},
	Green:       {R: 0x09, G: 0x92, B: 0x68, A: 0xff},
	LightGreen:  {R: 0x4c, G: 0xb0, B: 0x5e, A: 0xff},
	LightRed:    {R: 0xf8, G: 0x77, B: 0x77, A: 0xff},
	Red:         {R: 0xe0, G: 0x31, B: 0x31, A: 0xff},
	White:       {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
}

var names = map[string]Color{
	"black":        Black,
	"grey":         Grey,
	"gray":         Grey,
	"silver":       Grey,
	"light-violet": LightViolet,
	"lightviolet":  LightViolet,
	"lavender":     LightViolet,
	"magenta":      LightViolet,
	"violet":       Violet,
	"purple":       Violet,
	"indigo":       Violet,
	"blue":         Blue,
	"navy":         Blue,
	"light-blue":   LightBlue,
	"lightblue":    LightBlue,
	"cyan":         LightBlue,
	"teal":         LightBlue,
	"sky":          LightBlue,
	"yellow":       Yellow,
	"gold":         Yellow,
	"orange":       Orange,
	"brown":        Orange,
	"green":        Green,
	"light-green":  LightGreen,
	"lightgreen":   LightGreen,
	"lime":         LightGreen,
	"light-red":    LightRed,
	"lightred":     LightRed,
	"pink":         LightRed,
	"salmon":       LightRed,
	"red":          Red,
	"crimson":      Red,
	"maroon":       Red,
	"white":        White,
}

// exact hex codes the model tends to emit
var hexes = map[string]Color{
	"#000000": Black,
	"#333333": Black,
	"#808080": Grey,
	"#888888": Grey,
	"#CCCCCC": Grey,
	"#EE82EE": LightViolet,
	"#800080": Violet,
	"#8B5CF6": Violet,
	"#0000FF": Blue,
	"#3B82F6": Blue,
	"#ADD8E6": LightBlue,
	"#00FFFF": LightBlue,
	"#FFFF00": Yellow,
	"#FFD700": Yellow,
	"#FFA500": Orange,
	"#F97316": Orange,
	"#008000": Green,
	"#00FF00": Green,
	"#22C55E": Green,
	"#90EE90": LightGreen,
	"#FFB6C1": LightRed,
	"#FFC0CB": LightRed,
	"#FF0000": Red,
	"#EF4444": Red,
	"#FFFFFF": White,
}

// Normalize maps s onto the palette. It never fails: empty or unrecognized
// input yields Default.
func Normalize(s string) Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Default
	}
	if c, ok := names[s]; ok {
		return c
	}
	if c, ok := names[strings.ReplaceAll(s, " ", "-")]; ok {
		return c
	}
	h := normalizeHex(s)
	if h == "" {
		return Default
	}
	if c, ok := hexes[h]; ok {
		return c
	}
	r, g, b, _ := parseHexRGB(h)
	return nearest(r, g, b)
}

func (c Color) Valid() bool {
	_, ok := rgb[c]
	return ok
}

// NRGBA returns the render color, falling back to Default for values
// outside the palette.
func (c Color) NRGBA() color.NRGBA {
	if v, ok := rgb[c]; ok {
		return v
	}
	return rgb[Default]
}

func All() []Color {
	out := make([]Color, len(all))
	copy(out, all)
	return out
}

func nearest(r, g, b uint8) Color {
	best := Default
	bestDist := -1
	for _, c := range all {
		v := rgb[c]
		dr := int(r) - int(v.R)
		dg := int(g) - int(v.G)
		db := int(b) - int(v.B)
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func normalizeHex(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return ""
	}
	s = "#" + strings.ToUpper(s)
	if _, _, _, err := parseHexRGB(s); err != nil {
		return ""
	}
	return s
}

func parseHexRGB(s string) (r, g, b uint8, err error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil {
		return 0, 0, 0, err
	}
	if len(raw) != 3 {
		return 0, 0, 0, hex.ErrLength
	}
	return raw[0], raw[1], raw[2], nil
}
