package tui

import (
	"fmt"
	"strconv"
)

// Color is a terminal color: one of the 16 named colors, a 256-palette
// index, or a 24-bit value flagged with bit 24.
type Color int32

const (
	ColUndefined Color = -2
	ColDefault   Color = -1
)

const (
	ColBlack Color = iota
	ColRed
	ColGreen
	ColYellow
	ColBlue
	ColMagenta
	ColCyan
	ColWhite
	ColGrey
	ColBrightRed
	ColBrightGreen
	ColBrightYellow
	ColBrightBlue
	ColBrightMagenta
	ColBrightCyan
	ColBrightWhite
)

// IsDefault reports whether the color is the terminal default
func (c Color) IsDefault() bool {
	return c == ColDefault
}

func (c Color) is24() bool {
	return c > 0 && (c&(1<<24)) > 0
}

// HexToColor converts a "#rrggbb" string to a 24-bit Color
func HexToColor(rrggbb string) Color {
	r, _ := strconv.ParseInt(rrggbb[1:3], 16, 0)
	g, _ := strconv.ParseInt(rrggbb[3:5], 16, 0)
	b, _ := strconv.ParseInt(rrggbb[5:7], 16, 0)
	return Color((1 << 24) + (r << 16) + (g << 8) + b)
}

// Channel selects which color channel of a control to read or resolve
type Channel int

const (
	Foreground Channel = iota
	Background
)

// sgrCode returns the SGR parameter string selecting the color on the given
// channel. offset is 0 for foreground, 10 for background.
func sgrCode(c Color, channel Channel) string {
	offset := 0
	if channel == Background {
		offset = 10
	}
	switch {
	case c == ColDefault, c == ColUndefined:
		return strconv.Itoa(39 + offset)
	case c.is24():
		r := (c >> 16) & 0xff
		g := (c >> 8) & 0xff
		b := c & 0xff
		return fmt.Sprintf("%d;2;%d;%d;%d", 38+offset, r, g, b)
	case c >= ColBlack && c <= ColWhite:
		return strconv.Itoa(int(c) + 30 + offset)
	case c > ColWhite && c < 16:
		return strconv.Itoa(int(c) + 90 + offset - 8)
	case c >= 16 && c < 256:
		return fmt.Sprintf("%d;5;%d", 38+offset, c)
	}
	return strconv.Itoa(39 + offset)
}
