package tui

import "testing"

func TestHexToColor(t *testing.T) {
	c := HexToColor("#ff8000")
	if !c.is24() {
		t.Fatal("expected a 24-bit color")
	}
	if r := (c >> 16) & 0xff; r != 0xff {
		t.Errorf("red: expected 0xff, got %x", r)
	}
	if g := (c >> 8) & 0xff; g != 0x80 {
		t.Errorf("green: expected 0x80, got %x", g)
	}
	if b := c & 0xff; b != 0 {
		t.Errorf("blue: expected 0, got %x", b)
	}
}

func TestSgrCode(t *testing.T) {
	check := func(c Color, channel Channel, expected string) {
		if code := sgrCode(c, channel); code != expected {
			t.Errorf("%v/%v: expected %q, got %q", c, channel, expected, code)
		}
	}
	check(ColDefault, Foreground, "39")
	check(ColDefault, Background, "49")
	check(ColUndefined, Foreground, "39")
	check(ColRed, Foreground, "31")
	check(ColRed, Background, "41")
	check(ColBrightWhite, Foreground, "97")
	check(ColBrightWhite, Background, "107")
	check(Color(123), Foreground, "38;5;123")
	check(Color(123), Background, "48;5;123")
	check(HexToColor("#102030"), Foreground, "38;2;16;32;48")
	check(HexToColor("#102030"), Background, "48;2;16;32;48")
}
