package tui

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	escByte = 0x1b

	// An escape sequence longer than this is assumed to be garbage and is
	// discarded so that decoding can resynchronize.
	maxEscapeBuffer = 64
)

// Parser is an incremental decoder turning raw terminal bytes into key and
// mouse events. Multi-byte sequences arrive in pieces from the input
// goroutine, so the parser keeps partial escape sequences and partial UTF-8
// codepoints across Feed calls. Malformed input is discarded, never fatal.
type Parser struct {
	esc      []byte // pending escape sequence, starting with ESC
	partial  []byte // pending bytes of a multi-byte UTF-8 codepoint
	expected int    // continuation bytes still needed to complete it
}

// NewParser returns a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// Feed decodes the given bytes, returning the events completed by them
func (p *Parser) Feed(data []byte) []Event {
	var events []Event
	for _, b := range data {
		events = p.feed(b, events)
	}
	return events
}

// Flush drains parser state at end of input. A lone pending ESC becomes an
// escape key press; anything else pending is incomplete and is dropped.
func (p *Parser) Flush() []Event {
	var events []Event
	if len(p.esc) == 1 {
		events = append(events, Event{Key: Key{Type: KeyEscape}})
	}
	p.esc = nil
	p.partial = nil
	p.expected = 0
	return events
}

func (p *Parser) feed(b byte, events []Event) []Event {
	if p.esc != nil {
		return p.feedEscape(b, events)
	}

	if p.expected > 0 {
		if b&0xc0 == 0x80 {
			p.partial = append(p.partial, b)
			p.expected--
			if p.expected == 0 {
				r, _ := utf8.DecodeRune(p.partial)
				p.partial = nil
				if r != utf8.RuneError {
					events = append(events, Event{Key: Key{Type: KeyRune, Rune: r}})
				}
			}
			return events
		}
		// Broken continuation; drop the partial codepoint and resynchronize
		// on the current byte.
		p.partial = nil
		p.expected = 0
	}

	switch {
	case b == escByte:
		p.esc = append(p.esc[:0], b)
		return events
	case b < 0x20 || b == 0x7f:
		return append(events, Event{Key: controlKey(b)})
	case b < 0x80:
		return append(events, Event{Key: Key{Type: KeyRune, Rune: rune(b)}})
	}

	expected := leadExpected(b)
	if expected == 0 {
		// Stray continuation byte or invalid lead; discard.
		return events
	}
	p.partial = append(p.partial[:0], b)
	p.expected = expected
	return events
}

// leadExpected returns the number of continuation bytes implied by a UTF-8
// lead byte, or 0 if the byte cannot start a codepoint.
func leadExpected(b byte) int {
	switch {
	case b&0xe0 == 0xc0:
		return 1
	case b&0xf0 == 0xe0:
		return 2
	case b&0xf8 == 0xf0:
		return 3
	}
	return 0
}

func controlKey(b byte) Key {
	switch b {
	case 0:
		return Key{Type: KeyRune, Rune: ' ', Mods: ModCtrl}
	case '\t':
		return Key{Type: KeyTab}
	case '\r', '\n':
		return Key{Type: KeyEnter}
	case 0x7f:
		return Key{Type: KeyBackspace}
	case 0x1c:
		return CtrlKey('\\')
	case 0x1d:
		return CtrlKey(']')
	case 0x1e:
		return CtrlKey('^')
	case 0x1f:
		return CtrlKey('_')
	}
	// CTRL-A ~ CTRL-Z
	return CtrlKey(rune('a' + b - 1))
}

func (p *Parser) feedEscape(b byte, events []Event) []Event {
	if len(p.esc) == 1 {
		switch {
		case b == escByte:
			// ESC ESC: report the first and keep waiting on the second.
			return append(events, Event{Key: Key{Type: KeyEscape}})
		case b == '[' || b == 'O':
			p.esc = append(p.esc, b)
			return events
		default:
			// Meta-modified key.
			p.esc = nil
			for _, ev := range p.feed(b, nil) {
				ev.Key.Mods |= ModAlt
				events = append(events, ev)
			}
			return events
		}
	}

	if p.esc[1] == 'O' {
		p.esc = nil
		if key, ok := ss3Key(b); ok {
			return append(events, Event{Key: key})
		}
		return events
	}

	// CSI: parameter and intermediate bytes accumulate until a final byte
	// in 0x40..0x7e arrives.
	if b >= 0x40 && b <= 0x7e {
		params := string(p.esc[2:])
		p.esc = nil
		return p.finishCSI(params, b, events)
	}
	p.esc = append(p.esc, b)
	if len(p.esc) > maxEscapeBuffer {
		p.esc = nil
	}
	return events
}

func (p *Parser) finishCSI(params string, final byte, events []Event) []Event {
	if strings.HasPrefix(params, "<") {
		if report, ok := parseMouse(params[1:], final); ok {
			return append(events, Event{Mouse: report})
		}
		return events
	}
	if key, ok := csiKey(params, final); ok {
		return append(events, Event{Key: key})
	}
	return events
}

func ss3Key(final byte) (Key, bool) {
	switch final {
	case 'A':
		return Key{Type: KeyUp}, true
	case 'B':
		return Key{Type: KeyDown}, true
	case 'C':
		return Key{Type: KeyRight}, true
	case 'D':
		return Key{Type: KeyLeft}, true
	case 'H':
		return Key{Type: KeyHome}, true
	case 'F':
		return Key{Type: KeyEnd}, true
	case 'P':
		return Key{Type: KeyF1}, true
	case 'Q':
		return Key{Type: KeyF2}, true
	case 'R':
		return Key{Type: KeyF3}, true
	case 'S':
		return Key{Type: KeyF4}, true
	}
	return Key{}, false
}

// csiKey maps a CSI sequence to a symbolic key. The second numeric
// parameter, minus one, is a modifier bit set: 1 shift, 2 meta, 4 ctrl.
func csiKey(params string, final byte) (Key, bool) {
	numbers := splitParams(params)
	mods := Mod(0)
	if len(numbers) >= 2 && numbers[1] > 0 {
		m := numbers[1] - 1
		if m&1 > 0 {
			mods |= ModShift
		}
		if m&2 > 0 {
			mods |= ModAlt
		}
		if m&4 > 0 {
			mods |= ModCtrl
		}
	}

	switch final {
	case 'A':
		return Key{Type: KeyUp, Mods: mods}, true
	case 'B':
		return Key{Type: KeyDown, Mods: mods}, true
	case 'C':
		return Key{Type: KeyRight, Mods: mods}, true
	case 'D':
		return Key{Type: KeyLeft, Mods: mods}, true
	case 'H':
		return Key{Type: KeyHome, Mods: mods}, true
	case 'F':
		return Key{Type: KeyEnd, Mods: mods}, true
	case 'Z':
		return Key{Type: KeyTab, Mods: mods | ModShift}, true
	case 'P', 'Q', 'R', 'S':
		return Key{Type: KeyF1 + KeyType(final-'P'), Mods: mods}, true
	case '~':
		if len(numbers) == 0 {
			return Key{}, false
		}
		if keyType, ok := tildeKeys[numbers[0]]; ok {
			return Key{Type: keyType, Mods: mods}, true
		}
	}
	return Key{}, false
}

var tildeKeys = map[int]KeyType{
	1: KeyHome, 2: KeyInsert, 3: KeyDelete, 4: KeyEnd,
	5: KeyPageUp, 6: KeyPageDown, 7: KeyHome, 8: KeyEnd,
	11: KeyF1, 12: KeyF2, 13: KeyF3, 14: KeyF4, 15: KeyF5,
	17: KeyF6, 18: KeyF7, 19: KeyF8, 20: KeyF9, 21: KeyF10,
	23: KeyF11, 24: KeyF12,
}

func splitParams(params string) []int {
	if len(params) == 0 {
		return nil
	}
	parts := strings.Split(params, ";")
	numbers := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			n = 0
		}
		numbers = append(numbers, n)
	}
	return numbers
}

// parseMouse decodes the body of an SGR mouse report: "<b>;<x>;<y>" plus the
// final character ('M' press/motion, 'm' release). Wire coordinates are
// 1-based.
func parseMouse(params string, final byte) (*MouseReport, bool) {
	if final != 'M' && final != 'm' {
		return nil, false
	}
	parts := strings.Split(params, ";")
	if len(parts) != 3 {
		return nil, false
	}
	numbers := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, false
		}
		numbers[i] = n
	}
	action, button, mods := DecodeMouseType(numbers[0], final)
	return &MouseReport{
		Action: action,
		Button: button,
		Mods:   mods,
		X:      numbers[1] - 1,
		Y:      numbers[2] - 1,
	}, true
}

// DecodeMouseType splits an SGR first parameter and final character into an
// action, a button and a modifier set. Bits 0-1 select the button, bit 5
// marks motion, bit 6 turns the button bits into a scroll direction, and
// bits 2-4 are shift, meta and ctrl.
func DecodeMouseType(param int, final byte) (MouseAction, MouseButton, Mod) {
	mods := Mod(0)
	if param&4 > 0 {
		mods |= ModShift
	}
	if param&8 > 0 {
		mods |= ModAlt
	}
	if param&16 > 0 {
		mods |= ModCtrl
	}

	if param&64 > 0 {
		// The button bits are a scroll direction here.
		if param&1 > 0 {
			return MouseScrollDown, MouseLeft, mods
		}
		return MouseScrollUp, MouseLeft, mods
	}

	button := MouseLeft
	if b := param & 3; b < 3 {
		button = MouseButton(b)
	}

	switch {
	case param&32 > 0:
		if param&3 == 3 {
			return MouseMove, button, mods
		}
		return MouseDrag, button, mods
	case final == 'm':
		return MouseUp, button, mods
	}
	return MouseDown, button, mods
}
