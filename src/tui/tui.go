package tui

import (
	"fmt"
)

// Mod is a bit set of key/mouse modifiers
type Mod uint8

const (
	ModShift Mod = 1 << iota
	ModAlt
	ModCtrl
)

func (m Mod) String() string {
	name := ""
	if m&ModCtrl > 0 {
		name += "ctrl-"
	}
	if m&ModAlt > 0 {
		name += "alt-"
	}
	if m&ModShift > 0 {
		name += "shift-"
	}
	return name
}

// KeyType identifies a key. KeyRune carries the decoded codepoint in
// Key.Rune; every other value is a symbolic key.
type KeyType int32

const (
	KeyRune KeyType = iota

	KeyEnter
	KeyTab
	KeyBackspace
	KeyEscape

	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyPageUp
	KeyPageDown

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Key is a single decoded key press
type Key struct {
	Type KeyType
	Rune rune
	Mods Mod
}

// CtrlKey returns a ctrl-modified letter key
func CtrlKey(r rune) Key {
	return Key{Type: KeyRune, Rune: r, Mods: ModCtrl}
}

// AltKey returns an alt-modified letter key
func AltKey(r rune) Key {
	return Key{Type: KeyRune, Rune: r, Mods: ModAlt}
}

func (k Key) String() string {
	if k.Type == KeyRune {
		if k.Rune == ' ' {
			return k.Mods.String() + "space"
		}
		return k.Mods.String() + string(k.Rune)
	}
	return k.Mods.String() + keyTypeNames[k.Type]
}

var keyTypeNames = map[KeyType]string{
	KeyEnter: "enter", KeyTab: "tab", KeyBackspace: "backspace",
	KeyEscape: "esc", KeyUp: "up", KeyDown: "down", KeyRight: "right",
	KeyLeft: "left", KeyHome: "home", KeyEnd: "end", KeyInsert: "insert",
	KeyDelete: "delete", KeyPageUp: "page-up", KeyPageDown: "page-down",
	KeyF1: "f1", KeyF2: "f2", KeyF3: "f3", KeyF4: "f4", KeyF5: "f5",
	KeyF6: "f6", KeyF7: "f7", KeyF8: "f8", KeyF9: "f9", KeyF10: "f10",
	KeyF11: "f11", KeyF12: "f12",
}

// MouseAction is what the mouse did
type MouseAction int

const (
	MouseMove MouseAction = iota
	MouseDown
	MouseUp
	MouseDrag
	MouseScrollUp
	MouseScrollDown
)

// MouseButton is which button was involved
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
)

// MouseReport is a single decoded SGR mouse event. X and Y are zero-based
// cell coordinates.
type MouseReport struct {
	Action MouseAction
	Button MouseButton
	Mods   Mod
	X      int
	Y      int
}

func (m MouseReport) String() string {
	actions := [...]string{"move", "down", "up", "drag", "scroll-up", "scroll-down"}
	buttons := [...]string{"left", "middle", "right"}
	return fmt.Sprintf("%s%s-%s (%d, %d)",
		m.Mods.String(), buttons[m.Button], actions[m.Action], m.X, m.Y)
}

// MouseMode selects the terminal's mouse-tracking mode. The values are the
// DECSET parameters the terminal expects.
type MouseMode int

const (
	MouseModeNone      MouseMode = 0
	MouseModeBasic     MouseMode = 9
	MouseModeNormal    MouseMode = 1000
	MouseModeHighlight MouseMode = 1001
	MouseModeMotion    MouseMode = 1002
	MouseModeAny       MouseMode = 1003
)

// Event is a single decoded input event: a key press, or a mouse report
// when Mouse is non-nil.
type Event struct {
	Key   Key
	Mouse *MouseReport
}

// IsMouse reports whether the event carries a mouse report
func (e Event) IsMouse() bool {
	return e.Mouse != nil
}
