package tui

import "testing"

func feedAll(t *testing.T, p *Parser, input string) []Event {
	t.Helper()
	return p.Feed([]byte(input))
}

func singleKey(t *testing.T, input string) Key {
	t.Helper()
	events := feedAll(t, NewParser(), input)
	if len(events) != 1 {
		t.Fatalf("%q: expected a single event, got %d", input, len(events))
	}
	if events[0].IsMouse() {
		t.Fatalf("%q: expected a key event, got %s", input, events[0].Mouse)
	}
	return events[0].Key
}

func TestParserPlainText(t *testing.T) {
	events := feedAll(t, NewParser(), "hi!")
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, r := range "hi!" {
		if events[i].Key != (Key{Type: KeyRune, Rune: r}) {
			t.Errorf("event %d: expected %q, got %s", i, r, events[i].Key)
		}
	}
}

func TestParserControlKeys(t *testing.T) {
	check := func(input string, expected Key) {
		if key := singleKey(t, input); key != expected {
			t.Errorf("%q: expected %s, got %s", input, expected, key)
		}
	}
	check("\x01", CtrlKey('a'))
	check("\x1a", CtrlKey('z'))
	check("\x00", Key{Type: KeyRune, Rune: ' ', Mods: ModCtrl})
	check("\x1d", CtrlKey(']'))
	check("\t", Key{Type: KeyTab})
	check("\r", Key{Type: KeyEnter})
	check("\n", Key{Type: KeyEnter})
	check("\x7f", Key{Type: KeyBackspace})
}

func TestParserUTF8ByteAtATime(t *testing.T) {
	parser := NewParser()
	input := "é世🎉"
	var decoded []rune
	for _, b := range []byte(input) {
		for _, event := range parser.Feed([]byte{b}) {
			if event.Key.Type != KeyRune {
				t.Fatalf("expected a rune event, got %s", event.Key)
			}
			decoded = append(decoded, event.Key.Rune)
		}
	}
	if string(decoded) != input {
		t.Errorf("expected %q, got %q", input, string(decoded))
	}
}

func TestParserBrokenUTF8(t *testing.T) {
	parser := NewParser()
	// A three-byte lead followed by plain ASCII. The partial codepoint is
	// dropped and decoding resynchronizes on the ASCII byte.
	events := parser.Feed([]byte{0xe2, 0x82, 'a'})
	if len(events) != 1 || events[0].Key != (Key{Type: KeyRune, Rune: 'a'}) {
		t.Errorf("expected a single 'a', got %v", events)
	}

	// A stray continuation byte on its own is discarded.
	if events := parser.Feed([]byte{0x82}); len(events) != 0 {
		t.Errorf("expected no events, got %v", events)
	}
	if events := parser.Feed([]byte("b")); len(events) != 1 || events[0].Key.Rune != 'b' {
		t.Errorf("expected 'b', got %v", events)
	}
}

func TestParserEscapeSequences(t *testing.T) {
	check := func(input string, expected Key) {
		if key := singleKey(t, input); key != expected {
			t.Errorf("%q: expected %s, got %s", input, expected, key)
		}
	}
	check("\x1b[A", Key{Type: KeyUp})
	check("\x1b[D", Key{Type: KeyLeft})
	check("\x1bOB", Key{Type: KeyDown})
	check("\x1bOP", Key{Type: KeyF1})
	check("\x1b[H", Key{Type: KeyHome})
	check("\x1b[F", Key{Type: KeyEnd})
	check("\x1b[Z", Key{Type: KeyTab, Mods: ModShift})
	check("\x1b[3~", Key{Type: KeyDelete})
	check("\x1b[5~", Key{Type: KeyPageUp})
	check("\x1b[15~", Key{Type: KeyF5})
	check("\x1b[24~", Key{Type: KeyF12})
	check("\x1b[1;5C", Key{Type: KeyRight, Mods: ModCtrl})
	check("\x1b[1;2H", Key{Type: KeyHome, Mods: ModShift})
	check("\x1b[3;3~", Key{Type: KeyDelete, Mods: ModAlt})
	check("\x1bx", AltKey('x'))
}

func TestParserSplitEscape(t *testing.T) {
	parser := NewParser()
	if events := parser.Feed([]byte("\x1b[1;")); len(events) != 0 {
		t.Fatalf("expected no events mid-sequence, got %v", events)
	}
	events := parser.Feed([]byte("5A"))
	if len(events) != 1 || events[0].Key != (Key{Type: KeyUp, Mods: ModCtrl}) {
		t.Errorf("expected ctrl-up, got %v", events)
	}
}

func TestParserLoneEscape(t *testing.T) {
	parser := NewParser()
	if events := parser.Feed([]byte{0x1b}); len(events) != 0 {
		t.Fatalf("a lone ESC must wait for more input, got %v", events)
	}
	events := parser.Flush()
	if len(events) != 1 || events[0].Key != (Key{Type: KeyEscape}) {
		t.Errorf("expected an escape key on flush, got %v", events)
	}
}

func TestParserDoubleEscape(t *testing.T) {
	parser := NewParser()
	events := parser.Feed([]byte{0x1b, 0x1b})
	if len(events) != 1 || events[0].Key != (Key{Type: KeyEscape}) {
		t.Fatalf("expected one escape key, got %v", events)
	}
	// The second ESC is still pending.
	events = parser.Feed([]byte("[B"))
	if len(events) != 1 || events[0].Key != (Key{Type: KeyDown}) {
		t.Errorf("expected down, got %v", events)
	}
}

func TestParserOversizedEscape(t *testing.T) {
	parser := NewParser()
	garbage := []byte{0x1b, '['}
	for len(garbage) <= maxEscapeBuffer {
		garbage = append(garbage, ';')
	}
	if events := parser.Feed(garbage); len(events) != 0 {
		t.Fatalf("expected the garbage to be discarded, got %v", events)
	}
	if events := parser.Feed([]byte("a")); len(events) != 1 || events[0].Key.Rune != 'a' {
		t.Errorf("expected to resynchronize on 'a', got %v", events)
	}
}

func TestParserMouse(t *testing.T) {
	check := func(input string, expected MouseReport) {
		events := feedAll(t, NewParser(), input)
		if len(events) != 1 || !events[0].IsMouse() {
			t.Fatalf("%q: expected a single mouse event, got %v", input, events)
		}
		if *events[0].Mouse != expected {
			t.Errorf("%q: expected %s, got %s", input, expected, *events[0].Mouse)
		}
	}
	check("\x1b[<0;10;5M", MouseReport{Action: MouseDown, Button: MouseLeft, X: 9, Y: 4})
	check("\x1b[<0;10;5m", MouseReport{Action: MouseUp, Button: MouseLeft, X: 9, Y: 4})
	check("\x1b[<2;1;1M", MouseReport{Action: MouseDown, Button: MouseRight, X: 0, Y: 0})
	check("\x1b[<32;7;8M", MouseReport{Action: MouseDrag, Button: MouseLeft, X: 6, Y: 7})
	check("\x1b[<35;7;8M", MouseReport{Action: MouseMove, Button: MouseLeft, X: 6, Y: 7})
	check("\x1b[<64;3;4M", MouseReport{Action: MouseScrollUp, Button: MouseLeft, X: 2, Y: 3})
	check("\x1b[<65;3;4M", MouseReport{Action: MouseScrollDown, Button: MouseLeft, X: 2, Y: 3})
	check("\x1b[<16;2;2M", MouseReport{Action: MouseDown, Button: MouseLeft, Mods: ModCtrl, X: 1, Y: 1})
}

func TestParserMouseSplitAcrossReads(t *testing.T) {
	parser := NewParser()
	if events := parser.Feed([]byte("\x1b[<0;1")); len(events) != 0 {
		t.Fatalf("expected no events mid-report, got %v", events)
	}
	events := parser.Feed([]byte("2;34M"))
	if len(events) != 1 || !events[0].IsMouse() {
		t.Fatalf("expected a mouse event, got %v", events)
	}
	report := *events[0].Mouse
	if report.X != 11 || report.Y != 33 {
		t.Errorf("expected (11, 33), got (%d, %d)", report.X, report.Y)
	}
}

func TestParserMalformedMouse(t *testing.T) {
	for _, input := range []string{"\x1b[<0;10M", "\x1b[<0;x;5M", "\x1b[<0;10;5;9M"} {
		if events := feedAll(t, NewParser(), input); len(events) != 0 {
			t.Errorf("%q: expected the report to be dropped, got %v", input, events)
		}
	}
}

func TestDecodeMouseType(t *testing.T) {
	check := func(param int, final byte, action MouseAction, button MouseButton, mods Mod) {
		a, b, m := DecodeMouseType(param, final)
		if a != action || b != button || m != mods {
			t.Errorf("param %d %q: expected (%v, %v, %v), got (%v, %v, %v)",
				param, final, action, button, mods, a, b, m)
		}
	}
	check(0, 'M', MouseDown, MouseLeft, 0)
	check(1, 'M', MouseDown, MouseMiddle, 0)
	check(2, 'm', MouseUp, MouseRight, 0)
	check(33, 'M', MouseDrag, MouseMiddle, 0)
	check(35, 'M', MouseMove, MouseLeft, 0)
	check(64, 'M', MouseScrollUp, MouseLeft, 0)
	check(65, 'M', MouseScrollDown, MouseLeft, 0)
	check(4+8, 'M', MouseDown, MouseLeft, ModShift|ModAlt)
	check(16+65, 'M', MouseScrollDown, MouseLeft, ModCtrl)
}
