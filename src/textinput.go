package haunted

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/kaitamkun/haunted/src/tui"
	"github.com/kaitamkun/haunted/src/util"
)

// UpdateListener is notified synchronously, on the mutating goroutine,
// right after every change to a text input's buffer or cursor.
type UpdateListener func(text string, cursor int)

// TextInput is a single-row editable text control. The buffer is indexed in
// codepoints; the scroll offset truncates codepoints on the left when the
// buffer outgrows the control.
type TextInput struct {
	Colored

	// A string displayed at the left of the control, before the buffer
	prefix string

	buffer []rune

	// The offset within the text where new input will be inserted
	cursor int

	// How many codepoints are truncated on the left
	scroll int

	onUpdate UpdateListener

	// Characters below 0x20 are ignored by Insert unless whitelisted here
	whitelist map[rune]bool
}

// NewTextInput returns a text input attached to the given parent
func NewTextInput(parent Container, pos Position) *TextInput {
	input := &TextInput{whitelist: map[rune]bool{}}
	input.Colored.Init(input, parent)
	input.pos = pos
	return input
}

// SetPrefix sets the label drawn before the buffer
func (t *TextInput) SetPrefix(prefix string) {
	t.prefix = prefix
	t.update()
}

// Prefix returns the label drawn before the buffer
func (t *TextInput) Prefix() string {
	return t.prefix
}

// AllowRune whitelists a control character for Insert
func (t *TextInput) AllowRune(r rune) {
	t.whitelist[r] = true
}

// Listen sets a function to observe updates to the buffer or cursor
func (t *TextInput) Listen(fn UpdateListener) {
	t.onUpdate = fn
}

// Text returns the contents of the buffer
func (t *TextInput) Text() string {
	return string(t.buffer)
}

// Length returns the number of codepoints in the buffer
func (t *TextInput) Length() int {
	return len(t.buffer)
}

// Cursor returns the cursor's codepoint offset
func (t *TextInput) Cursor() int {
	return t.cursor
}

// Scroll returns how many codepoints are truncated on the left
func (t *TextInput) Scroll() int {
	return t.scroll
}

// PrevChar returns the codepoint left of the cursor
func (t *TextInput) PrevChar() (rune, bool) {
	if t.cursor == 0 {
		return 0, false
	}
	return t.buffer[t.cursor-1], true
}

// NextChar returns the codepoint right of the cursor
func (t *TextInput) NextChar() (rune, bool) {
	if t.cursor >= len(t.buffer) {
		return 0, false
	}
	return t.buffer[t.cursor], true
}

// SetText replaces the buffer and moves the cursor to the end
func (t *TextInput) SetText(text string) {
	t.buffer = []rune(text)
	t.cursor = len(t.buffer)
	t.update()
}

// Clear erases the buffer and resets the cursor
func (t *TextInput) Clear() {
	t.buffer = t.buffer[:0]
	t.cursor = 0
	t.scroll = 0
	t.update()
}

// Insert inserts a string at the cursor and advances the cursor past it.
// Unwhitelisted control characters are dropped.
func (t *TextInput) Insert(text string) {
	inserted := make([]rune, 0, len(text))
	for _, r := range text {
		if r < 0x20 && !t.whitelist[r] {
			continue
		}
		inserted = append(inserted, r)
	}
	if len(inserted) == 0 {
		return
	}
	t.buffer = append(t.buffer[:t.cursor], append(inserted, t.buffer[t.cursor:]...)...)
	t.cursor += len(inserted)
	t.update()
}

// InsertRune inserts a single codepoint at the cursor
func (t *TextInput) InsertRune(r rune) {
	t.Insert(string(r))
}

// Erase removes the codepoint left of the cursor; no-op at offset zero
func (t *TextInput) Erase() {
	if t.cursor == 0 {
		return
	}
	t.buffer = append(t.buffer[:t.cursor-1], t.buffer[t.cursor:]...)
	t.cursor--
	t.update()
}

// EraseWord removes back to the previous word boundary, using the same
// boundary rule as PrevWord.
func (t *TextInput) EraseWord() {
	if t.cursor == 0 {
		return
	}
	boundary := t.prevWordOffset()
	t.buffer = append(t.buffer[:boundary], t.buffer[t.cursor:]...)
	t.cursor = boundary
	t.update()
}

// MoveTo moves the cursor to an offset, clamped to [0, length]
func (t *TextInput) MoveTo(offset int) {
	offset = util.Constrain(offset, 0, len(t.buffer))
	if offset == t.cursor {
		return
	}
	t.cursor = offset
	t.update()
}

// Left moves the cursor one codepoint left
func (t *TextInput) Left() {
	t.MoveTo(t.cursor - 1)
}

// Right moves the cursor one codepoint right
func (t *TextInput) Right() {
	t.MoveTo(t.cursor + 1)
}

// Start moves the cursor to the start of the buffer
func (t *TextInput) Start() {
	t.MoveTo(0)
}

// End moves the cursor to the end of the buffer
func (t *TextInput) End() {
	t.MoveTo(len(t.buffer))
}

// PrevWord moves the cursor left by one word
func (t *TextInput) PrevWord() {
	t.MoveTo(t.prevWordOffset())
}

// NextWord moves the cursor right by one word
func (t *TextInput) NextWord() {
	t.MoveTo(t.nextWordOffset())
}

// prevWordOffset scans left from the cursor: first past the run of
// whitespace, then past the run of non-whitespace. Consecutive whitespace is
// a single boundary.
func (t *TextInput) prevWordOffset() int {
	i := t.cursor
	for i > 0 && unicode.IsSpace(t.buffer[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(t.buffer[i-1]) {
		i--
	}
	return i
}

func (t *TextInput) nextWordOffset() int {
	i := t.cursor
	for i < len(t.buffer) && unicode.IsSpace(t.buffer[i]) {
		i++
	}
	for i < len(t.buffer) && !unicode.IsSpace(t.buffer[i]) {
		i++
	}
	return i
}

// update recomputes the scroll window and informs the listener. Called
// after every mutation of the buffer or cursor.
func (t *TextInput) update() {
	t.clampScroll()
	if t.onUpdate != nil {
		t.onUpdate(t.Text(), t.cursor)
	}
}

// textWidth returns the width of the buffer area: the control width minus
// the prefix.
func (t *TextInput) textWidth() int {
	return t.pos.Width - uniseg.StringWidth(t.prefix)
}

// widthBetween returns the display width of the codepoints in [from, to)
func (t *TextInput) widthBetween(from int, to int) int {
	width := 0
	for _, r := range t.buffer[from:to] {
		width += runewidth.RuneWidth(r)
	}
	return width
}

// clampScroll shifts the scroll offset by the minimum amount that brings
// the cursor back inside the visible window, at an edge.
func (t *TextInput) clampScroll() {
	if t.cursor < t.scroll {
		t.scroll = t.cursor
		return
	}
	width := t.textWidth()
	if width <= 0 {
		return
	}
	for t.scroll < t.cursor && t.widthBetween(t.scroll, t.cursor) >= width {
		t.scroll++
	}
}

// visible returns the codepoints that fit in the window, starting at the
// scroll offset.
func (t *TextInput) visible() []rune {
	width := t.textWidth()
	if width <= 0 || t.scroll >= len(t.buffer) {
		return nil
	}
	used := 0
	end := t.scroll
	for end < len(t.buffer) {
		w := runewidth.RuneWidth(t.buffer[end])
		if used+w > width {
			break
		}
		used += w
		end++
	}
	return t.buffer[t.scroll:end]
}

// Draw renders the prefix and the visible window of the buffer. The unused
// remainder is blanked with spaces; the control may have neighbors to its
// right, so erasing to the screen edge is not an option.
func (t *TextInput) Draw() {
	if !t.CanDraw() {
		return
	}
	term := t.term
	defer term.LockRender()()
	t.ApplyColors()
	out := term.Out()
	out.Jump(t.pos.Left, t.pos.Top)
	out.WriteString(t.prefix)
	visible := t.visible()
	out.WriteString(string(visible))
	if pad := t.textWidth() - t.widthBetween(t.scroll, t.scroll+len(visible)); pad > 0 {
		out.WriteString(strings.Repeat(" ", pad))
	}
	t.JumpCursor()
	term.Flush()
}

// JumpFocus moves the terminal's cursor to the text input's cursor cell
func (t *TextInput) JumpFocus() {
	t.JumpCursor()
}

// JumpCursor moves the terminal's cursor to the cell the next insertion
// would land on.
func (t *TextInput) JumpCursor() {
	if t.term == nil {
		return
	}
	column := t.pos.Left + uniseg.StringWidth(t.prefix) + t.widthBetween(t.scroll, t.cursor)
	t.term.Out().Jump(column, t.pos.Top)
}

// OnKey implements the usual line-editing bindings
func (t *TextInput) OnKey(key tui.Key) bool {
	switch key.Type {
	case tui.KeyRune:
		switch key.Mods {
		case 0, tui.ModShift:
			t.InsertRune(key.Rune)
		case tui.ModCtrl:
			switch key.Rune {
			case 'a':
				t.Start()
			case 'e':
				t.End()
			case 'u':
				t.Clear()
			case 'w':
				t.EraseWord()
			default:
				return false
			}
		case tui.ModAlt:
			switch key.Rune {
			case 'b':
				t.PrevWord()
			case 'f':
				t.NextWord()
			default:
				return false
			}
		default:
			return false
		}
	case tui.KeyLeft:
		if key.Mods&tui.ModCtrl > 0 {
			t.PrevWord()
		} else {
			t.Left()
		}
	case tui.KeyRight:
		if key.Mods&tui.ModCtrl > 0 {
			t.NextWord()
		} else {
			t.Right()
		}
	case tui.KeyHome:
		t.Start()
	case tui.KeyEnd:
		t.End()
	case tui.KeyBackspace:
		if key.Mods&tui.ModAlt > 0 {
			t.EraseWord()
		} else {
			t.Erase()
		}
	default:
		return false
	}
	t.Draw()
	return true
}
