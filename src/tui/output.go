package tui

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// OutputStream writes escape sequences and text to the terminal. Both the
// main goroutine and the input goroutine may write, so every operation runs
// under the stream's own mutex. Output is queued until Flush.
//
// The stream also remembers the last foreground and background it applied,
// so re-applying the same color is a no-op. Color resolution walks the
// control tree on every draw; without this cache each draw would re-emit
// identical SGR sequences and flicker.
type OutputStream struct {
	mu     sync.Mutex
	out    io.Writer
	queued bytes.Buffer
	lastFg Color
	lastBg Color
}

// NewOutputStream returns an OutputStream writing to w
func NewOutputStream(w io.Writer) *OutputStream {
	return &OutputStream{out: w, lastFg: ColDefault, lastBg: ColDefault}
}

// WriteString queues raw bytes for the terminal
func (s *OutputStream) WriteString(str string) {
	s.mu.Lock()
	s.queued.WriteString(str)
	s.mu.Unlock()
}

// CSI queues a control sequence
func (s *OutputStream) CSI(code string) {
	s.WriteString("\x1b[" + code)
}

// Flush writes everything queued so far
func (s *OutputStream) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queued.Len() == 0 {
		return nil
	}
	_, err := s.out.Write(s.queued.Bytes())
	s.queued.Reset()
	return err
}

// Up moves the cursor up n rows
func (s *OutputStream) Up(n int) {
	if n > 0 {
		s.CSI(fmt.Sprintf("%dA", n))
	}
}

// Down moves the cursor down n rows
func (s *OutputStream) Down(n int) {
	if n > 0 {
		s.CSI(fmt.Sprintf("%dB", n))
	}
}

// Right moves the cursor right n columns
func (s *OutputStream) Right(n int) {
	if n > 0 {
		s.CSI(fmt.Sprintf("%dC", n))
	}
}

// Left moves the cursor left n columns
func (s *OutputStream) Left(n int) {
	if n > 0 {
		s.CSI(fmt.Sprintf("%dD", n))
	}
}

// Column moves the cursor to a zero-based column on the current row
func (s *OutputStream) Column(col int) {
	s.CSI(fmt.Sprintf("%dG", col+1))
}

// Jump moves the cursor to a zero-based (x, y) position
func (s *OutputStream) Jump(x int, y int) {
	s.CSI(fmt.Sprintf("%d;%dH", y+1, x+1))
}

// ClearLine erases the current row
func (s *OutputStream) ClearLine() {
	s.CSI("2K")
}

// ClearRight erases from the cursor to the right edge
func (s *OutputStream) ClearRight() {
	s.CSI("K")
}

// ClearLeft erases from the left edge to the cursor
func (s *OutputStream) ClearLeft() {
	s.CSI("1K")
}

// ClearScreen erases the whole screen
func (s *OutputStream) ClearScreen() {
	s.CSI("2J")
}

// ShowCursor makes the cursor visible
func (s *OutputStream) ShowCursor() {
	s.CSI("?25h")
}

// HideCursor makes the cursor invisible
func (s *OutputStream) HideCursor() {
	s.CSI("?25l")
}

// VScroll scrolls the scroll region: negative rows scroll the content up,
// positive rows scroll it down.
func (s *OutputStream) VScroll(rows int) {
	if rows < 0 {
		s.CSI(fmt.Sprintf("%dS", -rows))
	} else if rows > 0 {
		s.CSI(fmt.Sprintf("%dT", rows))
	}
}

// SetVMargins sets the vertical scroll region (DECSTBM). Zero-based,
// inclusive.
func (s *OutputStream) SetVMargins(top int, bottom int) {
	s.CSI(fmt.Sprintf("%d;%dr", top+1, bottom+1))
}

// ResetVMargins resets the vertical scroll region
func (s *OutputStream) ResetVMargins() {
	s.CSI("r")
}

// EnableHMargins allows horizontal margins to be set (DECLRMM)
func (s *OutputStream) EnableHMargins() {
	s.CSI("?69h")
}

// DisableHMargins disallows horizontal margins
func (s *OutputStream) DisableHMargins() {
	s.CSI("?69l")
}

// SetHMargins sets the horizontal scroll region (DECSLRM). Zero-based,
// inclusive.
func (s *OutputStream) SetHMargins(left int, right int) {
	s.CSI(fmt.Sprintf("%d;%ds", left+1, right+1))
}

// ResetHMargins resets the horizontal scroll region
func (s *OutputStream) ResetHMargins() {
	s.CSI("s")
}

// SetOrigin enables origin mode: the home position becomes the top-left
// corner of the margins.
func (s *OutputStream) SetOrigin() {
	s.CSI("?6h")
}

// ResetOrigin disables origin mode
func (s *OutputStream) ResetOrigin() {
	s.CSI("?6l")
}

// EnableMouse turns on mouse tracking for the given mode, with SGR extended
// reporting so that coordinates beyond column 223 survive.
func (s *OutputStream) EnableMouse(mode MouseMode) {
	if mode == MouseModeNone {
		return
	}
	s.CSI(fmt.Sprintf("?%dh", int(mode)))
	s.CSI("?1006h")
}

// DisableMouse turns off mouse tracking for the given mode
func (s *OutputStream) DisableMouse(mode MouseMode) {
	if mode == MouseModeNone {
		return
	}
	s.CSI("?1006l")
	s.CSI(fmt.Sprintf("?%dl", int(mode)))
}

// SetForeground applies a foreground color, skipping the write when the
// color is already active. Returns true if anything was emitted.
func (s *OutputStream) SetForeground(c Color) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == s.lastFg {
		return false
	}
	s.lastFg = c
	s.queued.WriteString("\x1b[" + sgrCode(c, Foreground) + "m")
	return true
}

// SetBackground applies a background color, skipping the write when the
// color is already active. Returns true if anything was emitted.
func (s *OutputStream) SetBackground(c Color) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == s.lastBg {
		return false
	}
	s.lastBg = c
	s.queued.WriteString("\x1b[" + sgrCode(c, Background) + "m")
	return true
}

// SetColors applies both channels
func (s *OutputStream) SetColors(fg Color, bg Color) bool {
	f := s.SetForeground(fg)
	b := s.SetBackground(bg)
	return f || b
}

// ResetColors restores both channels to the terminal defaults
func (s *OutputStream) ResetColors() bool {
	return s.SetColors(ColDefault, ColDefault)
}

// Foreground returns the last applied foreground
func (s *OutputStream) Foreground() Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFg
}

// Background returns the last applied background
func (s *OutputStream) Background() Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBg
}
