package haunted

import (
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/kaitamkun/haunted/src/tui"
	"github.com/kaitamkun/haunted/src/util"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// Requests handed to the main loop through the event box
const (
	EvtResize util.EventType = iota
	EvtRedraw
	EvtQuit
)

// Terminal owns the physical terminal session: the raw-mode state, the
// input goroutine, resize notification and the render lock. It is the
// unique root of the control tree and the single dispatch point for all
// input.
//
// Two goroutines are long-lived: the main loop (Run) owns the control tree,
// and the input goroutine (StartInput) runs read → decode → dispatch. The
// input goroutine never touches the tree except through SendKey/SendMouse.
type Terminal struct {
	in     *os.File
	out    *tui.OutputStream
	parser *tui.Parser

	original *termAttrs
	raw      bool

	root    Control
	focused Control

	rows int
	cols int

	mouseMode   tui.MouseMode
	marginOwner *ControlBase

	renderLock *util.RenderLock
	events     *util.EventBox

	stopped   *util.AtomicBool
	inputDone chan struct{}

	winch chan os.Signal

	pendingMu   sync.Mutex
	pendingRows int
	pendingCols int

	dragging   bool
	dragButton tui.MouseButton

	// SuppressOutput drops plain-text writes made through WriteString
	SuppressOutput bool

	// OnInterrupt is consulted when ctrl-c reaches the terminal; returning
	// true ends the session.
	OnInterrupt func() bool

	// KeyListener is called after each key press is dispatched
	KeyListener func(tui.Key)

	// MouseListener is called after each mouse report is dispatched
	MouseListener func(tui.MouseReport)
}

// NewTerminal wraps an open terminal device. The current attributes are
// captured immediately so that every exit path can restore them; failure to
// query them is fatal, there is no degraded mode.
func NewTerminal(in *os.File, out io.Writer) (*Terminal, error) {
	if !util.IsTty(in) {
		return nil, errors.New("input is not a terminal")
	}
	original, err := getAttrs(int(in.Fd()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query terminal attributes")
	}

	t := &Terminal{
		in:          in,
		out:         tui.NewOutputStream(out),
		parser:      tui.NewParser(),
		original:    original,
		renderLock:  util.NewRenderLock(),
		events:      util.NewEventBox(),
		stopped:     util.NewAtomicBool(false),
		OnInterrupt: func() bool { return true },
	}
	t.rows, t.cols, err = querySize(t.fd())
	if err != nil {
		t.rows = getEnv("LINES", defaultHeight)
		t.cols = getEnv("COLUMNS", defaultWidth)
	}
	return t, nil
}

func (t *Terminal) fd() int {
	return int(t.in.Fd())
}

// CBreak applies raw-mode attributes: no canonical processing, no echo, no
// signal-generating control characters.
func (t *Terminal) CBreak() error {
	attrs := *t.original
	rawAttrs(&attrs)
	if err := setAttrs(t.fd(), &attrs); err != nil {
		return errors.Wrap(err, "failed to set terminal attributes")
	}
	t.raw = true
	return nil
}

// restoreAttrs puts back the attribute set captured at construction
func (t *Terminal) restoreAttrs() error {
	if !t.raw {
		return nil
	}
	t.raw = false
	return setAttrs(t.fd(), t.original)
}

// Close tears the session down: it releases margins, mouse tracking and
// colors, restores the original terminal attributes, and then stops and
// joins the input goroutine.
func (t *Terminal) Close() error {
	if t.stopped.Get() {
		return nil
	}
	t.stopped.Set(true)
	t.Quit()

	if t.winch != nil {
		signal.Stop(t.winch)
		close(t.winch)
		t.winch = nil
	}

	if t.marginOwner != nil {
		t.releaseMargins(t.marginOwner)
	}
	t.SetMouseMode(tui.MouseModeNone)
	t.out.ResetColors()
	t.out.ShowCursor()
	t.out.Flush()

	// Restore while the descriptor is still open; closing it afterwards
	// unblocks the reader. Dispatch is already a no-op by now, so the
	// reader cannot touch the tree in between.
	err := t.restoreAttrs()
	t.in.Close()
	if t.inputDone != nil {
		<-t.inputDone
	}
	return err
}

// StartInput spawns the input goroutine
func (t *Terminal) StartInput() {
	if t.inputDone != nil {
		return
	}
	t.inputDone = make(chan struct{})
	go t.workInput()
}

// workInput loops read → decode → dispatch until the input is closed or a
// stop is requested. EOF and read errors end the loop quietly; they are not
// crashes.
func (t *Terminal) workInput() {
	defer close(t.inputDone)
	buffer := make([]byte, 4096)
	for !t.stopped.Get() {
		n, err := t.in.Read(buffer)
		if n > 0 {
			t.dispatch(t.parser.Feed(buffer[:n]))
		}
		if err != nil {
			t.dispatch(t.parser.Flush())
			return
		}
	}
}

func (t *Terminal) dispatch(events []tui.Event) {
	for _, event := range events {
		if t.stopped.Get() {
			return
		}
		if event.IsMouse() {
			t.SendMouse(*event.Mouse)
		} else {
			t.SendKey(event.Key)
		}
	}
}

// SendKey delivers a key press to the focused control, bubbling through its
// ancestors until one handles it; the terminal's own bindings are the last
// resort. Returns whoever consumed the event, or nil. Dispatch after
// teardown is a no-op.
func (t *Terminal) SendKey(key tui.Key) KeyHandler {
	if t.stopped.Get() {
		return nil
	}
	defer t.LockRender()()

	var consumed KeyHandler
	for node := t.GetFocused(); node != nil; {
		if handler, ok := node.(KeyHandler); ok && handler.OnKey(key) {
			consumed = handler
			break
		}
		next, ok := node.Parent().(Control)
		if !ok {
			break
		}
		node = next
	}
	if consumed == nil && t.OnKey(key) {
		consumed = t
	}
	if t.KeyListener != nil {
		t.KeyListener(key)
	}
	return consumed
}

// SendMouse resolves the deepest control under the report's coordinates and
// delivers the report the same way SendKey does.
func (t *Terminal) SendMouse(report tui.MouseReport) MouseHandler {
	if t.stopped.Get() {
		return nil
	}
	defer t.LockRender()()

	switch report.Action {
	case tui.MouseDown:
		t.dragging = true
		t.dragButton = report.Button
	case tui.MouseUp:
		t.dragging = false
	}

	var consumed MouseHandler
	for node := t.ChildAtOffset(report.X, report.Y); node != nil; {
		if handler, ok := node.(MouseHandler); ok && handler.OnMouse(report) {
			consumed = handler
			break
		}
		next, ok := node.Parent().(Control)
		if !ok {
			break
		}
		node = next
	}
	if consumed == nil && t.OnMouse(report) {
		consumed = t
	}
	if t.MouseListener != nil {
		t.MouseListener(report)
	}
	return consumed
}

// OnKey handles key combinations common to most console programs
func (t *Terminal) OnKey(key tui.Key) bool {
	switch key {
	case tui.CtrlKey('c'):
		if t.OnInterrupt == nil || t.OnInterrupt() {
			t.Quit()
		}
		return true
	case tui.CtrlKey('l'):
		t.Redraw()
		return true
	}
	return false
}

// OnMouse is the terminal's fallback mouse handler
func (t *Terminal) OnMouse(tui.MouseReport) bool {
	return false
}

// Dragging reports whether a button is currently held down
func (t *Terminal) Dragging() (tui.MouseButton, bool) {
	return t.dragButton, t.dragging
}

// AddChild does nothing: the terminal serves as a placeholder parent for
// controls built before their real parent exists. Use SetRoot to install
// the root control.
func (t *Terminal) AddChild(Control) bool {
	return false
}

// RemoveChild detaches the root control
func (t *Terminal) RemoveChild(c Control) bool {
	if c == nil || c != t.root {
		return false
	}
	t.releaseFocus(c)
	t.root = nil
	c.SetParent(nil)
	return true
}

// Children returns the root control, if any
func (t *Terminal) Children() []Control {
	if t.root == nil {
		return nil
	}
	return []Control{t.root}
}

// ChildAtOffset returns the deepest control containing (x, y), or nil
func (t *Terminal) ChildAtOffset(x int, y int) Control {
	if t.root == nil || !t.root.Position().Contains(x, y) {
		return nil
	}
	if container, ok := t.root.(Container); ok {
		if deeper := container.ChildAtOffset(x, y); deeper != nil {
			return deeper
		}
	}
	return t.root
}

// Terminal returns the terminal itself; required by Container
func (t *Terminal) Terminal() *Terminal {
	return t
}

// Root returns the current root control
func (t *Terminal) Root() Control {
	return t.root
}

// SetRoot installs a new root control. When deleteOld is set and the
// previous root differs, it is fully detached from the terminal; otherwise
// ownership is merely relinquished.
func (t *Terminal) SetRoot(root Control, deleteOld bool) {
	old := t.root
	if old == root {
		return
	}
	t.root = root
	if root != nil {
		root.SetParent(t)
	}
	if old != nil {
		t.releaseFocus(old)
		old.SetParent(nil)
		if deleteOld {
			old.SetTerminal(nil)
		}
	}
}

// Focus makes a control the target of key dispatch. The control must be
// reachable from the root; its focus hook runs afterwards.
func (t *Terminal) Focus(c Control) {
	if c != nil && !t.reachable(c) {
		return
	}
	t.focused = c
	if hook, ok := c.(FocusHook); ok {
		hook.OnFocus()
	}
}

// GetFocused returns the focused control, focusing the root first if
// nothing is focused yet.
func (t *Terminal) GetFocused() Control {
	if t.focused == nil && t.root != nil {
		t.Focus(t.root)
	}
	return t.focused
}

// HasFocus reports whether the given control is the focused control
func (t *Terminal) HasFocus(c Control) bool {
	return c != nil && t.focused == c
}

// releaseFocus unsets the focused reference if it points into the given
// subtree. Called on every detachment so focus never dangles.
func (t *Terminal) releaseFocus(subtree Control) {
	if t.focused == nil || subtree == nil {
		return
	}
	for node := t.focused; node != nil; {
		if node == subtree {
			t.focused = nil
			return
		}
		next, ok := node.Parent().(Control)
		if !ok {
			return
		}
		node = next
	}
}

func (t *Terminal) reachable(c Control) bool {
	for node := c; node != nil; {
		if node == t.root {
			return true
		}
		next, ok := node.Parent().(Control)
		if !ok {
			return false
		}
		node = next
	}
	return false
}

// claimMargins programs the scroll region to the control's bounds. At most
// one control holds the margins at a time; the previous holder's flag is
// cleared first.
func (t *Terminal) claimMargins(b *ControlBase) {
	if t.marginOwner == b {
		return
	}
	if t.marginOwner != nil {
		t.releaseMargins(t.marginOwner)
	}
	t.marginOwner = b
	b.inMargins = true
	pos := b.pos
	t.out.EnableHMargins()
	t.out.SetVMargins(pos.Top, pos.Bottom()-1)
	t.out.SetHMargins(pos.Left, pos.Right()-1)
	t.out.SetOrigin()
}

func (t *Terminal) releaseMargins(b *ControlBase) {
	if !b.inMargins {
		return
	}
	b.inMargins = false
	if t.marginOwner == b {
		t.marginOwner = nil
	}
	t.out.ResetOrigin()
	t.out.ResetVMargins()
	t.out.ResetHMargins()
	t.out.DisableHMargins()
}

// SetMouseMode switches the terminal's mouse-tracking mode
func (t *Terminal) SetMouseMode(mode tui.MouseMode) {
	if mode == t.mouseMode {
		return
	}
	t.out.DisableMouse(t.mouseMode)
	t.out.EnableMouse(mode)
	t.mouseMode = mode
	t.out.Flush()
}

// MouseMode returns the current mouse-tracking mode
func (t *Terminal) MouseMode() tui.MouseMode {
	return t.mouseMode
}

// WatchSize installs the SIGWINCH watcher. The watcher only records the new
// dimensions and posts a resize request; the main loop does the tree resize
// and the repaint. No tree work happens in signal context.
func (t *Terminal) WatchSize() {
	if t.winch != nil {
		return
	}
	t.winch = make(chan os.Signal, 1)
	notifyResize(t.winch)
	go func(winch chan os.Signal) {
		for range winch {
			rows, cols, err := querySize(t.fd())
			if err != nil {
				continue
			}
			t.NotifyResize(rows, cols)
		}
	}(t.winch)
}

// NotifyResize records new dimensions and asks the main loop to apply them
func (t *Terminal) NotifyResize(rows int, cols int) {
	t.pendingMu.Lock()
	t.pendingRows, t.pendingCols = rows, cols
	t.pendingMu.Unlock()
	t.events.Set(EvtResize, nil)
}

// applyResize consumes the recorded dimensions: the tree is resized and
// repainted exactly once per resize request.
func (t *Terminal) applyResize() {
	t.pendingMu.Lock()
	rows, cols := t.pendingRows, t.pendingCols
	t.pendingMu.Unlock()
	if rows == 0 && cols == 0 {
		return
	}
	t.rows, t.cols = rows, cols
	t.Redraw()
}

// Run processes resize, redraw and quit requests until Quit. This is the
// main/UI loop; it is the only place the tree is resized or repainted.
func (t *Terminal) Run() {
	t.Redraw()
	for {
		quit := false
		resize := false
		redraw := false
		// The callback only collects the requests. Repainting needs the
		// render lock, and a handler holding it may be blocked posting an
		// event right now; doing the work under the box's mutex would
		// deadlock the two goroutines against each other.
		t.events.Wait(func(events *util.Events) {
			_, quit = (*events)[EvtQuit]
			_, resize = (*events)[EvtResize]
			_, redraw = (*events)[EvtRedraw]
			events.Clear()
		})
		if quit {
			return
		}
		if resize {
			t.applyResize()
		} else if redraw {
			t.Redraw()
		}
	}
}

// Quit asks the main loop to stop
func (t *Terminal) Quit() {
	t.events.Set(EvtQuit, nil)
}

// RequestRedraw asks the main loop for a full repaint
func (t *Terminal) RequestRedraw() {
	t.events.Set(EvtRedraw, nil)
}

// Redraw repaints the entire screen, adjusting the root control to the
// terminal's dimensions first.
func (t *Terminal) Redraw() {
	defer t.LockRender()()
	t.out.ClearScreen()
	t.out.Jump(0, 0)
	if t.root != nil {
		t.root.Resize(Position{0, 0, t.cols, t.rows})
		t.root.Draw()
	}
	t.JumpToFocused()
	t.Flush()
}

// Draw renders the root control without resizing it
func (t *Terminal) Draw() {
	defer t.LockRender()()
	if t.root != nil {
		t.root.Draw()
	}
	t.Flush()
}

// LockRender gives the calling goroutine exclusive permission to render.
// The lock is reentrant; use with defer:
//
//	defer t.LockRender()()
func (t *Terminal) LockRender() func() {
	t.renderLock.Lock()
	return t.renderLock.Unlock
}

// Out returns the terminal's output stream
func (t *Terminal) Out() *tui.OutputStream {
	return t.out
}

// Flush writes all queued output
func (t *Terminal) Flush() error {
	return t.out.Flush()
}

// WriteString writes plain text, honoring SuppressOutput
func (t *Terminal) WriteString(s string) {
	if !t.SuppressOutput {
		t.out.WriteString(s)
	}
}

// Rows returns the height of the terminal in rows
func (t *Terminal) Rows() int {
	return t.rows
}

// Cols returns the width of the terminal in columns
func (t *Terminal) Cols() int {
	return t.cols
}

// JumpToFocused moves the hardware cursor to the focused control
func (t *Terminal) JumpToFocused() {
	if t.focused != nil {
		t.focused.JumpFocus()
	}
}

// JumpTo moves the hardware cursor to a zero-based position
func (t *Terminal) JumpTo(x int, y int) {
	t.out.Jump(x, y)
}

// Cursor and line conveniences, mirrored from the output stream

func (t *Terminal) Up(n int)      { t.out.Up(n) }
func (t *Terminal) Down(n int)    { t.out.Down(n) }
func (t *Terminal) RightBy(n int) { t.out.Right(n) }
func (t *Terminal) LeftBy(n int)  { t.out.Left(n) }
func (t *Terminal) ClearLine()    { t.out.ClearLine() }
func (t *Terminal) ClearRight()   { t.out.ClearRight() }
func (t *Terminal) ClearLeft()    { t.out.ClearLeft() }
func (t *Terminal) Front()        { t.out.Column(0) }
func (t *Terminal) Back()         { t.out.Column(t.cols - 1) }
func (t *Terminal) Show()         { t.out.ShowCursor() }
func (t *Terminal) Hide()         { t.out.HideCursor() }

// VScroll scrolls the scroll region: negative rows scroll up, positive down
func (t *Terminal) VScroll(rows int) {
	t.out.VScroll(rows)
}

func getEnv(name string, defaultValue int) int {
	env := os.Getenv(name)
	if len(env) == 0 {
		return defaultValue
	}
	return atoi(env, defaultValue)
}

func atoi(s string, defaultValue int) int {
	value, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return value
}
