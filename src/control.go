package haunted

import (
	"fmt"
	"strings"

	"github.com/kaitamkun/haunted/src/tui"
)

// Position is a rectangle in terminal cells, zero-based
type Position struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Right returns the column just past the right edge
func (p Position) Right() int {
	return p.Left + p.Width
}

// Bottom returns the row just past the bottom edge
func (p Position) Bottom() int {
	return p.Top + p.Height
}

// Contains reports whether the cell (x, y) lies inside the rectangle
func (p Position) Contains(x int, y int) bool {
	return x >= p.Left && x < p.Right() && y >= p.Top && y < p.Bottom()
}

// HasArea reports whether the rectangle covers at least one cell. A control
// with a zero-area position cannot be drawn.
func (p Position) HasArea() bool {
	return p.Width > 0 && p.Height > 0
}

func (p Position) String() string {
	return fmt.Sprintf("[%d, %d | %d x %d]", p.Left, p.Top, p.Width, p.Height)
}

// Control is a node in the widget tree: boxes, text views, text inputs.
// Input handling, mouse handling and color resolution are separate
// capabilities (KeyHandler, MouseHandler, Colorable) that concrete controls
// opt into.
type Control interface {
	Name() string
	SetName(string)

	Position() Position
	Resize(Position)
	Move(left int, top int)

	Draw()
	CanDraw() bool

	Parent() Container
	SetParent(Container)
	Terminal() *Terminal
	SetTerminal(*Terminal)

	Focus()
	Jump()
	JumpFocus()
}

// KeyHandler is the capability of consuming key presses. OnKey returns true
// when the event was handled; false lets it bubble to the next ancestor.
type KeyHandler interface {
	OnKey(tui.Key) bool
}

// MouseHandler is the capability of consuming mouse reports
type MouseHandler interface {
	OnMouse(tui.MouseReport) bool
}

// FocusHook is invoked by the terminal right after a control gains focus
type FocusHook interface {
	OnFocus()
}

// ControlBase carries the state shared by all controls: identity, geometry,
// the non-owning parent back-reference and the owning terminal. Concrete
// controls embed it and call Init with themselves.
type ControlBase struct {
	self      Control
	name      string
	term      *Terminal
	parent    Container
	pos       Position
	inMargins bool

	// IgnoreIndex excludes this control from its siblings' index math
	IgnoreIndex bool
}

// Init registers the control with its parent (if any) and adopts the
// parent's terminal. Must be called once, by the concrete control's
// constructor, before anything else.
func (b *ControlBase) Init(self Control, parent Container) {
	b.self = self
	if parent == nil {
		return
	}
	if !parent.AddChild(self) {
		// The terminal refuses children; it still serves as a placeholder
		// parent for controls built before their real parent exists.
		self.SetParent(parent)
	}
}

// Name returns the control's identifier
func (b *ControlBase) Name() string {
	if b.name == "" {
		return fmt.Sprintf("%T", b.self)
	}
	return b.name
}

// SetName sets the control's identifier
func (b *ControlBase) SetName(name string) {
	b.name = name
}

// Position returns the control's absolute position
func (b *ControlBase) Position() Position {
	return b.pos
}

// Resize sets the control's geometry. Containers shadow this to lay out
// their children as well.
func (b *ControlBase) Resize(pos Position) {
	b.pos = pos
}

// Move moves the control to a given coordinate without changing its size
func (b *ControlBase) Move(left int, top int) {
	b.pos.Left = left
	b.pos.Top = top
}

// Draw renders nothing; concrete controls shadow it
func (b *ControlBase) Draw() {}

// CanDraw reports whether the control is attached to a terminal and covers
// at least one cell.
func (b *ControlBase) CanDraw() bool {
	return b.term != nil && b.pos.HasArea()
}

// Parent returns the owning container, or nil when detached
func (b *ControlBase) Parent() Container {
	return b.parent
}

// SetParent sets the parent back-reference and adopts its terminal. Child
// list membership is the parent's business: use Container.AddChild to
// re-parent a control.
func (b *ControlBase) SetParent(parent Container) {
	b.parent = parent
	if parent != nil {
		if term := parent.Terminal(); term != nil {
			b.self.SetTerminal(term)
		}
	}
}

// Terminal returns the control's owning terminal, or nil
func (b *ControlBase) Terminal() *Terminal {
	return b.term
}

// SetTerminal attaches the control to a terminal. Containers shadow this to
// propagate to their children.
func (b *ControlBase) SetTerminal(term *Terminal) {
	b.term = term
}

// Focus makes this the terminal's focused control
func (b *ControlBase) Focus() {
	if b.term != nil {
		b.term.Focus(b.self)
	}
}

// HasFocus reports whether this is the terminal's focused control
func (b *ControlBase) HasFocus() bool {
	return b.term != nil && b.term.HasFocus(b.self)
}

// Index returns the control's position among its parent's children, or -1
// when detached or missing. -1 is a sentinel, not a fault.
func (b *ControlBase) Index() int {
	if b.parent == nil {
		return -1
	}
	index := 0
	for _, child := range b.parent.Children() {
		if child == b.self {
			return index
		}
		if ignorer, ok := child.(indexIgnorer); ok && ignorer.indexIgnored() {
			continue
		}
		index++
	}
	return -1
}

type indexIgnorer interface {
	indexIgnored() bool
}

func (b *ControlBase) indexIgnored() bool {
	return b.IgnoreIndex
}

// Jump moves the terminal's cursor to the control's top-left corner
func (b *ControlBase) Jump() {
	if b.term == nil {
		return
	}
	b.term.Out().Jump(b.pos.Left, b.pos.Top)
}

// JumpFocus moves the cursor to wherever focus belongs inside the control.
// The default is the top-left corner; text inputs shadow this to target
// their cursor cell.
func (b *ControlBase) JumpFocus() {
	b.self.Jump()
}

// ClearRect erases the portion of the display the control occupies
func (b *ControlBase) ClearRect() {
	if b.term == nil || !b.pos.HasArea() {
		return
	}
	out := b.term.Out()
	blank := strings.Repeat(" ", b.pos.Width)
	for y := b.pos.Top; y < b.pos.Bottom(); y++ {
		out.Jump(b.pos.Left, y)
		out.WriteString(blank)
	}
}

// AtLeft reports whether the control touches the left edge of the screen
func (b *ControlBase) AtLeft() bool {
	return b.pos.Left == 0
}

// AtRight reports whether the control touches the right edge of the screen
func (b *ControlBase) AtRight() bool {
	return b.term != nil && b.pos.Right() == b.term.Cols()
}

// InMargins reports whether this control's margin-active flag is set
func (b *ControlBase) InMargins() bool {
	return b.inMargins
}

// SetMargins programs the terminal's scroll region to the control's bounds.
// At most one control may hold the margins at a time; any previous holder is
// reset first.
func (b *ControlBase) SetMargins() {
	if b.term != nil {
		b.term.claimMargins(b)
	}
}

// ResetMargins resets the scroll region
func (b *ControlBase) ResetMargins() {
	if b.term != nil {
		b.term.releaseMargins(b)
	}
}

// TryMargins sets the margins if they aren't already held, runs fn, and
// resets them again if they were set here. Returns true if the margins were
// set.
func (b *ControlBase) TryMargins(fn func()) bool {
	set := !b.inMargins
	if set {
		b.SetMargins()
	}
	fn()
	if set {
		b.ResetMargins()
	}
	return set
}
