package haunted

import (
	"github.com/kaitamkun/haunted/src/tui"
)

// Colorable is the capability of resolving an effective color for a
// channel. Ancestor walks query this interface instead of probing concrete
// types.
type Colorable interface {
	FindColor(tui.Channel) tui.Color
}

// Colored is a control base with explicit color preferences. A channel left
// at ColUndefined inherits from the nearest colorable ancestor, falling back
// to the terminal default.
type Colored struct {
	ControlBase
	foreground tui.Color
	background tui.Color
}

// Init prepares the embedded control base and marks both channels inherited
func (c *Colored) Init(self Control, parent Container) {
	c.ControlBase.Init(self, parent)
	c.foreground = tui.ColUndefined
	c.background = tui.ColUndefined
}

// Foreground returns the control's explicit foreground, or ColUndefined
func (c *Colored) Foreground() tui.Color {
	return c.foreground
}

// Background returns the control's explicit background, or ColUndefined
func (c *Colored) Background() tui.Color {
	return c.background
}

// FindColor resolves the effective color for a channel by walking the
// ancestor chain. The walk stops at the terminal boundary or a nil parent
// and returns the terminal default. Terminates in O(depth): the tree has no
// cycles.
func (c *Colored) FindColor(channel tui.Channel) tui.Color {
	explicit := c.foreground
	if channel == tui.Background {
		explicit = c.background
	}
	if explicit != tui.ColUndefined {
		return explicit
	}

	parent := c.parent
	for parent != nil {
		if colorable, ok := parent.(Colorable); ok {
			// A colorable ancestor determines the color for us.
			return colorable.FindColor(channel)
		}
		if _, ok := parent.(*Terminal); ok {
			break
		}
		control, ok := parent.(Control)
		if !ok {
			break
		}
		parent = control.Parent()
	}
	return tui.ColDefault
}

// SetColors sets both explicit channels and redraws
func (c *Colored) SetColors(foreground tui.Color, background tui.Color) {
	c.foreground = foreground
	c.background = background
	c.self.Draw()
}

// ApplyColors pushes the control's resolved colors to the output stream.
// The stream's cache drops the write when nothing changed.
func (c *Colored) ApplyColors() {
	if c.term != nil {
		c.term.Out().SetColors(c.FindColor(tui.Foreground), c.FindColor(tui.Background))
	}
}

// Uncolor resets the terminal to its default colors
func (c *Colored) Uncolor() {
	if c.term != nil {
		c.term.Out().ResetColors()
	}
}

// OnFocus re-applies the control's colors when it gains focus
func (c *Colored) OnFocus() {
	c.ApplyColors()
}

// Draw applies the control's colors; concrete colored controls shadow this
// and paint their content on top.
func (c *Colored) Draw() {
	if !c.CanDraw() {
		return
	}
	c.ApplyColors()
}
