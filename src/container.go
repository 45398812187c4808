package haunted

// Container is anything that owns child controls. The terminal is a
// container too, though a degenerate one: it holds a single root control
// installed through SetRoot, and AddChild on it is a no-op.
type Container interface {
	AddChild(Control) bool
	RemoveChild(Control) bool
	Children() []Control
	ChildAtOffset(x int, y int) Control
	Terminal() *Terminal
}

// ContainerBase owns an ordered list of children. Concrete containers embed
// it next to ControlBase and call InitContainer with themselves.
type ContainerBase struct {
	owner    Container
	children []Control
}

// InitContainer records the embedding container, which AddChild hands to
// children as their parent.
func (cb *ContainerBase) InitContainer(owner Container) {
	cb.owner = owner
}

// Children returns the container's children in order
func (cb *ContainerBase) Children() []Control {
	return cb.children
}

// AddChild appends a control to the container, removing it from its
// previous parent first. A control has at most one parent at a time.
func (cb *ContainerBase) AddChild(c Control) bool {
	if cb.owner == nil || c == nil {
		return false
	}
	if c.Parent() == cb.owner {
		return true
	}
	if prev := c.Parent(); prev != nil {
		prev.RemoveChild(c)
	}
	cb.children = append(cb.children, c)
	c.SetParent(cb.owner)
	return true
}

// RemoveChild detaches a control from the container. The terminal's focus
// is dropped if it pointed into the removed subtree, so destruction never
// leaves a dangling focus reference.
func (cb *ContainerBase) RemoveChild(c Control) bool {
	for i, child := range cb.children {
		if child == c {
			cb.children = append(cb.children[:i], cb.children[i+1:]...)
			if term := c.Terminal(); term != nil {
				term.releaseFocus(c)
			}
			c.SetParent(nil)
			return true
		}
	}
	return false
}

// ChildAtOffset returns the deepest control whose position contains (x, y),
// or nil. A container that contains the point itself is only returned when
// none of its descendants do.
func (cb *ContainerBase) ChildAtOffset(x int, y int) Control {
	for _, child := range cb.children {
		if !child.Position().Contains(x, y) {
			continue
		}
		if container, ok := child.(Container); ok {
			if deeper := container.ChildAtOffset(x, y); deeper != nil {
				return deeper
			}
		}
		return child
	}
	return nil
}

// Box is a plain container control. It has no layout policy of its own:
// resizing hands every child the box's own bounds, which keeps the
// containment contract (children inside parents) trivially true. Split
// layouts belong to specialized subtypes.
type Box struct {
	ControlBase
	ContainerBase
}

// NewBox returns a Box attached to the given parent
func NewBox(parent Container, pos Position) *Box {
	box := &Box{}
	box.ControlBase.Init(box, parent)
	box.InitContainer(box)
	box.pos = pos
	return box
}

// SetTerminal attaches the box and all its children to a terminal
func (b *Box) SetTerminal(term *Terminal) {
	b.ControlBase.SetTerminal(term)
	for _, child := range b.children {
		child.SetTerminal(term)
	}
}

// Resize sets the box's geometry and recomputes every child's
func (b *Box) Resize(pos Position) {
	b.ControlBase.Resize(pos)
	for _, child := range b.children {
		child.Resize(pos)
	}
}

// Draw renders the box's children under the render lock
func (b *Box) Draw() {
	if !b.CanDraw() {
		return
	}
	defer b.term.LockRender()()
	for _, child := range b.children {
		child.Draw()
	}
}
