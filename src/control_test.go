package haunted

import (
	"bytes"
	"testing"

	"github.com/kaitamkun/haunted/src/tui"
	"github.com/kaitamkun/haunted/src/util"
)

// newTestTerminal builds a terminal over an in-memory writer, bypassing the
// tty checks of NewTerminal.
func newTestTerminal(w *bytes.Buffer) *Terminal {
	return &Terminal{
		out:        tui.NewOutputStream(w),
		parser:     tui.NewParser(),
		renderLock: util.NewRenderLock(),
		events:     util.NewEventBox(),
		stopped:    util.NewAtomicBool(false),
		rows:       24,
		cols:       80,
	}
}

// recorder is a leaf control that records what reaches it
type recorder struct {
	ControlBase
	consumeKeys  bool
	consumeMouse bool
	onKey        func(tui.Key) bool
	keys         []tui.Key
	reports      []tui.MouseReport
	draws        int
}

func newRecorder(parent Container, pos Position) *recorder {
	r := &recorder{}
	r.Init(r, parent)
	r.pos = pos
	return r
}

func (r *recorder) OnKey(key tui.Key) bool {
	r.keys = append(r.keys, key)
	if r.onKey != nil {
		return r.onKey(key)
	}
	return r.consumeKeys
}

func (r *recorder) OnMouse(report tui.MouseReport) bool {
	r.reports = append(r.reports, report)
	return r.consumeMouse
}

func (r *recorder) Draw() {
	r.draws++
}

func TestPosition(t *testing.T) {
	pos := Position{Left: 2, Top: 1, Width: 4, Height: 3}
	if pos.Right() != 6 || pos.Bottom() != 4 {
		t.Errorf("edges: got %d, %d", pos.Right(), pos.Bottom())
	}
	if !pos.Contains(2, 1) || !pos.Contains(5, 3) {
		t.Error("corners inside the rectangle must be contained")
	}
	if pos.Contains(6, 1) || pos.Contains(2, 4) || pos.Contains(1, 1) {
		t.Error("cells past the edges must not be contained")
	}
	if !pos.HasArea() {
		t.Error("expected a positive area")
	}
	if (Position{Width: 4}).HasArea() {
		t.Error("zero height means no area")
	}
}

func TestControlIndex(t *testing.T) {
	var sink bytes.Buffer
	term := newTestTerminal(&sink)
	box := NewBox(term, Position{Width: 80, Height: 24})
	term.SetRoot(box, false)

	first := newRecorder(box, Position{Width: 1, Height: 1})
	skipped := newRecorder(box, Position{Width: 1, Height: 1})
	skipped.IgnoreIndex = true
	third := newRecorder(box, Position{Width: 1, Height: 1})

	if first.Index() != 0 {
		t.Errorf("expected 0, got %d", first.Index())
	}
	if third.Index() != 1 {
		t.Errorf("ignored siblings must not count, got %d", third.Index())
	}

	detached := newRecorder(nil, Position{})
	if detached.Index() != -1 {
		t.Errorf("a detached control's index is -1, got %d", detached.Index())
	}

	box.RemoveChild(first)
	if first.Index() != -1 {
		t.Errorf("expected -1 after removal, got %d", first.Index())
	}
	if third.Index() != 0 {
		t.Errorf("expected 0 after removal, got %d", third.Index())
	}
}

func TestReparenting(t *testing.T) {
	var sink bytes.Buffer
	term := newTestTerminal(&sink)
	root := NewBox(term, Position{Width: 80, Height: 24})
	term.SetRoot(root, false)
	left := NewBox(root, Position{Width: 40, Height: 24})
	right := NewBox(root, Position{Left: 40, Width: 40, Height: 24})

	child := newRecorder(left, Position{Width: 1, Height: 1})
	if child.Parent() != Container(left) {
		t.Fatal("expected the child to start under left")
	}

	right.AddChild(child)
	if child.Parent() != Container(right) {
		t.Error("AddChild should adopt the control")
	}
	if len(left.Children()) != 0 {
		t.Error("the previous parent must have released the control")
	}
	if child.Terminal() != term {
		t.Error("the control should keep the terminal through re-parenting")
	}
}

func TestChildAtOffset(t *testing.T) {
	var sink bytes.Buffer
	term := newTestTerminal(&sink)
	root := NewBox(term, Position{Width: 80, Height: 24})
	term.SetRoot(root, false)
	inner := NewBox(root, Position{Left: 10, Top: 5, Width: 20, Height: 10})
	leaf := newRecorder(inner, Position{Left: 12, Top: 6, Width: 5, Height: 2})

	if c := term.ChildAtOffset(13, 7); c != Control(leaf) {
		t.Errorf("expected the leaf, got %v", c)
	}
	if c := term.ChildAtOffset(11, 6); c != Control(inner) {
		t.Errorf("expected the inner box, got %v", c)
	}
	if c := term.ChildAtOffset(0, 0); c != Control(root) {
		t.Errorf("expected the root, got %v", c)
	}
	if c := term.ChildAtOffset(80, 24); c != nil {
		t.Errorf("expected nil outside the root, got %v", c)
	}
}

func TestMarginExclusivity(t *testing.T) {
	var sink bytes.Buffer
	term := newTestTerminal(&sink)
	root := NewBox(term, Position{Width: 80, Height: 24})
	term.SetRoot(root, false)
	a := NewBox(root, Position{Top: 0, Width: 80, Height: 12})
	b := NewBox(root, Position{Top: 12, Width: 80, Height: 12})

	a.SetMargins()
	if !a.InMargins() {
		t.Fatal("a should hold the margins")
	}
	b.SetMargins()
	if a.InMargins() {
		t.Error("claiming the margins must release the previous holder")
	}
	if !b.InMargins() {
		t.Error("b should hold the margins now")
	}
	b.ResetMargins()
	if b.InMargins() {
		t.Error("b should have released the margins")
	}

	term.Flush()
	if !bytes.Contains(sink.Bytes(), []byte("\x1b[?69h")) {
		t.Error("claiming margins should enable horizontal margins")
	}
	if !bytes.Contains(sink.Bytes(), []byte("\x1b[13;24r")) {
		t.Errorf("expected b's scroll region in %q", sink.String())
	}
}

func TestTryMargins(t *testing.T) {
	var sink bytes.Buffer
	term := newTestTerminal(&sink)
	root := NewBox(term, Position{Width: 80, Height: 24})
	term.SetRoot(root, false)

	ran := false
	if !root.TryMargins(func() { ran = true }) {
		t.Error("TryMargins should have set the margins")
	}
	if !ran {
		t.Error("the callback must run")
	}
	if root.InMargins() {
		t.Error("TryMargins must reset what it set")
	}

	root.SetMargins()
	if root.TryMargins(func() {}) {
		t.Error("TryMargins must not re-set held margins")
	}
	if !root.InMargins() {
		t.Error("TryMargins must leave held margins alone")
	}
}

func TestColorInheritance(t *testing.T) {
	var sink bytes.Buffer
	term := newTestTerminal(&sink)
	root := NewBox(term, Position{Width: 80, Height: 24})
	term.SetRoot(root, false)

	input := NewTextInput(root, Position{Width: 80, Height: 1})
	if c := input.FindColor(tui.Foreground); c != tui.ColDefault {
		t.Errorf("no explicit color anywhere: expected the default, got %v", c)
	}

	input.SetColors(tui.ColRed, tui.ColUndefined)
	if c := input.FindColor(tui.Foreground); c != tui.ColRed {
		t.Errorf("an explicit color wins, got %v", c)
	}
	if c := input.FindColor(tui.Background); c != tui.ColDefault {
		t.Errorf("an undefined channel falls back to the default, got %v", c)
	}
}

func TestColorInheritanceThroughAncestors(t *testing.T) {
	var sink bytes.Buffer
	term := newTestTerminal(&sink)

	outer := &panel{}
	outer.Colored.Init(outer, term)
	outer.InitContainer(outer)
	outer.pos = Position{Width: 80, Height: 24}
	term.SetRoot(outer, false)
	outer.SetColors(tui.ColGreen, tui.ColBlue)

	inner := NewBox(outer, Position{Width: 80, Height: 24})
	input := NewTextInput(inner, Position{Width: 80, Height: 1})

	if c := input.FindColor(tui.Foreground); c != tui.ColGreen {
		t.Errorf("expected the ancestor's foreground, got %v", c)
	}
	if c := input.FindColor(tui.Background); c != tui.ColBlue {
		t.Errorf("expected the ancestor's background, got %v", c)
	}

	input.SetColors(tui.ColUndefined, tui.ColYellow)
	if c := input.FindColor(tui.Background); c != tui.ColYellow {
		t.Errorf("an explicit color still wins, got %v", c)
	}
	if c := input.FindColor(tui.Foreground); c != tui.ColGreen {
		t.Errorf("the other channel still inherits, got %v", c)
	}
}

// panel is a colored container for the inheritance tests
type panel struct {
	Colored
	ContainerBase
}

func (p *panel) SetTerminal(term *Terminal) {
	p.ControlBase.SetTerminal(term)
	for _, child := range p.children {
		child.SetTerminal(term)
	}
}
