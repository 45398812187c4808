package main

import (
	"fmt"
	"os"

	haunted "github.com/kaitamkun/haunted/src"
	"github.com/kaitamkun/haunted/src/tui"
)

// A minimal interactive session: a full-screen box holding a single text
// input. Type to edit, ctrl-c to quit; the buffer is printed on exit.
func main() {
	term, err := haunted.NewTerminal(os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := term.CBreak(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	box := haunted.NewBox(term, haunted.Position{})
	term.SetRoot(box, false)

	input := haunted.NewTextInput(box, haunted.Position{})
	input.SetPrefix("> ")
	input.SetColors(tui.ColBrightWhite, tui.ColDefault)
	input.Focus()

	term.SetMouseMode(tui.MouseModeMotion)
	term.WatchSize()
	term.StartInput()
	term.Run()

	if err := term.Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Println(input.Text())
}
