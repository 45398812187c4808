//go:build !windows

package haunted

import (
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

type termAttrs = unix.Termios

func getAttrs(fd int) (*termAttrs, error) {
	attrs, err := unix.IoctlGetTermios(fd, ioctlGetAttrs)
	if err != nil {
		return nil, errors.Wrap(err, "tcgetattr")
	}
	return attrs, nil
}

func setAttrs(fd int, attrs *termAttrs) error {
	return errors.Wrap(unix.IoctlSetTermios(fd, ioctlSetAttrs, attrs), "tcsetattr")
}

// rawAttrs disables canonical input, echo and signal-generating control
// characters. Reads return as soon as a single byte is available.
func rawAttrs(attrs *termAttrs) {
	attrs.Lflag &^= unix.ICANON | unix.ECHO | unix.ISIG
	attrs.Cc[unix.VMIN] = 1
	attrs.Cc[unix.VTIME] = 0
}

func querySize(fd int) (rows int, cols int, err error) {
	cols, rows, err = term.GetSize(fd)
	return rows, cols, err
}

func notifyResize(ch chan os.Signal) {
	signal.Notify(ch, unix.SIGWINCH)
}
