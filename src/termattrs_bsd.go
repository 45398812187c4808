//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package haunted

import "golang.org/x/sys/unix"

const (
	ioctlGetAttrs = unix.TIOCGETA
	ioctlSetAttrs = unix.TIOCSETA
)
