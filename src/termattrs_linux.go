package haunted

import "golang.org/x/sys/unix"

const (
	ioctlGetAttrs = unix.TCGETS
	ioctlSetAttrs = unix.TCSETS
)
