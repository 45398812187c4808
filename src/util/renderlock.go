package util

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// RenderLock is a reentrant mutex serializing all drawing. Reentrancy is
// required because a container's draw routine synchronously draws its
// children on the same call stack.
type RenderLock struct {
	mu    sync.Mutex
	cond  *sync.Cond
	owner int64
	depth int
}

// NewRenderLock returns a new RenderLock
func NewRenderLock() *RenderLock {
	l := &RenderLock{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Lock acquires the lock, or increments the hold count when the calling
// goroutine already owns it.
func (l *RenderLock) Lock() {
	gid := goroutineID()
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.depth > 0 && l.owner != gid {
		l.cond.Wait()
	}
	l.owner = gid
	l.depth++
}

// Unlock decrements the hold count and releases the lock when it reaches zero
func (l *RenderLock) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.depth == 0 {
		panic("RenderLock: unlock of unlocked lock")
	}
	l.depth--
	if l.depth == 0 {
		l.owner = 0
		l.cond.Signal()
	}
}

// Held reports whether the calling goroutine currently owns the lock
func (l *RenderLock) Held() bool {
	gid := goroutineID()
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.depth > 0 && l.owner == gid
}

var goroutinePrefix = []byte("goroutine ")

// goroutineID extracts the current goroutine's id from the stack header
// ("goroutine 123 [running]:"). There is no supported API for this.
func goroutineID() int64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, goroutinePrefix)
	i := bytes.IndexByte(buf, ' ')
	if i < 0 {
		return -1
	}
	id, err := strconv.ParseInt(string(buf[:i]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
