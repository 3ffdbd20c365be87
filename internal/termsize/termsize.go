// Package termsize reports terminal resizes to a callback until released.
package termsize

import "golang.org/x/term"

type sizeFunc func() (cols, rows int, err error)

// Watch calls fn with the new size of the terminal behind fd every time it is
// resized. The returned stop releases the listener and waits for any in-flight
// callback; it is safe to call more than once.
func Watch(fd int, fn func(cols, rows int)) (stop func()) {
	return watch(func() (int, int, error) { return term.GetSize(fd) }, fn)
}

// Size returns the current size of the terminal behind fd, or fallback when fd
// is not a terminal.
func Size(fd int, fallbackCols, fallbackRows int) (cols, rows int) {
	cols, rows, err := term.GetSize(fd)
	if err != nil || cols <= 0 || rows <= 0 {
		return fallbackCols, fallbackRows
	}
	return cols, rows
}
