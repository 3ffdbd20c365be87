//go:build windows

package termsize

// Windows consoles do not deliver SIGWINCH; the size is reported once.
func watch(size sizeFunc, fn func(cols, rows int)) func() {
	if cols, rows, err := size(); err == nil {
		fn(cols, rows)
	}
	return func() {}
}
