//go:build !windows

package termsize

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

func watch(size sizeFunc, fn func(cols, rows int)) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGWINCH)
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case <-sigs:
				if cols, rows, err := size(); err == nil {
					fn(cols, rows)
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigs)
			close(done)
			wg.Wait()
		})
	}
}
