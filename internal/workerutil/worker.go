// Package workerutil reconstructs the halt-channel worker idiom used
// throughout the teacher repo (client2/connection.go, client/cborplugin)
// as worker.Worker. The upstream core/worker package wasn't part of the
// retrieval pack, only its call sites, so this rebuilds the same contract:
// embed Worker, spawn goroutines with Go, and have them select on HaltCh.
package workerutil

import "sync"

// Worker gives an embedder cooperative goroutine lifecycle management:
// Go spawns a tracked goroutine, Halt signals all of them to stop, and
// Wait blocks until they have all returned.
type Worker struct {
	haltOnce sync.Once
	haltCh   chan struct{}
	wg       sync.WaitGroup
	initOnce sync.Once
}

func (w *Worker) init() {
	w.initOnce.Do(func() {
		w.haltCh = make(chan struct{})
	})
}

// HaltCh returns the channel that closes when Halt is called.
func (w *Worker) HaltCh() <-chan struct{} {
	w.init()
	return w.haltCh
}

// Go spawns fn as a tracked goroutine.
func (w *Worker) Go(fn func()) {
	w.init()
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		fn()
	}()
}

// Halt closes HaltCh exactly once, signalling every tracked goroutine
// to return.
func (w *Worker) Halt() {
	w.init()
	w.haltOnce.Do(func() {
		close(w.haltCh)
	})
}

// Wait blocks until every goroutine spawned with Go has returned.
func (w *Worker) Wait() {
	w.wg.Wait()
}

// IsHalted reports whether Halt has been called.
func (w *Worker) IsHalted() bool {
	w.init()
	select {
	case <-w.haltCh:
		return true
	default:
		return false
	}
}
