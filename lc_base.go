package wq

import (
	"errors"
	"github.com/eijebong/wq/internal"
	"sync/atomic"
	"time"
)

const (
	stopped = iota
	started
)

var (
	// ErrDoubleStarted is returned when Start is called on a background
	// loop that has already been started.
	//
	// The dispatcher, the reclaim checker and the result-cleanup worker
	// follow a strict lifecycle and must not be started more than once
	// without being stopped.
	ErrDoubleStarted = errors.New("wq: double start")

	// ErrDoubleStopped is returned when Stop is called on a background
	// loop that is not currently running.
	ErrDoubleStopped = errors.New("wq: double stop")

	// ErrStopTimeout is returned when a background loop fails to shut
	// down within the provided timeout during Stop.
	//
	// In this case, the loop may still be terminating in the background.
	ErrStopTimeout = errors.New("wq: stop timeout")
)

type lcBase struct {
	state atomic.Int32
}

func (lb *lcBase) tryStart() error {
	if !lb.state.CompareAndSwap(stopped, started) {
		return ErrDoubleStarted
	}
	return nil
}

func (lb *lcBase) tryStop(timeout time.Duration, df internal.DoneFunc) error {
	if !lb.state.CompareAndSwap(started, stopped) {
		return ErrDoubleStopped
	}
	done := df()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}
