package orchestration

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/voxlabs/jarvis-core/core/speechcapture"
)

// speechCaptureFacade guards the process-wide capture device with explicit
// request/release semantics so only one capture cycle can run at a time.
type speechCaptureFacade struct {
	base SpeechCapture

	active atomic.Bool
}

func (c *speechCaptureFacade) set(client SpeechCapture) {
	c.base = client
}

func (c *speechCaptureFacade) isConfigured() bool {
	return c != nil && c.base != nil
}

func (c *speechCaptureFacade) isActive() bool {
	return c != nil && c.active.Load()
}

// Request acquires the device and starts a capture cycle. Requesting while a
// cycle is already running is a no-op.
func (c *speechCaptureFacade) Request(ctx context.Context, opts ...speechcapture.CaptureOption) error {
	if !c.isConfigured() {
		return nil
	}
	if !c.active.CompareAndSwap(false, true) {
		return nil
	}

	if err := c.base.Start(ctx, opts...); err != nil {
		c.active.Store(false)
		return fmt.Errorf("failed to start speech capture: %w", err)
	}
	return nil
}

// Release stops the running capture cycle, if any.
func (c *speechCaptureFacade) Release() error {
	if !c.isConfigured() {
		return nil
	}
	if !c.active.CompareAndSwap(true, false) {
		return nil
	}

	if err := c.base.Stop(); err != nil {
		return fmt.Errorf("failed to stop speech capture: %w", err)
	}
	return nil
}
