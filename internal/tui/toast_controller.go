package tui

import (
	"time"

	"github.com/colonyops/standup/internal/core/notify"
)

const (
	infoToastTTL      = 4 * time.Second
	errorToastTTL     = 8 * time.Second
	maxToasts         = 4
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 48
)

type toast struct {
	notification notify.Notification
	remaining    time.Duration
	repeats      int // extra identical notifications folded into this one
}

// ToastController holds the visible toasts. Identical consecutive
// notifications collapse into one toast with a repeat count.
type ToastController struct {
	toasts  []toast
	ticking bool
}

func NewToastController() *ToastController {
	return &ToastController{}
}

func ttlFor(level notify.Level) time.Duration {
	if level == notify.LevelError {
		return errorToastTTL
	}
	return infoToastTTL
}

// Push shows n. The oldest toast is dropped past maxToasts.
func (c *ToastController) Push(n notify.Notification) {
	if last := len(c.toasts) - 1; last >= 0 {
		prev := &c.toasts[last]
		if prev.notification.Level == n.Level && prev.notification.Source == n.Source && prev.notification.Message == n.Message {
			prev.repeats++
			prev.remaining = ttlFor(n.Level)
			return
		}
	}

	c.toasts = append(c.toasts, toast{notification: n, remaining: ttlFor(n.Level)})
	if len(c.toasts) > maxToasts {
		c.toasts = c.toasts[len(c.toasts)-maxToasts:]
	}
}

// Tick ages every toast by d and drops the expired ones.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// DismissAll removes every toast.
func (c *ToastController) DismissAll() {
	c.toasts = c.toasts[:0]
}

func (c *ToastController) HasToasts() bool {
	return len(c.toasts) > 0
}

// Toasts returns the visible toasts, oldest first.
func (c *ToastController) Toasts() []toast {
	return c.toasts
}

func (c *ToastController) Ticking() bool {
	return c.ticking
}

func (c *ToastController) SetTicking(v bool) {
	c.ticking = v
}
