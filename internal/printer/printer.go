// Package printer writes styled, human-readable command output. Commands pull
// the printer from their context so tests can capture what was printed.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/colonyops/standup/internal/core/notify"
	"github.com/colonyops/standup/internal/core/styles"
)

type ctxKey struct{}

// Printer writes status lines to an output stream.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

// New creates a Printer writing to out.
func New(out io.Writer) *Printer {
	return &Printer{out: out}
}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the printer stored in ctx, or one writing to stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok && p != nil {
		return p
	}
	return New(os.Stderr)
}

func (p *Printer) line(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.out, s)
}

// Printf prints an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

// Successf prints a line prefixed with a success mark.
func (p *Printer) Successf(format string, args ...any) {
	p.line(styles.SuccessStyle.Render("✓") + " " + fmt.Sprintf(format, args...))
}

// Infof prints an informational line.
func (p *Printer) Infof(format string, args ...any) {
	p.line(styles.MutedStyle.Render("•") + " " + fmt.Sprintf(format, args...))
}

// Warnf prints a warning line.
func (p *Printer) Warnf(format string, args ...any) {
	p.line(styles.WarningStyle.Render("!") + " " + fmt.Sprintf(format, args...))
}

// Errorf prints an error line.
func (p *Printer) Errorf(format string, args ...any) {
	p.line(styles.ErrorStyle.Render("✗") + " " + fmt.Sprintf(format, args...))
}

// Notification prints n with the style matching its level.
func (p *Printer) Notification(n notify.Notification) {
	msg := n.Message
	if n.Source != "" {
		msg = n.Source + ": " + msg
	}

	switch n.Level {
	case notify.LevelError:
		p.Errorf("%s", msg)
	case notify.LevelWarning:
		p.Warnf("%s", msg)
	default:
		p.Infof("%s", msg)
	}
}
