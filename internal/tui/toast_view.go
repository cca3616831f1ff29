package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/standup/internal/core/notify"
	"github.com/colonyops/standup/internal/core/styles"
)

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// ToastView renders the toast stack.
type ToastView struct {
	controller *ToastController
}

func NewToastView(controller *ToastController) *ToastView {
	return &ToastView{controller: controller}
}

// View renders the toasts stacked vertically, oldest on top.
func (v *ToastView) View() string {
	toasts := v.controller.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, renderToast(t))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

func renderToast(t toast) string {
	icon, style := styles.IconNotifyInfo, styles.ToastInfoStyle
	switch t.notification.Level {
	case notify.LevelError:
		icon, style = styles.IconNotifyError, styles.ToastErrorStyle
	case notify.LevelWarning:
		icon, style = styles.IconNotifyWarning, styles.ToastWarningStyle
	}

	msg := t.notification.Message
	if t.notification.Source != "" {
		msg = t.notification.Source + ": " + msg
	}
	if t.repeats > 0 {
		msg += fmt.Sprintf(" (×%d)", t.repeats+1)
	}

	return style.Width(toastWidth).Render(icon + " " + msg)
}

// Overlay draws the toasts over the bottom-right corner of background,
// which is expected to be width by height cells.
func (v *ToastView) Overlay(background string, width, height int) string {
	content := v.View()
	if content == "" {
		return background
	}

	bg := strings.Split(background, "\n")
	for len(bg) < height {
		bg = append(bg, "")
	}

	toastLines := strings.Split(content, "\n")
	toastW := lipgloss.Width(content)
	left := max(width-toastW-1, 0)

	start := max(len(bg)-len(toastLines), 0)
	for i, line := range toastLines {
		row := start + i
		if row >= len(bg) {
			break
		}
		bg[row] = spliceLine(bg[row], line, left)
	}
	return strings.Join(bg, "\n")
}

// spliceLine keeps the first left cells of base and draws over after them.
func spliceLine(base, over string, left int) string {
	prefix := truncateCells(base, left)
	if pad := left - lipgloss.Width(prefix); pad > 0 {
		prefix += strings.Repeat(" ", pad)
	}
	return prefix + over
}

// truncateCells cuts s to at most n visible cells. Styling is dropped from
// the kept part so a cut escape sequence cannot bleed into the overlay.
func truncateCells(s string, n int) string {
	plain := stripANSI(s)
	runes := []rune(plain)
	var b strings.Builder
	w := 0
	for _, r := range runes {
		rw := lipgloss.Width(string(r))
		if w+rw > n {
			break
		}
		b.WriteRune(r)
		w += rw
	}
	return b.String()
}

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
