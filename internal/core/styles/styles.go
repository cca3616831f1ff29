// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/glamour"
	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported color aliases for convenience.
var (
	ColorPrimary    lipgloss.Color
	ColorSecondary  lipgloss.Color
	ColorForeground lipgloss.Color
	ColorMuted      lipgloss.Color
	ColorBackground lipgloss.Color
	ColorSurface    lipgloss.Color
	ColorSuccess    lipgloss.Color
	ColorWarning    lipgloss.Color
	ColorError      lipgloss.Color
	ColorAccent     lipgloss.Color
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	CommandStyle       lipgloss.Style
	DividerStyle       lipgloss.Style
	MutedStyle         lipgloss.Style
	ErrorStyle         lipgloss.Style
	WarningStyle       lipgloss.Style
	SuccessStyle       lipgloss.Style

	// Panes.
	PaneStyle        lipgloss.Style
	PaneFocusedStyle lipgloss.Style
	PaneTitleStyle   lipgloss.Style
	HelpStyle        lipgloss.Style
	HelpKeyStyle     lipgloss.Style

	// Focus pane.
	FocusTitleStyle       lipgloss.Style
	FocusSubtitleStyle    lipgloss.Style
	FocusActionStyle      lipgloss.Style
	AlternativeStyle      lipgloss.Style
	AlternativeCursor     lipgloss.Style
	PlaceholderTitleStyle lipgloss.Style

	// Calendar pane.
	WeekdayHeaderStyle lipgloss.Style
	DayStyle           lipgloss.Style
	DayOutsideStyle    lipgloss.Style
	DayTodayStyle      lipgloss.Style
	DaySelectedStyle   lipgloss.Style
	GoalEntryStyle     lipgloss.Style
	EventEntryStyle    lipgloss.Style
	MoreEntriesStyle   lipgloss.Style

	// Toasts.
	ToastInfoStyle    lipgloss.Style
	ToastWarningStyle lipgloss.Style
	ToastErrorStyle   lipgloss.Style
)

// ColorPool is used for deterministic color hashing of project names.
var ColorPool []lipgloss.Color

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error
	ColorAccent = p.Accent

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	CommandStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	DividerStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)

	PaneStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSurface).
		Padding(0, 1)
	PaneFocusedStyle = PaneStyle.
		BorderForeground(ColorPrimary)
	PaneTitleStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		MarginBottom(1)
	HelpStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	HelpKeyStyle = lipgloss.NewStyle().Foreground(ColorSecondary)

	FocusTitleStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Bold(true)
	FocusSubtitleStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true)
	FocusActionStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary)
	AlternativeStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		PaddingLeft(2)
	AlternativeCursor = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	PlaceholderTitleStyle = lipgloss.NewStyle().
		Foreground(ColorWarning).
		Bold(true)

	WeekdayHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Bold(true)
	DayStyle = lipgloss.NewStyle().Foreground(ColorForeground)
	DayOutsideStyle = lipgloss.NewStyle().Foreground(ColorSurface)
	DayTodayStyle = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(ColorPrimary).
		Bold(true)
	DaySelectedStyle = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(ColorAccent).
		Bold(true)
	GoalEntryStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	EventEntryStyle = lipgloss.NewStyle().Foreground(ColorSecondary)
	MoreEntriesStyle = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)

	toast := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	ToastInfoStyle = toast.BorderForeground(ColorPrimary).Foreground(ColorForeground)
	ToastWarningStyle = toast.BorderForeground(ColorWarning).Foreground(ColorWarning)
	ToastErrorStyle = toast.BorderForeground(ColorError).Foreground(ColorError)

	ColorPool = []lipgloss.Color{
		ColorPrimary,
		ColorSecondary,
		ColorSuccess,
		ColorWarning,
		ColorAccent,
		ColorError,
	}
}

// ColorForString returns a deterministic color for a given string.
// The same string always produces the same color.
func ColorForString(s string) lipgloss.Color {
	var hash uint32
	for _, c := range s {
		hash = hash*31 + uint32(c)
	}
	return ColorPool[hash%uint32(len(ColorPool))]
}

// UrgencyColor maps a 0-100 urgency onto the palette, blending from success
// through warning (at 50) to error.
func UrgencyColor(urgency int) lipgloss.Color {
	u := min(max(urgency, 0), 100)
	switch u {
	case 0:
		return ColorSuccess
	case 50:
		return ColorWarning
	case 100:
		return ColorError
	}

	from, to, t := ColorSuccess, ColorWarning, float64(u)/50
	if u > 50 {
		from, to, t = ColorWarning, ColorError, float64(u-50)/50
	}

	a, errA := colorful.Hex(string(from))
	b, errB := colorful.Hex(string(to))
	if errA != nil || errB != nil {
		return from
	}
	return lipgloss.Color(a.BlendLab(b, t).Clamped().Hex())
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}

func hexPtr(c lipgloss.Color) *string {
	cc, err := colorful.Hex(string(c))
	if err != nil {
		return nil
	}
	hex := cc.Hex()
	return &hex
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	fg := hexPtr(ColorForeground)
	primary := hexPtr(ColorPrimary)
	secondary := hexPtr(ColorSecondary)
	muted := hexPtr(ColorMuted)
	surface := hexPtr(ColorSurface)

	cfg.Document.Color = fg

	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = surface
	cfg.H2.Color = primary
	cfg.H3.Color = primary
	cfg.H4.Color = primary
	cfg.H5.Color = primary
	cfg.H6.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary

	cfg.Code.Color = secondary
	cfg.CodeBlock.Color = muted

	cfg.Table.Color = fg

	return cfg
}

// RenderMarkdown renders md with the active theme, wrapped at width. A
// non-positive width disables wrapping.
func RenderMarkdown(md string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithStyles(GlamourStyle())}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
