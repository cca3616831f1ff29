package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit           key.Binding
	Help           key.Binding
	SwitchPane     key.Binding
	Dismiss        key.Binding
	Refresh        key.Binding
	Up             key.Binding
	Down           key.Binding
	Swap           key.Binding
	SetStatus      key.Binding
	Left           key.Binding
	Right          key.Binding
	PrevMonth      key.Binding
	NextMonth      key.Binding
	Today          key.Binding
	NextEntry      key.Binding
	CycleGoal      key.Binding
	CycleFilter    key.Binding
	ReloadCalendar key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:           key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		SwitchPane:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Dismiss:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss toasts")),
		Refresh:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Up:             key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:           key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Swap:           key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "focus alternative")),
		SetStatus:      key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "set status")),
		Left:           key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev day")),
		Right:          key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next day")),
		PrevMonth:      key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev month")),
		NextMonth:      key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next month")),
		Today:          key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		NextEntry:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next entry")),
		CycleGoal:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "cycle goal status")),
		CycleFilter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter project")),
		ReloadCalendar: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload calendar")),
	}
}

// focusKeys implements help.KeyMap for the focus pane.
type focusKeys keyMap

func (k focusKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Swap, k.SetStatus, k.Refresh, k.SwitchPane, k.Help, k.Quit}
}

func (k focusKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Swap},
		{k.SetStatus, k.Refresh},
		{k.SwitchPane, k.Dismiss, k.Help, k.Quit},
	}
}

// calendarKeys implements help.KeyMap for the calendar pane.
type calendarKeys keyMap

func (k calendarKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.NextEntry, k.CycleGoal, k.CycleFilter, k.SwitchPane, k.Help, k.Quit}
}

func (k calendarKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.PrevMonth, k.NextMonth, k.Today},
		{k.NextEntry, k.CycleGoal, k.CycleFilter, k.ReloadCalendar},
		{k.SwitchPane, k.Dismiss, k.Help, k.Quit},
	}
}
