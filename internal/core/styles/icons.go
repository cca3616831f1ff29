package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconCalendar = "\uf073"     //
	IconTarget   = "\U000F04FE" // 󰓾
	IconSwap     = "\uf0ec"     //
	IconRobot    = "\U000F06A9" // 󰚩
	IconClock    = "\uf017"     //
)

// Status icons
var (
	IconStatusPreparing  = "○"
	IconStatusInProgress = "◐"
	IconStatusComplete   = "●"
	IconStatusBlocked    = "⊘"
)

// Notification icons
var (
	IconNotifyError   = "✗"
	IconNotifyWarning = "!"
	IconNotifyInfo    = "•"
)
