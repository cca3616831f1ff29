package focus

import (
	"fmt"
	"strings"
)

// Status is the user's progress on the active task.
type Status string

const (
	StatusPreparing  Status = "preparing"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
	StatusBlocked    Status = "blocked"
)

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{StatusPreparing, StatusInProgress, StatusComplete, StatusBlocked}
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPreparing, StatusInProgress, StatusComplete, StatusBlocked:
		return true
	}
	return false
}

// Label is the human form shown in the dashboard.
func (s Status) Label() string {
	switch s {
	case StatusInProgress:
		return "In progress"
	case StatusComplete:
		return "Complete"
	case StatusBlocked:
		return "Blocked"
	default:
		return "Preparing"
	}
}

// ParseStatus parses a status name, accepting '-' for '_'.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !st.IsValid() {
		return "", fmt.Errorf("unknown status %q (want one of %v)", s, Statuses())
	}
	return st, nil
}

// BackendStatus is the status enum the backend stores.
type BackendStatus string

const (
	BackendNotStarted BackendStatus = "not_started"
	BackendInProgress BackendStatus = "in_progress"
	BackendCompleted  BackendStatus = "completed"
	BackendDeferred   BackendStatus = "deferred"
)

// Backend maps a status onto the backend enum.
func (s Status) Backend() BackendStatus {
	switch s {
	case StatusInProgress:
		return BackendInProgress
	case StatusComplete:
		return BackendCompleted
	case StatusBlocked:
		return BackendDeferred
	default:
		return BackendNotStarted
	}
}

// FromBackend maps a backend status onto a Status. Unknown values read as
// preparing.
func FromBackend(b BackendStatus) Status {
	switch b {
	case BackendInProgress:
		return StatusInProgress
	case BackendCompleted:
		return StatusComplete
	case BackendDeferred:
		return StatusBlocked
	default:
		return StatusPreparing
	}
}
