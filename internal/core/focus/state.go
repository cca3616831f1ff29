// Package focus holds the "current focus" view of the daily standup: one
// active task, the ranked alternatives the user can swap in, and the status
// of the active task.
package focus

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

const (
	// DefaultTitle is shown when the analysis carries no focus title.
	DefaultTitle = "Check in with assistant"
	// UnavailableTitle is the placeholder focus after a failed load.
	UnavailableTitle = "Unable to load standup"

	// recycledConfidence is given to a task displaced by a swap.
	recycledConfidence = 0.80
)

// defaultTitle is the stand-in task of an empty analysis.
const defaultTitle = "Review Q4 budget priorities"

// IsPlaceholderTitle reports whether title is one of the stand-in tasks that
// a swap drops instead of recycling into the alternatives. The default task
// must match exactly; "Unable to load standup" also matches suffixed variants
// such as "Unable to load standup…".
func IsPlaceholderTitle(title string) bool {
	return title == defaultTitle || strings.HasPrefix(title, UnavailableTitle)
}

// TaskID identifies a task within one analysis. Titles are display text only.
type TaskID string

// OneThingID is the id of the analysis' primary task.
const OneThingID TaskID = "one-thing"

// SecondaryID returns the id of the i-th secondary priority.
func SecondaryID(i int) TaskID {
	return TaskID(fmt.Sprintf("secondary-%d", i))
}

// ActiveTask is the task currently in focus.
type ActiveTask struct {
	ID       TaskID `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Urgency  int    `json:"urgency"` // 0-100
	Project  string `json:"project"`
	Action   string `json:"action"`
}

// TaskDetail is everything known about one task of the analysis.
type TaskDetail struct {
	ID          TaskID `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
	Project     string `json:"project"`
	Urgency     int    `json:"urgency"` // 0-100
}

// Alternative is a task the user may swap into focus.
type Alternative struct {
	ID         TaskID  `json:"id"`
	Decision   string  `json:"decision"`
	Confidence float64 `json:"confidence"` // 0-1
	Action     string  `json:"action"`
}

// State is the focus view model. It is rebuilt wholesale from every payload;
// Swap is the only structural mutation.
type State struct {
	ActiveTask      ActiveTask            `json:"active_task"`
	Details         map[TaskID]TaskDetail `json:"details"`
	Alternatives    []Alternative         `json:"alternatives"`
	Status          Status                `json:"status"`
	AutonomousTasks []AutonomousTask      `json:"autonomous_tasks"`
	DailyPlan       []PlanBlock           `json:"daily_plan"`
	Reasoning       string                `json:"reasoning"`
	Placeholder     bool                  `json:"placeholder"`
}

// NewState builds the focus state for a payload. Urgency encodings are
// normalized here and nowhere else.
func NewState(p Payload) State {
	one := p.TheOneThing

	title := strings.TrimSpace(one.Title)
	if title == "" {
		title = DefaultTitle
	}
	urgency := clampUrgency(one.Urgency)

	s := State{
		ActiveTask: ActiveTask{
			ID:       OneThingID,
			Title:    title,
			Subtitle: one.Description,
			Urgency:  urgency,
			Project:  one.Project,
			Action:   one.Action,
		},
		Details:         make(map[TaskID]TaskDetail, len(p.SecondaryPriorities)+1),
		Alternatives:    make([]Alternative, 0, len(p.SecondaryPriorities)),
		Status:          StatusPreparing,
		AutonomousTasks: slices.Clone(p.AutonomousTasks),
		DailyPlan:       slices.Clone(p.DailyPlan),
		Reasoning:       p.Reasoning,
	}

	s.Details[OneThingID] = TaskDetail{
		ID:          OneThingID,
		Title:       title,
		Description: one.Description,
		Action:      one.Action,
		Project:     one.Project,
		Urgency:     urgency,
	}

	for i, sp := range p.SecondaryPriorities {
		id := SecondaryID(i)
		confidence := NormalizeConfidence(sp)

		s.Details[id] = TaskDetail{
			ID:      id,
			Title:   sp.Title,
			Action:  sp.Action,
			Project: sp.Project,
			Urgency: ConfidenceToUrgency(confidence),
		}
		s.Alternatives = append(s.Alternatives, Alternative{
			ID:         id,
			Decision:   sp.Title,
			Confidence: confidence,
			Action:     sp.Action,
		})
	}

	return s
}

// UnavailableState is the placeholder shown after a failed load.
func UnavailableState() State {
	return State{
		ActiveTask: ActiveTask{
			ID:       OneThingID,
			Title:    UnavailableTitle,
			Subtitle: "The assistant could not be reached. Refresh to try again.",
		},
		Details:     map[TaskID]TaskDetail{},
		Status:      StatusPreparing,
		Placeholder: true,
	}
}

// NormalizeConfidence returns a priority's weight on the 0-1 scale. Urgency
// (0-100) wins over Confidence (0-1) when both are present; neither reads as 0.
func NormalizeConfidence(p Priority) float64 {
	switch {
	case p.Urgency != nil:
		return clamp01(*p.Urgency / 100)
	case p.Confidence != nil:
		return clamp01(*p.Confidence)
	default:
		return 0
	}
}

// ConfidenceToUrgency re-expands a 0-1 confidence to a 0-100 urgency.
func ConfidenceToUrgency(c float64) int {
	return int(math.Round(clamp01(c) * 100))
}

// Loaded reports whether the state came from a payload or a failed load, as
// opposed to the zero state before the first load.
func (s State) Loaded() bool {
	return s.ActiveTask.Title != ""
}

// Detail returns the details of the task with the given id.
func (s State) Detail(id TaskID) (TaskDetail, bool) {
	d, ok := s.Details[id]
	return d, ok
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s State) Clone() State {
	c := s
	c.Details = maps.Clone(s.Details)
	c.Alternatives = slices.Clone(s.Alternatives)
	c.AutonomousTasks = slices.Clone(s.AutonomousTasks)
	c.DailyPlan = slices.Clone(s.DailyPlan)
	return c
}

// swap moves alternative i into focus and recycles the displaced task to the
// end of the alternatives, unless it is a placeholder. i must be in range.
func (s *State) swap(i int) {
	chosen := s.Alternatives[i]
	prev := s.ActiveTask

	alts := slices.Delete(slices.Clone(s.Alternatives), i, i+1)
	if !IsPlaceholderTitle(prev.Title) {
		alts = append(alts, Alternative{
			ID:         prev.ID,
			Decision:   prev.Title,
			Confidence: recycledConfidence,
			Action:     prev.Action,
		})
	}

	next := ActiveTask{
		ID:     chosen.ID,
		Title:  chosen.Decision,
		Action: chosen.Action,
	}
	if d, ok := s.Details[chosen.ID]; ok {
		next.Subtitle = d.Description
		next.Urgency = d.Urgency
		next.Project = d.Project
	}

	s.ActiveTask = next
	s.Alternatives = alts
	s.Status = StatusPreparing
	s.Placeholder = false
}

// snapshot converts the state into the record the backend persists.
func (s State) snapshot() StatusSnapshot {
	priorities := make([]SavedPriority, 0, len(s.Alternatives))
	for _, alt := range s.Alternatives {
		priorities = append(priorities, SavedPriority{
			Title:   alt.Decision,
			Action:  alt.Action,
			Project: s.Details[alt.ID].Project,
			Urgency: ConfidenceToUrgency(alt.Confidence),
		})
	}

	return StatusSnapshot{
		TaskTitle:           s.ActiveTask.Title,
		TaskDescription:     s.ActiveTask.Subtitle,
		TaskProject:         s.ActiveTask.Project,
		Urgency:             s.ActiveTask.Urgency,
		Status:              s.Status.Backend(),
		AIReasoning:         s.Reasoning,
		SecondaryPriorities: priorities,
		DailyPlan:           slices.Clone(s.DailyPlan),
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func clampUrgency(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
