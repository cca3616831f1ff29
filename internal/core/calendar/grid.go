package calendar

import "time"

// GridCells is the fixed size of a month grid: six Sunday-first weeks.
const GridCells = 42

// DayCell is one day of a month grid.
type DayCell struct {
	Date           time.Time `json:"date"`
	Day            int       `json:"day"`
	IsCurrentMonth bool      `json:"is_current_month"`
	IsToday        bool      `json:"is_today"`
}

// BuildMonthGrid returns the 42 days shown for month, starting on the Sunday
// on or before the 1st. Leading and trailing cells belong to the adjacent
// months.
func BuildMonthGrid(year int, month time.Month, today time.Time) []DayCell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	lead := int(first.Weekday())

	cells := make([]DayCell, GridCells)
	for i := range cells {
		// time.Date normalizes out-of-range days.
		d := time.Date(year, month, 1-lead+i, 0, 0, 0, 0, time.Local)
		cells[i] = DayCell{
			Date:           d,
			Day:            d.Day(),
			IsCurrentMonth: d.Month() == month,
			IsToday:        SameDay(d, today),
		}
	}
	return cells
}

// Weeks splits a grid into rows of seven.
func Weeks(cells []DayCell) [][]DayCell {
	var rows [][]DayCell
	for i := 0; i < len(cells); i += 7 {
		end := min(i+7, len(cells))
		rows = append(rows, cells[i:end])
	}
	return rows
}
