package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withLocal runs fn with time.Local set to loc.
func withLocal(t *testing.T, loc *time.Location, fn func()) {
	t.Helper()
	prev := time.Local
	time.Local = loc
	defer func() { time.Local = prev }()
	fn()
}

func testZones() []*time.Location {
	return []*time.Location{
		time.UTC,
		time.FixedZone("UTC-11", -11*60*60),
		time.FixedZone("UTC-5", -5*60*60),
		time.FixedZone("UTC+9", 9*60*60),
		time.FixedZone("UTC+14", 14*60*60),
	}
}

func TestParseLocalDate_NeverShiftsDay(t *testing.T) {
	for _, loc := range testZones() {
		t.Run(loc.String(), func(t *testing.T) {
			withLocal(t, loc, func() {
				d, err := ParseLocalDate("2025-03-10")
				require.NoError(t, err)

				y, m, day := d.Date()
				assert.Equal(t, 2025, y)
				assert.Equal(t, time.March, m)
				assert.Equal(t, 10, day)
				assert.Equal(t, 0, d.Hour())
				assert.Equal(t, loc, d.Location())
			})
		})
	}
}

func TestParseLocalDate_IgnoresTimeSuffix(t *testing.T) {
	withLocal(t, time.FixedZone("UTC-8", -8*60*60), func() {
		d, err := ParseLocalDate("2025-03-10T00:00:00Z")
		require.NoError(t, err)
		assert.Equal(t, 10, d.Day())
	})
}

func TestParseLocalDate_Invalid(t *testing.T) {
	_, err := ParseLocalDate("03/10/2025")
	require.Error(t, err)

	_, err = ParseLocalDate("")
	require.Error(t, err)
}

func TestAggregate_GoalDeadlineDayAcrossZones(t *testing.T) {
	for _, loc := range testZones() {
		t.Run(loc.String(), func(t *testing.T) {
			withLocal(t, loc, func() {
				projects := mustProjects(t, `[{"id": "p", "goals": [{"goal": "g", "deadline": "2025-03-10"}]}]`)
				entries := Aggregate(projects, nil, "")

				require.Len(t, entries, 1)
				day := time.Date(2025, 3, 10, 12, 0, 0, 0, loc)
				assert.True(t, SameDay(entries[0].Date, day))
				assert.Len(t, EntriesForDay(entries, day), 1)
			})
		})
	}
}

func TestEventTime_Time(t *testing.T) {
	withLocal(t, time.FixedZone("UTC+2", 2*60*60), func() {
		tests := []struct {
			name string
			in   EventTime
			want time.Time
		}{
			{
				name: "local date-time",
				in:   EventTime{DateTime: "2025-01-05T09:00:00"},
				want: time.Date(2025, 1, 5, 9, 0, 0, 0, time.Local),
			},
			{
				name: "offset date-time",
				in:   EventTime{DateTime: "2025-01-05T23:30:00Z"},
				want: time.Date(2025, 1, 6, 1, 30, 0, 0, time.Local),
			},
			{
				name: "all day",
				in:   EventTime{Date: "2025-01-05"},
				want: time.Date(2025, 1, 5, 0, 0, 0, 0, time.Local),
			},
		}

		for _, tt := range tests {
			got, err := tt.in.Time()
			require.NoError(t, err, tt.name)
			assert.True(t, tt.want.Equal(got), "%s: got %s", tt.name, got)
		}

		_, err := EventTime{}.Time()
		require.Error(t, err)
	})
}
