package event

import (
	"testing"
	"time"
)

var baseTime = time.Date(2025, 6, 14, 20, 0, 0, 0, time.UTC)

func testEvent(start, end time.Time) *Event {
	return &Event{
		ID:       "e1",
		VenueID:  "v1",
		Name:     "Saturday Night",
		Category: CategoryMusic,
		StartsAt: start,
		EndsAt:   end,
	}
}

func TestIsLive(t *testing.T) {
	e := testEvent(baseTime, baseTime.Add(4*time.Hour))

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "before start", now: baseTime.Add(-time.Minute), want: false},
		{name: "exactly at start", now: baseTime, want: true},
		{name: "mid event", now: baseTime.Add(2 * time.Hour), want: true},
		{name: "exactly at end is over", now: baseTime.Add(4 * time.Hour), want: false},
		{name: "after end", now: baseTime.Add(5 * time.Hour), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.IsLive(tt.now); got != tt.want {
				t.Errorf("IsLive(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestIsUpcoming(t *testing.T) {
	e := testEvent(baseTime, baseTime.Add(4*time.Hour))

	if !e.IsUpcoming(baseTime.Add(-time.Hour)) {
		t.Error("event an hour before start should be upcoming")
	}
	if e.IsUpcoming(baseTime) {
		t.Error("event at its start instant is not upcoming")
	}
	if e.IsUpcoming(baseTime.Add(time.Hour)) {
		t.Error("in-progress event is not upcoming")
	}
}

func TestLiveAndUpcomingMutuallyExclusive(t *testing.T) {
	e := testEvent(baseTime, baseTime.Add(4*time.Hour))

	instants := []time.Time{
		baseTime.Add(-time.Hour),
		baseTime,
		baseTime.Add(2 * time.Hour),
		baseTime.Add(4 * time.Hour),
		baseTime.Add(24 * time.Hour),
	}
	for _, now := range instants {
		if e.IsLive(now) && e.IsUpcoming(now) {
			t.Errorf("event both live and upcoming at %v", now)
		}
	}
}

func TestEventValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		e := testEvent(baseTime, baseTime.Add(time.Hour))
		if err := e.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("bad category", func(t *testing.T) {
		e := testEvent(baseTime, baseTime.Add(time.Hour))
		e.Category = "KARAOKE"
		if err := e.Validate(); err != ErrInvalidCategory {
			t.Errorf("error = %v, want ErrInvalidCategory", err)
		}
	})

	t.Run("start equals end", func(t *testing.T) {
		e := testEvent(baseTime, baseTime)
		if err := e.Validate(); err != ErrInvalidTimeRange {
			t.Errorf("error = %v, want ErrInvalidTimeRange", err)
		}
	})

	t.Run("start after end", func(t *testing.T) {
		e := testEvent(baseTime.Add(time.Hour), baseTime)
		if err := e.Validate(); err != ErrInvalidTimeRange {
			t.Errorf("error = %v, want ErrInvalidTimeRange", err)
		}
	})
}

func TestFilterByFrame(t *testing.T) {
	// baseTime is Saturday 2025-06-14 20:00 UTC.
	events := []*Event{
		testEvent(baseTime.Add(-time.Hour), baseTime.Add(3*time.Hour)),          // live
		testEvent(baseTime.Add(2*time.Hour), baseTime.Add(6*time.Hour)),         // tonight
		testEvent(baseTime.AddDate(0, 0, 3), baseTime.AddDate(0, 0, 3).Add(4*time.Hour)),   // next Tuesday
		testEvent(baseTime.AddDate(0, 0, 20), baseTime.AddDate(0, 0, 20).Add(4*time.Hour)), // in three weeks
	}

	tests := []struct {
		name  string
		frame string
		want  int
	}{
		{name: "live", frame: FrameLive, want: 1},
		{name: "today", frame: FrameToday, want: 2},
		{name: "week", frame: FrameWeek, want: 2},
		{name: "month", frame: FrameMonth, want: 3},
		{name: "upcoming default", frame: "bogus", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByFrame(events, tt.frame, baseTime)
			if len(got) != tt.want {
				t.Errorf("frame %q returned %d events, want %d", tt.frame, len(got), tt.want)
			}
		})
	}
}

func TestFilterByFrameWeekend(t *testing.T) {
	// Friday 2025-06-13 12:00; the upcoming weekend is June 14-15.
	friday := time.Date(2025, 6, 13, 12, 0, 0, 0, time.UTC)
	saturdayNight := time.Date(2025, 6, 14, 22, 0, 0, 0, time.UTC)
	mondayNight := time.Date(2025, 6, 16, 22, 0, 0, 0, time.UTC)

	events := []*Event{
		testEvent(saturdayNight, saturdayNight.Add(4*time.Hour)),
		testEvent(mondayNight, mondayNight.Add(4*time.Hour)),
	}

	got := FilterByFrame(events, FrameWeekend, friday)
	if len(got) != 1 {
		t.Fatalf("got %d weekend events, want 1", len(got))
	}
	if !got[0].StartsAt.Equal(saturdayNight) {
		t.Errorf("wrong event selected: starts %v", got[0].StartsAt)
	}
}

func TestFilterByCategory(t *testing.T) {
	events := []*Event{
		{ID: "a", Category: CategoryMusic},
		{ID: "b", Category: CategoryFestival},
	}

	if got := FilterByCategory(events, CategoryFestival); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("category filter failed: %v", got)
	}
	if got := FilterByCategory(events, ""); len(got) != 2 {
		t.Errorf("empty category should match all, got %d", len(got))
	}
}
