package scheduler

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/javiermolinar/notecal/internal/dateutil"
	"github.com/javiermolinar/notecal/internal/group"
)

// Monday, January 6, 2025 at 10:30
var testNow = time.Date(2025, 1, 6, 10, 30, 0, 0, time.UTC)

func testToday() time.Time {
	return dateutil.TruncateToDay(testNow)
}

func deadlineAt(days, hour int) *time.Time {
	d := testToday().AddDate(0, 0, days).Add(time.Duration(hour) * time.Hour)
	return &d
}

func newGroup(id string, deadline *time.Time, tasks ...string) group.Group {
	return group.Group{ID: id, Deadline: deadline, Tasks: tasks}
}

func numberedTasks(n int) []string {
	tasks := make([]string, n)
	for i := range tasks {
		tasks[i] = fmt.Sprintf("Task number %d", i+1)
	}
	return tasks
}

func assertEvent(t *testing.T, ev Event, id string, dayOffset, slot int) {
	t.Helper()
	if ev.ID != id {
		t.Errorf("ID = %q, want %q", ev.ID, id)
	}
	wantDay := testToday().AddDate(0, 0, dayOffset)
	if !ev.Day().Equal(wantDay) {
		t.Errorf("%s: day = %v, want %v", id, ev.Day(), wantDay)
	}
	if ev.Slot != slot {
		t.Errorf("%s: slot = %d, want %d", id, ev.Slot, slot)
	}
	wantStart, wantEnd := DefaultTemplate()[slot].On(wantDay)
	if !ev.Start.Equal(wantStart) || !ev.End.Equal(wantEnd) {
		t.Errorf("%s: got %v-%v, want %v-%v", id, ev.Start, ev.End, wantStart, wantEnd)
	}
	if ev.AllDay {
		t.Errorf("%s: AllDay must be false", id)
	}
}

func TestSchedule_TwoTasksSameDay(t *testing.T) {
	s := New(DefaultTemplate(), Options{})

	res := s.Schedule(testNow, []group.Group{
		newGroup("g1", deadlineAt(1, 0), "Write essay", "Submit form"),
	})

	if len(res.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(res.Events))
	}
	assertEvent(t, res.Events[0], "g1-0", 0, 0)
	assertEvent(t, res.Events[1], "g1-1", 0, 1)

	for _, ev := range res.Events {
		if ev.End.After(*deadlineAt(1, 0)) {
			t.Errorf("%s ends %v after deadline", ev.ID, ev.End)
		}
	}
	if res.Events[0].Title != "Write essay" {
		t.Errorf("Title = %q, want %q", res.Events[0].Title, "Write essay")
	}
}

func TestSchedule_OverflowToNextDay(t *testing.T) {
	s := New(DefaultTemplate(), Options{})

	res := s.Schedule(testNow, []group.Group{
		newGroup("g1", deadlineAt(1, 0), numberedTasks(6)...),
	})

	if len(res.Events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(res.Events))
	}
	for i := range 5 {
		assertEvent(t, res.Events[i], EventID("g1", i), 0, i)
	}
	assertEvent(t, res.Events[5], "g1-5", 1, 0)
	if len(res.Unscheduled) != 0 {
		t.Errorf("expected no unscheduled tasks, got %v", res.Unscheduled)
	}
}

func TestSchedule_DeadlineTodayPastAllWindows(t *testing.T) {
	s := New(DefaultTemplate(), Options{})

	// It is already 21:00 and the deadline was this morning; today is still tried.
	now := testToday().Add(21 * time.Hour)
	res := s.Schedule(now, []group.Group{
		newGroup("g1", deadlineAt(0, 8), numberedTasks(6)...),
	})

	if len(res.Events) != 5 {
		t.Fatalf("expected 5 events on today, got %d", len(res.Events))
	}
	for i, ev := range res.Events {
		assertEvent(t, ev, EventID("g1", i), 0, i)
	}

	if len(res.Unscheduled) != 1 {
		t.Fatalf("expected 1 unscheduled task, got %d", len(res.Unscheduled))
	}
	un := res.Unscheduled[0]
	if un.GroupID != "g1" || un.TaskIndex != 5 {
		t.Errorf("unscheduled = %+v, want g1 task 5", un)
	}
}

func TestSchedule_EarlierDeadlineWinsSlot(t *testing.T) {
	s := New(DefaultTemplate(), Options{})

	later := newGroup("later", deadlineAt(3, 0), "Read chapter")
	earlier := newGroup("earlier", deadlineAt(1, 0), "Write essay")

	res := s.Schedule(testNow, []group.Group{later, earlier})

	if len(res.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(res.Events))
	}
	assertEvent(t, res.Events[0], "earlier-0", 0, 0)
	assertEvent(t, res.Events[1], "later-0", 0, 1)
}

func TestSchedule_LaterGroupPushedToNextDay(t *testing.T) {
	s := New(DefaultTemplate(), Options{})

	earlier := newGroup("a", deadlineAt(1, 0), numberedTasks(5)...)
	later := newGroup("b", deadlineAt(2, 0), "Read chapter")

	res := s.Schedule(testNow, []group.Group{later, earlier})

	if len(res.Events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(res.Events))
	}
	assertEvent(t, res.Events[5], "b-0", 1, 0)
}

func TestSchedule_StableForEqualDeadlines(t *testing.T) {
	s := New(DefaultTemplate(), Options{})

	res := s.Schedule(testNow, []group.Group{
		newGroup("first", deadlineAt(2, 0), "One"),
		newGroup("second", deadlineAt(2, 0), "Two"),
		newGroup("third", deadlineAt(2, 0), "Three"),
	})

	want := []string{"first-0", "second-0", "third-0"}
	for i, ev := range res.Events {
		if ev.ID != want[i] {
			t.Errorf("event %d = %q, want %q", i, ev.ID, want[i])
		}
		if ev.Slot != i {
			t.Errorf("event %d slot = %d, want %d", i, ev.Slot, i)
		}
	}
}

func TestSchedule_IneligibleGroups(t *testing.T) {
	s := New(DefaultTemplate(), Options{})

	res := s.Schedule(testNow, []group.Group{
		newGroup("nodeadline", nil, "Read chapter"),
		newGroup("notasks", deadlineAt(1, 0)),
		newGroup("ok", deadlineAt(1, 0), "Write essay"),
	})

	if len(res.Events) != 1 || res.Events[0].ID != "ok-0" {
		t.Fatalf("expected only ok-0, got %+v", res.Events)
	}
	// The ineligible groups do not shift colors or slots.
	assertEvent(t, res.Events[0], "ok-0", 0, 0)
	if res.Events[0].Color != DefaultColors[0] {
		t.Errorf("Color = %q, want %q", res.Events[0].Color, DefaultColors[0])
	}

	want := []Ineligible{
		{GroupID: "nodeadline", Reason: ReasonNoDeadline},
		{GroupID: "notasks", Reason: ReasonNoTasks},
	}
	if !reflect.DeepEqual(res.Ineligible, want) {
		t.Errorf("Ineligible = %+v, want %+v", res.Ineligible, want)
	}
}

func TestSchedule_DeadlineBeforeToday(t *testing.T) {
	s := New(DefaultTemplate(), Options{})

	res := s.Schedule(testNow, []group.Group{
		newGroup("late", deadlineAt(-1, 12), "Too late"),
	})

	if len(res.Events) != 0 {
		t.Fatalf("expected no events, got %+v", res.Events)
	}
	if len(res.Unscheduled) != 1 {
		t.Errorf("expected 1 unscheduled, got %d", len(res.Unscheduled))
	}
}

func TestSchedule_StrictDeadline(t *testing.T) {
	s := New(DefaultTemplate(), Options{StrictDeadline: true})

	// Only 09:00-11:00 ends by noon.
	res := s.Schedule(testNow, []group.Group{
		newGroup("g1", deadlineAt(0, 12), "Write essay", "Submit form"),
	})

	if len(res.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(res.Events))
	}
	assertEvent(t, res.Events[0], "g1-0", 0, 0)
	if len(res.Unscheduled) != 1 || res.Unscheduled[0].TaskIndex != 1 {
		t.Errorf("Unscheduled = %+v, want task 1", res.Unscheduled)
	}
}

func TestSchedule_StrictDeadlineSkipsWithoutConsuming(t *testing.T) {
	s := New(DefaultTemplate(), Options{StrictDeadline: true})

	// The first group cannot use 11:00-13:00; the second group still can.
	res := s.Schedule(testNow, []group.Group{
		newGroup("tight", deadlineAt(0, 12), "One", "Two"),
		newGroup("loose", deadlineAt(1, 0), "Three"),
	})

	if len(res.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(res.Events))
	}
	assertEvent(t, res.Events[0], "tight-0", 0, 0)
	assertEvent(t, res.Events[1], "loose-0", 0, 1)
}

func TestSchedule_TemplateOrderIsPriority(t *testing.T) {
	tmpl := Template{
		{Start: 14 * 60, End: 16 * 60},
		{Start: 9 * 60, End: 11 * 60},
	}
	s := New(tmpl, Options{})

	res := s.Schedule(testNow, []group.Group{
		newGroup("g1", deadlineAt(1, 0), "First", "Second"),
	})

	if res.Events[0].Start.Hour() != 14 {
		t.Errorf("first task starts at %v, want 14:00", res.Events[0].Start)
	}
	if res.Events[1].Start.Hour() != 9 {
		t.Errorf("second task starts at %v, want 09:00", res.Events[1].Start)
	}
}

func TestSchedule_MonthBoundary(t *testing.T) {
	s := New(Template{{Start: 9 * 60, End: 10 * 60}}, Options{})

	now := time.Date(2025, 1, 31, 8, 0, 0, 0, time.UTC)
	deadline := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	res := s.Schedule(now, []group.Group{
		newGroup("g1", &deadline, "One", "Two", "Three", "Four"),
	})

	wantDays := []time.Time{
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC),
	}
	if len(res.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(res.Events))
	}
	for i, ev := range res.Events {
		if !ev.Day().Equal(wantDays[i]) {
			t.Errorf("event %d day = %v, want %v", i, ev.Day(), wantDays[i])
		}
	}
	if len(res.Unscheduled) != 1 {
		t.Errorf("expected 1 unscheduled, got %d", len(res.Unscheduled))
	}
}

func TestSchedule_ColorsCycleByDeadlineOrder(t *testing.T) {
	s := New(DefaultTemplate(), Options{Colors: []string{"#111111", "#222222"}})

	res := s.Schedule(testNow, []group.Group{
		newGroup("c", deadlineAt(3, 0), "Three"),
		newGroup("a", deadlineAt(1, 0), "One"),
		newGroup("b", deadlineAt(2, 0), "Two"),
	})

	want := map[string]string{"a-0": "#111111", "b-0": "#222222", "c-0": "#111111"}
	for _, ev := range res.Events {
		if ev.Color != want[ev.ID] {
			t.Errorf("%s color = %q, want %q", ev.ID, ev.Color, want[ev.ID])
		}
	}
}

func TestSchedule_TitleTruncated(t *testing.T) {
	s := New(DefaultTemplate(), Options{})

	res := s.Schedule(testNow, []group.Group{
		newGroup("g1", deadlineAt(1, 0), "Review chapter three notes"),
	})

	ev := res.Events[0]
	if ev.Title != "Review chapter..." {
		t.Errorf("Title = %q, want %q", ev.Title, "Review chapter...")
	}
	if ev.Task != "Review chapter three notes" {
		t.Errorf("Task = %q, want full text", ev.Task)
	}
}

func TestScheduleRecords(t *testing.T) {
	s := New(DefaultTemplate(), Options{})

	res := s.ScheduleRecords(testNow, []group.Record{
		{ID: "bad", Deadline: "whenever", Topics: "1. Read"},
		{ID: "", Deadline: "2025-01-07", Topics: "1. Read"},
		{ID: "none", Topics: "1. Read"},
		{ID: "ok", Deadline: "2025-01-07T18:00", Topics: "1. Write essay\n2. Submit form\n\n3. "},
	})

	if len(res.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(res.Events))
	}
	assertEvent(t, res.Events[0], "ok-0", 0, 0)
	assertEvent(t, res.Events[1], "ok-1", 0, 1)

	want := []Ineligible{
		{GroupID: "bad", Reason: ReasonInvalidDeadline},
		{GroupID: "", Reason: ReasonInvalidRecord},
		{GroupID: "none", Reason: ReasonNoDeadline},
	}
	if !reflect.DeepEqual(res.Ineligible, want) {
		t.Errorf("Ineligible = %+v, want %+v", res.Ineligible, want)
	}
}

func TestScheduleRecords_DuplicateIDs(t *testing.T) {
	s := New(DefaultTemplate(), Options{})

	res := s.ScheduleRecords(testNow, []group.Record{
		{ID: "g1", Deadline: "2025-01-08", Topics: "1. Read\n2. Write"},
		{ID: "g1 ", Deadline: "2025-01-07", Topics: "1. Review"},
		{ID: "g2", Deadline: "2025-01-08", Topics: "1. Plan"},
	})

	seen := make(map[string]int)
	for _, ev := range res.Events {
		seen[ev.ID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("event id %q emitted %d times", id, n)
		}
	}
	if len(res.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(res.Events))
	}
	assertEvent(t, res.Events[0], "g1-0", 0, 0)
	assertEvent(t, res.Events[1], "g1-1", 0, 1)
	assertEvent(t, res.Events[2], "g2-0", 0, 2)

	want := []Ineligible{{GroupID: "g1", Reason: ReasonDuplicateID}}
	if !reflect.DeepEqual(res.Ineligible, want) {
		t.Errorf("Ineligible = %+v, want %+v", res.Ineligible, want)
	}
}

func TestSchedule_DuplicateIDFirstWins(t *testing.T) {
	s := New(DefaultTemplate(), Options{})

	res := s.Schedule(testNow, []group.Group{
		newGroup("a", nil, "Unscheduled"),
		newGroup("a", deadlineAt(1, 0), "Dropped"),
		newGroup("b", deadlineAt(1, 0), "Kept"),
	})

	if len(res.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(res.Events))
	}
	assertEvent(t, res.Events[0], "b-0", 0, 0)

	want := []Ineligible{
		{GroupID: "a", Reason: ReasonNoDeadline},
		{GroupID: "a", Reason: ReasonDuplicateID},
	}
	if !reflect.DeepEqual(res.Ineligible, want) {
		t.Errorf("Ineligible = %+v, want %+v", res.Ineligible, want)
	}
}

func TestSchedule_Deterministic(t *testing.T) {
	s := New(DefaultTemplate(), Options{})
	groups := randomGroups(rand.New(rand.NewSource(7)), 12)

	first := s.Schedule(testNow, groups)
	second := s.Schedule(testNow, groups)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical input produced different output")
	}
}

func TestSchedule_Properties(t *testing.T) {
	for _, strict := range []bool{false, true} {
		t.Run(fmt.Sprintf("strict=%v", strict), func(t *testing.T) {
			s := New(DefaultTemplate(), Options{StrictDeadline: strict})
			rng := rand.New(rand.NewSource(42))

			for round := range 20 {
				groups := randomGroups(rng, 1+rng.Intn(10))
				res := s.Schedule(testNow, groups)
				checkProperties(t, round, groups, res, strict)
			}
		})
	}
}

func checkProperties(t *testing.T, round int, groups []group.Group, res *Result, strict bool) {
	t.Helper()

	deadlines := make(map[string]time.Time, len(groups))
	taskCount := 0
	for _, g := range groups {
		if g.Eligible() {
			deadlines[g.ID] = *g.Deadline
			taskCount += len(g.Tasks)
		}
	}

	type daySlot struct {
		day  time.Time
		slot int
	}
	booked := make(map[daySlot]string)
	ids := make(map[string]bool)

	for _, ev := range res.Events {
		key := daySlot{day: ev.Day(), slot: ev.Slot}
		if other, ok := booked[key]; ok {
			t.Errorf("round %d: %s and %s share %v slot %d", round, other, ev.ID, key.day, key.slot)
		}
		booked[key] = ev.ID

		if ids[ev.ID] {
			t.Errorf("round %d: duplicate id %s", round, ev.ID)
		}
		ids[ev.ID] = true

		if ev.ID != EventID(ev.GroupID, ev.TaskIndex) {
			t.Errorf("round %d: id %s does not match derivation", round, ev.ID)
		}

		deadline := deadlines[ev.GroupID]
		if strict && ev.End.After(deadline) {
			t.Errorf("round %d: %s ends %v after deadline %v", round, ev.ID, ev.End, deadline)
		}
		if ev.Day().After(deadline) {
			t.Errorf("round %d: %s on %v after deadline %v", round, ev.ID, ev.Day(), deadline)
		}
		if ev.Day().Before(testToday()) {
			t.Errorf("round %d: %s scheduled before today", round, ev.ID)
		}
	}

	if len(res.Events)+len(res.Unscheduled) != taskCount {
		t.Errorf("round %d: %d events + %d unscheduled != %d tasks",
			round, len(res.Events), len(res.Unscheduled), taskCount)
	}
}

func TestSchedule_PriorityOrdering(t *testing.T) {
	s := New(DefaultTemplate(), Options{})

	// Seven tasks for the early group, scarce slots: the later group only
	// gets what is left after the early group has been fully placed.
	early := newGroup("early", deadlineAt(2, 0), numberedTasks(7)...)
	late := newGroup("late", deadlineAt(3, 0), numberedTasks(4)...)

	res := s.Schedule(testNow, []group.Group{late, early})

	var lastEarly, firstLate time.Time
	for _, ev := range res.Events {
		switch ev.GroupID {
		case "early":
			if ev.Start.After(lastEarly) {
				lastEarly = ev.Start
			}
		case "late":
			if firstLate.IsZero() || ev.Start.Before(firstLate) {
				firstLate = ev.Start
			}
		}
	}
	if !firstLate.After(lastEarly) {
		t.Errorf("late group starts %v, before early group finishes %v", firstLate, lastEarly)
	}
}

func TestEventID(t *testing.T) {
	if got := EventID("65a1f", 3); got != "65a1f-3" {
		t.Errorf("EventID = %q, want %q", got, "65a1f-3")
	}

	seen := map[string]string{}
	pairs := []struct {
		group string
		index int
	}{
		{"a", 10}, {"a-1", 0}, {"a", 1}, {"a-", 10}, {"a-1-", 0},
	}
	for _, p := range pairs {
		id := EventID(p.group, p.index)
		key := fmt.Sprintf("%s/%d", p.group, p.index)
		if prev, ok := seen[id]; ok {
			t.Errorf("EventID collision: %s and %s both give %q", prev, key, id)
		}
		seen[id] = key
	}
}

func TestNew_DefaultsAndCopies(t *testing.T) {
	tmpl := DefaultTemplate()
	s := New(tmpl, Options{})
	tmpl[0] = Slot{Start: 0, End: 60}

	if s.Template()[0].Start != 9*60 {
		t.Error("scheduler must not alias the caller's template")
	}
	if len(s.colors) != len(DefaultColors) {
		t.Errorf("colors = %d, want default palette", len(s.colors))
	}
}

func randomGroups(rng *rand.Rand, n int) []group.Group {
	groups := make([]group.Group, n)
	for i := range groups {
		var deadline *time.Time
		if rng.Intn(6) > 0 {
			deadline = deadlineAt(rng.Intn(4), rng.Intn(24))
		}
		groups[i] = newGroup(fmt.Sprintf("g%d", i), deadline, numberedTasks(rng.Intn(7))...)
	}
	return groups
}
