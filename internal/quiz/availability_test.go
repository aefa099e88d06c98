package quiz

import (
	"testing"
	"time"
)

func tp(t time.Time) *time.Time { return &t }

func TestIsAvailableWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	from := now.Add(-time.Hour)
	until := now.Add(time.Hour)

	cases := []struct {
		name string
		q    Quiz
		at   time.Time
		want bool
	}{
		{"no bounds", Quiz{Published: true}, now, true},
		{"inside window", Quiz{Published: true, AvailableFrom: tp(from), AvailableUntil: tp(until)}, now, true},
		{"before from", Quiz{Published: true, AvailableFrom: tp(from)}, from.Add(-time.Second), false},
		{"at from (inclusive)", Quiz{Published: true, AvailableFrom: tp(from)}, from, true},
		{"at until (inclusive)", Quiz{Published: true, AvailableUntil: tp(until)}, until, true},
		{"after until", Quiz{Published: true, AvailableUntil: tp(until)}, until.Add(time.Second), false},
		{"only from, far future now", Quiz{Published: true, AvailableFrom: tp(from)}, now.Add(1000 * time.Hour), true},
		{"unpublished inside window", Quiz{Published: false, AvailableFrom: tp(from), AvailableUntil: tp(until)}, now, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.q.IsAvailable(tc.at); got != tc.want {
				t.Fatalf("IsAvailable = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUpcomingAndExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	q := Quiz{
		Published:      true,
		AvailableFrom:  tp(now.Add(time.Hour)),
		AvailableUntil: tp(now.Add(2 * time.Hour)),
	}
	if !q.IsUpcoming(now) {
		t.Fatalf("expected upcoming before window opens")
	}
	if q.IsExpired(now) {
		t.Fatalf("not expired before window opens")
	}
	late := now.Add(3 * time.Hour)
	if q.IsUpcoming(late) || !q.IsExpired(late) {
		t.Fatalf("expected expired after window closes")
	}

	// Unpublished quizzes report none of the states.
	q.Published = false
	if q.IsUpcoming(now) || q.IsExpired(late) || q.IsAvailable(now.Add(90*time.Minute)) {
		t.Fatalf("unpublished quiz must not report any window state")
	}
}

func TestValidateWindow(t *testing.T) {
	now := time.Now()
	if err := ValidateWindow(tp(now), tp(now.Add(-time.Minute))); err == nil {
		t.Fatalf("expected error for inverted window")
	}
	if err := ValidateWindow(tp(now), tp(now)); err != nil {
		t.Fatalf("equal bounds are a valid window: %v", err)
	}
	if err := ValidateWindow(nil, tp(now)); err != nil {
		t.Fatalf("open-ended window: %v", err)
	}
}

func TestEvaluationStatus(t *testing.T) {
	now := time.Now()
	e := Evaluation{}
	if e.Status() != StatusNotStarted {
		t.Fatalf("status = %s, want %s", e.Status(), StatusNotStarted)
	}
	e.StartedAt = &now
	if e.Status() != StatusInProgress {
		t.Fatalf("status = %s, want %s", e.Status(), StatusInProgress)
	}
	e.CompletedAt = &now
	if e.Status() != StatusCompleted {
		t.Fatalf("status = %s, want %s", e.Status(), StatusCompleted)
	}
}

func TestPassed(t *testing.T) {
	now := time.Now()
	score := 60.0
	e := Evaluation{Score: &score, CompletedAt: &now}
	if !e.Passed(60) {
		t.Fatalf("score equal to bar should pass")
	}
	if e.Passed(60.1) {
		t.Fatalf("score below bar should not pass")
	}
	open := Evaluation{Score: &score}
	if open.Passed(10) {
		t.Fatalf("open evaluation never passes")
	}
}
