package awards

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/brightboard/brightboard-lms/internal/quiz"
)

// fixture implements the three engine sources over in-memory data.
type fixture struct {
	evals    []quiz.Evaluation
	students []string
	titles   map[string]string
}

func (f *fixture) ListEvaluations(_ context.Context, opts quiz.EvaluationListOpts) ([]quiz.Evaluation, error) {
	out := []quiz.Evaluation{}
	for _, e := range f.evals {
		if e.ClassroomID != opts.ClassroomID || e.StudentID != opts.StudentID {
			continue
		}
		if !e.IsAIGenerated || e.CompletedAt == nil {
			continue
		}
		out = append(out, e)
	}
	// Stores return evaluations in creation order regardless of insert order.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fixture) EnrolledStudentIDs(_ context.Context, _ string) ([]string, error) {
	return f.students, nil
}

func (f *fixture) MaterialTitle(_ context.Context, id string) (string, error) {
	if t, ok := f.titles[id]; ok {
		return t, nil
	}
	return "", quiz.ErrNotFound
}

var evalSeq int

func completedEval(student, material string, score float64, at time.Time) quiz.Evaluation {
	evalSeq++
	return quiz.Evaluation{
		ID:            fmt.Sprintf("e%d", evalSeq),
		StudentID:     student,
		ClassroomID:   "c1",
		MaterialID:    material,
		Type:          quiz.TypeMCQ,
		Score:         &score,
		IsAIGenerated: true,
		CreatedAt:     at,
		CompletedAt:   &at,
	}
}

func newFixture() *fixture {
	return &fixture{titles: map[string]string{"m1": "Fractions", "m2": "Decimals"}}
}

func TestAwardTiers(t *testing.T) {
	f := newFixture()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	// m1: first attempt passes -> gold.
	f.evals = append(f.evals, completedEval("alice", "m1", 95, base))
	// m2: passes on attempt 3 -> silver.
	f.evals = append(f.evals,
		completedEval("alice", "m2", 50, base.Add(1*time.Minute)),
		completedEval("alice", "m2", 79.9, base.Add(2*time.Minute)),
		completedEval("alice", "m2", 80, base.Add(3*time.Minute)),
	)
	// all-materials group: passes on attempt 4 -> bronze.
	f.evals = append(f.evals,
		completedEval("alice", "", 10, base.Add(4*time.Minute)),
		completedEval("alice", "", 20, base.Add(5*time.Minute)),
		completedEval("alice", "", 30, base.Add(6*time.Minute)),
		completedEval("alice", "", 99, base.Add(7*time.Minute)),
	)

	engine := NewEngine(f, f, f)
	awards, err := engine.ForStudent(context.Background(), "c1", "alice")
	if err != nil {
		t.Fatalf("for student: %v", err)
	}

	if a := awards["m1"]; a.Tier != TierGold || a.Attempt != 1 || a.Score != 95 {
		t.Fatalf("m1 award = %+v, want gold on attempt 1", a)
	}
	if a := awards["m2"]; a.Tier != TierSilver || a.Attempt != 3 {
		t.Fatalf("m2 award = %+v, want silver on attempt 3", a)
	}
	if a := awards[""]; a.Tier != TierBronze || a.Attempt != 4 {
		t.Fatalf("all-materials award = %+v, want bronze on attempt 4", a)
	}
	if awards["m1"].MaterialTitle != "Fractions" || awards[""].MaterialTitle != "All Materials" {
		t.Fatalf("material titles wrong: %+v", awards)
	}
}

func TestNoAwardWithoutPassingScore(t *testing.T) {
	f := newFixture()
	base := time.Now().UTC()
	f.evals = append(f.evals,
		completedEval("alice", "m1", 79, base),
		completedEval("alice", "m1", 60, base.Add(time.Minute)),
	)

	engine := NewEngine(f, f, f)
	awards, err := engine.ForStudent(context.Background(), "c1", "alice")
	if err != nil {
		t.Fatalf("for student: %v", err)
	}
	if len(awards) != 0 {
		t.Fatalf("awards = %+v, want none below the 80 bar", awards)
	}
}

func TestAwardFixedByFirstPassingAttempt(t *testing.T) {
	f := newFixture()
	base := time.Now().UTC()
	// Passes on attempt 2, then scores higher later; the silver from attempt
	// 2 stands with its qualifying score.
	f.evals = append(f.evals,
		completedEval("alice", "m1", 40, base),
		completedEval("alice", "m1", 85, base.Add(time.Minute)),
		completedEval("alice", "m1", 100, base.Add(2*time.Minute)),
	)

	engine := NewEngine(f, f, f)
	awards, err := engine.ForStudent(context.Background(), "c1", "alice")
	if err != nil {
		t.Fatalf("for student: %v", err)
	}
	if a := awards["m1"]; a.Tier != TierSilver || a.Attempt != 2 || a.Score != 85 {
		t.Fatalf("award = %+v, want silver fixed at attempt 2 score 85", a)
	}
}

func TestStarTotal(t *testing.T) {
	awards := map[string]Award{
		"m1": {Tier: TierGold},
		"m2": {Tier: TierSilver},
		"":   {Tier: TierBronze},
	}
	if got := StarTotal(awards); got != 6 {
		t.Fatalf("star total = %d, want 6", got)
	}
	if StarTotal(nil) != 0 {
		t.Fatalf("empty award map must total 0")
	}
}

func TestStarRankingsCompetitionScheme(t *testing.T) {
	f := newFixture()
	// Roster and evaluation order are deliberately scrambled; rankings depend
	// only on the totals.
	f.students = []string{"dee", "ann", "cal", "ben"}
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	gold := func(student, material string, offset int) quiz.Evaluation {
		return completedEval(student, material, 90, base.Add(time.Duration(offset)*time.Minute))
	}
	// ann: 3 golds (9 stars). ben: 3 golds (9). cal: 2 golds (6). dee: 1 gold (3).
	f.evals = append(f.evals,
		gold("ben", "m1", 3), gold("ann", "m1", 0), gold("cal", "m1", 6),
		gold("dee", "m1", 8), gold("ann", "m2", 1), gold("ben", "m2", 4),
		gold("cal", "m2", 7), gold("ben", "", 5), gold("ann", "", 2),
	)

	engine := NewEngine(f, f, f)
	rankings, count, err := engine.StarRankings(context.Background(), "c1")
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	if count != 4 {
		t.Fatalf("student count = %d, want 4", count)
	}

	want := map[string]Ranking{
		"ann": {Total: 9, Rank: 1},
		"ben": {Total: 9, Rank: 1},
		"cal": {Total: 6, Rank: 3},
		"dee": {Total: 3, Rank: 4},
	}
	for id, w := range want {
		if got := rankings[id]; got != w {
			t.Fatalf("%s: got %+v, want %+v", id, got, w)
		}
	}
}

func TestGoldRankings(t *testing.T) {
	f := newFixture()
	f.students = []string{"ann", "ben"}
	base := time.Now().UTC()

	// ann: one gold. ben: two silvers (more stars than a single gold would
	// not matter here; gold ranking counts golds only).
	f.evals = append(f.evals,
		completedEval("ann", "m1", 90, base),
		completedEval("ben", "m1", 40, base.Add(time.Minute)),
		completedEval("ben", "m1", 90, base.Add(2*time.Minute)),
		completedEval("ben", "m2", 40, base.Add(3*time.Minute)),
		completedEval("ben", "m2", 90, base.Add(4*time.Minute)),
	)

	engine := NewEngine(f, f, f)
	rankings, _, err := engine.GoldRankings(context.Background(), "c1")
	if err != nil {
		t.Fatalf("gold rankings: %v", err)
	}
	if rankings["ann"].Rank != 1 || rankings["ann"].Total != 1 {
		t.Fatalf("ann = %+v, want 1 gold at rank 1", rankings["ann"])
	}
	if rankings["ben"].Total != 0 || rankings["ben"].Rank != 2 {
		t.Fatalf("ben = %+v, want 0 golds at rank 2", rankings["ben"])
	}
}
