package quiz

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRoster struct {
	enrolled map[string]bool // classroomID+"/"+studentID
}

func (f *fakeRoster) IsEnrolled(_ context.Context, classroomID, studentID string) (bool, error) {
	return f.enrolled[classroomID+"/"+studentID], nil
}

type fakeScorer struct {
	score float64
	err   error
	calls int
}

func (f *fakeScorer) ScoreQuiz(_ context.Context, questions []Question, answers []string, _ QuizType) (float64, []FeedbackItem, error) {
	f.calls++
	if f.err != nil {
		return 0, nil, f.err
	}
	fb := make([]FeedbackItem, len(questions))
	for i := range fb {
		fb[i] = FeedbackItem{QuestionIndex: i, UserAnswer: answers[i]}
	}
	return f.score, fb, nil
}

func newTestService(t *testing.T) (*Service, Store, *fakeScorer, *time.Time) {
	t.Helper()
	store := NewInMemoryStore()
	scorer := &fakeScorer{score: 85}
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	roster := &fakeRoster{enrolled: map[string]bool{"c1/alice": true}}
	svc := NewService(store, roster, scorer, func() time.Time { return now })
	return svc, store, scorer, &now
}

func seedQuiz(t *testing.T, store Store, q Quiz) Quiz {
	t.Helper()
	if q.ID == "" {
		q.ID = "q1"
	}
	if q.ClassroomID == "" {
		q.ClassroomID = "c1"
	}
	if q.Type == "" {
		q.Type = TypeMCQ
	}
	if q.Questions == nil {
		q.Questions = []Question{{
			Prompt:        "2+2?",
			Options:       []string{"A) 3", "B) 4", "C) 5", "D) 6"},
			CorrectAnswer: "B",
		}}
	}
	if err := store.PutQuiz(context.Background(), q); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	return q
}

func TestStartAttemptGuards(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()

	seedQuiz(t, store, Quiz{Published: true})

	if _, err := svc.StartQuizAttempt(ctx, "q1", "bob"); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("err = %v, want ErrNotEnrolled", err)
	}

	// Unpublished gates availability even inside the window.
	seedQuiz(t, store, Quiz{ID: "q2", Published: false})
	if _, err := svc.StartQuizAttempt(ctx, "q2", "alice"); !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("err = %v, want ErrNotAvailable", err)
	}

	if _, err := svc.StartQuizAttempt(ctx, "missing", "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStartAttemptWindowGuard(t *testing.T) {
	svc, store, _, now := newTestService(t)
	ctx := context.Background()

	future := now.Add(time.Hour)
	seedQuiz(t, store, Quiz{Published: true, AvailableFrom: &future})
	if _, err := svc.StartQuizAttempt(ctx, "q1", "alice"); !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("err = %v, want ErrNotAvailable before window", err)
	}

	past := now.Add(-time.Hour)
	seedQuiz(t, store, Quiz{ID: "q2", Published: true, AvailableUntil: &past})
	if _, err := svc.StartQuizAttempt(ctx, "q2", "alice"); !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("err = %v, want ErrNotAvailable after window", err)
	}
}

func TestStartAttemptCreatesAndResumes(t *testing.T) {
	svc, store, _, now := newTestService(t)
	ctx := context.Background()
	seedQuiz(t, store, Quiz{Published: true})

	e1, err := svc.StartQuizAttempt(ctx, "q1", "alice")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if e1.Status() != StatusInProgress {
		t.Fatalf("status = %s, want in_progress", e1.Status())
	}
	if e1.StartedAt == nil || !e1.StartedAt.Equal(*now) {
		t.Fatalf("started_at not stamped with service clock")
	}

	// Second open resumes the same attempt, no duplicate.
	e2, err := svc.StartQuizAttempt(ctx, "q1", "alice")
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if e2.ID != e1.ID {
		t.Fatalf("resume created a new attempt: %s != %s", e2.ID, e1.ID)
	}
}

func TestQuestionFreezing(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	q := seedQuiz(t, store, Quiz{Published: true})

	e, err := svc.StartQuizAttempt(ctx, "q1", "alice")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// Edit the quiz while the attempt is open.
	q.Questions = []Question{{
		Prompt:        "3+3?",
		Options:       []string{"A) 5", "B) 6", "C) 7", "D) 8"},
		CorrectAnswer: "B",
	}}
	if err := store.PutQuiz(ctx, q); err != nil {
		t.Fatalf("edit quiz: %v", err)
	}

	got, err := store.GetEvaluation(ctx, e.ID)
	if err != nil {
		t.Fatalf("get evaluation: %v", err)
	}
	if got.Questions[0].Prompt != "2+2?" {
		t.Fatalf("in-flight attempt saw quiz edit: %q", got.Questions[0].Prompt)
	}
}

func TestMaxAttemptsEnforced(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	seedQuiz(t, store, Quiz{Published: true, MaxAttempts: 1})

	e, err := svc.StartQuizAttempt(ctx, "q1", "alice")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.SubmitAttempt(ctx, e.ID, "alice", []string{"B"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.StartQuizAttempt(ctx, "q1", "alice"); !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("err = %v, want ErrAttemptsExhausted", err)
	}
}

func TestOpenAttemptDoesNotCountAgainstBudget(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	seedQuiz(t, store, Quiz{Published: true, MaxAttempts: 1})

	if _, err := svc.StartQuizAttempt(ctx, "q1", "alice"); err != nil {
		t.Fatalf("start: %v", err)
	}
	// An open attempt is resumable, not a consumed try.
	if _, err := svc.StartQuizAttempt(ctx, "q1", "alice"); err != nil {
		t.Fatalf("resume with open attempt: %v", err)
	}
}

func TestSubmitAttempt(t *testing.T) {
	svc, store, scorer, _ := newTestService(t)
	ctx := context.Background()
	seedQuiz(t, store, Quiz{Published: true})

	e, err := svc.StartQuizAttempt(ctx, "q1", "alice")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := svc.SubmitAttempt(ctx, e.ID, "alice", []string{"B", "C"}); !errors.Is(err, ErrAnswerCount) {
		t.Fatalf("err = %v, want ErrAnswerCount", err)
	}

	done, err := svc.SubmitAttempt(ctx, e.ID, "alice", []string{"B"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if done.Status() != StatusCompleted || done.Score == nil || *done.Score != 85 {
		t.Fatalf("completed attempt not persisted atomically: %+v", done)
	}
	if len(done.Feedback) != 1 {
		t.Fatalf("feedback items = %d, want 1", len(done.Feedback))
	}

	if _, err := svc.SubmitAttempt(ctx, e.ID, "alice", []string{"B"}); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("err = %v, want ErrAlreadyCompleted", err)
	}
	if scorer.calls != 1 {
		t.Fatalf("scorer calls = %d, want 1 (rejected submits must not score)", scorer.calls)
	}
}

func TestScoringFailureLeavesAttemptResumable(t *testing.T) {
	svc, store, scorer, _ := newTestService(t)
	ctx := context.Background()
	seedQuiz(t, store, Quiz{Published: true})

	e, err := svc.StartQuizAttempt(ctx, "q1", "alice")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	scorer.err = errors.New("model unavailable")
	if _, err := svc.SubmitAttempt(ctx, e.ID, "alice", []string{"B"}); err == nil {
		t.Fatalf("expected scoring error to surface")
	}

	got, err := store.GetEvaluation(ctx, e.ID)
	if err != nil {
		t.Fatalf("get evaluation: %v", err)
	}
	if got.Status() != StatusInProgress || got.Score != nil || got.CompletedAt != nil {
		t.Fatalf("failed submit must leave attempt open: %+v", got)
	}

	scorer.err = nil
	if _, err := svc.SubmitAttempt(ctx, e.ID, "alice", []string{"B"}); err != nil {
		t.Fatalf("resubmit after failure: %v", err)
	}
}

func TestSubmitOtherStudentsAttempt(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	seedQuiz(t, store, Quiz{Published: true})

	e, err := svc.StartQuizAttempt(ctx, "q1", "alice")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.SubmitAttempt(ctx, e.ID, "mallory", []string{"B"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for foreign attempt", err)
	}
}

func TestUpdateQuizRejectsEmptyQuestions(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	q := seedQuiz(t, store, Quiz{})

	edit := q
	edit.Questions = []Question{}
	if _, err := svc.UpdateQuiz(ctx, edit); err == nil {
		t.Fatalf("edit with no questions must be rejected")
	}

	kept, err := store.GetQuiz(ctx, q.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(kept.Questions) != 1 {
		t.Fatalf("rejected edit must not touch the stored quiz: %+v", kept)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	base := Quiz{
		ClassroomID: "c1",
		TeacherID:   "t1",
		Title:       "Algebra check",
		Type:        TypeMCQ,
		Questions: []Question{{
			Prompt:        "2+2?",
			Options:       []string{"A) 3", "B) 4", "C) 5", "D) 6"},
			CorrectAnswer: "B",
		}},
	}

	q, err := svc.CreateQuiz(ctx, base)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.Published {
		t.Fatalf("new quizzes must start unpublished")
	}
	if q.PassingScore != DefaultPassingScore {
		t.Fatalf("passing score default = %v, want %v", q.PassingScore, DefaultPassingScore)
	}

	bad := base
	from := time.Now()
	until := from.Add(-time.Hour)
	bad.AvailableFrom, bad.AvailableUntil = &from, &until
	if _, err := svc.CreateQuiz(ctx, bad); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("err = %v, want ErrInvalidWindow", err)
	}

	bad = base
	bad.Type = QuizType("oral")
	if _, err := svc.CreateQuiz(ctx, bad); !errors.Is(err, ErrUnsupportedQuizType) {
		t.Fatalf("err = %v, want ErrUnsupportedQuizType", err)
	}

	bad = base
	bad.Questions = []Question{{Prompt: "2+2?", Options: []string{"A) 3"}, CorrectAnswer: "B"}}
	if _, err := svc.CreateQuiz(ctx, bad); err == nil {
		t.Fatalf("expected validation error for malformed mcq question")
	}
}

func TestStartAIQuiz(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	questions := []Question{{Prompt: "Explain osmosis", KeyPoints: []string{"diffusion", "membrane"}}}
	e, err := svc.StartAIQuiz(ctx, "c1", "alice", "m1", TypeEssay, questions)
	if err != nil {
		t.Fatalf("start ai quiz: %v", err)
	}
	if !e.IsAIGenerated || e.QuizID != "" || e.MaterialID != "m1" {
		t.Fatalf("unexpected evaluation shape: %+v", e)
	}
	if e.Status() != StatusInProgress {
		t.Fatalf("ai quiz starts in progress, got %s", e.Status())
	}

	if _, err := svc.StartAIQuiz(ctx, "c1", "bob", "", TypeEssay, questions); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("err = %v, want ErrNotEnrolled", err)
	}
}

func TestOneOpenAttemptPerQuiz(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	now := time.Now()

	_, err := store.CreateEvaluation(ctx, Evaluation{ID: "e1", StudentID: "alice", QuizID: "q1", StartedAt: &now})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err = store.CreateEvaluation(ctx, Evaluation{ID: "e2", StudentID: "alice", QuizID: "q1", StartedAt: &now})
	if !errors.Is(err, ErrOpenAttemptExists) {
		t.Fatalf("err = %v, want ErrOpenAttemptExists", err)
	}

	// Ad hoc AI quizzes (no quiz id) are exempt from the constraint.
	if _, err := store.CreateEvaluation(ctx, Evaluation{ID: "e3", StudentID: "alice", StartedAt: &now}); err != nil {
		t.Fatalf("ai eval create: %v", err)
	}
	if _, err := store.CreateEvaluation(ctx, Evaluation{ID: "e4", StudentID: "alice", StartedAt: &now}); err != nil {
		t.Fatalf("second ai eval create: %v", err)
	}
}
