package quiz

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrQuizPublished protects evaluation history: published quizzes must
	// be unpublished before deletion.
	ErrQuizPublished = errors.New("published quiz cannot be deleted")
	// ErrOpenAttemptExists surfaces the one-open-attempt-per-student-per-quiz
	// uniqueness constraint.
	ErrOpenAttemptExists = errors.New("open attempt already exists")
)

// EvaluationListOpts filters evaluation listings.
type EvaluationListOpts struct {
	ClassroomID string
	StudentID   string
	QuizID      string
	Status      string // "" | "completed" | "open"
	AIOnly      bool
	Sort        string // "created_at" (default) | "created_at desc"
	Limit       int
	Offset      int
}

// Store persists quizzes and evaluations.
type Store interface {
	PutQuiz(ctx context.Context, q Quiz) error
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	ListQuizzes(ctx context.Context, classroomID string) ([]Quiz, error)
	SetPublished(ctx context.Context, quizID string, published bool) error
	DeleteQuiz(ctx context.Context, quizID string) error

	CreateEvaluation(ctx context.Context, e Evaluation) (Evaluation, error)
	GetEvaluation(ctx context.Context, id string) (Evaluation, error)
	// OpenEvaluation returns the student's open (not completed) attempt for
	// a quiz, or ErrNotFound.
	OpenEvaluation(ctx context.Context, studentID, quizID string) (Evaluation, error)
	MarkStarted(ctx context.Context, evalID string, at time.Time) error
	// CompleteEvaluation sets answers, score, feedback and completed_at
	// together; it fails if the evaluation is already completed.
	CompleteEvaluation(ctx context.Context, evalID string, answers []string, score float64, feedback []FeedbackItem, at time.Time) error
	CompletedAttemptCount(ctx context.Context, studentID, quizID string) (int, error)
	ListEvaluations(ctx context.Context, opts EvaluationListOpts) ([]Evaluation, error)
}

// memoryStore backs tests and offline experiments.
type memoryStore struct {
	mu      sync.RWMutex
	quizzes map[string]Quiz
	evals   map[string]Evaluation
}

func NewInMemoryStore() Store {
	return &memoryStore{
		quizzes: map[string]Quiz{},
		evals:   map[string]Evaluation{},
	}
}

func (m *memoryStore) PutQuiz(_ context.Context, q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuiz(_ context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrNotFound
	}
	return q, nil
}

func (m *memoryStore) ListQuizzes(_ context.Context, classroomID string) ([]Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Quiz{}
	for _, q := range m.quizzes {
		if q.ClassroomID == classroomID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryStore) SetPublished(_ context.Context, quizID string, published bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[quizID]
	if !ok {
		return ErrNotFound
	}
	q.Published = published
	m.quizzes[quizID] = q
	return nil
}

func (m *memoryStore) DeleteQuiz(_ context.Context, quizID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[quizID]
	if !ok {
		return ErrNotFound
	}
	if q.Published {
		return ErrQuizPublished
	}
	delete(m.quizzes, quizID)
	return nil
}

func (m *memoryStore) CreateEvaluation(_ context.Context, e Evaluation) (Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.QuizID != "" {
		for _, x := range m.evals {
			if x.StudentID == e.StudentID && x.QuizID == e.QuizID && x.CompletedAt == nil {
				return Evaluation{}, ErrOpenAttemptExists
			}
		}
	}
	m.evals[e.ID] = e
	return e, nil
}

func (m *memoryStore) GetEvaluation(_ context.Context, id string) (Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.evals[id]
	if !ok {
		return Evaluation{}, ErrNotFound
	}
	return e, nil
}

func (m *memoryStore) OpenEvaluation(_ context.Context, studentID, quizID string) (Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.evals {
		if e.StudentID == studentID && e.QuizID == quizID && e.CompletedAt == nil {
			return e, nil
		}
	}
	return Evaluation{}, ErrNotFound
}

func (m *memoryStore) MarkStarted(_ context.Context, evalID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.evals[evalID]
	if !ok {
		return ErrNotFound
	}
	if e.StartedAt == nil {
		e.StartedAt = &at
		m.evals[evalID] = e
	}
	return nil
}

func (m *memoryStore) CompleteEvaluation(_ context.Context, evalID string, answers []string, score float64, feedback []FeedbackItem, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.evals[evalID]
	if !ok {
		return ErrNotFound
	}
	if e.CompletedAt != nil {
		return errors.New("evaluation already completed")
	}
	e.Answers = answers
	e.Score = &score
	e.Feedback = feedback
	e.CompletedAt = &at
	m.evals[evalID] = e
	return nil
}

func (m *memoryStore) CompletedAttemptCount(_ context.Context, studentID, quizID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.evals {
		if e.StudentID == studentID && e.QuizID == quizID && e.CompletedAt != nil {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) ListEvaluations(_ context.Context, opts EvaluationListOpts) ([]Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Evaluation{}
	for _, e := range m.evals {
		if opts.ClassroomID != "" && e.ClassroomID != opts.ClassroomID {
			continue
		}
		if opts.StudentID != "" && e.StudentID != opts.StudentID {
			continue
		}
		if opts.QuizID != "" && e.QuizID != opts.QuizID {
			continue
		}
		if opts.Status == "completed" && e.CompletedAt == nil {
			continue
		}
		if opts.Status == "open" && e.CompletedAt != nil {
			continue
		}
		if opts.AIOnly && !e.IsAIGenerated {
			continue
		}
		out = append(out, e)
	}
	desc := opts.Sort == "created_at desc"
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	out = paginate(out, opts.Offset, opts.Limit)
	return out, nil
}

func paginate(evals []Evaluation, offset, limit int) []Evaluation {
	if offset > 0 {
		if offset >= len(evals) {
			return []Evaluation{}
		}
		evals = evals[offset:]
	}
	if limit > 0 && limit < len(evals) {
		evals = evals[:limit]
	}
	return evals
}
