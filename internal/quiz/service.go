package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotEnrolled       = errors.New("student not enrolled in classroom")
	ErrNotAvailable      = errors.New("quiz is not available")
	ErrAttemptsExhausted = errors.New("maximum attempts reached")
	ErrAlreadyCompleted  = errors.New("evaluation already completed")
	// ErrAnswerCount rejects submissions whose answer list does not line up
	// with the frozen question set.
	ErrAnswerCount = errors.New("answer count does not match question count")
)

// Roster answers enrollment checks. Satisfied by the classroom store.
type Roster interface {
	IsEnrolled(ctx context.Context, classroomID, studentID string) (bool, error)
}

// Scorer grades a completed answer set. Satisfied by the grading package.
type Scorer interface {
	ScoreQuiz(ctx context.Context, questions []Question, answers []string, t QuizType) (float64, []FeedbackItem, error)
}

// Service is the evaluation lifecycle: authoring guards, attempt admission,
// question freezing, and the single completion transition.
type Service struct {
	store  Store
	roster Roster
	scorer Scorer
	now    func() time.Time
}

func NewService(store Store, roster Roster, scorer Scorer, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, roster: roster, scorer: scorer, now: now}
}

// CreateQuiz validates and persists a new teacher quiz. Quizzes are created
// unpublished.
func (s *Service) CreateQuiz(ctx context.Context, q Quiz) (Quiz, error) {
	// Teachers may author mixed quizzes; each question validates by shape.
	if !ValidType(q.Type, true) {
		return Quiz{}, fmt.Errorf("%w: %q", ErrUnsupportedQuizType, q.Type)
	}
	if err := ValidateWindow(q.AvailableFrom, q.AvailableUntil); err != nil {
		return Quiz{}, err
	}
	if len(q.Questions) == 0 {
		return Quiz{}, errors.New("quiz needs at least one question")
	}
	for i, question := range q.Questions {
		if err := question.Validate(q.Type); err != nil {
			return Quiz{}, fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.PassingScore <= 0 {
		q.PassingScore = DefaultPassingScore
	}
	q.Published = false
	q.CreatedAt = s.now().UTC()
	if err := s.store.PutQuiz(ctx, q); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

// UpdateQuiz re-validates and saves edits to an existing quiz. Open attempts
// keep their frozen question copies, so edits never reach them.
func (s *Service) UpdateQuiz(ctx context.Context, q Quiz) (Quiz, error) {
	cur, err := s.store.GetQuiz(ctx, q.ID)
	if err != nil {
		return Quiz{}, err
	}
	if err := ValidateWindow(q.AvailableFrom, q.AvailableUntil); err != nil {
		return Quiz{}, err
	}
	if len(q.Questions) == 0 {
		return Quiz{}, errors.New("quiz needs at least one question")
	}
	for i, question := range q.Questions {
		if err := question.Validate(q.Type); err != nil {
			return Quiz{}, fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	q.Published = cur.Published
	q.CreatedAt = cur.CreatedAt
	if err := s.store.PutQuiz(ctx, q); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

// StartQuizAttempt admits a student into a teacher quiz. An existing open
// attempt is resumed; otherwise a new evaluation is created with a frozen
// copy of the quiz questions. Guards run in order: enrollment, availability,
// attempt budget.
func (s *Service) StartQuizAttempt(ctx context.Context, quizID, studentID string) (Evaluation, error) {
	q, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return Evaluation{}, err
	}
	enrolled, err := s.roster.IsEnrolled(ctx, q.ClassroomID, studentID)
	if err != nil {
		return Evaluation{}, err
	}
	if !enrolled {
		return Evaluation{}, ErrNotEnrolled
	}
	now := s.now().UTC()
	if !q.IsAvailable(now) {
		return Evaluation{}, ErrNotAvailable
	}
	if q.MaxAttempts > 0 {
		n, err := s.store.CompletedAttemptCount(ctx, studentID, quizID)
		if err != nil {
			return Evaluation{}, err
		}
		if n >= q.MaxAttempts {
			return Evaluation{}, ErrAttemptsExhausted
		}
	}

	if open, err := s.store.OpenEvaluation(ctx, studentID, quizID); err == nil {
		if open.StartedAt == nil {
			if err := s.store.MarkStarted(ctx, open.ID, now); err != nil {
				return Evaluation{}, err
			}
			open.StartedAt = &now
		}
		return open, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Evaluation{}, err
	}

	e := Evaluation{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		ClassroomID: q.ClassroomID,
		QuizID:      q.ID,
		Type:        q.Type,
		Questions:   append([]Question(nil), q.Questions...),
		Answers:     []string{},
		CreatedAt:   now,
		StartedAt:   &now,
	}
	created, err := s.store.CreateEvaluation(ctx, e)
	if errors.Is(err, ErrOpenAttemptExists) {
		// Lost a start race; the winner's attempt is the one to resume.
		return s.store.OpenEvaluation(ctx, studentID, quizID)
	}
	if err != nil {
		return Evaluation{}, err
	}
	return created, nil
}

// StartAIQuiz records a generated self-quiz as an in-progress evaluation.
// MaterialID empty means the quiz spans all classroom materials.
func (s *Service) StartAIQuiz(ctx context.Context, classroomID, studentID, materialID string, t QuizType, questions []Question) (Evaluation, error) {
	if !ValidType(t, false) {
		return Evaluation{}, fmt.Errorf("%w: %q", ErrUnsupportedQuizType, t)
	}
	enrolled, err := s.roster.IsEnrolled(ctx, classroomID, studentID)
	if err != nil {
		return Evaluation{}, err
	}
	if !enrolled {
		return Evaluation{}, ErrNotEnrolled
	}
	now := s.now().UTC()
	e := Evaluation{
		ID:            uuid.NewString(),
		StudentID:     studentID,
		ClassroomID:   classroomID,
		MaterialID:    materialID,
		Type:          t,
		Questions:     questions,
		Answers:       []string{},
		IsAIGenerated: true,
		CreatedAt:     now,
		StartedAt:     &now,
	}
	return s.store.CreateEvaluation(ctx, e)
}

// SubmitAttempt scores the answers and completes the evaluation. Scoring
// failures leave the attempt open and resumable; nothing is persisted until
// the single CompleteEvaluation write.
func (s *Service) SubmitAttempt(ctx context.Context, evalID, studentID string, answers []string) (Evaluation, error) {
	e, err := s.store.GetEvaluation(ctx, evalID)
	if err != nil {
		return Evaluation{}, err
	}
	if e.StudentID != studentID {
		return Evaluation{}, ErrNotFound
	}
	if e.CompletedAt != nil {
		return Evaluation{}, ErrAlreadyCompleted
	}
	if len(answers) != len(e.Questions) {
		return Evaluation{}, fmt.Errorf("%w: %d answers for %d questions",
			ErrAnswerCount, len(answers), len(e.Questions))
	}
	score, feedback, err := s.scorer.ScoreQuiz(ctx, e.Questions, answers, e.Type)
	if err != nil {
		return Evaluation{}, err
	}
	if err := s.store.CompleteEvaluation(ctx, e.ID, answers, score, feedback, s.now().UTC()); err != nil {
		return Evaluation{}, err
	}
	return s.store.GetEvaluation(ctx, e.ID)
}

// PassingScore resolves the bar an evaluation is judged against: the quiz's
// own passing score for teacher quizzes, the default for AI self-quizzes.
func (s *Service) PassingScore(ctx context.Context, e Evaluation) (float64, error) {
	if e.QuizID == "" {
		return DefaultPassingScore, nil
	}
	q, err := s.store.GetQuiz(ctx, e.QuizID)
	if err != nil {
		return 0, err
	}
	if q.PassingScore <= 0 {
		return DefaultPassingScore, nil
	}
	return q.PassingScore, nil
}
