package quiz

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// QuizType selects the question shape and the scoring path.
type QuizType string

const (
	TypeMCQ       QuizType = "mcq"
	TypeTrueFalse QuizType = "true_false"
	TypeEssay     QuizType = "essay"
	// Mixed is accepted for scoring only; each question is routed by its
	// own shape. Generation never produces mixed sets.
	TypeMixed QuizType = "mixed"
)

// ErrUnsupportedQuizType is returned when a quiz type outside the known set
// reaches scoring or generation.
var ErrUnsupportedQuizType = errors.New("unsupported quiz type")

// ValidType reports whether t is usable for the given surface.
func ValidType(t QuizType, forScoring bool) bool {
	switch t {
	case TypeMCQ, TypeTrueFalse, TypeEssay:
		return true
	case TypeMixed:
		return forScoring
	}
	return false
}

// Question is a single item in a quiz. The populated fields depend on the
// quiz type: mcq carries options + correct_answer, true_false carries
// correct_answer only, essay carries key_points + suggested_length. The JSON
// field names are a wire contract with the generation collaborator and must
// not change.
type Question struct {
	Prompt          string   `json:"question"`
	Options         []string `json:"options,omitempty"`
	CorrectAnswer   string   `json:"correct_answer,omitempty"`
	Explanation     string   `json:"explanation,omitempty"`
	KeyPoints       []string `json:"key_points,omitempty"`
	SuggestedLength string   `json:"suggested_length,omitempty"`
}

// IsEssay reports whether the question is graded by the essay path. Essay
// questions have no canonical answer; everything else does.
func (q Question) IsEssay() bool { return q.CorrectAnswer == "" }

// Validate checks the question against the shape required by t.
func (q Question) Validate(t QuizType) error {
	if strings.TrimSpace(q.Prompt) == "" {
		return errors.New("question prompt required")
	}
	switch t {
	case TypeMCQ:
		if len(q.Options) != 4 {
			return fmt.Errorf("mcq question needs 4 options, got %d", len(q.Options))
		}
		switch q.CorrectAnswer {
		case "A", "B", "C", "D":
		default:
			return fmt.Errorf("mcq correct_answer must be A-D, got %q", q.CorrectAnswer)
		}
	case TypeTrueFalse:
		if q.CorrectAnswer != "True" && q.CorrectAnswer != "False" {
			return fmt.Errorf("true_false correct_answer must be True or False, got %q", q.CorrectAnswer)
		}
	case TypeEssay:
		if len(q.KeyPoints) == 0 {
			return errors.New("essay question needs key points")
		}
	case TypeMixed:
		if q.IsEssay() {
			return q.Validate(TypeEssay)
		}
		if len(q.Options) == 4 {
			return q.Validate(TypeMCQ)
		}
		return q.Validate(TypeTrueFalse)
	default:
		return ErrUnsupportedQuizType
	}
	return nil
}

// FeedbackItem is the per-question scoring record persisted with an
// evaluation. Objective questions fill IsCorrect/CorrectAnswer/Explanation;
// essay questions fill Score/Feedback.
type FeedbackItem struct {
	QuestionIndex int      `json:"question_index"`
	IsCorrect     *bool    `json:"is_correct,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
	Score         *float64 `json:"score,omitempty"`
	Feedback      string   `json:"feedback,omitempty"`
	UserAnswer    string   `json:"user_answer"`
}

// DefaultPassingScore applies to quizzes that don't set one, and to all
// AI-generated self-quizzes.
const DefaultPassingScore = 60.0

// Quiz is a teacher-authored question set with availability and attempt
// policy. Zero TimeLimitMinutes means untimed; zero MaxAttempts means
// unlimited.
type Quiz struct {
	ID               string     `json:"id"`
	ClassroomID      string     `json:"classroom_id"`
	TeacherID        string     `json:"teacher_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Type             QuizType   `json:"quiz_type"`
	Questions        []Question `json:"questions"`
	TimeLimitMinutes int        `json:"time_limit_minutes,omitempty"`
	PassingScore     float64    `json:"passing_score"`
	Required         bool       `json:"is_required"`
	AvailableFrom    *time.Time `json:"available_from,omitempty"`
	AvailableUntil   *time.Time `json:"available_until,omitempty"`
	Published        bool       `json:"published"`
	MaxAttempts      int        `json:"max_attempts,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Status is the lifecycle state of an evaluation, derived from its
// timestamps.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Evaluation is one student's attempt at a quiz: either an AI-generated
// self-quiz or a teacher quiz (QuizID set, IsAIGenerated false). Questions
// are a frozen copy taken when the attempt starts, so later quiz edits never
// alter an in-flight attempt. Score, Feedback and CompletedAt are set
// together, exactly once, at submission.
type Evaluation struct {
	ID            string         `json:"id"`
	StudentID     string         `json:"student_id"`
	ClassroomID   string         `json:"classroom_id"`
	MaterialID    string         `json:"material_id,omitempty"` // empty = all materials
	QuizID        string         `json:"quiz_id,omitempty"`     // empty = ad hoc AI quiz
	Type          QuizType       `json:"quiz_type"`
	Questions     []Question     `json:"questions"`
	Answers       []string       `json:"answers"`
	Score         *float64       `json:"score,omitempty"`
	Feedback      []FeedbackItem `json:"feedback,omitempty"`
	IsAIGenerated bool           `json:"is_ai_generated"`
	CreatedAt     time.Time      `json:"created_at"`
	StartedAt     *time.Time     `json:"started_at,omitempty"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
}

// Status derives the three-state lifecycle from the timestamp pair. This is
// the only place the derivation lives.
func (e *Evaluation) Status() Status {
	switch {
	case e.CompletedAt != nil:
		return StatusCompleted
	case e.StartedAt != nil:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// Passed reports whether a completed evaluation met the passing bar.
func (e *Evaluation) Passed(passingScore float64) bool {
	if e.CompletedAt == nil || e.Score == nil {
		return false
	}
	return *e.Score >= passingScore
}
