// Package grading scores completed quiz attempts. Objective questions are
// graded deterministically; essay questions go through the generation
// collaborator with a local fallback.
package grading

import (
	"context"
	"fmt"

	"github.com/brightboard/brightboard-lms/internal/genai"
	"github.com/brightboard/brightboard-lms/internal/quiz"
)

// Scorer routes a quiz to the right scoring path by quiz type.
type Scorer struct {
	essay *EssayScorer
}

func NewScorer(gen genai.Generator) *Scorer {
	return &Scorer{essay: NewEssayScorer(gen)}
}

// ScoreQuiz scores the answers to a question set. Supported types: mcq,
// true_false, essay, and mixed (per-question routing by shape). The score is
// 0-100; feedback is index-aligned with the questions.
func (s *Scorer) ScoreQuiz(ctx context.Context, questions []quiz.Question, answers []string, t quiz.QuizType) (float64, []quiz.FeedbackItem, error) {
	switch t {
	case quiz.TypeMCQ, quiz.TypeTrueFalse:
		score, fb := ScoreObjective(questions, answers)
		return score, fb, nil
	case quiz.TypeEssay:
		score, fb := s.essay.Score(ctx, questions, answers)
		return score, fb, nil
	case quiz.TypeMixed:
		score, fb := s.scoreMixed(ctx, questions, answers)
		return score, fb, nil
	default:
		return 0, nil, fmt.Errorf("%w: %q", quiz.ErrUnsupportedQuizType, t)
	}
}

// scoreMixed grades each question by its own shape: questions with a
// canonical answer are objective (100 or 0 each), key-point questions take
// the essay path. The quiz score is the mean of per-question scores.
func (s *Scorer) scoreMixed(ctx context.Context, questions []quiz.Question, answers []string) (float64, []quiz.FeedbackItem) {
	feedback := make([]quiz.FeedbackItem, 0, len(questions))
	total := 0.0
	for i, q := range questions {
		answer := ""
		if i < len(answers) {
			answer = answers[i]
		}
		var (
			score float64
			item  quiz.FeedbackItem
		)
		if q.IsEssay() {
			score, item = s.essay.scoreOne(ctx, i, q, answer)
		} else {
			score, item = scoreOneObjective(i, q, answer)
		}
		total += score
		feedback = append(feedback, item)
	}
	if len(questions) == 0 {
		return 0, feedback
	}
	return total / float64(len(questions)), feedback
}
