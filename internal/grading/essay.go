package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/brightboard/brightboard-lms/internal/genai"
	"github.com/brightboard/brightboard-lms/internal/quiz"
)

// Phrases that count as "no answer" regardless of case.
var noAnswerPhrases = map[string]struct{}{
	"i dont know":  {},
	"i don't know": {},
	"no idea":      {},
	"not sure":     {},
	"unknown":      {},
}

func isNoAnswer(answer string) bool {
	s := strings.ToLower(strings.TrimSpace(answer))
	if s == "" {
		return true
	}
	_, ok := noAnswerPhrases[s]
	return ok
}

const essaySystemPrompt = "You are a strict grader for a classroom learning app. " +
	"Judge answers only against the question's key points, not general knowledge."

// EssayScorer grades essay answers through the generation collaborator, with
// a deterministic local fallback when the collaborator fails or returns an
// unusable payload. The fallback deliberately swallows the underlying error:
// availability over fidelity.
type EssayScorer struct {
	gen genai.Generator
}

func NewEssayScorer(gen genai.Generator) *EssayScorer { return &EssayScorer{gen: gen} }

// Score grades each answer and returns the arithmetic mean across all
// questions (0 if there are none).
func (s *EssayScorer) Score(ctx context.Context, questions []quiz.Question, answers []string) (float64, []quiz.FeedbackItem) {
	feedback := make([]quiz.FeedbackItem, 0, len(questions))
	total := 0.0
	for i, q := range questions {
		answer := ""
		if i < len(answers) {
			answer = answers[i]
		}
		score, item := s.scoreOne(ctx, i, q, answer)
		total += score
		feedback = append(feedback, item)
	}
	if len(questions) == 0 {
		return 0, feedback
	}
	return total / float64(len(questions)), feedback
}

func (s *EssayScorer) scoreOne(ctx context.Context, index int, q quiz.Question, answer string) (float64, quiz.FeedbackItem) {
	item := quiz.FeedbackItem{QuestionIndex: index, UserAnswer: answer}

	// Empty or "no answer" answers never reach the collaborator.
	if isNoAnswer(answer) {
		zero := 0.0
		item.Score = &zero
		item.Feedback = "No valid answer provided."
		return 0, item
	}

	score, aiFeedback, err := s.gradeWithAI(ctx, q, answer)
	if err != nil {
		log.Printf("essay grading fallback: %v", err)
		score, aiFeedback = fallbackScore(answer)
	}
	item.Score = &score
	item.Feedback = aiFeedback
	return score, item
}

type essayGrade struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

func (s *EssayScorer) gradeWithAI(ctx context.Context, q quiz.Question, answer string) (float64, string, error) {
	prompt := fmt.Sprintf(`Score this essay answer on a scale of 0-100 based on:
1. Relevance to the question
2. Depth of understanding
3. Use of key concepts
4. Quality of explanation

Judge strictly against the provided key points, not outside knowledge.

Question: %s
Key points that should be covered: %s

Student's answer: %s

Provide your response in this JSON format:
{
    "score": <number 0-100>,
    "feedback": "Detailed feedback explaining the score and suggestions for improvement"
}`, q.Prompt, strings.Join(q.KeyPoints, ", "), answer)

	raw, err := s.gen.GenerateText(ctx, essaySystemPrompt, prompt)
	if err != nil {
		return 0, "", err
	}
	payload, err := genai.ExtractJSONObject(raw)
	if err != nil {
		return 0, "", err
	}
	var grade essayGrade
	if err := json.Unmarshal([]byte(payload), &grade); err != nil {
		return 0, "", err
	}
	if grade.Feedback == "" {
		grade.Feedback = "Unable to generate feedback."
	}
	return clamp(grade.Score, 0, 100), grade.Feedback, nil
}

// fallbackScore is the deterministic heuristic used when the collaborator is
// unavailable or its payload is malformed. Thresholds count characters, not
// bytes, so non-ASCII answers land in the same tier as ASCII ones.
func fallbackScore(answer string) (float64, string) {
	trimmed := strings.TrimSpace(answer)
	length := utf8.RuneCountInString(trimmed)
	switch {
	case length < 10 || isNoAnswer(trimmed):
		return 0, "Answer is incomplete or invalid. Please provide a substantive response."
	case length > 100:
		return 70, "Answer received. Good effort; consider tightening your analysis around the key points."
	default:
		return 30, "Answer received. Please elaborate with more detail and use of key concepts."
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
