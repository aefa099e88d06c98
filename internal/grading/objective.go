package grading

import "github.com/brightboard/brightboard-lms/internal/quiz"

// ScoreObjective grades mcq and true/false answers by exact, case-sensitive
// string equality against the canonical answer ("a" does not equal "A").
// The score is 100 * correct / len(questions); an empty question set scores
// 0. Pure and deterministic.
func ScoreObjective(questions []quiz.Question, answers []string) (float64, []quiz.FeedbackItem) {
	correct := 0
	feedback := make([]quiz.FeedbackItem, 0, len(questions))
	for i, q := range questions {
		answer := ""
		if i < len(answers) {
			answer = answers[i]
		}
		score, item := scoreOneObjective(i, q, answer)
		if score > 0 {
			correct++
		}
		feedback = append(feedback, item)
	}
	if len(questions) == 0 {
		return 0, feedback
	}
	return float64(correct) / float64(len(questions)) * 100, feedback
}

func scoreOneObjective(index int, q quiz.Question, answer string) (float64, quiz.FeedbackItem) {
	isCorrect := answer == q.CorrectAnswer
	item := quiz.FeedbackItem{
		QuestionIndex: index,
		IsCorrect:     &isCorrect,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		UserAnswer:    answer,
	}
	if isCorrect {
		return 100, item
	}
	return 0, item
}
