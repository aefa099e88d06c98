package grading

import (
	"testing"

	"github.com/brightboard/brightboard-lms/internal/quiz"
)

func mcq(correct string) quiz.Question {
	return quiz.Question{
		Prompt:        "pick one",
		Options:       []string{"A) a", "B) b", "C) c", "D) d"},
		CorrectAnswer: correct,
		Explanation:   "because",
	}
}

func TestScoreObjective(t *testing.T) {
	questions := []quiz.Question{mcq("A"), mcq("B"), mcq("C"), mcq("D")}

	score, fb := ScoreObjective(questions, []string{"A", "B", "X", "D"})
	if score != 75 {
		t.Fatalf("score = %v, want 75", score)
	}
	if len(fb) != 4 {
		t.Fatalf("feedback items = %d, want 4", len(fb))
	}
	if fb[2].IsCorrect == nil || *fb[2].IsCorrect {
		t.Fatalf("third answer should be marked incorrect")
	}
	if fb[2].CorrectAnswer != "C" || fb[2].Explanation != "because" {
		t.Fatalf("incorrect feedback missing canonical answer: %+v", fb[2])
	}
	if fb[2].UserAnswer != "X" {
		t.Fatalf("feedback lost user answer: %+v", fb[2])
	}
}

func TestScoreObjectiveCaseSensitive(t *testing.T) {
	score, _ := ScoreObjective([]quiz.Question{mcq("A")}, []string{"a"})
	if score != 0 {
		t.Fatalf("score = %v, want 0: comparison is case-sensitive", score)
	}
}

func TestScoreObjectiveMissingAnswers(t *testing.T) {
	score, fb := ScoreObjective([]quiz.Question{mcq("A"), mcq("B")}, []string{"A"})
	if score != 50 {
		t.Fatalf("score = %v, want 50", score)
	}
	if fb[1].UserAnswer != "" {
		t.Fatalf("missing answer should grade as empty, got %q", fb[1].UserAnswer)
	}
}

func TestScoreObjectiveEmpty(t *testing.T) {
	score, fb := ScoreObjective(nil, nil)
	if score != 0 || len(fb) != 0 {
		t.Fatalf("empty question set: score = %v, feedback = %d", score, len(fb))
	}
}
