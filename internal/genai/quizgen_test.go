package genai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/brightboard/brightboard-lms/internal/quiz"
)

type fakeGen struct {
	response string
	err      error
	lastUser string
}

func (f *fakeGen) GenerateText(_ context.Context, _, user string) (string, error) {
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

const mcqArray = `[
  {
    "question": "What is 2+2?",
    "options": ["A) 3", "B) 4", "C) 5", "D) 6"],
    "correct_answer": "B",
    "explanation": "Basic arithmetic"
  }
]`

func TestGenerateQuizParsesCleanArray(t *testing.T) {
	g := NewQuizGenerator(&fakeGen{response: mcqArray})
	questions, err := g.GenerateQuiz(context.Background(), "arithmetic notes", quiz.TypeMCQ, "Material: Math")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) != 1 || questions[0].CorrectAnswer != "B" {
		t.Fatalf("unexpected questions: %+v", questions)
	}
}

func TestGenerateQuizStripsFencesAndCommentary(t *testing.T) {
	wrapped := "Sure! Here is your quiz:\n```json\n" + mcqArray + "\n```\nLet me know if you need more."
	g := NewQuizGenerator(&fakeGen{response: wrapped})
	questions, err := g.GenerateQuiz(context.Background(), "notes", quiz.TypeMCQ, "Material: Math")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("questions = %d, want 1", len(questions))
	}
}

func TestGenerateQuizFormatError(t *testing.T) {
	for _, response := range []string{
		"no json here at all",
		"[{\"question\": \"broken\"",
		"[]",
		`[{"question": "bad mcq", "options": ["A) only"], "correct_answer": "E"}]`,
	} {
		g := NewQuizGenerator(&fakeGen{response: response})
		_, err := g.GenerateQuiz(context.Background(), "notes", quiz.TypeMCQ, "")
		if !errors.Is(err, ErrFormat) {
			t.Fatalf("response %q: err = %v, want ErrFormat", response, err)
		}
	}
}

func TestGenerateQuizGenerationError(t *testing.T) {
	g := NewQuizGenerator(&fakeGen{err: errors.New("quota exceeded")})
	_, err := g.GenerateQuiz(context.Background(), "notes", quiz.TypeTrueFalse, "")
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("err = %v, want ErrGeneration", err)
	}
	if errors.Is(err, ErrFormat) {
		t.Fatalf("provider failure must not be a format error")
	}
}

func TestGenerateQuizUnsupportedType(t *testing.T) {
	g := NewQuizGenerator(&fakeGen{response: mcqArray})
	if _, err := g.GenerateQuiz(context.Background(), "notes", quiz.TypeMixed, ""); !errors.Is(err, quiz.ErrUnsupportedQuizType) {
		t.Fatalf("err = %v, want ErrUnsupportedQuizType for mixed generation", err)
	}
}

func TestQuizPromptRequestsFixedCounts(t *testing.T) {
	gen := &fakeGen{response: mcqArray}
	g := NewQuizGenerator(gen)
	_, _ = g.GenerateQuiz(context.Background(), "notes", quiz.TypeMCQ, "")
	if !strings.Contains(gen.lastUser, "20 multiple choice questions") {
		t.Fatalf("mcq prompt missing count: %q", gen.lastUser)
	}

	essay := `[{"question": "Discuss", "key_points": ["a"], "suggested_length": "2 paragraphs"}]`
	gen.response = essay
	_, _ = g.GenerateQuiz(context.Background(), "notes", quiz.TypeEssay, "")
	if !strings.Contains(gen.lastUser, "3 essay questions") {
		t.Fatalf("essay prompt missing count: %q", gen.lastUser)
	}
}

func TestExtractJSONArray(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"[1,2]", "[1,2]"},
		{"```json\n[1,2]\n```", "[1,2]"},
		{"```\n[1,2]\n```", "[1,2]"},
		{"noise before [1,2] noise after", "[1,2]"},
	}
	for _, tc := range cases {
		got, err := ExtractJSONArray(tc.in)
		if err != nil {
			t.Fatalf("input %q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("input %q: got %q, want %q", tc.in, got, tc.want)
		}
	}
	if _, err := ExtractJSONArray("{}"); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat for object input")
	}
}

func TestExtractJSONObject(t *testing.T) {
	got, err := ExtractJSONObject("The grade is:\n```json\n{\"score\": 5}\n```")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != `{"score": 5}` {
		t.Fatalf("got %q", got)
	}
	if _, err := ExtractJSONObject("nothing"); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat when no object present")
	}
}

func TestDisabledGenerator(t *testing.T) {
	g := NewQuizGenerator(Disabled())
	ctx := context.Background()

	if _, err := g.GenerateQuiz(ctx, "content", "mcq", "Material: Cells"); !errors.Is(err, ErrGeneration) {
		t.Fatalf("quiz err = %v, want ErrGeneration", err)
	}
	if _, err := g.GenerateStudyGuide(ctx, "content", "Cells"); !errors.Is(err, ErrGeneration) {
		t.Fatalf("study guide err = %v, want ErrGeneration", err)
	}
	if _, err := g.DailyQuote(ctx, nil, time.Now()); !errors.Is(err, ErrGeneration) {
		t.Fatalf("quote err = %v, want ErrGeneration", err)
	}
}
