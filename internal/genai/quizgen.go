package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/brightboard/brightboard-lms/internal/quiz"
)

// ErrFormat marks a generation response that could not be parsed into the
// expected JSON shape after cleanup. Distinguishable from ErrGeneration so
// callers can suggest a retry instead of showing a technical error.
var ErrFormat = errors.New("generation response format not parseable")

// Question counts requested per quiz type.
const (
	objectiveQuestionCount = 20
	essayQuestionCount     = 3
)

const systemPrompt = "You are a quiz author for a classroom learning app. " +
	"Derive questions strictly from the supplied study content; do not use outside knowledge."

// QuizGenerator builds quizzes and study guides from material content.
type QuizGenerator struct {
	gen Generator
}

func NewQuizGenerator(gen Generator) *QuizGenerator { return &QuizGenerator{gen: gen} }

// GenerateQuiz asks the collaborator for a question array of the given type,
// derived only from content. contextNote describes the material scope (one
// material or the whole classroom) and is included verbatim in the prompt.
func (g *QuizGenerator) GenerateQuiz(ctx context.Context, content string, t quiz.QuizType, contextNote string) ([]quiz.Question, error) {
	prompt, err := quizPrompt(content, t, contextNote)
	if err != nil {
		return nil, err
	}
	raw, err := g.gen.GenerateText(ctx, systemPrompt, prompt)
	if err != nil {
		if errors.Is(err, ErrGeneration) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	payload, err := ExtractJSONArray(raw)
	if err != nil {
		log.Printf("quizgen: unparsable response (%d bytes)", len(raw))
		return nil, err
	}
	var questions []quiz.Question
	if err := json.Unmarshal([]byte(payload), &questions); err != nil {
		log.Printf("quizgen: json decode failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: empty question array", ErrFormat)
	}
	for i, q := range questions {
		if err := q.Validate(t); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrFormat, i, err)
		}
	}
	return questions, nil
}

func quizPrompt(content string, t quiz.QuizType, contextNote string) (string, error) {
	var b strings.Builder
	switch t {
	case quiz.TypeMCQ:
		fmt.Fprintf(&b, "Based on the following content, create %d multiple choice questions:\n\n", objectiveQuestionCount)
		fmt.Fprintf(&b, "%s\n\nContext: %s\n\n", content, contextNote)
		b.WriteString(`Format each question as JSON with this structure:
{
  "question": "Question text",
  "options": ["A) Option 1", "B) Option 2", "C) Option 3", "D) Option 4"],
  "correct_answer": "A",
  "explanation": "Why this answer is correct"
}

`)
		fmt.Fprintf(&b, "Return only a JSON array of %d questions.", objectiveQuestionCount)
	case quiz.TypeTrueFalse:
		fmt.Fprintf(&b, "Based on the following content, create %d true/false questions:\n\n", objectiveQuestionCount)
		fmt.Fprintf(&b, "%s\n\nContext: %s\n\n", content, contextNote)
		b.WriteString(`Format each question as JSON with this structure:
{
  "question": "Statement to evaluate",
  "correct_answer": "True" or "False",
  "explanation": "Explanation of why this is true or false"
}

`)
		fmt.Fprintf(&b, "Return only a JSON array of %d questions.", objectiveQuestionCount)
	case quiz.TypeEssay:
		fmt.Fprintf(&b, "Based on the following content, create %d essay questions:\n\n", essayQuestionCount)
		fmt.Fprintf(&b, "%s\n\nContext: %s\n\n", content, contextNote)
		b.WriteString(`Format each question as JSON with this structure:
{
  "question": "Essay question that requires detailed analysis",
  "key_points": ["Key point 1", "Key point 2", "Key point 3"],
  "suggested_length": "Number of paragraphs or words"
}

`)
		fmt.Fprintf(&b, "Return only a JSON array of %d questions.", essayQuestionCount)
	default:
		return "", fmt.Errorf("%w: %q", quiz.ErrUnsupportedQuizType, t)
	}
	return b.String(), nil
}

// GenerateStudyGuide is a single prompt/response passthrough scoped to the
// provided content only.
func (g *QuizGenerator) GenerateStudyGuide(ctx context.Context, content, subject string) (string, error) {
	prompt := fmt.Sprintf(`Create a comprehensive study guide for the subject %q based on the following content:

%s

Please structure the study guide with:
1. Key concepts and definitions
2. Important topics summary
3. Learning objectives
4. Study tips and strategies
5. Review questions for self-assessment

Make it clear, organized, and helpful for student learning.`, subject, content)

	text, err := g.gen.GenerateText(ctx, systemPrompt, prompt)
	if err != nil {
		if errors.Is(err, ErrGeneration) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return text, nil
}

// ExtractJSONArray strips Markdown code fences and any surrounding
// commentary, returning the substring from the first '[' to the last ']'.
func ExtractJSONArray(raw string) (string, error) {
	s := stripFences(raw)
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: no JSON array found", ErrFormat)
	}
	return s[start : end+1], nil
}

// ExtractJSONObject is the object-shaped counterpart of ExtractJSONArray,
// used for the essay grading payload.
func ExtractJSONObject(raw string) (string, error) {
	s := stripFences(raw)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: no JSON object found", ErrFormat)
	}
	return s[start : end+1], nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-len("```")]
	}
	return strings.TrimSpace(s)
}
