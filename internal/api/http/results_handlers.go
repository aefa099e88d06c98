package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	authmw "github.com/brightboard/brightboard-lms/internal/auth/middleware"
	"github.com/brightboard/brightboard-lms/internal/quiz"
)

// quizResults aggregates a quiz's completed attempts per student.
type quizResults struct {
	QuizID       string          `json:"quiz_id"`
	Title        string          `json:"title"`
	PassingScore float64         `json:"passing_score"`
	Students     []studentResult `json:"students"`
}

type studentResult struct {
	StudentID string   `json:"student_id"`
	Attempts  int      `json:"attempts"`
	BestScore *float64 `json:"best_score,omitempty"`
	LastScore *float64 `json:"last_score,omitempty"`
	Passed    bool     `json:"passed"`
}

func collectResults(q quiz.Quiz, evals []quiz.Evaluation) quizResults {
	passing := q.PassingScore
	if passing <= 0 {
		passing = quiz.DefaultPassingScore
	}
	byStudent := map[string]*studentResult{}
	order := []string{}
	for _, e := range evals {
		sr, ok := byStudent[e.StudentID]
		if !ok {
			sr = &studentResult{StudentID: e.StudentID}
			byStudent[e.StudentID] = sr
			order = append(order, e.StudentID)
		}
		sr.Attempts++
		if e.Score != nil {
			v := *e.Score
			sr.LastScore = &v
			if sr.BestScore == nil || v > *sr.BestScore {
				best := v
				sr.BestScore = &best
			}
			if v >= passing {
				sr.Passed = true
			}
		}
	}
	out := quizResults{QuizID: q.ID, Title: q.Title, PassingScore: passing}
	for _, id := range order {
		out.Students = append(out.Students, *byStudent[id])
	}
	return out
}

func loadResults(r *http.Request, store quiz.Store) (quizResults, error) {
	ctx := r.Context()
	q, err := store.GetQuiz(ctx, chi.URLParam(r, "quizID"))
	if err != nil {
		return quizResults{}, err
	}
	if q.TeacherID != authmw.SubjectFromContext(ctx) {
		return quizResults{}, quiz.ErrNotFound
	}
	evals, err := store.ListEvaluations(ctx, quiz.EvaluationListOpts{
		QuizID: q.ID,
		Status: "completed",
		Sort:   "created_at",
	})
	if err != nil {
		return quizResults{}, err
	}
	return collectResults(q, evals), nil
}

// GET /quizzes/{quizID}/results
func QuizResultsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := loadResults(r, store)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

// GET /quizzes/{quizID}/results.csv
func ExportResultsCSVHandler(store quiz.Store, users userNamer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := loadResults(r, store)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "results-"+res.QuizID+".csv"))
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"student", "attempts", "best_score", "last_score", "passed"})
		for _, s := range res.Students {
			name := s.StudentID
			if users != nil {
				if n, err := users.Username(r.Context(), s.StudentID); err == nil {
					name = n
				}
			}
			_ = cw.Write([]string{
				name,
				strconv.Itoa(s.Attempts),
				floatCell(s.BestScore),
				floatCell(s.LastScore),
				strconv.FormatBool(s.Passed),
			})
		}
		cw.Flush()
	}
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

// userNamer resolves display names for exports. Satisfied by UserDirectory.
type userNamer interface {
	Username(ctx context.Context, id string) (string, error)
}
