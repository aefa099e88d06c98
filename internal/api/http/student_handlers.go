package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	authmw "github.com/brightboard/brightboard-lms/internal/auth/middleware"
	"github.com/brightboard/brightboard-lms/internal/quiz"
)

// evalView redacts canonical answers from open attempts. Completed attempts
// keep everything; the feedback already reveals the answers.
type evalView struct {
	quiz.Evaluation
	Status quiz.Status `json:"status"`
}

func newEvalView(e quiz.Evaluation) evalView {
	if e.CompletedAt == nil {
		stripped := make([]quiz.Question, len(e.Questions))
		for i, q := range e.Questions {
			q.CorrectAnswer = ""
			q.Explanation = ""
			stripped[i] = q
		}
		e.Questions = stripped
	}
	return evalView{Evaluation: e, Status: e.Status()}
}

// POST /quizzes/{quizID}/attempts — start or resume the caller's attempt.
func StartAttemptHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := authmw.SubjectFromContext(r.Context())
		e, err := svc.StartQuizAttempt(r.Context(), chi.URLParam(r, "quizID"), studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newEvalView(e))
	}
}

// POST /evaluations/{evalID}/submit  { "answers": ["...", ...] }
func SubmitAttemptHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers []string `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		studentID := authmw.SubjectFromContext(r.Context())
		e, err := svc.SubmitAttempt(r.Context(), chi.URLParam(r, "evalID"), studentID, req.Answers)
		if err != nil {
			writeErr(w, err)
			return
		}
		passing, err := svc.PassingScore(r.Context(), e)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(struct {
			evalView
			Passed       bool    `json:"passed"`
			PassingScore float64 `json:"passing_score"`
		}{newEvalView(e), e.Passed(passing), passing})
	}
}

// GET /evaluations/{evalID}
func GetEvaluationHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := store.GetEvaluation(r.Context(), chi.URLParam(r, "evalID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		if e.StudentID != authmw.SubjectFromContext(r.Context()) {
			http.Error(w, "not found", 404)
			return
		}
		_ = json.NewEncoder(w).Encode(newEvalView(e))
	}
}

// GET /evaluations?classroom_id=&status=&limit=&offset= — the caller's own
// history, newest first.
func ListMyEvaluationsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		evals, err := store.ListEvaluations(r.Context(), quiz.EvaluationListOpts{
			ClassroomID: q.Get("classroom_id"),
			StudentID:   authmw.SubjectFromContext(r.Context()),
			Status:      q.Get("status"),
			Sort:        "created_at desc",
			Limit:       limit,
			Offset:      offset,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]evalView, 0, len(evals))
		for _, e := range evals {
			out = append(out, newEvalView(e))
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
