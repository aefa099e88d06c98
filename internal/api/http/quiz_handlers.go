package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authmw "github.com/brightboard/brightboard-lms/internal/auth/middleware"
	"github.com/brightboard/brightboard-lms/internal/classroom"
	"github.com/brightboard/brightboard-lms/internal/notify"
	"github.com/brightboard/brightboard-lms/internal/quiz"
	"github.com/brightboard/brightboard-lms/internal/rbac"
)

type quizPayload struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Type             quiz.QuizType   `json:"quiz_type"`
	Questions        []quiz.Question `json:"questions"`
	TimeLimitMinutes int             `json:"time_limit_minutes"`
	PassingScore     float64         `json:"passing_score"`
	Required         bool            `json:"is_required"`
	AvailableFrom    *time.Time      `json:"available_from"`
	AvailableUntil   *time.Time      `json:"available_until"`
	MaxAttempts      int             `json:"max_attempts"`
}

// POST /classrooms/{classroomID}/quizzes
func CreateQuizHandler(svc *quiz.Service, classrooms classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		classroomID := chi.URLParam(r, "classroomID")
		c, err := classrooms.GetClassroom(ctx, classroomID)
		if err != nil {
			writeErr(w, err)
			return
		}
		teacherID := authmw.SubjectFromContext(ctx)
		if c.TeacherID != teacherID {
			http.Error(w, "forbidden", 403)
			return
		}
		var req quizPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		q, err := svc.CreateQuiz(ctx, quiz.Quiz{
			ClassroomID:      classroomID,
			TeacherID:        teacherID,
			Title:            req.Title,
			Description:      req.Description,
			Type:             req.Type,
			Questions:        req.Questions,
			TimeLimitMinutes: req.TimeLimitMinutes,
			PassingScore:     req.PassingScore,
			Required:         req.Required,
			AvailableFrom:    req.AvailableFrom,
			AvailableUntil:   req.AvailableUntil,
			MaxAttempts:      req.MaxAttempts,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

// PUT /quizzes/{quizID}
func UpdateQuizHandler(svc *quiz.Service, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		cur, err := store.GetQuiz(ctx, chi.URLParam(r, "quizID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		if cur.TeacherID != authmw.SubjectFromContext(ctx) {
			http.Error(w, "forbidden", 403)
			return
		}
		var req quizPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		cur.Title = req.Title
		cur.Description = req.Description
		cur.Type = req.Type
		cur.Questions = req.Questions
		cur.TimeLimitMinutes = req.TimeLimitMinutes
		cur.PassingScore = req.PassingScore
		cur.Required = req.Required
		cur.AvailableFrom = req.AvailableFrom
		cur.AvailableUntil = req.AvailableUntil
		cur.MaxAttempts = req.MaxAttempts
		q, err := svc.UpdateQuiz(ctx, cur)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(q)
	}
}

// POST /quizzes/{quizID}/publish  { "published": true|false }
func PublishQuizHandler(store quiz.Store, classrooms classroom.Store, notifier *notify.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q, err := store.GetQuiz(ctx, chi.URLParam(r, "quizID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		if q.TeacherID != authmw.SubjectFromContext(ctx) {
			http.Error(w, "forbidden", 403)
			return
		}
		var req struct {
			Published bool `json:"published"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if err := store.SetPublished(ctx, q.ID, req.Published); err != nil {
			writeErr(w, err)
			return
		}
		if req.Published && !q.Published {
			if studentIDs, err := classrooms.EnrolledStudentIDs(ctx, q.ClassroomID); err == nil {
				notifier.Notify(ctx, studentIDs, notify.KindQuizPublished,
					fmt.Sprintf("New quiz available: %s", q.Title))
			}
		}
		q.Published = req.Published
		_ = json.NewEncoder(w).Encode(q)
	}
}

// DELETE /quizzes/{quizID} — published quizzes must be unpublished first.
func DeleteQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q, err := store.GetQuiz(ctx, chi.URLParam(r, "quizID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		if q.TeacherID != authmw.SubjectFromContext(ctx) {
			http.Error(w, "forbidden", 403)
			return
		}
		if err := store.DeleteQuiz(ctx, q.ID); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// quizView is a quiz as students see it: no canonical answers, plus the
// derived window state.
type quizView struct {
	quiz.Quiz
	WindowState string `json:"window_state"` // available|upcoming|expired|unpublished
}

func newQuizView(q quiz.Quiz, now time.Time, redact bool) quizView {
	if redact {
		stripped := make([]quiz.Question, len(q.Questions))
		for i, question := range q.Questions {
			question.CorrectAnswer = ""
			question.Explanation = ""
			stripped[i] = question
		}
		q.Questions = stripped
	}
	state := "unpublished"
	switch {
	case q.IsAvailable(now):
		state = "available"
	case q.IsUpcoming(now):
		state = "upcoming"
	case q.IsExpired(now):
		state = "expired"
	}
	return quizView{Quiz: q, WindowState: state}
}

// GET /classrooms/{classroomID}/quizzes — teachers see everything; students
// see published quizzes only, with answers stripped.
func ListQuizzesHandler(store quiz.Store, classrooms classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		classroomID := chi.URLParam(r, "classroomID")
		c, err := classrooms.GetClassroom(ctx, classroomID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !canAccessClassroom(r, classrooms, c) {
			http.Error(w, "forbidden", 403)
			return
		}
		all, err := store.ListQuizzes(ctx, classroomID)
		if err != nil {
			writeErr(w, err)
			return
		}
		isStudent := rbac.RoleFromContext(ctx) == "student"
		now := time.Now().UTC()
		out := []quizView{}
		for _, q := range all {
			if isStudent && !q.Published {
				continue
			}
			out = append(out, newQuizView(q, now, isStudent))
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// GET /quizzes/{quizID}
func GetQuizHandler(store quiz.Store, classrooms classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q, err := store.GetQuiz(ctx, chi.URLParam(r, "quizID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		c, err := classrooms.GetClassroom(ctx, q.ClassroomID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !canAccessClassroom(r, classrooms, c) {
			http.Error(w, "forbidden", 403)
			return
		}
		isStudent := rbac.RoleFromContext(ctx) == "student"
		if isStudent && !q.Published {
			http.Error(w, "not found", 404)
			return
		}
		_ = json.NewEncoder(w).Encode(newQuizView(q, time.Now().UTC(), isStudent))
	}
}
