package http

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	authmw "github.com/brightboard/brightboard-lms/internal/auth/middleware"
	"github.com/brightboard/brightboard-lms/internal/classroom"
	"github.com/brightboard/brightboard-lms/internal/quiz"
)

// studentProgress summarizes one student's activity in a classroom.
type studentProgress struct {
	StudentID          string   `json:"student_id"`
	Total              int      `json:"total_evaluations"`
	Completed          int      `json:"completed"`
	InProgress         int      `json:"in_progress"`
	MaterialsAttempted int      `json:"materials_attempted"`
	AverageScore       *float64 `json:"average_score,omitempty"`
}

func collectProgress(studentIDs []string, evals []quiz.Evaluation) []studentProgress {
	byStudent := map[string]*studentProgress{}
	materials := map[string]map[string]bool{}
	out := make([]studentProgress, 0, len(studentIDs))
	for _, id := range studentIDs {
		byStudent[id] = &studentProgress{StudentID: id}
		materials[id] = map[string]bool{}
	}
	sums := map[string]float64{}
	for _, e := range evals {
		sp, ok := byStudent[e.StudentID]
		if !ok {
			// Evaluations from students no longer enrolled are skipped.
			continue
		}
		sp.Total++
		switch e.Status() {
		case quiz.StatusCompleted:
			sp.Completed++
			if e.Score != nil {
				sums[e.StudentID] += *e.Score
			}
		case quiz.StatusInProgress:
			sp.InProgress++
		}
		if e.IsAIGenerated && !materials[e.StudentID][e.MaterialID] {
			materials[e.StudentID][e.MaterialID] = true
			sp.MaterialsAttempted++
		}
	}
	for _, id := range studentIDs {
		sp := byStudent[id]
		if sp.Completed > 0 {
			avg := sums[id] / float64(sp.Completed)
			sp.AverageScore = &avg
		}
		out = append(out, *sp)
	}
	return out
}

func loadProgress(r *http.Request, store quiz.Store, classrooms classroom.Store) ([]studentProgress, error) {
	ctx := r.Context()
	c, err := classrooms.GetClassroom(ctx, chi.URLParam(r, "classroomID"))
	if err != nil {
		return nil, err
	}
	if c.TeacherID != authmw.SubjectFromContext(ctx) {
		return nil, classroom.ErrNotFound
	}
	studentIDs, err := classrooms.EnrolledStudentIDs(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	evals, err := store.ListEvaluations(ctx, quiz.EvaluationListOpts{ClassroomID: c.ID})
	if err != nil {
		return nil, err
	}
	return collectProgress(studentIDs, evals), nil
}

// GET /classrooms/{classroomID}/progress — per-student activity summary for
// the owning teacher.
func ClassroomProgressHandler(store quiz.Store, classrooms classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		progress, err := loadProgress(r, store, classrooms)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"students": progress,
		})
	}
}

// GET /classrooms/{classroomID}/evaluations.csv — every evaluation in the
// classroom, one row each, for the owning teacher.
func ExportEvaluationsCSVHandler(store quiz.Store, classrooms classroom.Store, users userNamer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		classroomID := chi.URLParam(r, "classroomID")
		c, err := classrooms.GetClassroom(ctx, classroomID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if c.TeacherID != authmw.SubjectFromContext(ctx) {
			writeErr(w, classroom.ErrNotFound)
			return
		}
		evals, err := store.ListEvaluations(ctx, quiz.EvaluationListOpts{ClassroomID: classroomID})
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "evaluations-"+classroomID+".csv"))
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"student", "quiz_id", "material_id", "quiz_type", "status", "score", "created_at"})
		for _, e := range evals {
			name := e.StudentID
			if users != nil {
				if n, err := users.Username(ctx, e.StudentID); err == nil {
					name = n
				}
			}
			_ = cw.Write([]string{
				name,
				e.QuizID,
				e.MaterialID,
				string(e.Type),
				string(e.Status()),
				floatCell(e.Score),
				strconv.FormatInt(e.CreatedAt.Unix(), 10),
			})
		}
		cw.Flush()
	}
}
