package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/brightboard/brightboard-lms/internal/auth/middleware"
	"github.com/brightboard/brightboard-lms/internal/awards"
	"github.com/brightboard/brightboard-lms/internal/classroom"
	"github.com/brightboard/brightboard-lms/internal/rbac"
)

// GET /classrooms/{classroomID}/awards — the caller's own medals and star
// total. Teachers may pass ?student_id= to inspect any student.
func MyAwardsHandler(engine *awards.Engine, classrooms classroom.Store) http.HandlerFunc {
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
		studentID := authmw.SubjectFromContext(ctx)
		if q := r.URL.Query().Get("student_id"); q != "" && rbac.RoleFromContext(ctx) != "student" {
			studentID = q
		}
		byMaterial, err := engine.ForStudent(ctx, classroomID, studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"awards":     byMaterial,
			"star_total": awards.StarTotal(byMaterial),
		})
	}
}

// GET /classrooms/{classroomID}/rankings?by=stars|gold
func RankingsHandler(engine *awards.Engine, classrooms classroom.Store) http.HandlerFunc {
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
		var (
			rankings map[string]awards.Ranking
			count    int
		)
		if r.URL.Query().Get("by") == "gold" {
			rankings, count, err = engine.GoldRankings(ctx, classroomID)
		} else {
			rankings, count, err = engine.StarRankings(ctx, classroomID)
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"rankings":      rankings,
			"student_count": count,
		})
	}
}
