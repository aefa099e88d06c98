package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/brightboard/brightboard-lms/internal/auth/middleware"
	"github.com/brightboard/brightboard-lms/internal/classroom"
	"github.com/brightboard/brightboard-lms/internal/rbac"
)

// POST /classrooms  { "name": "...", "description": "..." }
func CreateClassroomHandler(svc *classroom.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		teacherID := authmw.SubjectFromContext(r.Context())
		c, err := svc.Create(r.Context(), req.Name, req.Description, teacherID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

// POST /classrooms/join  { "invitation_code": "..." }
func JoinClassroomHandler(svc *classroom.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Code string `json:"invitation_code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		studentID := authmw.SubjectFromContext(r.Context())
		c, err := svc.Join(r.Context(), req.Code, studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(c)
	}
}

// GET /classrooms — the caller's classrooms: owned for teachers, enrolled
// for students.
func ListClassroomsHandler(store classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sub := authmw.SubjectFromContext(ctx)
		var (
			out []classroom.Classroom
			err error
		)
		if rbac.RoleFromContext(ctx) == "teacher" {
			out, err = store.ListByTeacher(ctx, sub)
		} else {
			out, err = store.ListByStudent(ctx, sub)
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// GET /classrooms/{classroomID}
func GetClassroomHandler(store classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := store.GetClassroom(r.Context(), chi.URLParam(r, "classroomID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		if !canAccessClassroom(r, store, c) {
			http.Error(w, "forbidden", 403)
			return
		}
		_ = json.NewEncoder(w).Encode(c)
	}
}

// canAccessClassroom admits the owning teacher, enrolled students, and
// admins.
func canAccessClassroom(r *http.Request, store classroom.Store, c classroom.Classroom) bool {
	ctx := r.Context()
	sub := authmw.SubjectFromContext(ctx)
	switch rbac.RoleFromContext(ctx) {
	case "admin":
		return true
	case "teacher":
		return c.TeacherID == sub
	default:
		ok, err := store.IsEnrolled(ctx, c.ID, sub)
		return err == nil && ok
	}
}
