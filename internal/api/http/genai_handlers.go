package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	authmw "github.com/brightboard/brightboard-lms/internal/auth/middleware"
	"github.com/brightboard/brightboard-lms/internal/classroom"
	"github.com/brightboard/brightboard-lms/internal/genai"
	"github.com/brightboard/brightboard-lms/internal/quiz"
)

// POST /classrooms/{classroomID}/ai-quizzes
// { "quiz_type": "mcq|true_false|essay", "material_id": "" }
// material_id empty generates across all classroom materials.
func GenerateQuizHandler(gen *genai.QuizGenerator, svc *quiz.Service, classrooms classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		classroomID := chi.URLParam(r, "classroomID")
		// Enrollment gate runs before generation so rejected callers never
		// spend a model call.
		c, err := classrooms.GetClassroom(ctx, classroomID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !canAccessClassroom(r, classrooms, c) {
			http.Error(w, "forbidden", 403)
			return
		}
		var req struct {
			Type       quiz.QuizType `json:"quiz_type"`
			MaterialID string        `json:"material_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		content, contextNote, err := materialContent(ctx, classrooms, classroomID, req.MaterialID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if strings.TrimSpace(content) == "" {
			http.Error(w, "classroom has no material content to generate from", 422)
			return
		}
		questions, err := gen.GenerateQuiz(ctx, content, req.Type, contextNote)
		if err != nil {
			writeErr(w, err)
			return
		}
		studentID := authmw.SubjectFromContext(ctx)
		e, err := svc.StartAIQuiz(ctx, classroomID, studentID, req.MaterialID, req.Type, questions)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newEvalView(e))
	}
}

// materialContent gathers the generation source text: one material's
// extracted content, or all of the classroom's when materialID is empty.
func materialContent(ctx context.Context, store classroom.Store, classroomID, materialID string) (content, contextNote string, err error) {
	if materialID != "" {
		m, err := store.GetMaterial(ctx, materialID)
		if err != nil {
			return "", "", err
		}
		if m.ClassroomID != classroomID {
			return "", "", classroom.ErrNotFound
		}
		return m.Content, "Material: " + m.Title, nil
	}
	materials, err := store.ListMaterials(ctx, classroomID)
	if err != nil {
		return "", "", err
	}
	var b strings.Builder
	titles := make([]string, 0, len(materials))
	for _, m := range materials {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		b.WriteString("## ")
		b.WriteString(m.Title)
		b.WriteString("\n")
		b.WriteString(m.Content)
		b.WriteString("\n\n")
		titles = append(titles, m.Title)
	}
	return b.String(), "Materials: " + strings.Join(titles, ", "), nil
}

// POST /classrooms/{classroomID}/study-guide  { "material_id": "" }
func StudyGuideHandler(gen *genai.QuizGenerator, classrooms classroom.Store) http.HandlerFunc {
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
		var req struct {
			MaterialID string `json:"material_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		content, subject, err := materialContent(ctx, classrooms, classroomID, req.MaterialID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if strings.TrimSpace(content) == "" {
			http.Error(w, "no material content", 422)
			return
		}
		guide, err := gen.GenerateStudyGuide(ctx, content, subject)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"study_guide": guide})
	}
}

// GET /daily-quote
func DailyQuoteHandler(gen *genai.QuizGenerator, cache genai.QuoteCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quote, err := gen.DailyQuote(r.Context(), cache, time.Now())
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"quote": quote})
	}
}
