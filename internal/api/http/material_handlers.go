package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authmw "github.com/brightboard/brightboard-lms/internal/auth/middleware"
	"github.com/brightboard/brightboard-lms/internal/classroom"
	"github.com/brightboard/brightboard-lms/internal/extract"
	"github.com/brightboard/brightboard-lms/internal/notify"
	"github.com/brightboard/brightboard-lms/internal/storage"
)

const maxUploadBytes = 16 << 20 // 16 MiB

// POST /classrooms/{classroomID}/materials — multipart: file= and title=.
// The file lands in blob storage; its text is extracted for the generation
// pipeline; enrolled students get a notification.
func UploadMaterialHandler(store classroom.Store, bs storage.BlobStore, notifier *notify.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		classroomID := chi.URLParam(r, "classroomID")
		c, err := store.GetClassroom(ctx, classroomID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if c.TeacherID != authmw.SubjectFromContext(ctx) {
			http.Error(w, "forbidden", 403)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", 400)
			return
		}
		defer f.Close()

		title := strings.TrimSpace(r.FormValue("title"))
		if title == "" {
			title = hdr.Filename
		}

		content, err := extract.Text(f, hdr.Filename)
		if err != nil {
			http.Error(w, "extract text: "+err.Error(), 422)
			return
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			http.Error(w, "rewind upload", 500)
			return
		}

		m := classroom.Material{
			ID:          uuid.NewString(),
			ClassroomID: classroomID,
			Title:       title,
			Content:     content,
			FileType:    strings.TrimPrefix(path.Ext(hdr.Filename), "."),
			UploadedAt:  time.Now().UTC(),
		}
		key, err := bs.Put(storage.MaterialKey(m.ID, hdr.Filename), f)
		if err != nil {
			http.Error(w, "store file: "+err.Error(), 500)
			return
		}
		m.FileKey = key
		if err := store.PutMaterial(ctx, m); err != nil {
			writeErr(w, err)
			return
		}

		if studentIDs, err := store.EnrolledStudentIDs(ctx, classroomID); err == nil {
			notifier.Notify(ctx, studentIDs, notify.KindMaterialUploaded,
				fmt.Sprintf("New material in %s: %s", c.Name, m.Title))
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

// GET /classrooms/{classroomID}/materials
func ListMaterialsHandler(store classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		classroomID := chi.URLParam(r, "classroomID")
		c, err := store.GetClassroom(ctx, classroomID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !canAccessClassroom(r, store, c) {
			http.Error(w, "forbidden", 403)
			return
		}
		out, err := store.ListMaterials(ctx, classroomID)
		if err != nil {
			writeErr(w, err)
			return
		}
		// Listing omits extracted content; fetch a single material for it.
		for i := range out {
			out[i].Content = ""
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// GET /materials/{materialID}/file — streams the original upload.
func DownloadMaterialHandler(store classroom.Store, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		m, err := store.GetMaterial(ctx, chi.URLParam(r, "materialID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		c, err := store.GetClassroom(ctx, m.ClassroomID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !canAccessClassroom(r, store, c) {
			http.Error(w, "forbidden", 403)
			return
		}
		rc, err := bs.Get(m.FileKey)
		if err != nil {
			http.Error(w, "not found", 404)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", path.Base(m.FileKey)))
		_, _ = io.Copy(w, rc)
	}
}
