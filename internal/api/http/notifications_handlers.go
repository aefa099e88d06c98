package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	authmw "github.com/brightboard/brightboard-lms/internal/auth/middleware"
	"github.com/brightboard/brightboard-lms/internal/notify"
)

// GET /notifications?limit=
func ListNotificationsHandler(repo *notify.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		out, err := repo.ListForUser(r.Context(), authmw.SubjectFromContext(r.Context()), limit)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// POST /notifications/{notificationID}/read
func MarkNotificationReadHandler(repo *notify.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := repo.MarkRead(r.Context(),
			authmw.SubjectFromContext(r.Context()), chi.URLParam(r, "notificationID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
