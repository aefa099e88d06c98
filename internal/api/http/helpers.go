package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brightboard/brightboard-lms/internal/classroom"
	"github.com/brightboard/brightboard-lms/internal/genai"
	"github.com/brightboard/brightboard-lms/internal/quiz"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps domain errors onto HTTP statuses.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrNotFound), errors.Is(err, classroom.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, quiz.ErrNotEnrolled), errors.Is(err, quiz.ErrNotAvailable):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, quiz.ErrAttemptsExhausted),
		errors.Is(err, quiz.ErrOpenAttemptExists),
		errors.Is(err, quiz.ErrAlreadyCompleted),
		errors.Is(err, quiz.ErrQuizPublished),
		errors.Is(err, classroom.ErrAlreadyEnrolled):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, quiz.ErrAnswerCount),
		errors.Is(err, quiz.ErrInvalidWindow),
		errors.Is(err, quiz.ErrUnsupportedQuizType):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, genai.ErrFormat), errors.Is(err, genai.ErrGeneration):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
