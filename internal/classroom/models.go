package classroom

import (
	"crypto/rand"
	"time"
)

// Classroom is a teacher-owned group of materials, quizzes and enrolled
// students. Students join with the invitation code.
type Classroom struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	InvitationCode string    `json:"invitation_code"`
	TeacherID      string    `json:"teacher_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Enrollment links a student to a classroom; unique per pair.
type Enrollment struct {
	ID          string    `json:"id"`
	ClassroomID string    `json:"classroom_id"`
	StudentID   string    `json:"student_id"`
	EnrolledAt  time.Time `json:"enrolled_at"`
}

// Material is uploaded study content. Content holds the extracted text used
// for quiz and study-guide generation; FileKey points into blob storage.
type Material struct {
	ID          string    `json:"id"`
	ClassroomID string    `json:"classroom_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content,omitempty"`
	FileKey     string    `json:"file_key,omitempty"`
	FileType    string    `json:"file_type,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewInvitationCode returns a random 6-character code. Uniqueness is
// enforced by the store's unique index; callers retry on collision.
func NewInvitationCode() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand does not fail on supported platforms
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b)
}
