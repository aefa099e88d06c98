package classroom

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service wraps the store with the invitation-code workflow.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now}
}

// Create makes a classroom with a fresh invitation code, retrying on the
// rare code collision.
func (s *Service) Create(ctx context.Context, name, description, teacherID string) (Classroom, error) {
	if strings.TrimSpace(name) == "" {
		return Classroom{}, errors.New("classroom name required")
	}
	c := Classroom{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		TeacherID:   teacherID,
		CreatedAt:   s.now().UTC(),
	}
	for i := 0; i < 5; i++ {
		c.InvitationCode = NewInvitationCode()
		err := s.store.CreateClassroom(ctx, c)
		if errors.Is(err, ErrCodeTaken) {
			continue
		}
		return c, err
	}
	return Classroom{}, ErrCodeTaken
}

// Join enrolls a student by invitation code. Codes are matched
// case-insensitively; joining twice is idempotent.
func (s *Service) Join(ctx context.Context, code, studentID string) (Classroom, error) {
	c, err := s.store.GetClassroomByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return Classroom{}, err
	}
	err = s.store.Enroll(ctx, Enrollment{
		ID:          uuid.NewString(),
		ClassroomID: c.ID,
		StudentID:   studentID,
		EnrolledAt:  s.now().UTC(),
	})
	if err != nil && !errors.Is(err, ErrAlreadyEnrolled) {
		return Classroom{}, err
	}
	return c, nil
}
