package classroom

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrAlreadyEnrolled surfaces the one-enrollment-per-student-per-classroom
	// uniqueness constraint.
	ErrAlreadyEnrolled = errors.New("student already enrolled")
	// ErrCodeTaken reports an invitation-code collision; callers generate a
	// fresh code and retry.
	ErrCodeTaken = errors.New("invitation code already in use")
)

// Store persists classrooms, enrollments and materials.
type Store interface {
	CreateClassroom(ctx context.Context, c Classroom) error
	GetClassroom(ctx context.Context, id string) (Classroom, error)
	GetClassroomByCode(ctx context.Context, code string) (Classroom, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]Classroom, error)
	ListByStudent(ctx context.Context, studentID string) ([]Classroom, error)

	Enroll(ctx context.Context, e Enrollment) error
	IsEnrolled(ctx context.Context, classroomID, studentID string) (bool, error)
	EnrolledStudentIDs(ctx context.Context, classroomID string) ([]string, error)

	PutMaterial(ctx context.Context, m Material) error
	GetMaterial(ctx context.Context, id string) (Material, error)
	ListMaterials(ctx context.Context, classroomID string) ([]Material, error)
	// MaterialTitle resolves a material's display title; ErrNotFound for
	// unknown ids.
	MaterialTitle(ctx context.Context, id string) (string, error)
}

// memoryStore backs tests and offline experiments.
type memoryStore struct {
	mu          sync.RWMutex
	classrooms  map[string]Classroom
	enrollments map[string]Enrollment
	materials   map[string]Material
}

func NewInMemoryStore() Store {
	return &memoryStore{
		classrooms:  map[string]Classroom{},
		enrollments: map[string]Enrollment{},
		materials:   map[string]Material{},
	}
}

func (m *memoryStore) CreateClassroom(_ context.Context, c Classroom) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.classrooms {
		if x.InvitationCode == c.InvitationCode {
			return ErrCodeTaken
		}
	}
	m.classrooms[c.ID] = c
	return nil
}

func (m *memoryStore) GetClassroom(_ context.Context, id string) (Classroom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.classrooms[id]
	if !ok {
		return Classroom{}, ErrNotFound
	}
	return c, nil
}

func (m *memoryStore) GetClassroomByCode(_ context.Context, code string) (Classroom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.classrooms {
		if c.InvitationCode == code {
			return c, nil
		}
	}
	return Classroom{}, ErrNotFound
}

func (m *memoryStore) ListByTeacher(_ context.Context, teacherID string) ([]Classroom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Classroom{}
	for _, c := range m.classrooms {
		if c.TeacherID == teacherID {
			out = append(out, c)
		}
	}
	sortClassrooms(out)
	return out, nil
}

func (m *memoryStore) ListByStudent(_ context.Context, studentID string) ([]Classroom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Classroom{}
	for _, e := range m.enrollments {
		if e.StudentID != studentID {
			continue
		}
		if c, ok := m.classrooms[e.ClassroomID]; ok {
			out = append(out, c)
		}
	}
	sortClassrooms(out)
	return out, nil
}

func (m *memoryStore) Enroll(_ context.Context, e Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classrooms[e.ClassroomID]; !ok {
		return ErrNotFound
	}
	for _, x := range m.enrollments {
		if x.ClassroomID == e.ClassroomID && x.StudentID == e.StudentID {
			return ErrAlreadyEnrolled
		}
	}
	m.enrollments[e.ID] = e
	return nil
}

func (m *memoryStore) IsEnrolled(_ context.Context, classroomID, studentID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.enrollments {
		if e.ClassroomID == classroomID && e.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) EnrolledStudentIDs(_ context.Context, classroomID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := []string{}
	for _, e := range m.enrollments {
		if e.ClassroomID == classroomID {
			ids = append(ids, e.StudentID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memoryStore) PutMaterial(_ context.Context, mat Material) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.materials[mat.ID] = mat
	return nil
}

func (m *memoryStore) GetMaterial(_ context.Context, id string) (Material, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mat, ok := m.materials[id]
	if !ok {
		return Material{}, ErrNotFound
	}
	return mat, nil
}

func (m *memoryStore) ListMaterials(_ context.Context, classroomID string) ([]Material, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Material{}
	for _, mat := range m.materials {
		if mat.ClassroomID == classroomID {
			out = append(out, mat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}

func (m *memoryStore) MaterialTitle(ctx context.Context, id string) (string, error) {
	mat, err := m.GetMaterial(ctx, id)
	if err != nil {
		return "", err
	}
	return mat.Title, nil
}

func sortClassrooms(cs []Classroom) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].CreatedAt.Before(cs[j].CreatedAt) })
}
