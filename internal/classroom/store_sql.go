package classroom

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// SQLStore persists classrooms, enrollments and materials in sqlite or
// postgres. Timestamps are unix seconds.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CreateClassroom(ctx context.Context, c Classroom) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO classrooms
		(id,name,description,invitation_code,teacher_id,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID, c.Name, c.Description, c.InvitationCode, c.TeacherID, c.CreatedAt.Unix())
	if err != nil && isUniqueViolation(err) {
		return ErrCodeTaken
	}
	return err
}

const classroomCols = `id,name,description,invitation_code,teacher_id,created_at`

func (s *SQLStore) GetClassroom(ctx context.Context, id string) (Classroom, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+classroomCols+` FROM classrooms WHERE id=$1`, id)
	return scanClassroom(row)
}

func (s *SQLStore) GetClassroomByCode(ctx context.Context, code string) (Classroom, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+classroomCols+` FROM classrooms WHERE invitation_code=$1`, code)
	return scanClassroom(row)
}

func (s *SQLStore) ListByTeacher(ctx context.Context, teacherID string) ([]Classroom, error) {
	return s.listClassrooms(ctx,
		`SELECT `+classroomCols+` FROM classrooms WHERE teacher_id=$1 ORDER BY created_at`, teacherID)
}

func (s *SQLStore) ListByStudent(ctx context.Context, studentID string) ([]Classroom, error) {
	return s.listClassrooms(ctx, `SELECT c.id,c.name,c.description,c.invitation_code,c.teacher_id,c.created_at
		FROM classrooms c JOIN enrollments e ON e.classroom_id=c.id
		WHERE e.student_id=$1 ORDER BY c.created_at`, studentID)
}

func (s *SQLStore) listClassrooms(ctx context.Context, query string, args ...any) ([]Classroom, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Classroom{}
	for rows.Next() {
		c, err := scanClassroom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) Enroll(ctx context.Context, e Enrollment) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO enrollments
		(id,classroom_id,student_id,enrolled_at) VALUES ($1,$2,$3,$4)`,
		e.ID, e.ClassroomID, e.StudentID, e.EnrolledAt.Unix())
	if err != nil && isUniqueViolation(err) {
		return ErrAlreadyEnrolled
	}
	return err
}

func (s *SQLStore) IsEnrolled(ctx context.Context, classroomID, studentID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM enrollments
		WHERE classroom_id=$1 AND student_id=$2`, classroomID, studentID).Scan(&n)
	return n > 0, err
}

func (s *SQLStore) EnrolledStudentIDs(ctx context.Context, classroomID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT student_id FROM enrollments
		WHERE classroom_id=$1 ORDER BY student_id`, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLStore) PutMaterial(ctx context.Context, m Material) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO materials
		(id,classroom_id,title,content,file_key,file_type,uploaded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
		 title=EXCLUDED.title, content=EXCLUDED.content,
		 file_key=EXCLUDED.file_key, file_type=EXCLUDED.file_type`,
		m.ID, m.ClassroomID, m.Title, m.Content, m.FileKey, m.FileType, m.UploadedAt.Unix())
	return err
}

const materialCols = `id,classroom_id,title,content,file_key,file_type,uploaded_at`

func (s *SQLStore) GetMaterial(ctx context.Context, id string) (Material, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+materialCols+` FROM materials WHERE id=$1`, id)
	return scanMaterial(row)
}

func (s *SQLStore) ListMaterials(ctx context.Context, classroomID string) ([]Material, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+materialCols+` FROM materials WHERE classroom_id=$1 ORDER BY uploaded_at`, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) MaterialTitle(ctx context.Context, id string) (string, error) {
	var title string
	err := s.db.QueryRowContext(ctx, `SELECT title FROM materials WHERE id=$1`, id).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return title, err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanClassroom(r rowScanner) (Classroom, error) {
	var (
		c       Classroom
		created int64
	)
	err := r.Scan(&c.ID, &c.Name, &c.Description, &c.InvitationCode, &c.TeacherID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Classroom{}, ErrNotFound
	}
	if err != nil {
		return Classroom{}, err
	}
	c.CreatedAt = time.Unix(created, 0).UTC()
	return c, nil
}

func scanMaterial(r rowScanner) (Material, error) {
	var (
		m        Material
		uploaded int64
	)
	err := r.Scan(&m.ID, &m.ClassroomID, &m.Title, &m.Content, &m.FileKey, &m.FileType, &uploaded)
	if errors.Is(err, sql.ErrNoRows) {
		return Material{}, ErrNotFound
	}
	if err != nil {
		return Material{}, err
	}
	m.UploadedAt = time.Unix(uploaded, 0).UTC()
	return m, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
