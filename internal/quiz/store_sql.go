package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLStore persists quizzes and evaluations in sqlite or postgres. Question,
// answer and feedback payloads are stored as JSON columns; timestamps as
// unix seconds.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes
		(id,classroom_id,teacher_id,title,description,quiz_type,questions_json,
		 time_limit_minutes,passing_score,is_required,available_from,available_until,
		 published,max_attempts,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (id) DO UPDATE SET
		 title=EXCLUDED.title, description=EXCLUDED.description,
		 quiz_type=EXCLUDED.quiz_type, questions_json=EXCLUDED.questions_json,
		 time_limit_minutes=EXCLUDED.time_limit_minutes,
		 passing_score=EXCLUDED.passing_score, is_required=EXCLUDED.is_required,
		 available_from=EXCLUDED.available_from,
		 available_until=EXCLUDED.available_until,
		 max_attempts=EXCLUDED.max_attempts`,
		q.ID, q.ClassroomID, q.TeacherID, q.Title, q.Description, string(q.Type), string(qj),
		q.TimeLimitMinutes, q.PassingScore, boolInt(q.Required),
		unixOrNil(q.AvailableFrom), unixOrNil(q.AvailableUntil),
		boolInt(q.Published), q.MaxAttempts, q.CreatedAt.Unix())
	return err
}

const quizCols = `id,classroom_id,teacher_id,title,description,quiz_type,questions_json,
	time_limit_minutes,passing_score,is_required,available_from,available_until,
	published,max_attempts,created_at`

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+quizCols+` FROM quizzes WHERE id=$1`, id)
	q, err := scanQuiz(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, ErrNotFound
	}
	return q, err
}

func (s *SQLStore) ListQuizzes(ctx context.Context, classroomID string) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+quizCols+` FROM quizzes WHERE classroom_id=$1 ORDER BY created_at`, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Quiz{}
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) SetPublished(ctx context.Context, quizID string, published bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE quizzes SET published=$1 WHERE id=$2`, boolInt(published), quizID)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, quizID string) error {
	q, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if q.Published {
		return ErrQuizPublished
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1 AND published=0`, quizID)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (s *SQLStore) CreateEvaluation(ctx context.Context, e Evaluation) (Evaluation, error) {
	qj, err := json.Marshal(e.Questions)
	if err != nil {
		return Evaluation{}, err
	}
	aj, err := json.Marshal(e.Answers)
	if err != nil {
		return Evaluation{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO evaluations
		(id,student_id,classroom_id,material_id,quiz_id,quiz_type,questions_json,
		 answers_json,is_ai_generated,created_at,started_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		e.ID, e.StudentID, e.ClassroomID, e.MaterialID, e.QuizID, string(e.Type),
		string(qj), string(aj), boolInt(e.IsAIGenerated), e.CreatedAt.Unix(),
		unixOrNil(e.StartedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return Evaluation{}, ErrOpenAttemptExists
		}
		return Evaluation{}, err
	}
	return e, nil
}

const evalCols = `id,student_id,classroom_id,material_id,quiz_id,quiz_type,questions_json,
	answers_json,score,feedback_json,is_ai_generated,created_at,started_at,completed_at`

func (s *SQLStore) GetEvaluation(ctx context.Context, id string) (Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+evalCols+` FROM evaluations WHERE id=$1`, id)
	e, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Evaluation{}, ErrNotFound
	}
	return e, err
}

func (s *SQLStore) OpenEvaluation(ctx context.Context, studentID, quizID string) (Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+evalCols+` FROM evaluations
		WHERE student_id=$1 AND quiz_id=$2 AND completed_at IS NULL`, studentID, quizID)
	e, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Evaluation{}, ErrNotFound
	}
	return e, err
}

func (s *SQLStore) MarkStarted(ctx context.Context, evalID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE evaluations SET started_at=$1 WHERE id=$2 AND started_at IS NULL`,
		at.Unix(), evalID)
	return err
}

func (s *SQLStore) CompleteEvaluation(ctx context.Context, evalID string, answers []string, score float64, feedback []FeedbackItem, at time.Time) error {
	aj, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	fj, err := json.Marshal(feedback)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE evaluations
		SET answers_json=$1, score=$2, feedback_json=$3, completed_at=$4
		WHERE id=$5 AND completed_at IS NULL`,
		string(aj), score, string(fj), at.Unix(), evalID)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (s *SQLStore) CompletedAttemptCount(ctx context.Context, studentID, quizID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM evaluations
		WHERE student_id=$1 AND quiz_id=$2 AND completed_at IS NOT NULL`,
		studentID, quizID).Scan(&n)
	return n, err
}

func (s *SQLStore) ListEvaluations(ctx context.Context, opts EvaluationListOpts) ([]Evaluation, error) {
	where := []string{"1=1"}
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if opts.ClassroomID != "" {
		add("classroom_id=$%d", opts.ClassroomID)
	}
	if opts.StudentID != "" {
		add("student_id=$%d", opts.StudentID)
	}
	if opts.QuizID != "" {
		add("quiz_id=$%d", opts.QuizID)
	}
	switch opts.Status {
	case "completed":
		where = append(where, "completed_at IS NOT NULL")
	case "open":
		where = append(where, "completed_at IS NULL")
	}
	if opts.AIOnly {
		where = append(where, "is_ai_generated=1")
	}
	order := "created_at ASC"
	if opts.Sort == "created_at desc" {
		order = "created_at DESC"
	}
	query := `SELECT ` + evalCols + ` FROM evaluations WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY ` + order
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", opts.Offset)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Evaluation{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// --- scanning helpers ---

type rowScanner interface{ Scan(dest ...any) error }

func scanQuiz(r rowScanner) (Quiz, error) {
	var (
		q           Quiz
		typ, qjson  string
		required    int
		published   int
		from, until sql.NullInt64
		created     int64
	)
	if err := r.Scan(&q.ID, &q.ClassroomID, &q.TeacherID, &q.Title, &q.Description,
		&typ, &qjson, &q.TimeLimitMinutes, &q.PassingScore, &required,
		&from, &until, &published, &q.MaxAttempts, &created); err != nil {
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, err
	}
	q.Type = QuizType(typ)
	q.Required = required != 0
	q.Published = published != 0
	q.AvailableFrom = timeOrNil(from)
	q.AvailableUntil = timeOrNil(until)
	q.CreatedAt = time.Unix(created, 0).UTC()
	return q, nil
}

func scanEvaluation(r rowScanner) (Evaluation, error) {
	var (
		e                  Evaluation
		typ, qjson, ajson  string
		fjson              sql.NullString
		score              sql.NullFloat64
		ai                 int
		created            int64
		started, completed sql.NullInt64
	)
	if err := r.Scan(&e.ID, &e.StudentID, &e.ClassroomID, &e.MaterialID, &e.QuizID,
		&typ, &qjson, &ajson, &score, &fjson, &ai, &created, &started, &completed); err != nil {
		return Evaluation{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &e.Questions); err != nil {
		return Evaluation{}, err
	}
	if err := json.Unmarshal([]byte(ajson), &e.Answers); err != nil {
		return Evaluation{}, err
	}
	if fjson.Valid && fjson.String != "" {
		if err := json.Unmarshal([]byte(fjson.String), &e.Feedback); err != nil {
			return Evaluation{}, err
		}
	}
	if score.Valid {
		v := score.Float64
		e.Score = &v
	}
	e.Type = QuizType(typ)
	e.IsAIGenerated = ai != 0
	e.CreatedAt = time.Unix(created, 0).UTC()
	e.StartedAt = timeOrNil(started)
	e.CompletedAt = timeOrNil(completed)
	return e, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func timeOrNil(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
