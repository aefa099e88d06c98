// Package notify is a fire-and-forget in-app notification feed. Writes never
// fail the request that triggered them; failures are logged and dropped.
package notify

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification kinds.
const (
	KindMaterialUploaded = "material_uploaded"
	KindQuizPublished    = "quiz_published"
	KindQuizGraded       = "quiz_graded"
)

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

// Notify appends a notification for each user. Errors are logged, not
// returned; the feed is best-effort.
func (r *Repo) Notify(ctx context.Context, userIDs []string, kind, message string) {
	now := time.Now().Unix()
	for _, uid := range userIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO notifications (id,user_id,kind,message,is_read,created_at)
			 VALUES ($1,$2,$3,$4,0,$5)`,
			uuid.NewString(), uid, kind, message, now)
		if err != nil {
			log.Printf("notify %s: %v", uid, err)
		}
	}
}

// ListForUser returns the user's notifications, newest first.
func (r *Repo) ListForUser(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id,user_id,kind,message,is_read,created_at FROM notifications
		 WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Notification{}
	for rows.Next() {
		var (
			n       Notification
			read    int
			created int64
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Message, &read, &created); err != nil {
			return nil, err
		}
		n.Read = read != 0
		n.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification as seen.
func (r *Repo) MarkRead(ctx context.Context, userID, notificationID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read=1 WHERE id=$1 AND user_id=$2`, notificationID, userID)
	return err
}
