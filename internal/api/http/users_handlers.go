package http

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserDirectory answers username lookups for exports and dashboards.
type UserDirectory struct{ db *sql.DB }

func NewUserDirectory(db *sql.DB) *UserDirectory { return &UserDirectory{db: db} }

func (d *UserDirectory) Username(ctx context.Context, id string) (string, error) {
	var name string
	err := d.db.QueryRowContext(ctx, `SELECT username FROM users WHERE id=$1`, id).Scan(&name)
	return name, err
}

type userRow struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`               // usually "student"
	Password string `json:"password,omitempty"` // plaintext optional (LAN-only)
}

// POST /users/bulk — teachers provision student accounts in batches. Accepts
// either a multipart file= (CSV or JSON) or a raw JSON array body.
func BulkUpsertUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []userRow
		ct := r.Header.Get("Content-Type")
		if strings.HasPrefix(ct, "multipart/form-data") {
			f, _, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "file required", 400)
				return
			}
			defer f.Close()
			// sniff simple CSV vs JSON by first non-space byte
			buf := make([]byte, 1)
			if _, err := f.Read(buf); err != nil {
				http.Error(w, "empty file", 400)
				return
			}
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				http.Error(w, "rewind file", 500)
				return
			}
			if buf[0] == '[' || buf[0] == '{' {
				if err := json.NewDecoder(f).Decode(&rows); err != nil {
					http.Error(w, "bad json", 400)
					return
				}
			} else {
				rs, err := parseUserCSV(f)
				if err != nil {
					http.Error(w, "bad csv: "+err.Error(), 400)
					return
				}
				rows = rs
			}
		} else {
			if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
				http.Error(w, "expected JSON array or multipart file", 400)
				return
			}
		}
		if len(rows) == 0 {
			_ = json.NewEncoder(w).Encode(map[string]any{"inserted": 0, "updated": 0})
			return
		}

		ins, upd, err := upsertUsers(r.Context(), db, rows)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"inserted": ins, "updated": upd})
	}
}

// GET /users?role=
func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		var rows *sql.Rows
		var err error
		if role == "" {
			rows, err = db.QueryContext(r.Context(), `SELECT id,username,role FROM users ORDER BY username`)
		} else {
			rows, err = db.QueryContext(r.Context(), `SELECT id,username,role FROM users WHERE role=$1 ORDER BY username`, role)
		}
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		defer rows.Close()
		out := []map[string]string{}
		for rows.Next() {
			var id, u, role string
			if err := rows.Scan(&id, &u, &role); err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			out = append(out, map[string]string{"id": id, "username": u, "role": role})
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

func parseUserCSV(r io.Reader) ([]userRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	hdr, err := cr.Read()
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range hdr {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx["username"]; !ok {
		return nil, errors.New("missing column: username")
	}
	var rows []userRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := userRow{Username: rec[idx["username"]]}
		if i, ok := idx["id"]; ok {
			row.ID = rec[i]
		}
		if i, ok := idx["role"]; ok {
			row.Role = strings.ToLower(rec[i])
		}
		if i, ok := idx["password"]; ok {
			row.Password = rec[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func upsertUsers(ctx context.Context, db *sql.DB, rows []userRow) (inserted, updated int, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	now := time.Now().Unix()
	for _, r := range rows {
		if r.Role == "" {
			r.Role = "student"
		}
		if r.Role != "student" && r.Role != "teacher" && r.Role != "admin" {
			return inserted, updated, errors.New("invalid role: " + r.Role)
		}
		var phash string
		if r.Password != "" {
			b, e := bcrypt.GenerateFromPassword([]byte(r.Password), 12)
			if e != nil {
				return inserted, updated, e
			}
			phash = string(b)
		}

		// Upsert: if exists update (optionally password), else insert
		// (password required).
		var existingID string
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM users WHERE id=$1 OR username=$2`, r.ID, r.Username).Scan(&existingID)
		switch {
		case err == nil:
			if phash != "" {
				_, err = tx.ExecContext(ctx, `UPDATE users SET username=$1, role=$2, password_hash=$3 WHERE id=$4`,
					r.Username, r.Role, phash, existingID)
			} else {
				_, err = tx.ExecContext(ctx, `UPDATE users SET username=$1, role=$2 WHERE id=$3`,
					r.Username, r.Role, existingID)
			}
			if err != nil {
				return inserted, updated, err
			}
			updated++
		case errors.Is(err, sql.ErrNoRows):
			if phash == "" {
				return inserted, updated, errors.New("password required for new user: " + r.Username)
			}
			if r.ID == "" {
				r.ID = uuid.NewString()
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5)`,
				r.ID, r.Username, phash, r.Role, now)
			if err != nil {
				return inserted, updated, err
			}
			inserted++
		default:
			return inserted, updated, err
		}
	}
	return
}
