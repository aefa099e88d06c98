package classroom

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewInvitationCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := NewInvitationCode()
		if len(code) != 6 {
			t.Fatalf("code %q: length %d, want 6", code, len(code))
		}
		for _, c := range code {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Fatalf("code %q contains %q outside the alphabet", code, c)
			}
		}
		seen[code] = true
	}
	// 100 draws from a 36^6 space colliding down to a handful would mean a
	// broken generator.
	if len(seen) < 90 {
		t.Fatalf("only %d distinct codes out of 100", len(seen))
	}
}

func TestCreateAndJoin(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	svc := NewService(NewInMemoryStore(), func() time.Time { return now })

	c, err := svc.Create(ctx, "Biology 101", "intro course", "t1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.InvitationCode == "" || c.TeacherID != "t1" {
		t.Fatalf("classroom not populated: %+v", c)
	}

	// Join is case-insensitive on the code and idempotent.
	joined, err := svc.Join(ctx, strings.ToLower(c.InvitationCode), "s1")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.ID != c.ID {
		t.Fatalf("joined wrong classroom: %s", joined.ID)
	}
	if _, err := svc.Join(ctx, c.InvitationCode, "s1"); err != nil {
		t.Fatalf("repeat join must be idempotent: %v", err)
	}

	if _, err := svc.Join(ctx, "ZZZZZZ", "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for unknown code", err)
	}

	if _, err := svc.Create(ctx, "   ", "", "t1"); err == nil {
		t.Fatalf("expected error for blank name")
	}
}

func TestEnrollmentQueries(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	svc := NewService(store, nil)

	c, err := svc.Create(ctx, "Chemistry", "", "t1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, s := range []string{"s2", "s1"} {
		if _, err := svc.Join(ctx, c.InvitationCode, s); err != nil {
			t.Fatalf("join %s: %v", s, err)
		}
	}

	ok, err := store.IsEnrolled(ctx, c.ID, "s1")
	if err != nil || !ok {
		t.Fatalf("IsEnrolled(s1) = %v, %v", ok, err)
	}
	ok, _ = store.IsEnrolled(ctx, c.ID, "s9")
	if ok {
		t.Fatalf("s9 must not be enrolled")
	}

	ids, err := store.EnrolledStudentIDs(ctx, c.ID)
	if err != nil {
		t.Fatalf("student ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "s1" || ids[1] != "s2" {
		t.Fatalf("ids = %v, want sorted [s1 s2]", ids)
	}

	mine, err := store.ListByStudent(ctx, "s1")
	if err != nil || len(mine) != 1 || mine[0].ID != c.ID {
		t.Fatalf("ListByStudent = %+v, %v", mine, err)
	}
}

func TestMaterialStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	m := Material{ID: "m1", ClassroomID: "c1", Title: "Cell structure", Content: "mitochondria"}
	if err := store.PutMaterial(ctx, m); err != nil {
		t.Fatalf("put: %v", err)
	}
	title, err := store.MaterialTitle(ctx, "m1")
	if err != nil || title != "Cell structure" {
		t.Fatalf("title = %q, %v", title, err)
	}
	if _, err := store.MaterialTitle(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
