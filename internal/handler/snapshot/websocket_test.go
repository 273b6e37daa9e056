package snapshot

import (
	"context"
	"testing"

	"github.com/coursedesk/backend/internal/model/registry"
	chatservice "github.com/coursedesk/backend/internal/service/chat"
)

func TestBuildSnapshotUnboundSession(t *testing.T) {
	store := registry.NewStore(registry.Seed())
	chatSvc := chatservice.NewService()
	h := New(store, chatSvc)

	session, _ := chatSvc.CreateSession(context.Background())

	snap := h.buildSnapshot(session.ID)
	if len(snap.Courses) != len(registry.Seed()) {
		t.Fatalf("expected full catalog, got %d courses", len(snap.Courses))
	}
	if len(snap.EnrolledCourseIDs) != 0 {
		t.Fatalf("expected no enrolled course ids, got %v", snap.EnrolledCourseIDs)
	}
}

func TestBuildSnapshotWithEnrollments(t *testing.T) {
	store := registry.NewStore(registry.Seed())
	chatSvc := chatservice.NewService()
	h := New(store, chatSvc)

	session, _ := chatSvc.CreateSession(context.Background())
	student, _ := store.RegisterStudent("Alice", "alice@x.edu")
	chatSvc.BindStudent(context.Background(), session.ID, student.ID)

	store.Enroll(student.ID, "CS101")
	store.Enroll(student.ID, "MATH140")

	snap := h.buildSnapshot(session.ID)
	if len(snap.EnrolledCourseIDs) != 2 {
		t.Fatalf("expected 2 enrolled course ids, got %v", snap.EnrolledCourseIDs)
	}
	if snap.EnrolledCourseIDs[0] != "CS101" || snap.EnrolledCourseIDs[1] != "MATH140" {
		t.Fatalf("unexpected enrolled course order: %v", snap.EnrolledCourseIDs)
	}
}

func TestBuildSnapshotUnknownSession(t *testing.T) {
	store := registry.NewStore(registry.Seed())
	h := New(store, chatservice.NewService())

	snap := h.buildSnapshot("missing")
	if len(snap.Courses) == 0 {
		t.Fatal("catalog must be present even for unknown sessions")
	}
	if len(snap.EnrolledCourseIDs) != 0 {
		t.Fatalf("expected no enrolled ids, got %v", snap.EnrolledCourseIDs)
	}
}
