package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"careerbot/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "careerbot.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveLoadConversation(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	conv := &domain.Conversation{UserID: "alice", Mode: domain.ModeJobs}
	conv.Resume = domain.ResumeProgress{Active: true, Step: 2, Answers: map[string]string{"name": "Alice"}}
	conv.Append(domain.RoleUser, "find developer jobs", nil)
	conv.Append(domain.RoleAssistant, "here you go", &domain.CandidateSet{
		Jobs:  []domain.JobRecord{{ID: "1", Title: "Backend Developer", Company: "Acme", Skills: []string{"Go"}}},
		Query: "find developer jobs",
	})
	if err := db.SaveConversation(ctx, conv); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if conv.ID == "" {
		t.Error("save should assign an id")
	}

	got, err := db.LoadConversation(ctx, "alice")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.ID != conv.ID || got.Mode != domain.ModeJobs || len(got.Turns) != 2 {
		t.Fatalf("unexpected conversation: %+v", got)
	}
	if got.Turns[0].Candidates != nil {
		t.Error("user turn should have no candidates")
	}
	set := got.ActiveCandidates()
	if set == nil || set.Jobs[0].Company != "Acme" || set.Jobs[0].Skills[0] != "Go" {
		t.Errorf("candidates not restored: %+v", set)
	}
	if got.Resume.Step != 2 || got.Resume.Answers["name"] != "Alice" {
		t.Errorf("resume progress not restored: %+v", got.Resume)
	}
	if got.Turns[1].CreatedAt.IsZero() {
		t.Error("timestamps not restored")
	}
}

func TestSaveConversation_Replaces(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	conv := &domain.Conversation{UserID: "bob", Mode: domain.ModeGeneral}
	conv.Append(domain.RoleUser, "one", nil)
	conv.Append(domain.RoleAssistant, "two", nil)
	if err := db.SaveConversation(ctx, conv); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	conv.Reset()
	conv.Append(domain.RoleUser, "fresh", nil)
	if err := db.SaveConversation(ctx, conv); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	got, err := db.LoadConversation(ctx, "bob")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(got.Turns) != 1 || got.Turns[0].Content != "fresh" {
		t.Errorf("expected replaced history, got %+v", got.Turns)
	}
}

func TestLoadConversation_NotFoundAndClear(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if _, err := db.LoadConversation(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	conv := &domain.Conversation{UserID: "carol", Mode: domain.ModeGeneral}
	conv.Append(domain.RoleUser, "hi", nil)
	if err := db.SaveConversation(ctx, conv); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := db.ClearConversation(ctx, "carol"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := db.LoadConversation(ctx, "carol"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after clear, got %v", err)
	}
	var n int
	if err := db.Pool.QueryRow(`SELECT COUNT(*) FROM turns;`).Scan(&n); err != nil || n != 0 {
		t.Errorf("turns should cascade, count=%d err=%v", n, err)
	}
}

func TestSaveConversation_RequiresUser(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveConversation(context.Background(), &domain.Conversation{}); err == nil {
		t.Error("expected error for empty user id")
	}
}
