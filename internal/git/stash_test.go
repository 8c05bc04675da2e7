package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestStash_ShelvesAndRestores(t *testing.T) {
	requireGit(t)
	ctx := context.Background()

	dir := initRepo(t)
	writeFile(t, dir, "tracked.txt", "v1\n")
	execGit(t, dir, "add", ".")
	execGit(t, dir, "commit", "-m", "init")

	// one tracked modification, one untracked file
	writeFile(t, dir, "tracked.txt", "v2\n")
	writeFile(t, dir, "untracked.txt", "new\n")

	s, err := AcquireStash(ctx, dir, "histscan scan --commits")
	if err != nil {
		t.Fatalf("AcquireStash: %v", err)
	}
	if !s.Stashed() {
		t.Fatal("expected a shelving to occur")
	}

	// the working tree is clean while the stash is held
	if got, _ := os.ReadFile(filepath.Join(dir, "tracked.txt")); string(got) != "v1\n" {
		t.Errorf("tracked.txt while shelved = %q, want %q", got, "v1\n")
	}
	if _, err := os.Stat(filepath.Join(dir, "untracked.txt")); !os.IsNotExist(err) {
		t.Error("untracked.txt still present while shelved")
	}

	if err := s.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}

	if got, _ := os.ReadFile(filepath.Join(dir, "tracked.txt")); string(got) != "v2\n" {
		t.Errorf("tracked.txt after release = %q, want %q", got, "v2\n")
	}
	if got, _ := os.ReadFile(filepath.Join(dir, "untracked.txt")); string(got) != "new\n" {
		t.Errorf("untracked.txt after release = %q, want %q", got, "new\n")
	}
}

func TestStash_CleanTreeNoShelving(t *testing.T) {
	requireGit(t)
	ctx := context.Background()

	dir := initRepo(t)
	writeFile(t, dir, "tracked.txt", "v1\n")
	execGit(t, dir, "add", ".")
	execGit(t, dir, "commit", "-m", "init")

	s, err := AcquireStash(ctx, dir, "histscan scan --commits")
	if err != nil {
		t.Fatalf("AcquireStash: %v", err)
	}
	if s.Stashed() {
		t.Fatal("unexpected shelving on a clean tree")
	}
	if err := s.Release(ctx); err != nil {
		t.Fatalf("Release on clean tree: %v", err)
	}
}

func TestStash_ReleaseIdempotent(t *testing.T) {
	requireGit(t)
	ctx := context.Background()

	dir := initRepo(t)
	writeFile(t, dir, "a.txt", "x\n")
	execGit(t, dir, "add", ".")
	execGit(t, dir, "commit", "-m", "init")
	writeFile(t, dir, "b.txt", "y\n")

	s, err := AcquireStash(ctx, dir, "histscan scan --commits")
	if err != nil {
		t.Fatalf("AcquireStash: %v", err)
	}
	if err := s.Release(ctx); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	// second release must not pop anything else
	if err := s.Release(ctx); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	if got, _ := os.ReadFile(filepath.Join(dir, "b.txt")); string(got) != "y\n" {
		t.Errorf("b.txt after double release = %q, want %q", got, "y\n")
	}
}
