package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUpsertUserAppendsAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.txt")

	if err := upsertUser(path, "alice", "$argon2id$hash-one"); err != nil {
		t.Fatalf("upsertUser: %v", err)
	}
	if err := upsertUser(path, "bob", "$argon2id$hash-two"); err != nil {
		t.Fatalf("upsertUser bob: %v", err)
	}
	if err := upsertUser(path, "alice", "$argon2id$hash-three"); err != nil {
		t.Fatalf("upsertUser replace: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[0] != "alice:$argon2id$hash-three" {
		t.Fatalf("alice line = %q", lines[0])
	}
	if lines[1] != "bob:$argon2id$hash-two" {
		t.Fatalf("bob line = %q", lines[1])
	}
}

func TestUpsertUserKeepsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.txt")
	if err := os.WriteFile(path, []byte("# managed by user-add\nalice:$argon2id$old\n"), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := upsertUser(path, "alice", "$argon2id$new"); err != nil {
		t.Fatalf("upsertUser: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(raw), "# managed by user-add\n") {
		t.Fatalf("comment lost: %q", raw)
	}
	if !strings.Contains(string(raw), "alice:$argon2id$new") {
		t.Fatalf("hash not replaced: %q", raw)
	}
}
