package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/term"

	"marginalia/internal/auth"
	"marginalia/internal/config"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: user-add <username>")
		os.Exit(2)
	}
	user := strings.TrimSpace(os.Args[1])
	if user == "" || strings.Contains(user, ":") {
		fmt.Fprintln(os.Stderr, "username must be non-empty and must not contain ':'")
		os.Exit(2)
	}

	cfg := config.Load()
	authPath := cfg.AuthFile
	if authPath == "" {
		authPath = filepath.Join(cfg.DataPath, "auth.txt")
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	confirm, err := promptPassword("Confirm: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if password != confirm {
		fmt.Fprintln(os.Stderr, "passwords do not match")
		os.Exit(1)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := upsertUser(authPath, user, hash); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s for user %q\n", authPath, user)
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

// upsertUser rewrites the auth file with the user's line replaced, or
// appended when absent. Comments and other users are preserved.
func upsertUser(path, user, hash string) error {
	var lines []string
	if raw, err := os.ReadFile(path); err == nil {
		if trimmed := strings.TrimRight(string(raw), "\n"); trimmed != "" {
			lines = strings.Split(trimmed, "\n")
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	entry := user + ":" + hash
	replaced := false
	for i, line := range lines {
		name, _, ok := strings.Cut(strings.TrimSpace(line), ":")
		if ok && strings.TrimSpace(name) == user {
			lines[i] = entry
			replaced = true
		}
	}
	if !replaced {
		lines = append(lines, entry)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600)
}
