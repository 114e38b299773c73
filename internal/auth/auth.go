// Package auth implements argon2id password hashing in PHC string format
// and the user:hash auth file consumed by the web layer.
package auth

import (
	"bufio"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	hashMemory      = 64 * 1024
	hashIterations  = 3
	hashParallelism = 1
	saltLength      = 16
	keyLength       = 32
)

type Hash struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	sum         []byte
}

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	sum := argon2.IDKey([]byte(password), salt, hashIterations, hashMemory, hashParallelism, keyLength)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		hashMemory, hashIterations, hashParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

func Parse(phc string) (*Hash, error) {
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, errors.New("invalid argon2id hash format")
	}
	if parts[2] != "v=19" {
		return nil, fmt.Errorf("unsupported argon2id version %q", parts[2])
	}
	var m, t uint32
	var p uint8
	if n, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil || n != 3 {
		return nil, errors.New("invalid argon2id params")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, errors.New("invalid argon2id salt")
	}
	sum, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, errors.New("invalid argon2id hash")
	}
	return &Hash{memory: m, iterations: t, parallelism: p, salt: salt, sum: sum}, nil
}

func (h *Hash) Verify(password string) bool {
	sum := argon2.IDKey([]byte(password), h.salt, h.iterations, h.memory, h.parallelism, uint32(len(h.sum)))
	return subtle.ConstantTimeCompare(sum, h.sum) == 1
}

// LoadFile reads a user:hash file. Blank lines and #-comments are skipped;
// duplicate users and non-argon2id hashes are errors.
func LoadFile(path string) (map[string]*Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open auth file: %w", err)
	}
	defer f.Close()

	users := make(map[string]*Hash)
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		user, phc, ok := strings.Cut(line, ":")
		user = strings.TrimSpace(user)
		phc = strings.TrimSpace(phc)
		if !ok || user == "" || phc == "" {
			return nil, fmt.Errorf("invalid auth line %d: expected user:hash", lineNum)
		}
		if _, exists := users[user]; exists {
			return nil, fmt.Errorf("duplicate user %q in auth file", user)
		}
		parsed, err := Parse(phc)
		if err != nil {
			return nil, fmt.Errorf("invalid auth line %d: %w", lineNum, err)
		}
		users[user] = parsed
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read auth file: %w", err)
	}
	return users, nil
}
