package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"expertminer/internal/models"
)

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "expert_jane.md")
	content := []byte("# Jane Doe Playbook\n\nSome extracted insights.\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	sum := sha256.Sum256(content)

	s := &Store{baseDir: dir}
	ctx := context.Background()

	ok, err := s.Verify(ctx, models.Artifact{Path: path, SHA256: hex.EncodeToString(sum[:])})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Error("Verify should pass for unmodified file")
	}

	// Tamper with the file.
	if err := os.WriteFile(path, append(content, '!'), 0o644); err != nil {
		t.Fatalf("tamper: %v", err)
	}
	ok, err = s.Verify(ctx, models.Artifact{Path: path, SHA256: hex.EncodeToString(sum[:])})
	if err != nil {
		t.Fatalf("Verify after tamper failed: %v", err)
	}
	if ok {
		t.Error("Verify should fail for modified file")
	}

	_, err = s.Verify(ctx, models.Artifact{Path: filepath.Join(dir, "missing.md"), SHA256: "x"})
	if err == nil {
		t.Error("Verify should error for missing file")
	}
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	runDir := filepath.Join(dir, "run-1")
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := []byte("instructions body")
	if err := os.WriteFile(filepath.Join(runDir, "instructions.md"), want, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s := &Store{baseDir: dir}
	got, err := s.Read("run-1", "instructions")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("Read returned %q, want %q", got, want)
	}

	if _, err := s.Read("run-1", "nope"); err == nil {
		t.Error("Read should error for missing kind")
	}
}
