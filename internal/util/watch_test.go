package util

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWaitForFileReturnsImmediatelyIfPresent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "response.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := WaitForFile(ctx, path); err != nil {
		t.Fatalf("expected immediate return, got %v", err)
	}
}

func TestWaitForFileWakesOnCreate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "response.json")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- WaitForFile(ctx, path) }()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected wake with no error, got %v", err)
		}
	case <-time.After(4 * time.Second):
		t.Fatal("timed out waiting for WaitForFile to notice file creation")
	}
}

func TestWaitForFileRespectsContextCancellation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "response.json")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := WaitForFile(ctx, path); err == nil {
		t.Fatal("expected context deadline error")
	}
}
