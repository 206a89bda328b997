package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsConfigWrites(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("name: before\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	changed := make(chan string, 4)
	w, err := NewWatcher(20*time.Millisecond, func(path string) { changed <- path })
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()
	if err := w.AddFile(configPath); err != nil {
		t.Fatalf("AddFile: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write other: %v", err)
	}
	if err := os.WriteFile(configPath, []byte("name: after\n"), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case path := <-changed:
		want, _ := filepath.Abs(configPath)
		got, _ := filepath.Abs(path)
		if got != want {
			t.Errorf("expected change for %s, got %s", want, got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for config change")
	}
}

func TestWatcherDirectory(t *testing.T) {
	dir := t.TempDir()
	changed := make(chan string, 4)
	w, err := NewWatcher(10*time.Millisecond, func(path string) { changed <- path })
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()
	if err := w.AddDir(dir); err != nil {
		t.Fatalf("AddDir: %v", err)
	}
	if err := w.AddDir(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	if err := os.WriteFile(filepath.Join(dir, "weekly.md"), []byte("---\nname: weekly\n---\nbody"), 0644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	select {
	case path := <-changed:
		if filepath.Base(path) != "weekly.md" {
			t.Errorf("expected weekly.md, got %s", path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for directory change")
	}
}

func TestNewWatcherRequiresCallback(t *testing.T) {
	if _, err := NewWatcher(time.Millisecond, nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}
