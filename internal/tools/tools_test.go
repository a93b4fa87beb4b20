package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReadTool(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "f.txt"), "alpha\nbeta\ngamma\n")

	tool := NewReadTool(dir)
	result, err := tool.Execute(context.Background(), map[string]any{"file_path": "f.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("read failed: %s", result.Error)
	}
	if !strings.Contains(result.Content, "beta") {
		t.Errorf("content missing line:\n%s", result.Content)
	}
	if !strings.Contains(result.Content, "2\t") {
		t.Errorf("content missing line numbers:\n%s", result.Content)
	}
}

func TestReadToolOffsetLimit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "f.txt"), "one\ntwo\nthree\nfour\n")

	tool := NewReadTool(dir)
	result, err := tool.Execute(context.Background(), map[string]any{
		"file_path": "f.txt",
		"offset":    float64(2), // Gemini sends numbers as float64
		"limit":     float64(2),
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(result.Content, "one") || strings.Contains(result.Content, "four") {
		t.Errorf("offset/limit not honored:\n%s", result.Content)
	}
	if !strings.Contains(result.Content, "two") || !strings.Contains(result.Content, "three") {
		t.Errorf("expected middle lines:\n%s", result.Content)
	}
}

func TestReadToolMissingFile(t *testing.T) {
	tool := NewReadTool(t.TempDir())
	result, err := tool.Execute(context.Background(), map[string]any{"file_path": "nope.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Error("reading a missing file should fail")
	}
}

func TestWriteToolCreatesWithParents(t *testing.T) {
	dir := t.TempDir()
	tool := NewWriteTool(dir)

	result, err := tool.Execute(context.Background(), map[string]any{
		"file_path": "sub/deep/new.txt",
		"content":   "hello\n",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("write failed: %s", result.Error)
	}

	data, err := os.ReadFile(filepath.Join(dir, "sub/deep/new.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello\n" {
		t.Errorf("written content = %q", data)
	}
}

func TestEditTool(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.go")
	writeFile(t, path, "package main\n\nfunc old() {}\n")

	tool := NewEditTool(dir)
	result, err := tool.Execute(context.Background(), map[string]any{
		"file_path":  "f.go",
		"old_string": "func old()",
		"new_string": "func renamed()",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("edit failed: %s", result.Error)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "func renamed()") {
		t.Errorf("edit not applied: %s", data)
	}
}

func TestEditToolAmbiguousMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "f.txt"), "x\nx\n")

	tool := NewEditTool(dir)
	result, err := tool.Execute(context.Background(), map[string]any{
		"file_path":  "f.txt",
		"old_string": "x",
		"new_string": "y",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Error("ambiguous edit should fail without replace_all")
	}

	result, err = tool.Execute(context.Background(), map[string]any{
		"file_path":   "f.txt",
		"old_string":  "x",
		"new_string":  "y",
		"replace_all": true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("replace_all edit failed: %s", result.Error)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "f.txt"))
	if string(data) != "y\ny\n" {
		t.Errorf("replace_all result = %q", data)
	}
}

func TestDeleteTool(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")
	writeFile(t, path, "bye")

	tool := NewDeleteTool(dir)
	result, err := tool.Execute(context.Background(), map[string]any{"file_path": "gone.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("delete failed: %s", result.Error)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still exists")
	}

	// Directories are refused.
	result, _ = tool.Execute(context.Background(), map[string]any{"file_path": "."})
	if result.Success {
		t.Error("deleting a directory should fail")
	}
}

func TestGlobTool(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), "package a")
	writeFile(t, filepath.Join(dir, "sub/b.go"), "package b")
	writeFile(t, filepath.Join(dir, "sub/c.txt"), "text")

	tool := NewGlobTool(dir)
	result, err := tool.Execute(context.Background(), map[string]any{"pattern": "**/*.go"})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("glob failed: %s", result.Error)
	}
	if !strings.Contains(result.Content, "a.go") || !strings.Contains(result.Content, "b.go") {
		t.Errorf("glob missed files:\n%s", result.Content)
	}
	if strings.Contains(result.Content, "c.txt") {
		t.Errorf("glob matched wrong extension:\n%s", result.Content)
	}
}

func TestGrepTool(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), "package a\nfunc Handler() {}\n")
	writeFile(t, filepath.Join(dir, "b.go"), "package b\n")

	tool := NewGrepTool(dir)
	result, err := tool.Execute(context.Background(), map[string]any{
		"pattern": `func \w+\(`,
		"include": "*.go",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Content, "a.go:2:") {
		t.Errorf("grep output missing match location:\n%s", result.Content)
	}
	if strings.Contains(result.Content, "b.go") {
		t.Errorf("grep matched file without pattern:\n%s", result.Content)
	}
}

func TestBashTool(t *testing.T) {
	dir := t.TempDir()
	tool := NewBashTool(dir, 0)

	result, err := tool.Execute(context.Background(), map[string]any{"command": "echo hello"})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("bash failed: %s", result.Error)
	}
	if !strings.Contains(result.Content, "hello") {
		t.Errorf("output = %q", result.Content)
	}
}

func TestBashToolNonZeroExit(t *testing.T) {
	tool := NewBashTool(t.TempDir(), 0)

	result, err := tool.Execute(context.Background(), map[string]any{"command": "exit 3"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Error("non-zero exit should not be a success")
	}
	if !strings.Contains(result.Error, "3") {
		t.Errorf("error missing exit code: %q", result.Error)
	}
}

func TestBashToolRunsInWorkDir(t *testing.T) {
	dir := t.TempDir()
	tool := NewBashTool(dir, 0)

	result, err := tool.Execute(context.Background(), map[string]any{"command": "pwd"})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := filepath.EvalSymlinks(strings.TrimSpace(result.Content))
	want, _ := filepath.EvalSymlinks(dir)
	if got != want {
		t.Errorf("pwd = %q, want %q", got, want)
	}
}

func TestListDirTool(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "file.txt"), "x")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	tool := NewListDirTool(dir)
	result, err := tool.Execute(context.Background(), map[string]any{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Content, "file.txt") || !strings.Contains(result.Content, "sub/") {
		t.Errorf("listing = %q", result.Content)
	}
}
