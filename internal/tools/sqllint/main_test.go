package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLintFindsMissingAndDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.go", "package q\n\nconst QOne = `--sql 8a8e0d52-7f5d-4f21-8b7d-f7d4b821eed7\nselect 1;\n`\n\nconst QBare = `select 2;`\n\nconst Prompt = `Update the design with care.`\n")
	b := writeFile(t, dir, "b.go", "package q\n\nconst QTwo = `--sql 8a8e0d52-7f5d-4f21-8b7d-f7d4b821eed7\nselect 3;\n`\n")

	violations, err := lint([]string{a, b})
	if err != nil {
		t.Fatalf("lint error: %v", err)
	}
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %#v", violations)
	}
	if violations[0].name != "QBare" || !strings.Contains(violations[0].message, "missing") {
		t.Fatalf("unexpected first violation: %#v", violations[0])
	}
	if violations[1].name != "QTwo" || !strings.Contains(violations[1].message, "QOne") {
		t.Fatalf("unexpected second violation: %#v", violations[1])
	}
}

func TestGoFilesSkipsTestsAndUnderscoreDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.go", "package q\n")
	writeFile(t, dir, "keep_test.go", "package q\n")
	if err := os.Mkdir(filepath.Join(dir, "_examples"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "_examples"), "skip.go", "package q\n")

	files, err := goFiles(dir)
	if err != nil {
		t.Fatalf("goFiles error: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "keep.go" {
		t.Fatalf("unexpected files: %v", files)
	}
}
