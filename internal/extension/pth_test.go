package extension

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParsePth_SkipsBlankLinesAndComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.pth")
	content := "\n# a comment\n/opt/plugins/one\n\n/opt/plugins/two\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	paths, warnings, err := parsePth(path)
	if err != nil {
		t.Fatalf("parsePth: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if len(paths) != 2 || paths[0] != "/opt/plugins/one" || paths[1] != "/opt/plugins/two" {
		t.Errorf("unexpected paths: %v", paths)
	}
}

func TestParsePth_RejectsExecutableImportLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.pth")
	content := "/opt/plugins/one\nimport sneaky_module\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	paths, warnings, err := parsePth(path)
	if err != nil {
		t.Fatalf("parsePth: %v", err)
	}
	if len(paths) != 1 || paths[0] != "/opt/plugins/one" {
		t.Errorf("expected only the bare path line to survive, got %v", paths)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected exactly one warning for the rejected import line, got %v", warnings)
	}
}

func TestParsePth_MissingFileErrors(t *testing.T) {
	if _, _, err := parsePth(filepath.Join(t.TempDir(), "nope.pth")); err == nil {
		t.Error("expected an error for a nonexistent .pth file")
	}
}
