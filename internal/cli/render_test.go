package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteArtifactsSingleFormat(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "diagram.svg")

	artifacts := map[string][]byte{"svg": []byte("<svg/>")}
	if err := writeArtifacts(artifacts, []string{"svg"}, "flow.toml", out); err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("artifact content = %q, want %q", data, "<svg/>")
	}
}

func TestWriteArtifactsMultipleFormats(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "diagram")

	artifacts := map[string][]byte{
		"dot": []byte("digraph G {}"),
		"svg": []byte("<svg/>"),
	}
	if err := writeArtifacts(artifacts, []string{"dot", "svg"}, "flow.toml", base); err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}

	for _, ext := range []string{"dot", "svg"} {
		path := base + "." + ext
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected artifact %s: %v", path, err)
		}
	}
}

func TestWriteArtifactsDefaultsToInputBase(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "flow.toml")

	artifacts := map[string][]byte{"dot": []byte("digraph G {}")}
	if err := writeArtifacts(artifacts, []string{"dot"}, input, ""); err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}

	want := filepath.Join(dir, "flow.dot")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected artifact %s: %v", want, err)
	}
}

func TestWriteArtifactsBadPath(t *testing.T) {
	artifacts := map[string][]byte{"dot": []byte("digraph G {}")}
	err := writeArtifacts(artifacts, []string{"dot"}, "flow.toml", filepath.Join(t.TempDir(), "missing", "out.dot"))
	if err == nil {
		t.Error("writeArtifacts() should fail when the output directory does not exist")
	}
}
