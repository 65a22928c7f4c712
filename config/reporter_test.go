package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()

	arc, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("failed to open report: %v", err)
	}
	defer arc.Close()

	out := make(map[string]string)
	for _, f := range arc.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read %s: %v", f.Name, err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func TestReportClose_ArchivesEntries(t *testing.T) {
	tmpDir := t.TempDir()

	conf := ReporterConfig{Destination: filepath.Join(tmpDir, "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if r.Name() != conf.Destination {
		t.Errorf("Name() = %q, want %q", r.Name(), conf.Destination)
	}

	file := filepath.Join(tmpDir, "source.xml")
	if err := os.WriteFile(file, []byte("<Root/>"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	dir := filepath.Join(tmpDir, "fragments")
	if err := os.MkdirAll(filepath.Join(dir, "Nested"), 0755); err != nil {
		t.Fatalf("failed to create test dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Nested", "n1.xml"), []byte("<n/>"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	r.Store("failed/source.xml", file)
	r.Store("fragments", dir)
	r.Store("absent", filepath.Join(tmpDir, "absent"))
	r.StoreData("config/actual.yaml", []byte("version: 1\n"))

	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error: %v", err)
	}

	entries := readArchive(t, conf.Destination)
	if got := entries["failed/source.xml"]; got != "<Root/>" {
		t.Errorf("stored file content = %q", got)
	}
	if got := entries["fragments/Nested/n1.xml"]; got != "<n/>" {
		t.Errorf("stored directory content = %q", got)
	}
	if got := entries["config/actual.yaml"]; got != "version: 1\n" {
		t.Errorf("stored data = %q", got)
	}
	if _, ok := entries["absent"]; ok {
		t.Error("absent files should not be archived")
	}
	manifest, ok := entries["MANIFEST"]
	if !ok {
		t.Fatal("MANIFEST is missing")
	}
	for _, name := range []string{"failed/source.xml", "fragments", "config/actual.yaml", "absent"} {
		if !strings.Contains(manifest, name) {
			t.Errorf("MANIFEST does not mention %s", name)
		}
	}

	// stored sources are never touched
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("stored directory should not be removed: %v", err)
	}
}

func TestReportStore_Overwrite(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.Store("name", "/a")
	r.Store("name", "/a")

	defer func() {
		if recover() == nil {
			t.Error("expected panic when storing different path under the same name")
		}
	}()
	r.Store("name", "/b")
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	r.Store("name", "/a")
	r.StoreData("data", []byte("x"))
	if r.Name() != "" {
		t.Errorf("Name on nil report should be empty")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}
