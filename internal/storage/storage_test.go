package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cityatlas/eventpipe/internal/event"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func writeExtracted(t *testing.T, s *Store, date, name, content string) {
	t.Helper()
	dir := filepath.Join(s.ExtractedDir(), date)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestStore_ListExtracted(t *testing.T) {
	s := newTestStore(t)
	writeExtracted(t, s, "20260901", "brooklyn_museum.md", "table a")
	writeExtracted(t, s, "20260901", "notes.txt", "not a table")
	writeExtracted(t, s, "20260902", "20260902_blue_note.md", "table b")

	files, err := s.ListExtracted()
	if err != nil {
		t.Fatalf("ListExtracted() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("ListExtracted() returned %d files, want 2", len(files))
	}

	first := files[0]
	if first.Date != "20260901" || first.Name != "brooklyn_museum" {
		t.Errorf("first = %s/%s, want 20260901/brooklyn_museum", first.Date, first.Name)
	}
	if first.Site != "brooklyn museum" {
		t.Errorf("Site = %q, want %q", first.Site, "brooklyn museum")
	}

	// Redundant date prefixes on file names are stripped.
	second := files[1]
	if second.Name != "blue_note" {
		t.Errorf("second name = %q, want %q", second.Name, "blue_note")
	}

	text, err := s.ReadExtracted(first)
	if err != nil {
		t.Fatalf("ReadExtracted() error = %v", err)
	}
	if text != "table a" {
		t.Errorf("ReadExtracted() = %q, want %q", text, "table a")
	}
}

func TestStore_ListExtracted_NoDirectory(t *testing.T) {
	s := newTestStore(t)
	files, err := s.ListExtracted()
	if err != nil {
		t.Fatalf("ListExtracted() error = %v", err)
	}
	if files != nil {
		t.Errorf("ListExtracted() = %v, want nil", files)
	}
}

func TestStore_WriteAndLoadProcessed(t *testing.T) {
	s := newTestStore(t)
	f := SourceFile{Date: "20260901", Name: "blue_note", Site: "blue note"}

	if s.HasProcessed(f) {
		t.Error("HasProcessed() = true before writing")
	}

	events := []*event.Event{
		{Name: "Jazz Night", URLs: []string{"https://a"}, Occurrences: []event.Occurrence{{StartDate: "2026-09-05"}}},
	}
	if err := s.WriteProcessed(f, events); err != nil {
		t.Fatalf("WriteProcessed() error = %v", err)
	}
	if !s.HasProcessed(f) {
		t.Error("HasProcessed() = false after writing")
	}

	all, err := s.LoadAllProcessed()
	if err != nil {
		t.Fatalf("LoadAllProcessed() error = %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("LoadAllProcessed() returned %d events, want 1", len(all))
	}
	if all[0].Name != "Jazz Night" {
		t.Errorf("Name = %q, want %q", all[0].Name, "Jazz Night")
	}
	if len(all[0].Occurrences) != 1 || all[0].Occurrences[0].StartDate != "2026-09-05" {
		t.Errorf("Occurrences = %v, want the original occurrence", all[0].Occurrences)
	}
}

func TestStore_WriteProcessed_NilEvents(t *testing.T) {
	s := newTestStore(t)
	f := SourceFile{Date: "20260901", Name: "empty_site", Site: "empty site"}

	if err := s.WriteProcessed(f, nil); err != nil {
		t.Fatalf("WriteProcessed() error = %v", err)
	}

	data, err := os.ReadFile(s.OutputPath(f))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if got := string(data); got != "[]\n" {
		t.Errorf("output = %q, want empty JSON array", got)
	}
}

func TestStore_LoadAllProcessed_SkipsBadFiles(t *testing.T) {
	s := newTestStore(t)
	f := SourceFile{Date: "20260901", Name: "good", Site: "good"}
	if err := s.WriteProcessed(f, []*event.Event{{Name: "Jazz Night"}}); err != nil {
		t.Fatalf("WriteProcessed() error = %v", err)
	}

	badPath := filepath.Join(s.ProcessedDir(), "20260901", "bad.json")
	if err := os.WriteFile(badPath, []byte("{not json"), 0644); err != nil {
		t.Fatalf("writing bad file: %v", err)
	}

	all, err := s.LoadAllProcessed()
	if err != nil {
		t.Fatalf("LoadAllProcessed() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("LoadAllProcessed() returned %d events, want 1 (bad file skipped)", len(all))
	}
}

func TestSiteName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"brooklyn_museum", "brooklyn museum"},
		{"Blue_Note", "blue note"},
		{"nowadays", "nowadays"},
	}

	for _, tt := range tests {
		if got := SiteName(tt.input); got != tt.want {
			t.Errorf("SiteName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
