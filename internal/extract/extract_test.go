package extract

import (
	"strings"
	"testing"
	"time"
)

func TestChunk(t *testing.T) {
	t.Run("short content is one chunk", func(t *testing.T) {
		chunks := Chunk("hello world", 100)
		if len(chunks) != 1 || chunks[0] != "hello world" {
			t.Errorf("Chunk() = %v, want the content unchanged", chunks)
		}
	})

	t.Run("splits at last heading", func(t *testing.T) {
		content := "intro text\n## First\nbody body body\n## Second\nmore body"
		chunks := Chunk(content, 40)
		if len(chunks) < 2 {
			t.Fatalf("Chunk() returned %d chunks, want at least 2", len(chunks))
		}
		if !strings.HasPrefix(chunks[1], "\n## ") {
			t.Errorf("second chunk starts %q, want a heading boundary", chunks[1][:10])
		}
	})

	t.Run("covers all content in order", func(t *testing.T) {
		content := strings.Repeat("paragraph one\n\n", 50)
		chunks := Chunk(content, 100)
		if strings.Join(chunks, "") != content {
			t.Error("concatenated chunks do not reproduce the content")
		}
		for _, c := range chunks {
			if len(c) > 100 {
				t.Errorf("chunk of %d bytes exceeds the limit", len(c))
			}
		}
	})

	t.Run("zero size uses default", func(t *testing.T) {
		chunks := Chunk("hello", 0)
		if len(chunks) != 1 {
			t.Errorf("Chunk() returned %d chunks, want 1", len(chunks))
		}
	})

	t.Run("empty content", func(t *testing.T) {
		if chunks := Chunk("", 100); chunks != nil {
			t.Errorf("Chunk(\"\") = %v, want nil", chunks)
		}
	})
}

func TestPrompt(t *testing.T) {
	src := Source{Name: "Blue Note", URL: "https://bluenote.example", Notes: "Check the calendar page."}
	today := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	prompt := Prompt(src, "page content here", today)

	for _, want := range []string{
		"2026-09-01",
		"Blue Note",
		"https://bluenote.example",
		"| name | location |",
		"Note: Check the calendar page.",
		"page content here",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt() missing %q", want)
		}
	}
}

func TestCombine(t *testing.T) {
	table1 := "| name | location |\n|---|---|\n| A | X |\n| B | Y |"
	table2 := "| name | location |\n|---|---|\n| C | Z |"

	t.Run("single response unchanged", func(t *testing.T) {
		if got := Combine([]string{table1}); got != table1 {
			t.Errorf("Combine() = %q, want %q", got, table1)
		}
	})

	t.Run("later headers dropped", func(t *testing.T) {
		got := Combine([]string{table1, table2})
		want := table1 + "\n| C | Z |"
		if got != want {
			t.Errorf("Combine() = %q, want %q", got, want)
		}
	})

	t.Run("empty later table contributes nothing", func(t *testing.T) {
		got := Combine([]string{table1, "| name | location |\n|---|---|"})
		if got != table1 {
			t.Errorf("Combine() = %q, want %q", got, table1)
		}
	})
}
