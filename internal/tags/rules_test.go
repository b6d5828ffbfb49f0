package tags

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRules(t *testing.T) {
	t.Run("well formed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tags.json")
		content := `{
			"rewrite": {"Hip Hop": "Hip-Hop"},
			"exclude": ["New York"],
			"remove": ["Private Event"]
		}`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("writing rules file: %v", err)
		}

		rules := LoadRules(path)
		if got, ok := rules.RewriteFor("hiphop"); !ok || got != "Hip-Hop" {
			t.Errorf("RewriteFor(\"hiphop\") = %q, %v, want \"Hip-Hop\", true", got, ok)
		}
		if !rules.Excluded("new york") {
			t.Error("Excluded(\"new york\") = false, want true")
		}
		if !rules.Removable("PrivateEvent") {
			t.Error("Removable(\"PrivateEvent\") = false, want true")
		}
		if rules.Removable("Jazz") {
			t.Error("Removable(\"Jazz\") = true, want false")
		}
	})

	t.Run("missing file degrades to empty rules", func(t *testing.T) {
		rules := LoadRules(filepath.Join(t.TempDir(), "missing.json"))
		if rules == nil {
			t.Fatal("LoadRules() = nil, want empty rules")
		}
		if rules.Excluded("anything") {
			t.Error("empty rules excluded a tag")
		}
		if _, ok := rules.RewriteFor("anything"); ok {
			t.Error("empty rules produced a rewrite")
		}
	})

	t.Run("unparseable file degrades to empty rules", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tags.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatalf("writing rules file: %v", err)
		}
		rules := LoadRules(path)
		if rules == nil {
			t.Fatal("LoadRules() = nil, want empty rules")
		}
		if rules.Removable("anything") {
			t.Error("empty rules removed a tag")
		}
	})
}
