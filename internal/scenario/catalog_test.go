package scenario_test

import (
	"os"
	"path/filepath"
	"testing"

	"parley/internal/scenario"
)

func TestLoadCatalogBuiltins(t *testing.T) {
	cat, err := scenario.LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if cat.Len() == 0 {
		t.Fatal("expected built-in scenarios")
	}

	sc, ok := cat.Get("workplace-conflict")
	if !ok {
		t.Fatal("expected workplace-conflict built-in")
	}
	if sc.OpeningMessage != "Hey, can we chat?" {
		t.Fatalf("unexpected opening message: %q", sc.OpeningMessage)
	}
	if sc.CharacterName == "" || sc.SystemPrompt == "" {
		t.Fatalf("incomplete scenario: %#v", sc)
	}
}

func TestLoadCatalogDirOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	body := `
name = "Custom Conflict"
character_name = "Alex"
opening_message = "Got a minute?"
system_prompt = "You are Alex."
`
	if err := os.WriteFile(filepath.Join(dir, "workplace-conflict.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}

	cat, err := scenario.LoadCatalog(dir)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	sc, ok := cat.Get("workplace-conflict")
	if !ok {
		t.Fatal("expected overridden scenario")
	}
	if sc.Name != "Custom Conflict" || sc.OpeningMessage != "Got a minute?" {
		t.Fatalf("override not applied: %#v", sc)
	}
}

func TestLoadCatalogRejectsIncompleteScenario(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.toml"), []byte(`name = "No Prompt"`), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	if _, err := scenario.LoadCatalog(dir); err == nil {
		t.Fatal("expected error for scenario without system_prompt")
	}
}

func TestValidID(t *testing.T) {
	valid := []string{"workplace-conflict", "a", "A_b-9"}
	invalid := []string{"", "bad id", "x/../y", "semi;colon", "dot.dot"}
	for _, id := range valid {
		if !scenario.ValidID(id) {
			t.Fatalf("expected %q to be valid", id)
		}
	}
	for _, id := range invalid {
		if scenario.ValidID(id) {
			t.Fatalf("expected %q to be invalid", id)
		}
	}
}

func TestListSorted(t *testing.T) {
	cat, err := scenario.LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	list := cat.List()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Fatalf("list not sorted: %s before %s", list[i-1].ID, list[i].ID)
		}
	}
}
