package scenario

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed builtin/*.toml
var builtinFS embed.FS

// Scenario is a reusable conversation template: the character the model plays,
// its system prompt, and the line that opens every session.
type Scenario struct {
	ID             string `toml:"-" json:"id"`
	Name           string `toml:"name" json:"name"`
	Description    string `toml:"description" json:"description"`
	SystemPrompt   string `toml:"system_prompt" json:"-"`
	CharacterName  string `toml:"character_name" json:"character_name"`
	OpeningMessage string `toml:"opening_message" json:"opening_message"`
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidID reports whether a scenario id matches the allow-list pattern.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Catalog is a read-only set of scenarios keyed by id.
type Catalog struct {
	scenarios map[string]Scenario
}

// LoadCatalog builds a catalog from the built-in scenarios plus any TOML files
// in dir. Files in dir add to or override built-ins by id (file basename).
// A missing or empty dir yields just the built-ins.
func LoadCatalog(dir string) (*Catalog, error) {
	scenarios := make(map[string]Scenario)

	if err := loadFromFS(builtinFS, "builtin", scenarios); err != nil {
		return nil, fmt.Errorf("load built-in scenarios: %w", err)
	}

	if strings.TrimSpace(dir) != "" {
		entries, err := os.ReadDir(dir)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read scenario dir: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
				continue
			}
			sc, id, err := decodeFile(os.DirFS(dir), entry.Name())
			if err != nil {
				return nil, fmt.Errorf("scenario %s: %w", entry.Name(), err)
			}
			scenarios[id] = sc
		}
	}

	return &Catalog{scenarios: scenarios}, nil
}

func loadFromFS(fsys fs.FS, root string, dst map[string]Scenario) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		sub, err := fs.Sub(fsys, root)
		if err != nil {
			return err
		}
		sc, id, err := decodeFile(sub, entry.Name())
		if err != nil {
			return fmt.Errorf("scenario %s: %w", entry.Name(), err)
		}
		dst[id] = sc
	}
	return nil
}

func decodeFile(fsys fs.FS, name string) (Scenario, string, error) {
	var sc Scenario
	id := strings.TrimSuffix(filepath.Base(name), ".toml")
	if !ValidID(id) {
		return sc, "", fmt.Errorf("invalid scenario id %q", id)
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return sc, "", err
	}
	if err := toml.Unmarshal(data, &sc); err != nil {
		return sc, "", fmt.Errorf("parse: %w", err)
	}
	if strings.TrimSpace(sc.SystemPrompt) == "" {
		return sc, "", fmt.Errorf("system_prompt is required")
	}
	if strings.TrimSpace(sc.OpeningMessage) == "" {
		return sc, "", fmt.Errorf("opening_message is required")
	}
	if strings.TrimSpace(sc.Name) == "" {
		sc.Name = id
	}
	sc.ID = id
	return sc, id, nil
}

// Get returns the scenario for the given id.
func (c *Catalog) Get(id string) (Scenario, bool) {
	sc, ok := c.scenarios[id]
	return sc, ok
}

// List returns all scenarios sorted by id.
func (c *Catalog) List() []Scenario {
	out := make([]Scenario, 0, len(c.scenarios))
	for _, sc := range c.scenarios {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of scenarios in the catalog.
func (c *Catalog) Len() int {
	return len(c.scenarios)
}
