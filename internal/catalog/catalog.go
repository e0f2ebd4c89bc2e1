package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/surajmandalcell/asrpro-sub001/internal/common/fsutil"
	"github.com/surajmandalcell/asrpro-sub001/pkg/types"
)

// Catalog is the static model registry: a lookup table from model id to its
// container specification. Loaded once at startup, never mutated.
type Catalog struct {
	entries []types.ModelEntry
	byID    map[string]types.ModelEntry
}

// New builds a catalog from the given entries. Order is preserved; duplicate
// ids are rejected.
func New(entries []types.ModelEntry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]types.ModelEntry, len(entries)),
		byID:    make(map[string]types.ModelEntry, len(entries)),
	}
	copy(c.entries, entries)
	for _, e := range c.entries {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog entry with empty id (image %q)", e.Image)
		}
		if e.Image == "" {
			return nil, fmt.Errorf("catalog entry %q has no image", e.ID)
		}
		if e.ResourceCost < 0 {
			return nil, fmt.Errorf("catalog entry %q has negative resource cost", e.ID)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog entry: %s", e.ID)
		}
		c.byID[e.ID] = e
	}
	return c, nil
}

// Default returns the built-in whisper catalog used when no catalog file is
// configured.
func Default() *Catalog {
	c, err := New(defaultEntries())
	if err != nil {
		// defaultEntries is a compile-time constant set; this cannot fail.
		panic(err)
	}
	return c
}

// List returns the full catalog in stable order.
func (c *Catalog) List() []types.ModelEntry {
	out := make([]types.ModelEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup returns the entry for id.
func (c *Catalog) Lookup(id string) (types.ModelEntry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Len reports the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// catalogFile is the on-disk YAML shape.
type catalogFile struct {
	Models []types.ModelEntry `yaml:"models"`
}

// LoadFile reads a YAML catalog file. Entries are sorted by id so the catalog
// order does not depend on hand-edited file order.
func LoadFile(path string) (*Catalog, error) {
	base, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	if !fsutil.PathExists(abs) {
		return nil, fmt.Errorf("catalog file not found: %s", abs)
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", abs, err)
	}
	if len(f.Models) == 0 {
		return nil, fmt.Errorf("catalog %s declares no models", abs)
	}
	sort.Slice(f.Models, func(i, j int) bool { return f.Models[i].ID < f.Models[j].ID })
	return New(f.Models)
}
