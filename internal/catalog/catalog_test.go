package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/surajmandalcell/asrpro-sub001/pkg/types"
)

func TestDefaultCatalogLookup(t *testing.T) {
	c := Default()
	if c.Len() == 0 {
		t.Fatalf("default catalog is empty")
	}
	e, ok := c.Lookup("whisper-base")
	if !ok {
		t.Fatalf("whisper-base missing from default catalog")
	}
	if e.Image == "" || e.Port == 0 || e.ResourceCost <= 0 {
		t.Fatalf("incomplete entry: %+v", e)
	}
	if _, ok := c.Lookup("no-such-model"); ok {
		t.Fatalf("lookup of unknown id succeeded")
	}
}

func TestListReturnsCopy(t *testing.T) {
	c := Default()
	out := c.List()
	out[0].ID = "mutated"
	if c.List()[0].ID == "mutated" {
		t.Fatalf("catalog mutated via returned slice")
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]types.ModelEntry{
		{ID: "a", Image: "img-a"},
		{ID: "a", Image: "img-b"},
	})
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestNewRejectsInvalidEntries(t *testing.T) {
	cases := []struct {
		name  string
		entry types.ModelEntry
	}{
		{"empty id", types.ModelEntry{Image: "img"}},
		{"empty image", types.ModelEntry{ID: "a"}},
		{"negative cost", types.ModelEntry{ID: "a", Image: "img", ResourceCost: -1}},
	}
	for _, tc := range cases {
		if _, err := New([]types.ModelEntry{tc.entry}); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "models.yaml")
	data := `models:
  - id: whisper-large
    name: Whisper Large
    image: asrpro/whisper-large:latest
    port: 9000
    resource_cost: 10240
    env:
      ASR_MODEL: large
  - id: whisper-tiny
    name: Whisper Tiny
    image: asrpro/whisper-tiny:latest
    port: 9000
    resource_cost: 1024
`
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries got %d", c.Len())
	}
	// sorted by id
	if got := c.List()[0].ID; got != "whisper-large" {
		t.Fatalf("expected whisper-large first, got %s", got)
	}
	e, ok := c.Lookup("whisper-large")
	if !ok || e.Env["ASR_MODEL"] != "large" {
		t.Fatalf("env not loaded: %+v", e)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	p := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(p, []byte("models: []\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(p); err == nil {
		t.Fatalf("expected error for empty catalog")
	}
}
