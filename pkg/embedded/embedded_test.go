package embedded

import (
	"os"
	"testing"
	"testing/fstest"

	"github.com/gonewx/petanim/pkg/types"
)

// useProjectData initializes the package from the data/ directory of the
// repository, the same tree the data package embeds.
func useProjectData(t *testing.T) {
	t.Helper()
	Init(os.DirFS("../../data"))
	t.Cleanup(func() { initialized = false })
}

// TestNotInitialized tests every accessor before Init
func TestNotInitialized(t *testing.T) {
	initialized = false

	if IsInitialized() {
		t.Error("Expected IsInitialized() to return false before Init()")
	}
	if _, err := Open(CatalogPath); err == nil {
		t.Error("Expected error when calling Open() before Init()")
	}
	if _, err := ReadFile(CatalogPath); err == nil {
		t.Error("Expected error when calling ReadFile() before Init()")
	}
	if _, err := Glob("data/*"); err == nil {
		t.Error("Expected error when calling Glob() before Init()")
	}
	if Exists(CatalogPath) {
		t.Error("Expected Exists() to be false before Init()")
	}
}

// TestPathPrefix tests path normalization and the prefix check
func TestPathPrefix(t *testing.T) {
	Init(fstest.MapFS{
		"a.txt": {Data: []byte("a")},
	})
	t.Cleanup(func() { initialized = false })

	tests := []struct {
		path string
		ok   bool
	}{
		{"data/a.txt", true},
		{"./data/a.txt", true},
		{"assets/a.txt", false},
		{"a.txt", false},
		{"data/missing.txt", false},
	}
	for _, tt := range tests {
		if got := Exists(tt.path); got != tt.ok {
			t.Errorf("Exists(%q) = %v, want %v", tt.path, got, tt.ok)
		}
	}

	matches, err := Glob("data/*.txt")
	if err != nil || len(matches) != 1 || matches[0] != "data/a.txt" {
		t.Errorf("Glob: %v, %v", matches, err)
	}
}

// TestDefaultCatalog tests that the bundled catalog loads and validates
func TestDefaultCatalog(t *testing.T) {
	useProjectData(t)

	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog failed: %v", err)
	}

	ids := catalog.IDs()
	want := []string{"fire_dragon", "water_spirit", "earth_guardian"}
	if len(ids) != len(want) {
		t.Fatalf("Expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs()[%d] = %q, want %q", i, ids[i], want[i])
		}
	}

	special, ok := catalog.AnimationDefinition("fire_dragon", "special")
	if !ok {
		t.Fatal("fire_dragon/special missing")
	}
	if special.Name != "fire_breath" || special.Frames != 6 || special.Loop {
		t.Errorf("Unexpected special animation: %+v", special)
	}
	if len(special.Effects) != 2 || special.Effects[1].Kind != types.EffectSound {
		t.Errorf("Unexpected special effects: %+v", special.Effects)
	}

	if unknown := catalog.UnknownEffects(); len(unknown) != 0 {
		t.Errorf("Bundled catalog has unknown effects: %v", unknown)
	}
	if n := len(catalog.ByType(types.PetEarth)); n != 1 {
		t.Errorf("Expected 1 earth pet, got %d", n)
	}
}

// TestDefaultEngineConfig tests that the bundled tuning matches the defaults
func TestDefaultEngineConfig(t *testing.T) {
	useProjectData(t)

	cfg, err := DefaultEngineConfig()
	if err != nil {
		t.Fatalf("DefaultEngineConfig failed: %v", err)
	}
	if cfg.Effects.TriggerTolerance != 0.1 || cfg.Particles.Gravity != 0.5 || cfg.Particles.Spread != 50 {
		t.Errorf("Unexpected bundled tuning: %+v", cfg)
	}
}

// TestLoadCatalog_Errors tests unsupported extensions and missing files
func TestLoadCatalog_Errors(t *testing.T) {
	Init(fstest.MapFS{
		"pets.json": {Data: []byte("{}")},
		"bad.yaml":  {Data: []byte("pets: [{id: x}]")},
	})
	t.Cleanup(func() { initialized = false })

	for _, path := range []string{"data/pets.json", "data/bad.yaml", "data/none.yaml"} {
		if _, err := LoadCatalog(path); err == nil {
			t.Errorf("Expected error for %s", path)
		}
	}
}
