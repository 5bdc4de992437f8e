package bindings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/unkn0wn-root/netmon/internal/sorters"
)

func TestDefaultMapContainsExpectedBindings(t *testing.T) {
	m := DefaultMap()

	tests := []struct {
		key  string
		want ActionID
	}{
		{"down", ActionSelectNext},
		{"pgup", ActionPageUp},
		{"shift+g", ActionSelectLast},
		{"1", ActionSortStatus},
		{"9", ActionSortWaterfall},
		{"shift+f", ActionFilterOnly},
		{"backspace", ActionRemoveCustom},
		{"shift+/", ActionToggleHelp},
		{"ctrl+c", ActionQuit},
	}
	for _, tt := range tests {
		if binding, ok := m.MatchSingle(tt.key); !ok || binding.Action != tt.want {
			t.Fatalf("expected %s -> %s, got %+v (ok=%v)", tt.key, tt.want, binding, ok)
		}
	}

	if binding, ok := m.ResolveChord("g", "g"); !ok || binding.Action != ActionSelectFirst {
		t.Fatalf("expected g g -> select_first, got %+v (ok=%v)", binding, ok)
	}
	if !m.HasChordPrefix("g") {
		t.Fatalf("expected HasChordPrefix('g') to be true")
	}
}

func TestNormalizeKeyString(t *testing.T) {
	tests := map[string]string{
		"?":            "shift+/",
		"G":            "shift+g",
		"Ctrl+Shift+X": "ctrl+shift+x",
		"option+cmd+k": "alt+cmd+k",
	}
	for in, want := range tests {
		if got := NormalizeKeyString(in); got != want {
			t.Fatalf("NormalizeKeyString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadOverridesBindings(t *testing.T) {
	dir := t.TempDir()
	payload := `
[bindings]
clear = ["ctrl+l"]
copy_url = ["Y", "ctrl+y"]
`
	path := filepath.Join(dir, "bindings.toml")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write bindings: %v", err)
	}

	m, src, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if src.Path != path || src.Format != FormatTOML {
		t.Fatalf("unexpected source %+v", src)
	}

	if binding, ok := m.MatchSingle("x"); ok {
		t.Fatalf("expected x to be unbound, got %v", binding.Action)
	}
	if binding, ok := m.MatchSingle("ctrl+l"); !ok || binding.Action != ActionClear {
		t.Fatalf("expected ctrl+l -> clear, got %+v (ok=%v)", binding, ok)
	}
	if got := len(m.Bindings(ActionCopyURL)); got != 2 {
		t.Fatalf("expected two copy_url bindings, got %d", got)
	}
	if binding, ok := m.MatchSingle("shift+y"); !ok || binding.Action != ActionCopyURL {
		t.Fatalf("expected Y -> copy_url, got %+v (ok=%v)", binding, ok)
	}
}

func TestLoadJSONBindings(t *testing.T) {
	dir := t.TempDir()
	payload := `{"bindings":{"toggle_lazy":["ctrl+p"]}}`
	if err := os.WriteFile(filepath.Join(dir, "bindings.json"), []byte(payload), 0o644); err != nil {
		t.Fatalf("write bindings: %v", err)
	}
	m, src, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if src.Format != FormatJSON {
		t.Fatalf("expected json source, got %q", src.Format)
	}
	if binding, ok := m.MatchSingle("ctrl+p"); !ok || binding.Action != ActionToggleLazy {
		t.Fatalf("expected ctrl+p -> toggle_lazy, got %+v (ok=%v)", binding, ok)
	}
}

func TestLoadRejectsConflictingBindings(t *testing.T) {
	dir := t.TempDir()
	payload := `
[bindings]
clone = ["ctrl+s"]
clear = ["ctrl+s"]
`
	path := filepath.Join(dir, "bindings.toml")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write bindings: %v", err)
	}

	if _, _, err := Load(dir); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestLoadRejectsUnknownActionAndChordQuit(t *testing.T) {
	for name, payload := range map[string]string{
		"unknown":      "[bindings]\nsend_request = [\"ctrl+enter\"]\n",
		"chord quit":   "[bindings]\nquit = [\"z z\"]\n",
		"prefix clash": "[bindings]\nclear = [\"g\"]\n",
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "bindings.toml"), []byte(payload), 0o644); err != nil {
				t.Fatalf("write bindings: %v", err)
			}
			if _, _, err := Load(dir); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestKnownActionsSorted(t *testing.T) {
	ids := KnownActions()
	if len(ids) != len(definitions) {
		t.Fatalf("expected %d actions, got %d", len(definitions), len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("actions not sorted: %v", ids)
		}
	}
}

func TestLoadYAMLBindings(t *testing.T) {
	dir := t.TempDir()
	payload := "bindings:\n  select_first: [\"ctrl+a\", \"z z\"]\n"
	path := filepath.Join(dir, "bindings.yaml")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write bindings: %v", err)
	}
	m, src, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if src.Path != path || src.Format != FormatYAML {
		t.Fatalf("unexpected source %+v", src)
	}
	if m.HasChordPrefix("g") {
		t.Fatal("expected default g g chord to be replaced")
	}
	if binding, ok := m.ResolveChord("z", "z"); !ok || binding.Action != ActionSelectFirst {
		t.Fatalf("expected z z -> select_first, got %+v (ok=%v)", binding, ok)
	}
	if _, ok := m.MatchSingle("ctrl+a"); !ok {
		t.Fatal("expected ctrl+a to be bound")
	}
}

func TestSortBindingsCarryColumn(t *testing.T) {
	m := DefaultMap()
	seen := make(map[sorters.Column]bool)
	for _, id := range KnownActions() {
		for _, binding := range m.Bindings(id) {
			if binding.Sort != "" {
				seen[binding.Sort] = true
			}
		}
	}
	for _, column := range sorters.Columns() {
		if !seen[column] {
			t.Fatalf("no binding sorts by %q", column)
		}
	}
	if binding, _ := m.MatchSingle("7"); binding.Sort != sorters.Transferred {
		t.Fatalf("expected 7 to sort by transferred, got %q", binding.Sort)
	}
	if binding, _ := m.MatchSingle("c"); binding.Sort != "" {
		t.Fatalf("expected clone binding without sort column, got %q", binding.Sort)
	}
}

func TestUnknownActionIsReported(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bindings.json"), []byte(`{"bindings":{"send_request":["x"]}}`), 0o644); err != nil {
		t.Fatalf("write bindings: %v", err)
	}
	if _, _, err := Load(dir); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestBindingsReturnsCopies(t *testing.T) {
	m := DefaultMap()
	list := m.Bindings(ActionSelectFirst)
	list[1].Steps[0] = "z"
	if !m.HasChordPrefix("g") {
		t.Fatal("expected map to be unaffected by caller edits")
	}
	if binding, ok := m.ResolveChord("g", "g"); !ok || binding.Steps[0] != "g" {
		t.Fatalf("expected stored steps intact, got %+v", binding)
	}
}

func TestNormalizeKeyStringRejectsTwoKeys(t *testing.T) {
	for _, raw := range []string{"ctrl+a+b", "ctrl+", ""} {
		if got := NormalizeKeyString(raw); got != "" {
			t.Fatalf("NormalizeKeyString(%q) = %q, want empty", raw, got)
		}
	}
}
