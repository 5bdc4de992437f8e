package bindings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/netmon/internal/sorters"
)

type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Source names the keymap file in use. When no file exists Path is where a
// TOML keymap would be read from.
type Source struct {
	Path   string
	Format Format
}

type ActionID string

// Binding is one key sequence bound to an action. Sort is set for the
// actions that reorder the request list.
type Binding struct {
	Action ActionID
	Steps  []string
	Sort   sorters.Column
}

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrConflict      = errors.New("key conflict")
)

const maxSteps = 2

var keymapFiles = []struct {
	name   string
	format Format
}{
	{"bindings.toml", FormatTOML},
	{"bindings.json", FormatJSON},
	{"bindings.yaml", FormatYAML},
	{"bindings.yml", FormatYAML},
}

// Map resolves key presses to actions. The first step of a two step
// sequence is a prefix and cannot also be bound on its own.
type Map struct {
	bound    map[string]Binding
	prefixes map[string]struct{}
	byAction map[ActionID][]Binding
}

// Load reads the first keymap found in dir and lays it over the defaults.
// An action named in the file loses all of its default keys.
func Load(dir string) (*Map, Source, error) {
	var readErr error
	for _, f := range keymapFiles {
		src := Source{Path: filepath.Join(dir, f.name), Format: f.format}
		data, err := os.ReadFile(src.Path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			readErr = errors.Join(readErr, fmt.Errorf("read keymap %s: %w", src.Path, err))
			continue
		}
		overrides, err := decode(data, src.Format)
		if err != nil {
			return nil, Source{}, fmt.Errorf("keymap %s: %w", src.Path, err)
		}
		m, err := build(overrides)
		if err != nil {
			return nil, Source{}, fmt.Errorf("keymap %s: %w", src.Path, err)
		}
		return m, src, nil
	}
	if readErr != nil {
		return nil, Source{}, readErr
	}

	m, err := build(nil)
	if err != nil {
		return nil, Source{}, err
	}
	return m, Source{Path: filepath.Join(dir, keymapFiles[0].name), Format: FormatTOML}, nil
}

// DefaultMap is the built-in keymap.
func DefaultMap() *Map {
	m, err := build(nil)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Map) MatchSingle(key string) (Binding, bool) {
	if m == nil || strings.Contains(key, " ") {
		return Binding{}, false
	}
	b, ok := m.bound[key]
	return b.clone(), ok
}

func (m *Map) HasChordPrefix(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.prefixes[key]
	return ok
}

func (m *Map) ResolveChord(prefix, next string) (Binding, bool) {
	if m == nil {
		return Binding{}, false
	}
	b, ok := m.bound[prefix+" "+next]
	return b.clone(), ok
}

// Bindings lists the sequences of one action in the order they were declared.
func (m *Map) Bindings(action ActionID) []Binding {
	if m == nil {
		return nil
	}
	list := m.byAction[action]
	if len(list) == 0 {
		return nil
	}
	out := make([]Binding, len(list))
	for i, b := range list {
		out[i] = b.clone()
	}
	return out
}

func (b Binding) clone() Binding {
	b.Steps = slices.Clone(b.Steps)
	return b
}

type keymapFile struct {
	Bindings map[string][]string `json:"bindings" toml:"bindings" yaml:"bindings"`
}

func decode(data []byte, format Format) (map[ActionID][][]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var file keymapFile
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &file)
	case FormatJSON:
		err = json.Unmarshal(data, &file)
	case FormatYAML:
		err = yaml.Unmarshal(data, &file)
	default:
		return nil, fmt.Errorf("unsupported keymap format %q", format)
	}
	if err != nil {
		return nil, err
	}

	out := make(map[ActionID][][]string, len(file.Bindings))
	for name, keys := range file.Bindings {
		id := ActionID(name)
		if _, ok := definitionLookup[id]; !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownAction, name)
		}
		seqs := make([][]string, 0, len(keys))
		for _, k := range keys {
			seq, err := parseSequence(k)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			seqs = append(seqs, seq)
		}
		out[id] = seqs
	}
	return out, nil
}

func build(overrides map[ActionID][][]string) (*Map, error) {
	m := &Map{
		bound:    make(map[string]Binding),
		prefixes: make(map[string]struct{}),
		byAction: make(map[ActionID][]Binding, len(definitions)),
	}
	columns := sorters.Columns()
	for _, def := range definitions {
		if def.sort != "" && !slices.Contains(columns, def.sort) {
			return nil, fmt.Errorf("%s sorts by unknown column %q", def.id, def.sort)
		}
		seqs := def.defaults
		if o, ok := overrides[def.id]; ok {
			seqs = o
		}
		for _, seq := range seqs {
			if err := m.bind(def, seq); err != nil {
				return nil, err
			}
		}
	}
	for prefix := range m.prefixes {
		if b, ok := m.bound[prefix]; ok {
			return nil, fmt.Errorf("%w: %q starts a sequence and is also bound to %s", ErrConflict, prefix, b.Action)
		}
	}
	return m, nil
}

func (m *Map) bind(def definition, seq []string) error {
	if len(seq) == 0 {
		return nil
	}
	k := strings.Join(seq, " ")
	switch {
	case len(seq) > maxSteps:
		return fmt.Errorf("%s: %q is longer than %d keys", def.id, k, maxSteps)
	case def.single && len(seq) > 1:
		return fmt.Errorf("%s takes a single key, got %q", def.id, k)
	}
	if prev, ok := m.bound[k]; ok {
		if prev.Action == def.id {
			return fmt.Errorf("%s: %q listed twice", def.id, k)
		}
		return fmt.Errorf("%w: %q is bound to %s and %s", ErrConflict, k, prev.Action, def.id)
	}

	b := Binding{Action: def.id, Steps: slices.Clone(seq), Sort: def.sort}
	m.bound[k] = b
	if len(seq) == maxSteps {
		m.prefixes[seq[0]] = struct{}{}
	}
	m.byAction[def.id] = append(m.byAction[def.id], b)
	return nil
}

func parseSequence(spec string) ([]string, error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return nil, errors.New("empty key sequence")
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		step, err := normalizeStep(f)
		if err != nil {
			return nil, err
		}
		out[i] = step
	}
	return out, nil
}

var modifierAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"alt":     "alt",
	"opt":     "alt",
	"option":  "alt",
	"shift":   "shift",
	"cmd":     "cmd",
	"command": "cmd",
	"meta":    "cmd",
	"super":   "cmd",
}

var modifierOrder = []string{"ctrl", "alt", "shift", "cmd"}

func normalizeStep(raw string) (string, error) {
	switch raw {
	case " ":
		return "space", nil
	case "?":
		return "shift+/", nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty key")
	}
	if r := []rune(raw); len(r) == 1 {
		if unicode.IsUpper(r[0]) {
			return "shift+" + string(unicode.ToLower(r[0])), nil
		}
		return raw, nil
	}

	mods := make(map[string]bool, len(modifierOrder))
	var key string
	for _, part := range strings.Split(raw, "+") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if mod, ok := modifierAliases[part]; ok {
			mods[mod] = true
			continue
		}
		if key != "" {
			return "", fmt.Errorf("key %q names more than one key", raw)
		}
		key = part
	}
	if key == "" {
		return "", fmt.Errorf("key %q has no key after its modifiers", raw)
	}

	parts := make([]string, 0, len(mods)+1)
	for _, mod := range modifierOrder {
		if mods[mod] {
			parts = append(parts, mod)
		}
	}
	return strings.Join(append(parts, key), "+"), nil
}

// NormalizeKeyString maps a key as the terminal reports it, or as a user
// writes it, to the stored form. Unparseable keys yield "".
func NormalizeKeyString(raw string) string {
	step, err := normalizeStep(raw)
	if err != nil {
		return ""
	}
	return step
}

func KnownActions() []ActionID {
	ids := make([]ActionID, 0, len(definitions))
	for _, def := range definitions {
		ids = append(ids, def.id)
	}
	slices.Sort(ids)
	return ids
}
