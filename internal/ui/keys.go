package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/unkn0wn-root/netmon/internal/bindings"
)

// keyMap adapts the configured bindings to the help component.
type keyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func newKeyMap(m *bindings.Map) keyMap {
	b := func(id bindings.ActionID, desc string) key.Binding {
		return helpBinding(m, id, desc)
	}
	nav := []key.Binding{
		b(bindings.ActionSelectPrev, "up"),
		b(bindings.ActionSelectNext, "down"),
		b(bindings.ActionPageUp, "page up"),
		b(bindings.ActionPageDown, "page down"),
		b(bindings.ActionSelectFirst, "first"),
		b(bindings.ActionSelectLast, "last"),
	}
	sort := []key.Binding{
		b(bindings.ActionSortStatus, "sort status"),
		b(bindings.ActionSortMethod, "sort method"),
		b(bindings.ActionSortFile, "sort file"),
		b(bindings.ActionSortDomain, "sort domain"),
		b(bindings.ActionSortCause, "sort cause"),
		b(bindings.ActionSortType, "sort type"),
		b(bindings.ActionSortTransferred, "sort transferred"),
		b(bindings.ActionSortSize, "sort size"),
		b(bindings.ActionSortWaterfall, "sort waterfall"),
	}
	filter := []key.Binding{
		b(bindings.ActionFilterPrev, "prev filter"),
		b(bindings.ActionFilterNext, "next filter"),
		b(bindings.ActionFilterToggle, "toggle filter"),
		b(bindings.ActionFilterOnly, "only filter"),
		b(bindings.ActionFreetext, "search"),
	}
	edit := []key.Binding{
		b(bindings.ActionClone, "clone"),
		b(bindings.ActionRemoveCustom, "remove clone"),
		b(bindings.ActionClear, "clear"),
		b(bindings.ActionCopyURL, "copy url"),
		b(bindings.ActionToggleDetails, "details"),
		b(bindings.ActionToggleLazy, "lazy updates"),
		b(bindings.ActionToggleHelp, "help"),
		b(bindings.ActionQuit, "quit"),
	}
	return keyMap{
		short: []key.Binding{
			b(bindings.ActionSelectNext, "move"),
			b(bindings.ActionFilterToggle, "filter"),
			b(bindings.ActionFreetext, "search"),
			b(bindings.ActionToggleDetails, "details"),
			b(bindings.ActionToggleHelp, "help"),
			b(bindings.ActionQuit, "quit"),
		},
		full: [][]key.Binding{nav, sort, filter, edit},
	}
}

func (k keyMap) ShortHelp() []key.Binding  { return k.short }
func (k keyMap) FullHelp() [][]key.Binding { return k.full }

func helpBinding(m *bindings.Map, id bindings.ActionID, desc string) key.Binding {
	var keys, labels []string
	for _, binding := range m.Bindings(id) {
		keys = append(keys, strings.Join(binding.Steps, " "))
		labels = append(labels, keyLabel(binding.Steps))
	}
	if len(keys) == 0 {
		return key.NewBinding(key.WithDisabled())
	}
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(strings.Join(labels, "/"), desc),
	)
}

// keyLabel turns normalized steps back into what the user types.
func keyLabel(steps []string) string {
	out := make([]string, len(steps))
	for i, step := range steps {
		switch {
		case step == "shift+/":
			step = "?"
		case strings.HasPrefix(step, "shift+") && len(step) == len("shift+")+1:
			step = strings.ToUpper(step[len("shift+"):])
		case step == "up":
			step = "↑"
		case step == "down":
			step = "↓"
		case step == "left":
			step = "←"
		case step == "right":
			step = "→"
		}
		out[i] = step
	}
	return strings.Join(out, "")
}
