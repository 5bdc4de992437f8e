package bindings

import "github.com/unkn0wn-root/netmon/internal/sorters"

const (
	ActionSelectPrev      ActionID = "select_prev"
	ActionSelectNext      ActionID = "select_next"
	ActionPageUp          ActionID = "page_up"
	ActionPageDown        ActionID = "page_down"
	ActionSelectFirst     ActionID = "select_first"
	ActionSelectLast      ActionID = "select_last"
	ActionSortStatus      ActionID = "sort_status"
	ActionSortMethod      ActionID = "sort_method"
	ActionSortFile        ActionID = "sort_file"
	ActionSortDomain      ActionID = "sort_domain"
	ActionSortCause       ActionID = "sort_cause"
	ActionSortType        ActionID = "sort_type"
	ActionSortTransferred ActionID = "sort_transferred"
	ActionSortSize        ActionID = "sort_size"
	ActionSortWaterfall   ActionID = "sort_waterfall"
	ActionFilterPrev      ActionID = "filter_prev"
	ActionFilterNext      ActionID = "filter_next"
	ActionFilterToggle    ActionID = "filter_toggle"
	ActionFilterOnly      ActionID = "filter_only"
	ActionFreetext        ActionID = "freetext"
	ActionClone           ActionID = "clone"
	ActionRemoveCustom    ActionID = "remove_custom"
	ActionClear           ActionID = "clear"
	ActionCopyURL         ActionID = "copy_url"
	ActionToggleDetails   ActionID = "toggle_details"
	ActionToggleLazy      ActionID = "toggle_lazy"
	ActionToggleHelp      ActionID = "toggle_help"
	ActionQuit            ActionID = "quit"
)

type definition struct {
	id       ActionID
	defaults [][]string
	sort     sorters.Column
	// single rejects two step sequences.
	single   bool
}

var definitions = []definition{
	{id: ActionSelectPrev, defaults: [][]string{{"up"}, {"k"}}},
	{id: ActionSelectNext, defaults: [][]string{{"down"}, {"j"}}},
	{id: ActionPageUp, defaults: [][]string{{"pgup"}, {"ctrl+u"}}},
	{id: ActionPageDown, defaults: [][]string{{"pgdown"}, {"ctrl+d"}}},
	{id: ActionSelectFirst, defaults: [][]string{{"home"}, {"g", "g"}}},
	{id: ActionSelectLast, defaults: [][]string{{"end"}, {"shift+g"}}},
	{id: ActionSortStatus, defaults: [][]string{{"1"}}, sort: sorters.Status},
	{id: ActionSortMethod, defaults: [][]string{{"2"}}, sort: sorters.Method},
	{id: ActionSortFile, defaults: [][]string{{"3"}}, sort: sorters.File},
	{id: ActionSortDomain, defaults: [][]string{{"4"}}, sort: sorters.Domain},
	{id: ActionSortCause, defaults: [][]string{{"5"}}, sort: sorters.Cause},
	{id: ActionSortType, defaults: [][]string{{"6"}}, sort: sorters.Type},
	{id: ActionSortTransferred, defaults: [][]string{{"7"}}, sort: sorters.Transferred},
	{id: ActionSortSize, defaults: [][]string{{"8"}}, sort: sorters.Size},
	{id: ActionSortWaterfall, defaults: [][]string{{"9"}}, sort: sorters.Waterfall},
	{id: ActionFilterPrev, defaults: [][]string{{"left"}, {"h"}}},
	{id: ActionFilterNext, defaults: [][]string{{"right"}, {"l"}}},
	{id: ActionFilterToggle, defaults: [][]string{{"f"}}},
	{id: ActionFilterOnly, defaults: [][]string{{"shift+f"}}},
	{id: ActionFreetext, defaults: [][]string{{"/"}}},
	{id: ActionClone, defaults: [][]string{{"c"}}},
	{id: ActionRemoveCustom, defaults: [][]string{{"backspace"}, {"delete"}}},
	{id: ActionClear, defaults: [][]string{{"x"}}},
	{id: ActionCopyURL, defaults: [][]string{{"y"}}},
	{id: ActionToggleDetails, defaults: [][]string{{"enter"}}},
	{id: ActionToggleLazy, defaults: [][]string{{"p"}}},
	{id: ActionToggleHelp, defaults: [][]string{{"shift+/"}}},
	{id: ActionQuit, defaults: [][]string{{"q"}, {"ctrl+c"}}, single: true},
}

var definitionLookup = func() map[ActionID]definition {
	out := make(map[ActionID]definition, len(definitions))
	for _, def := range definitions {
		out[def.id] = def
	}
	return out
}()
