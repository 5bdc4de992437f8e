package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/netmon/internal/actions"
	"github.com/unkn0wn-root/netmon/internal/bindings"
	"github.com/unkn0wn-root/netmon/internal/filters"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeWaterfall()
		m.refresh()
		return m, nil
	case stateChangedMsg:
		m.refresh()
		return m, m.waitForState()
	case freetextDebounceMsg:
		if msg.seq == m.freetextSeq {
			m.store.Dispatch(actions.FilterFreetext(msg.text))
			m.refresh()
		}
		return m, nil
	case statusMsg:
		m.status = msg
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) refresh() {
	m.st = m.store.GetState()
	m.ensureSelectionVisible()
}

func (m *Model) setStatus(text string, level statusLevel) {
	m.status = statusMsg{text: text, level: level}
}

// tableWidth is what the request list gets once the details pane is carved off.
func (m *Model) tableWidth() int {
	if !m.showDetails {
		return m.width
	}
	details := m.width * detailsPercent / 100
	if m.width-details < minTableWidth {
		return m.width
	}
	return m.width - details
}

func (m *Model) detailsWidth() int {
	if !m.showDetails {
		return 0
	}
	return m.width - m.tableWidth()
}

func (m *Model) resizeWaterfall() {
	if m.width <= 0 {
		return
	}
	wf, ok := waterfallColumn(layoutColumns(m.tableWidth()))
	if !ok {
		return
	}
	m.store.Dispatch(actions.ResizeWaterfall(wf.width * pxPerCell))
}

func (m *Model) listHeight() int {
	h := m.height - chromeLines
	if m.showHelp {
		h -= len(m.keys.FullHelp()[0]) + 1
	}
	return max(h, 1)
}

func (m *Model) ensureSelectionVisible() {
	displayed := m.store.Memo().Displayed(m.st)
	rows := m.listHeight()
	idx := -1
	for i, r := range displayed {
		if r.ID == m.st.SelectedItem {
			idx = i
			break
		}
	}
	if idx >= 0 {
		if idx < m.offset {
			m.offset = idx
		} else if idx >= m.offset+rows {
			m.offset = idx - rows + 1
		}
	}
	m.offset = max(min(m.offset, len(displayed)-rows), 0)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.handleFreetextKey(msg)
	}
	keyStr := bindings.NormalizeKeyString(msg.String())
	if keyStr == "" {
		return m, nil
	}

	if prefix := m.pendingChord; prefix != "" {
		m.pendingChord = ""
		if binding, ok := m.bindings.ResolveChord(prefix, keyStr); ok {
			return m.runAction(binding)
		}
	}
	if m.bindings.HasChordPrefix(keyStr) {
		m.pendingChord = keyStr
		return m, nil
	}
	if binding, ok := m.bindings.MatchSingle(keyStr); ok {
		return m.runAction(binding)
	}
	return m, nil
}

func (m Model) handleFreetextKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.editing = false
		m.freetext.Blur()
		m.freetextSeq++
		m.store.Dispatch(actions.FilterFreetext(m.freetext.Value()))
		m.refresh()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	before := m.freetext.Value()
	var cmd tea.Cmd
	m.freetext, cmd = m.freetext.Update(msg)
	text := m.freetext.Value()
	if text == before {
		return m, cmd
	}
	m.freetextSeq++
	seq := m.freetextSeq
	debounce := tea.Tick(freetextDebounce, func(time.Time) tea.Msg {
		return freetextDebounceMsg{seq: seq, text: text}
	})
	return m, tea.Batch(cmd, debounce)
}

func (m Model) runAction(binding bindings.Binding) (tea.Model, tea.Cmd) {
	if binding.Sort != "" {
		m.store.Dispatch(actions.SortBy(binding.Sort))
		m.refresh()
		return m, nil
	}

	categories := filters.Categories()
	switch binding.Action {
	case bindings.ActionSelectPrev:
		m.store.Run(actions.SelectDelta(-1))
	case bindings.ActionSelectNext:
		m.store.Run(actions.SelectDelta(1))
	case bindings.ActionPageUp:
		m.store.Run(actions.SelectDelta(actions.PageUp))
	case bindings.ActionPageDown:
		m.store.Run(actions.SelectDelta(actions.PageDown))
	case bindings.ActionSelectFirst:
		m.store.Run(actions.SelectDelta(actions.First))
	case bindings.ActionSelectLast:
		m.store.Run(actions.SelectDelta(actions.Last))
	case bindings.ActionFilterPrev:
		m.filterCursor = (m.filterCursor - 1 + len(categories)) % len(categories)
	case bindings.ActionFilterNext:
		m.filterCursor = (m.filterCursor + 1) % len(categories)
	case bindings.ActionFilterToggle:
		m.store.Dispatch(actions.FilterOn(categories[m.filterCursor]))
	case bindings.ActionFilterOnly:
		m.store.Dispatch(actions.FilterOnlyOn(categories[m.filterCursor]))
	case bindings.ActionFreetext:
		m.editing = true
		m.freetext.SetValue(m.st.Filter.Text)
		m.freetext.CursorEnd()
		return m, m.freetext.Focus()
	case bindings.ActionClone:
		selected, ok := m.st.Selected()
		if !ok {
			m.setStatus("No request selected", statusWarn)
			return m, nil
		}
		m.store.Dispatch(actions.Clone(selected.ID))
	case bindings.ActionRemoveCustom:
		selected, ok := m.st.Selected()
		if !ok || !selected.Data.IsCustom {
			m.setStatus("Only cloned requests can be removed", statusWarn)
			return m, nil
		}
		m.store.Dispatch(actions.RemoveSelectedCustom())
	case bindings.ActionClear:
		m.store.Dispatch(actions.Clear())
		m.offset = 0
	case bindings.ActionCopyURL:
		m.copySelectedURL()
	case bindings.ActionToggleDetails:
		m.showDetails = !m.showDetails
		m.resizeWaterfall()
	case bindings.ActionToggleLazy:
		if m.queue == nil {
			return m, nil
		}
		lazy := !m.queue.Lazy()
		m.queue.SetLazy(lazy)
		if lazy {
			m.setStatus("Lazy updates on", statusInfo)
		} else {
			m.setStatus("Lazy updates off", statusInfo)
		}
	case bindings.ActionToggleHelp:
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case bindings.ActionQuit:
		return m, tea.Quit
	}
	m.refresh()
	return m, nil
}

func (m *Model) copySelectedURL() {
	selected, ok := m.st.Selected()
	if !ok || selected.Data.URL == nil {
		m.setStatus("No request selected", statusWarn)
		return
	}
	if err := m.copyText(*selected.Data.URL); err != nil {
		m.log.Warn().Err(err).Msg("copy url")
		m.setStatus("Copy failed: "+err.Error(), statusError)
		return
	}
	m.setStatus("URL copied", statusSuccess)
}
