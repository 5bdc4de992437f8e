package ui

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/unkn0wn-root/netmon/internal/bindings"
	"github.com/unkn0wn-root/netmon/internal/state"
	"github.com/unkn0wn-root/netmon/internal/store"
	"github.com/unkn0wn-root/netmon/internal/theme"
)

const (
	freetextDebounce = 200 * time.Millisecond
	// chromeLines is the toolbar, column header and status bar.
	chromeLines      = 3
	minTableWidth    = 60
	detailsPercent   = 40
)

type Config struct {
	Store    *store.Store
	Queue    *store.Queue
	Bindings *bindings.Map
	Theme    *theme.Theme
	Logger   *zerolog.Logger
	// CopyText defaults to the system clipboard.
	CopyText func(string) error
}

type Model struct {
	store    *store.Store
	queue    *store.Queue
	bindings *bindings.Map
	theme    theme.Theme
	log      zerolog.Logger
	copyText func(string) error

	st          state.State
	updates     chan struct{}
	unsubscribe func()

	filterCursor int
	freetext     textinput.Model
	editing      bool
	freetextSeq  int

	showDetails  bool
	showHelp     bool
	help         help.Model
	keys         keyMap
	pendingChord string
	status       statusMsg

	offset int
	width  int
	height int
}

func New(cfg Config) Model {
	th := theme.DefaultTheme()
	if cfg.Theme != nil {
		th = *cfg.Theme
	}
	km := cfg.Bindings
	if km == nil {
		km = bindings.DefaultMap()
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	copyText := cfg.CopyText
	if copyText == nil {
		copyText = clipboard.WriteAll
	}

	input := textinput.New()
	input.Placeholder = "filter urls"
	input.CharLimit = 0
	input.Prompt = "/"
	input.SetCursor(0)
	input.Blur()

	m := Model{
		store:    cfg.Store,
		queue:    cfg.Queue,
		bindings: km,
		theme:    th,
		log:      log,
		copyText: copyText,
		st:       cfg.Store.GetState(),
		updates:  make(chan struct{}, 1),
		freetext: input,
		help:     help.New(),
		keys:     newKeyMap(km),
	}
	m.freetext.SetValue(m.st.Filter.Text)
	updates := m.updates
	m.unsubscribe = cfg.Store.Subscribe(func(state.State) {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	return m
}

func (m Model) Init() tea.Cmd {
	return m.waitForState()
}

// waitForState blocks until the store has changed since the last signal.
func (m Model) waitForState() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		<-updates
		return stateChangedMsg{}
	}
}

// Close detaches the model from the store.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m Model) State() state.State { return m.st }
