// Package pets implements the pets view: it loads the configuration, fetches
// the pet list from the configured service and shows it in a table, fetching
// again whenever the navigation location pops.
package pets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/oakwood-commons/petsview/internal/config"
	"github.com/oakwood-commons/petsview/internal/navigation"
	"github.com/oakwood-commons/petsview/internal/petclient"
	"github.com/oakwood-commons/petsview/internal/ui/table"
	"github.com/oakwood-commons/petsview/pkg/logger"
)

// ListPath is the location of the table; DetailPath(i) shows row i.
const ListPath = "/pets"

// DetailPath returns the location of the detail pane for row i.
func DetailPath(i int) string {
	return ListPath + "/" + strconv.Itoa(i)
}

// detailIndex parses a DetailPath. It reports false for any other path.
func detailIndex(path string) (int, bool) {
	rest, ok := strings.CutPrefix(path, ListPath+"/")
	if !ok || rest == "" {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// ConfigSource yields the configuration. It may block until ctx is done.
type ConfigSource interface {
	Load(ctx context.Context) (config.Configuration, error)
}

// PetFetcher performs the GET against the pet service.
type PetFetcher interface {
	FetchPets(ctx context.Context, url string) (petclient.Result, error)
}

// Location is the navigation observer. *navigation.Location implements it.
type Location interface {
	Subscribe() (<-chan navigation.Event, func())
	Path() string
	Go(path string)
	ReplaceState(path string)
	Back() bool
	Forward() bool
	CanGoBack() bool
	CanGoForward() bool
}

// Options wires the view's collaborators.
type Options struct {
	Config  ConfigSource
	Fetcher PetFetcher
	// Location is optional; without it the view refreshes only once.
	Location Location
	Theme    *Theme
	NoColor  bool
	Width    int
	Height   int
}

// LocationChangedMsg asks the view to refresh as if the location had popped.
// Hosts may send it directly with tea.Program.Send.
type LocationChangedMsg struct {
	Event navigation.Event
}

type configLoadedMsg struct {
	cfg config.Configuration
	err error
}

// locationEventMsg comes from the subscription and re-arms it.
type locationEventMsg struct {
	event navigation.Event
}

type petsFetchedMsg struct {
	seq    uint64
	id     string
	result petclient.Result
	err    error
}

// Model is the Bubble Tea model of the pets view.
type Model struct {
	ctx context.Context
	log logr.Logger

	source   ConfigSource
	fetcher  PetFetcher
	location Location

	config         *config.Configuration
	configErr      error
	refreshPending bool

	seq         uint64
	cancelFetch context.CancelFunc
	loading     bool
	fetchErr    error

	data         *DataSource
	table        *table.Model[Pet]
	fieldMissing bool
	fetches      int
	lastUpdated  time.Time

	route       string
	events      <-chan navigation.Event
	unsubscribe func()

	spinner  spinner.Model
	ticking  bool
	styles   styles
	noColor  bool
	width    int
	height   int
	quitting bool
}

// NewModel builds the view. Nothing is loaded until Init.
func NewModel(ctx context.Context, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	th := DefaultTheme()
	if opts.Theme != nil {
		th = *opts.Theme
	}

	tbl := table.NewModel(tableColumns(), petToRow)
	tbl.SetNoColor(opts.NoColor)
	if !opts.NoColor {
		tbl.SetColors(th.HeaderFG, nil, th.SelectedFG, th.SelectedBG)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:      ctx,
		log:      *logger.ForComponent(ctx, "pets-view"),
		source:   opts.Config,
		fetcher:  opts.Fetcher,
		location: opts.Location,
		data:     NewDataSource(nil),
		table:    tbl,
		route:    ListPath,
		spinner:  sp,
		styles:   newStyles(th, opts.NoColor),
		noColor:  opts.NoColor,
	}
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	m.SetSize(w, h)
	return m
}

// Init requests the configuration, subscribes to location changes and
// performs the first refresh. The refresh stays pending until the
// configuration arrives.
func (m *Model) Init() tea.Cmd {
	m.ticking = true
	return tea.Batch(
		m.loadConfig(),
		m.subscribe(),
		m.refresh(),
		m.spinner.Tick,
	)
}

func (m *Model) loadConfig() tea.Cmd {
	if m.source == nil {
		return func() tea.Msg {
			return configLoadedMsg{err: config.ErrNoSource}
		}
	}
	ctx, source := m.ctx, m.source
	return func() tea.Msg {
		cfg, err := source.Load(ctx)
		return configLoadedMsg{cfg: cfg, err: err}
	}
}

func (m *Model) subscribe() tea.Cmd {
	if m.location == nil || m.events != nil {
		return nil
	}
	m.events, m.unsubscribe = m.location.Subscribe()
	m.route = m.location.Path()
	return waitForLocation(m.events)
}

func waitForLocation(events <-chan navigation.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return locationEventMsg{event: ev}
	}
}

// refresh issues one GET to the configured URL, superseding any fetch still
// in flight. Without a configuration it only marks the refresh as pending.
func (m *Model) refresh() tea.Cmd {
	if m.config == nil {
		m.refreshPending = true
		return nil
	}
	m.refreshPending = false

	if m.cancelFetch != nil {
		m.cancelFetch()
	}
	m.seq++
	seq := m.seq
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelFetch = cancel
	m.loading = true

	url := m.config.PetServiceURL
	fetcher := m.fetcher
	m.log.V(1).Info("refresh issued", logger.RefreshIDKey, id, logger.URLKey, url, "seq", seq)

	fetch := func() tea.Msg {
		if fetcher == nil {
			return petsFetchedMsg{seq: seq, id: id, err: errors.New("no pet fetcher configured")}
		}
		res, err := fetcher.FetchPets(ctx, url)
		return petsFetchedMsg{seq: seq, id: id, result: res, err: err}
	}
	if m.ticking {
		return fetch
	}
	m.ticking = true
	return tea.Batch(fetch, m.spinner.Tick)
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case configLoadedMsg:
		return m, m.handleConfig(msg)

	case locationEventMsg:
		cmd := m.handleLocation(msg.event)
		if m.events == nil {
			return m, cmd
		}
		return m, tea.Batch(cmd, waitForLocation(m.events))

	case LocationChangedMsg:
		return m, m.handleLocation(msg.Event)

	case petsFetchedMsg:
		m.handleFetched(msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			m.ticking = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleConfig(msg configLoadedMsg) tea.Cmd {
	if msg.err != nil {
		m.configErr = msg.err
		m.log.Error(msg.err, "configuration load failed")
		return nil
	}
	cfg := msg.cfg
	m.config = &cfg
	m.configErr = nil
	m.log.Info("configuration loaded", logger.URLKey, cfg.PetServiceURL, logger.StageKey, cfg.Stage)
	if m.refreshPending {
		return m.refresh()
	}
	return nil
}

func (m *Model) handleLocation(ev navigation.Event) tea.Cmd {
	if ev.Path != "" {
		m.route = ev.Path
	}
	m.log.V(1).Info("location changed", logger.PathKey, ev.Path, "type", ev.Type.String())
	return m.refresh()
}

func (m *Model) handleFetched(msg petsFetchedMsg) {
	if msg.seq != m.seq {
		m.log.V(1).Info("dropping stale response", logger.RefreshIDKey, msg.id, "seq", msg.seq, "latest", m.seq)
		return
	}
	m.loading = false
	if m.cancelFetch != nil {
		m.cancelFetch()
		m.cancelFetch = nil
	}

	if msg.err != nil {
		if m.quitting && errors.Is(msg.err, context.Canceled) {
			return
		}
		m.fetchErr = msg.err
		m.log.Error(msg.err, "refresh failed", logger.RefreshIDKey, msg.id)
		return
	}

	m.fetchErr = nil
	m.fieldMissing = !msg.result.FieldPresent
	m.data = NewDataSource(msg.result.Pets)
	m.table.SetData(m.data.Data())
	m.table.SetColumnWidths(columnWidths(m.data.Data(), m.width)...)
	m.fetches++
	m.lastUpdated = time.Now()

	if m.fieldMissing {
		m.log.Info("response has no pets field", logger.RefreshIDKey, msg.id, "field", petclient.PetsField)
	}
	m.log.V(1).Info("rows replaced", logger.RefreshIDKey, msg.id, "rows", m.data.Len())
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.Close()
		return m, tea.Quit

	case "enter":
		if _, ok := detailIndex(m.route); ok {
			return m, nil
		}
		idx := m.table.SelectedIndex()
		if idx < 0 {
			return m, nil
		}
		path := DetailPath(idx)
		if m.location != nil {
			m.location.Go(path)
		}
		m.route = path
		return m, nil

	case "esc", "left", "backspace", "h":
		if m.location != nil {
			m.location.Back()
		} else {
			m.route = ListPath
		}
		return m, nil

	case "right", "l":
		if m.location != nil {
			m.location.Forward()
		}
		return m, nil
	}

	if i, ok := detailIndex(m.route); ok {
		switch msg.String() {
		case "up", "k":
			m.stepDetail(i, -1)
		case "down", "j":
			m.stepDetail(i, 1)
		}
		return m, nil
	}
	_, cmd := m.table.Update(msg)
	return m, cmd
}

// stepDetail shows the neighboring row in place of row i. The history entry is
// replaced, so it neither grows the history nor refreshes.
func (m *Model) stepDetail(i, delta int) {
	next := i + delta
	if next < 0 || next >= m.data.Len() {
		return
	}
	path := DetailPath(next)
	if m.location != nil {
		m.location.ReplaceState(path)
	}
	m.route = path
	m.table.SetCursor(next)
}

// Close cancels any in-flight fetch and ends the location subscription.
func (m *Model) Close() {
	if m.cancelFetch != nil {
		m.cancelFetch()
		m.cancelFetch = nil
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// SetSize lays the view out for a width x height terminal.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	// title, blank line, status line, footer
	m.table.SetSize(width, max(height-4, 3))
	m.table.SetColumnWidths(columnWidths(m.data.Data(), width)...)
}

func (m *Model) busy() bool {
	return m.loading || (m.config == nil && m.configErr == nil)
}

// Rows returns the records currently displayed.
func (m *Model) Rows() []Pet {
	return m.data.Data()
}

// DataSource returns the data source of the last successful fetch.
func (m *Model) DataSource() *DataSource {
	return m.data
}

// Config returns the loaded configuration, or nil before it arrives.
func (m *Model) Config() *config.Configuration {
	return m.config
}

// Route returns the location the view is showing.
func (m *Model) Route() string {
	return m.route
}

// Loading reports whether a fetch is in flight.
func (m *Model) Loading() bool {
	return m.loading
}

// FieldMissing reports whether the last successful response lacked "Pets".
func (m *Model) FieldMissing() bool {
	return m.fieldMissing
}

// Err returns the configuration error, else the last fetch error.
func (m *Model) Err() error {
	if m.configErr != nil {
		return fmt.Errorf("load configuration: %w", m.configErr)
	}
	if m.fetchErr != nil {
		return fmt.Errorf("fetch pets: %w", m.fetchErr)
	}
	return nil
}

// View renders the current frame on the alternate screen.
func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	return v
}

// Render returns the current frame as a string.
func (m *Model) Render() string {
	if m.quitting {
		return ""
	}
	var body string
	if i, ok := detailIndex(m.route); ok {
		body = m.renderDetail(i)
	} else {
		body = m.table.View()
	}
	out := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		"",
		body,
		m.renderStatus(),
		m.renderFooter(),
	)
	if m.noColor {
		out = ansi.Strip(out)
	}
	return out
}

func (m *Model) renderTitle() string {
	title := m.styles.title.Render("Pets")
	if m.config != nil && m.config.Stage != "" {
		title += m.styles.stage.Render("stage: " + m.config.Stage)
	}
	return title
}

func (m *Model) renderStatus() string {
	switch {
	case m.configErr != nil:
		return m.styles.errText.Render("config error: " + m.configErr.Error())
	case m.config == nil:
		return m.styles.status.Render(m.spinner.View() + " loading configuration…")
	case m.loading:
		return m.styles.status.Render(m.spinner.View() + " fetching " + m.config.PetServiceURL)
	case m.fetchErr != nil:
		return m.styles.errText.Render("fetch error: " + m.fetchErr.Error())
	case m.fieldMissing:
		return m.styles.errText.Render(fmt.Sprintf("response has no %q field", petclient.PetsField))
	case m.fetches == 0:
		return m.styles.status.Render("waiting for data")
	default:
		return m.styles.okText.Render(fmt.Sprintf("%d pets · updated %s", m.data.Len(), m.lastUpdated.Format("15:04:05")))
	}
}

func (m *Model) renderFooter() string {
	canForward := m.location != nil && m.location.CanGoForward()
	if _, ok := detailIndex(m.route); ok {
		hints := []string{"↑/↓ prev/next", "esc back"}
		if canForward {
			hints = append(hints, "→ forward")
		}
		return m.styles.footer.Render(strings.Join(append(hints, "q quit"), " · "))
	}
	hints := []string{"↑/↓ move", "enter details"}
	if m.location != nil && m.location.CanGoBack() {
		hints = append(hints, "← back")
	}
	if canForward {
		hints = append(hints, "→ forward")
	}
	return m.styles.footer.Render(strings.Join(append(hints, "q quit"), " · "))
}
