package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/fedi-cli/internal/app"
	"github.com/glabrego/fedi-cli/internal/mastodon"
	"github.com/glabrego/fedi-cli/internal/render/content"
	"github.com/glabrego/fedi-cli/internal/storage"
	"github.com/glabrego/fedi-cli/internal/timeline"
	"github.com/glabrego/fedi-cli/internal/tui/actions"
	"github.com/glabrego/fedi-cli/internal/tui/platform"
	tuistate "github.com/glabrego/fedi-cli/internal/tui/state"
	tuitheme "github.com/glabrego/fedi-cli/internal/tui/theme"
	"github.com/glabrego/fedi-cli/internal/tui/view"
)

type Service interface {
	actions.Service
	OpenTimeline(kind timeline.Kind) (timeline.Feed, error)
	OpenThread(status *mastodon.Status) timeline.Feed
}

type clearStatusMsg struct {
	id int
}

type mediaPreviewSuccessMsg struct {
	statusID string
	preview  string
}

type mediaPreviewErrorMsg struct {
	statusID string
	err      error
}

type screenKind int

const (
	screenTimeline screenKind = iota
	screenThread
	screenStatus
)

// screen is one level of the navigation stack. List screens own a feed;
// the status screen shows a single row.
type screen struct {
	kind      screenKind
	title     string
	feed      timeline.Feed
	rows      []timeline.Row
	cursor    int
	fetched   bool
	row       timeline.Row
	detailTop int
}

type Options struct {
	Account     string
	Timeline    timeline.Kind
	Editor      string
	EditorArgs  []string
	Signs       map[mastodon.NotificationType]view.Sign
	Preferences storage.Preferences
}

type Model struct {
	service    Service
	stack      []screen
	account    string
	editor     string
	editorArgs []string
	signs      map[mastodon.NotificationType]view.Sign
	theme      tuitheme.Theme

	width  int
	height int

	loading   bool
	status    string
	statusID  int
	err       error
	showHelp  bool
	switching bool
	jumping   bool
	jumpInput string

	relativeTime bool
	showNumbers  bool
	compact      bool

	openURLFn     func(string) error
	copyURLFn     func(string) error
	nowFn         func() time.Time
	renderImageFn func(string, int) (string, error)

	previewEnabled      bool
	kitty               bool
	imagePreview        map[string]string
	imagePreviewErr     map[string]string
	imagePreviewLoading map[string]bool
}

// NewModel opens the starting timeline. Nothing is fetched until Init.
func NewModel(service Service, opts Options) (Model, error) {
	kind := opts.Timeline
	if kind == "" {
		kind = timeline.Home
	}
	feed, err := service.OpenTimeline(kind)
	if err != nil {
		return Model{}, err
	}
	editor := opts.Editor
	if editor == "" {
		editor = "vim"
	}
	m := Model{
		service:             service,
		stack:               []screen{{kind: screenTimeline, title: kind.Title(), feed: feed}},
		account:             opts.Account,
		editor:              editor,
		editorArgs:          opts.EditorArgs,
		signs:               opts.Signs,
		theme:               tuitheme.Default(),
		loading:             true,
		openURLFn:           platform.OpenURLInBrowser,
		copyURLFn:           platform.CopyURLToClipboard,
		nowFn:               time.Now,
		renderImageFn:       renderMediaPreview,
		previewEnabled:      view.PreviewAvailable(),
		kitty:               view.SupportsKittyGraphics(),
		imagePreview:        make(map[string]string),
		imagePreviewErr:     make(map[string]string),
		imagePreviewLoading: make(map[string]bool),
	}
	m.applyPreferences(opts.Preferences)
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return actions.FetchCmd(m.top().feed, false)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case actions.FeedLoadedMsg:
		return m.applyFeed(msg)
	case actions.ToggleSuccessMsg:
		m.applyToggle(msg.Action, msg.Status)
		return m.setStatus(msg.Text)
	case actions.ToggleErrorMsg:
		m.err = msg.Err
		return m, nil
	case actions.ComposeReadyMsg:
		return m, actions.EditCmd(m.editor, m.editorArgs, msg.Compose, msg.Path)
	case actions.ComposeErrorMsg:
		m.err = msg.Err
		return m, nil
	case actions.EditorFinishedMsg:
		if msg.Err != nil {
			_, _ = platform.ReadComposeFile(msg.Path)
			m.err = fmt.Errorf("editor %s: %w", m.editor, msg.Err)
			return m, nil
		}
		m.status = "Posting..."
		return m, actions.PostCmd(m.service, msg.Compose, msg.Path)
	case actions.PostSuccessMsg:
		return m.setStatus("Posted")
	case actions.PostAbortedMsg:
		return m.setStatus("Nothing to post")
	case actions.PostErrorMsg:
		m.status = ""
		m.err = msg.Err
		return m, nil
	case actions.OpenURLSuccessMsg:
		return m.setStatus(msg.Status)
	case actions.OpenURLErrorMsg:
		m.err = msg.Err
		return m, nil
	case actions.PreferenceSaveErrorMsg:
		return m.setStatus("Could not save preferences: " + msg.Err.Error())
	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil
	case mediaPreviewSuccessMsg:
		delete(m.imagePreviewLoading, msg.statusID)
		m.imagePreview[msg.statusID] = msg.preview
		return m, nil
	case mediaPreviewErrorMsg:
		delete(m.imagePreviewLoading, msg.statusID)
		m.imagePreviewErr[msg.statusID] = msg.err.Error()
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.err != nil {
		switch key {
		case "esc", "q", "enter":
			m.err = nil
		}
		return m, nil
	}

	if m.showHelp {
		switch key {
		case "esc", "?", "q":
			m.showHelp = false
		}
		return m, nil
	}

	if m.switching {
		m.switching = false
		if kind, ok := switchKinds[key]; ok {
			return m.switchTimeline(kind)
		}
		return m, nil
	}

	if m.jumping {
		return m.handleJumpKey(key)
	}

	if m.top().kind == screenStatus {
		return m.handleStatusKey(key)
	}
	return m.handleListKey(key)
}

var switchKinds = map[string]timeline.Kind{
	"h": timeline.Home,
	"l": timeline.Local,
	"g": timeline.Global,
	"n": timeline.Notifications,
	"p": timeline.Personal,
	"b": timeline.Bookmarks,
}

func (m Model) handleListKey(key string) (tea.Model, tea.Cmd) {
	s := m.top()
	switch key {
	case "q":
		return m.back()
	case "?":
		m.showHelp = true
		return m, nil
	case "down", "j":
		if s.cursor < len(s.rows)-1 {
			s.cursor++
			return m, nil
		}
		return m.fetch(true)
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
		return m, nil
	case "ctrl+d", "pgdown":
		step := tuistate.HalfPage(m.height, m.hasStatusLine())
		if key == "pgdown" {
			step = tuistate.PageStep(m.height, m.hasStatusLine())
		}
		s.cursor = tuistate.ClampCursor(s.cursor+step, len(s.rows))
		return m, nil
	case "ctrl+u", "pgup":
		step := tuistate.HalfPage(m.height, m.hasStatusLine())
		if key == "pgup" {
			step = tuistate.PageStep(m.height, m.hasStatusLine())
		}
		s.cursor = tuistate.ClampCursor(s.cursor-step, len(s.rows))
		return m, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.jumping = true
		m.jumpInput = key
		return m, nil
	case "r":
		return m.fetch(false)
	case "g":
		m.switching = true
		return m, nil
	case "t":
		return m.openThread()
	case "enter", "l":
		return m.openStatus()
	case "p":
		return m, actions.ComposeCmd(m.service, nil)
	case "R":
		return m.reply()
	case "f":
		return m.toggle(app.ActionFavourite)
	case "b":
		return m.toggle(app.ActionReblog)
	case "B":
		return m.toggle(app.ActionBookmark)
	case "o":
		return m.openCurrentURL()
	case "y":
		return m.copyCurrentURL()
	case "d":
		m.relativeTime = !m.relativeTime
		return m.persistPreferences()
	case "N":
		m.showNumbers = !m.showNumbers
		return m.persistPreferences()
	case "c":
		m.compact = !m.compact
		return m.persistPreferences()
	}
	return m, nil
}

func (m Model) handleStatusKey(key string) (tea.Model, tea.Cmd) {
	s := m.top()
	switch key {
	case "q", "esc", "backspace":
		return m.back()
	case "?":
		m.showHelp = true
		return m, nil
	case "down", "j":
		if s.detailTop < m.detailMaxTop() {
			s.detailTop++
		}
		return m, nil
	case "up", "k":
		if s.detailTop > 0 {
			s.detailTop--
		}
		return m, nil
	case "ctrl+d":
		s.detailTop = min(m.detailMaxTop(), s.detailTop+tuistate.HalfPage(m.height, m.hasStatusLine()))
		return m, nil
	case "ctrl+u":
		s.detailTop = max(0, s.detailTop-tuistate.HalfPage(m.height, m.hasStatusLine()))
		return m, nil
	case "t":
		return m.openThread()
	case "R":
		return m.reply()
	case "f":
		return m.toggle(app.ActionFavourite)
	case "b":
		return m.toggle(app.ActionReblog)
	case "B":
		return m.toggle(app.ActionBookmark)
	case "o":
		return m.openCurrentURL()
	case "y":
		return m.copyCurrentURL()
	}
	return m, nil
}

func (m Model) handleJumpKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.jumping = false
		m.jumpInput = ""
	case "backspace":
		if m.jumpInput != "" {
			m.jumpInput = m.jumpInput[:len(m.jumpInput)-1]
		}
		if m.jumpInput == "" {
			m.jumping = false
		}
	case "enter":
		m.jumping = false
		s := m.top()
		target, err := tuistate.JumpTarget(m.jumpInput, len(s.rows))
		m.jumpInput = ""
		if err != nil {
			return m.setStatus(err.Error())
		}
		s.cursor = target
	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			m.jumpInput += key
		}
	}
	return m, nil
}

// top returns the current screen. The stack is never empty.
func (m *Model) top() *screen {
	return &m.stack[len(m.stack)-1]
}

func (m Model) back() (tea.Model, tea.Cmd) {
	if len(m.stack) == 1 {
		return m, tea.Quit
	}
	m.stack = append([]screen(nil), m.stack[:len(m.stack)-1]...)
	return m, nil
}

func (m Model) push(s screen) Model {
	stack := make([]screen, len(m.stack), len(m.stack)+1)
	copy(stack, m.stack)
	m.stack = append(stack, s)
	return m
}

func (m Model) fetch(older bool) (tea.Model, tea.Cmd) {
	if m.loading {
		return m.setStatus("Still loading...")
	}
	s := m.top()
	if s.feed == nil {
		return m, nil
	}
	if older && !hasMore(s.feed) {
		return m, nil
	}
	m.loading = true
	return m, actions.FetchCmd(s.feed, older)
}

func hasMore(feed timeline.Feed) bool {
	more, ok := feed.(interface{ HasMore() bool })
	return ok && more.HasMore()
}

func (m Model) switchTimeline(kind timeline.Kind) (tea.Model, tea.Cmd) {
	if m.loading {
		return m.setStatus("Still loading...")
	}
	feed, err := m.service.OpenTimeline(kind)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.stack = []screen{{kind: screenTimeline, title: kind.Title(), feed: feed}}
	m.loading = true
	return m, actions.FetchCmd(feed, false)
}

func (m Model) openThread() (tea.Model, tea.Cmd) {
	if m.loading {
		return m.setStatus("Still loading...")
	}
	row, ok := m.currentRow()
	if !ok || row.Status == nil {
		return m.setStatus("No status selected")
	}
	feed := m.service.OpenThread(row.Status)
	m = m.push(screen{kind: screenThread, title: "Thread", feed: feed})
	m.loading = true
	return m, actions.FetchCmd(feed, false)
}

func (m Model) openStatus() (tea.Model, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	m = m.push(screen{kind: screenStatus, title: "Status", row: row})
	return m, m.ensureMediaPreviewCmd(row)
}

func (m Model) reply() (tea.Model, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok || row.Status == nil {
		return m.setStatus("No status selected")
	}
	return m, actions.ComposeCmd(m.service, row.Status)
}

func (m Model) toggle(action app.Action) (tea.Model, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok || row.Status == nil {
		return m.setStatus("No status selected")
	}
	return m, actions.ToggleCmd(m.service, action, row.Status)
}

func (m Model) openCurrentURL() (tea.Model, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	url, err := platform.ValidateURL(row.URL())
	if err != nil {
		return m.setStatus(err.Error())
	}
	return m, actions.OpenURLCmd(url, m.openURLFn, m.copyURLFn)
}

func (m Model) copyCurrentURL() (tea.Model, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	url, err := platform.ValidateURL(row.URL())
	if err != nil {
		return m.setStatus(err.Error())
	}
	return m, actions.CopyURLCmd(url, m.copyURLFn)
}

func (m Model) currentRow() (timeline.Row, bool) {
	s := m.top()
	if s.kind == screenStatus {
		return s.row, true
	}
	if len(s.rows) == 0 {
		return timeline.Row{}, false
	}
	return s.rows[tuistate.ClampCursor(s.cursor, len(s.rows))], true
}

func (m Model) applyFeed(msg actions.FeedLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	idx := -1
	for i := range m.stack {
		if m.stack[i].feed != nil && m.stack[i].feed == msg.Feed {
			idx = i
		}
	}
	if idx < 0 {
		return m, nil
	}

	s := &m.stack[idx]
	prevLen := len(s.rows)
	var anchor string
	if prevLen > 0 {
		anchor = s.rows[tuistate.ClampCursor(s.cursor, prevLen)].ID
	}
	s.rows = msg.Rows

	switch {
	case !s.fetched:
		s.cursor = 0
		if focal, ok := s.feed.(interface{ FocalIndex() int }); ok {
			s.cursor = focal.FocalIndex()
		}
	case msg.Older && msg.Err == nil && len(s.rows) > prevLen && s.cursor == prevLen-1:
		s.cursor = prevLen
	default:
		if i := tuistate.RowIndexByID(s.rows, anchor); i >= 0 {
			s.cursor = i
		}
	}
	s.cursor = tuistate.ClampCursor(s.cursor, len(s.rows))
	if msg.Err == nil {
		s.fetched = true
	}

	if msg.Err != nil {
		m.err = msg.Err
		return m, nil
	}
	if msg.Older && len(s.rows) == prevLen {
		return m.setStatus("No older posts")
	}
	return m.setStatus(fmt.Sprintf("Loaded %d rows in %dms", len(s.rows), msg.Duration.Milliseconds()))
}

// applyToggle copies the new engagement flag onto every shown copy of the
// status.
func (m *Model) applyToggle(action app.Action, updated *mastodon.Status) {
	if updated == nil {
		return
	}
	seen := make(map[*mastodon.Status]bool)
	apply := func(s *mastodon.Status) {
		if s == nil || s.ID != updated.ID || seen[s] {
			return
		}
		seen[s] = true
		switch action {
		case app.ActionFavourite:
			s.FavouritesCount = adjustCount(s.FavouritesCount, s.Favourited, updated.Favourited)
			s.Favourited = updated.Favourited
		case app.ActionReblog:
			s.ReblogsCount = adjustCount(s.ReblogsCount, s.Reblogged, updated.Reblogged)
			s.Reblogged = updated.Reblogged
		case app.ActionBookmark:
			s.Bookmarked = updated.Bookmarked
		}
	}
	for i := range m.stack {
		for _, row := range m.stack[i].rows {
			apply(row.Status)
		}
		apply(m.stack[i].row.Status)
	}
}

func adjustCount(count int, before, after bool) int {
	switch {
	case !before && after:
		return count + 1
	case before && !after && count > 0:
		return count - 1
	}
	return count
}

func (m Model) setStatus(text string) (tea.Model, tea.Cmd) {
	m.status = text
	m.statusID++
	return m, clearStatusCmd(m.statusID, 4*time.Second)
}

func clearStatusCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func (m *Model) applyPreferences(p storage.Preferences) {
	m.relativeTime = p.RelativeTime
	m.showNumbers = p.ShowNumbers
	m.compact = p.Compact
}

func (m Model) preferences() storage.Preferences {
	return storage.Preferences{
		RelativeTime: m.relativeTime,
		ShowNumbers:  m.showNumbers,
		Compact:      m.compact,
	}
}

func (m Model) persistPreferences() (tea.Model, tea.Cmd) {
	return m, actions.SavePreferencesCmd(m.service, m.preferences())
}

func (m Model) ensureMediaPreviewCmd(row timeline.Row) tea.Cmd {
	if !m.previewEnabled || m.renderImageFn == nil || row.Status == nil {
		return nil
	}
	imageURL := view.PreviewImageURL(row.Status)
	if imageURL == "" {
		return nil
	}
	id := row.Status.ID
	if _, ok := m.imagePreview[id]; ok || m.imagePreviewLoading[id] {
		return nil
	}
	m.imagePreviewLoading[id] = true
	renderFn := m.renderImageFn
	width := m.contentWidth()
	return func() tea.Msg {
		preview, err := renderFn(imageURL, width)
		if err != nil {
			return mediaPreviewErrorMsg{statusID: id, err: err}
		}
		return mediaPreviewSuccessMsg{statusID: id, preview: preview}
	}
}

func renderMediaPreview(imageURL string, width int) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return view.RenderMediaPreview(ctx, &http.Client{Timeout: 8 * time.Second}, imageURL, width)
}

func (m Model) View() string {
	var b strings.Builder
	s := m.top()
	if m.kitty && m.previewEnabled && s.kind != screenStatus {
		b.WriteString(view.ClearKittyGraphicsSequence())
	}

	b.WriteString(view.Header(m.screenTitle(), m.account, m.theme))
	b.WriteString("\n")

	bodyHeight := m.bodyHeight()
	switch {
	case m.err != nil:
		b.WriteString(view.ErrorOverlay(m.err, m.width, bodyHeight, m.theme))
		b.WriteString("\n")
	case m.showHelp:
		b.WriteString(view.HelpOverlay(m.width, bodyHeight, m.theme))
		b.WriteString("\n")
	case m.switching:
		b.WriteString(view.SwitchMenu(m.width, bodyHeight, m.theme))
		b.WriteString("\n")
	case s.kind == screenStatus:
		b.WriteString(view.RenderDetailLines(m.detailLines(), s.detailTop, bodyHeight))
	default:
		b.WriteString(m.listView(bodyHeight))
	}

	if m.hasStatusLine() {
		if m.jumping {
			b.WriteString(view.JumpPrompt(m.jumpInput, m.theme))
		} else {
			b.WriteString(view.StatusLine(m.loading, m.status, m.theme))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) listView(bodyHeight int) string {
	s := m.top()
	if len(s.rows) == 0 {
		if m.loading {
			return "Loading...\n"
		}
		return "Nothing to show.\n"
	}
	start, end := tuistate.CenteredWindow(len(s.rows), s.cursor, bodyHeight)
	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(m.renderRow(s.rows[i], i, i == s.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderRow(row timeline.Row, pos int, active bool) string {
	var sign view.Sign
	if row.NotificationType != "" {
		sign = m.signs[row.NotificationType]
	}
	return view.RenderRowLine(view.RowLineParams{
		Row:          row,
		Now:          m.nowFn(),
		RelativeTime: m.relativeTime,
		Compact:      m.compact,
		ShowNumbers:  m.showNumbers,
		Pos:          pos,
		Active:       active,
		Width:        m.contentWidth(),
		Sign:         sign,
	}, m.theme)
}

func (m Model) detailLines() []string {
	s := m.top()
	row := s.row
	var preview view.MediaPreviewState
	if row.Status != nil && m.previewEnabled && view.PreviewImageURL(row.Status) != "" {
		id := row.Status.ID
		preview = view.MediaPreviewState{
			Enabled: true,
			Loading: m.imagePreviewLoading[id],
			Raw:     m.imagePreview[id],
			Err:     m.imagePreviewErr[id],
		}
	}
	return view.StatusDetailLines(row, m.contentWidth(), 2, content.DefaultOptions, preview)
}

func (m Model) detailMaxTop() int {
	return view.DetailMaxTop(len(m.detailLines()), m.bodyHeight())
}

func (m Model) screenTitle() string {
	titles := make([]string, 0, len(m.stack))
	for _, s := range m.stack {
		titles = append(titles, s.title)
	}
	return strings.Join(titles, " › ")
}

func (m Model) footer() string {
	s := m.top()
	inDetail := s.kind == screenStatus
	shown := len(s.rows)
	more := s.feed != nil && hasMore(s.feed)
	if inDetail {
		shown = 1
	}
	return view.CompactFooter(s.title, shown, more, m.theme) + "  " + m.theme.MetaLabel.Render(view.Toolbar(inDetail))
}

func (m Model) hasStatusLine() bool {
	return m.status != "" || m.loading || m.jumping
}

func (m Model) bodyHeight() int {
	return tuistate.PageStep(m.height, m.hasStatusLine())
}

func (m Model) contentWidth() int {
	if m.width > 0 {
		return m.width - 1
	}
	return 100
}

// ErrNoService is returned by Run when no service is configured.
var ErrNoService = errors.New("tui: no service configured")

// Run starts the full-screen program and blocks until the user quits.
func Run(service Service, opts Options) error {
	if service == nil {
		return ErrNoService
	}
	m, err := NewModel(service, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
