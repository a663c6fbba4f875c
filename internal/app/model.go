package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jwulff/asltutor/internal/camera"
	"github.com/jwulff/asltutor/internal/db"
	"github.com/jwulff/asltutor/internal/gestures"
	"github.com/jwulff/asltutor/internal/progress"
	"github.com/jwulff/asltutor/internal/session"
	"github.com/jwulff/asltutor/internal/speech"
	"github.com/jwulff/asltutor/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// View is a top-level screen.
type View int

const (
	ViewTranslator View = iota
	ViewLibrary
	ViewProgress
	ViewSaved
	viewCount
)

func (v View) String() string {
	switch v {
	case ViewLibrary:
		return "Library"
	case ViewProgress:
		return "Progress"
	case ViewSaved:
		return "Saved"
	default:
		return "Translator"
	}
}

// Store is the persistence the TUI reads and writes.
type Store interface {
	Translations(ctx context.Context) ([]db.Translation, error)
	DeleteTranslation(ctx context.Context, index int) error
	SetCompleted(ctx context.Context, email, gestureID string, done bool) error
	CompletedGestures(ctx context.Context, email string) (map[string]time.Time, error)
	SetPreference(ctx context.Context, key string, v any) error
}

// Config wires the model's collaborators. Session and Catalog are required;
// a nil Store disables the saved and progress views' persistence.
type Config struct {
	Session *session.Session
	Store   Store
	Catalog *gestures.Catalog
	Speaker speech.Speaker
	Theme   ui.Theme
	User    *db.CurrentUser
	Logger  *slog.Logger
}

// Model is the root bubbletea model for the asltutor TUI.
type Model struct {
	session *session.Session
	store   Store
	catalog *gestures.Catalog
	speaker speech.Speaker
	theme   ui.Theme
	user    *db.CurrentUser
	log     *slog.Logger

	// Latest session state
	snap session.Snapshot

	// UI state
	view   View
	width  int
	height int

	// Library
	query           string
	searching       bool
	results         []gestures.Gesture
	selectedGesture int
	completed       map[string]time.Time

	// Saved translations
	translations  []db.Translation
	selectedSaved int

	// Errors and notices
	errorMessage   string
	errorTransient bool
	notice         string

	quitting bool
}

// New creates a Model on the translator view.
func New(cfg Config) Model {
	m := Model{
		session:   cfg.Session,
		store:     cfg.Store,
		catalog:   cfg.Catalog,
		speaker:   cfg.Speaker,
		theme:     cfg.Theme,
		user:      cfg.User,
		log:       cfg.Logger,
		completed: map[string]time.Time{},
	}
	if m.speaker == nil {
		m.speaker = speech.Nop{}
	}
	if m.theme.Name == "" {
		m.theme = ui.Dark()
	}
	if m.log == nil {
		m.log = slog.New(slog.DiscardHandler)
	}
	m.snap = m.session.Snapshot()
	m.results = m.catalog.All()
	return m
}

// Init starts reading session updates and loads persisted data.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForUpdateCmd(m.session.Updates()),
		loadTranslationsCmd(m.store),
		loadProgressCmd(m.store, m.learner()),
	)
}

// waitForUpdateCmd blocks for the next session update.
func waitForUpdateCmd(ch <-chan session.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return SessionClosedMsg{}
		}
		return SessionUpdateMsg{Update: u}
	}
}

// enableCameraCmd asks the session for the camera.
func enableCameraCmd(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return CameraResultMsg{Err: s.EnableCamera(ctx)}
	}
}

// saveCmd persists the current detection.
func saveCmd(s *session.Session, label string) tea.Cmd {
	return func() tea.Msg {
		saved, err := s.Save(context.Background())
		return SavedMsg{Text: label, Saved: saved, Err: err}
	}
}

// loadTranslationsCmd reads saved translations.
func loadTranslationsCmd(store Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		items, err := store.Translations(context.Background())
		return TranslationsLoadedMsg{Translations: items, Err: err}
	}
}

// deleteTranslationCmd removes a saved translation and reloads the list.
func deleteTranslationCmd(store Store, index int) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := store.DeleteTranslation(ctx, index); err != nil {
			return ErrorMsg{Err: err}
		}
		items, err := store.Translations(ctx)
		return TranslationsLoadedMsg{Translations: items, Err: err}
	}
}

// loadProgressCmd reads completed gestures for the learner.
func loadProgressCmd(store Store, email string) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		done, err := store.CompletedGestures(context.Background(), email)
		return ProgressLoadedMsg{Completed: done, Err: err}
	}
}

// setCompletedCmd marks or unmarks a gesture and reloads progress.
func setCompletedCmd(store Store, email, gestureID string, done bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := store.SetCompleted(ctx, email, gestureID, done); err != nil {
			return ErrorMsg{Err: err}
		}
		completed, err := store.CompletedGestures(ctx, email)
		return ProgressLoadedMsg{Completed: completed, Err: err}
	}
}

// saveThemeCmd persists the chosen theme.
func saveThemeCmd(store Store, name string) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		if err := store.SetPreference(context.Background(), db.PrefTheme, name); err != nil {
			return ErrorMsg{Err: err}
		}
		return nil
	}
}

// clearTransientErrorCmd fires after a delay to clear transient errors.
func clearTransientErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{}
	})
}

// clearNoticeCmd fires after a delay to clear the notice line.
func clearNoticeCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return ClearNoticeMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case SessionUpdateMsg:
		m.snap = msg.Update.Snapshot
		return m, waitForUpdateCmd(m.session.Updates())

	case SessionClosedMsg:
		m.snap.Closed = true
		return m, nil

	case CameraResultMsg:
		m.snap = m.session.Snapshot()
		if msg.Err != nil {
			cmd := m.setError(msg.Err)
			return m, cmd
		}
		cmd := m.setNotice("Camera enabled")
		return m, cmd

	case SavedMsg:
		if msg.Err != nil {
			cmd := m.setError(msg.Err)
			return m, cmd
		}
		if !msg.Saved {
			cmd := m.setNotice("Nothing to save yet")
			return m, cmd
		}
		cmd := m.setNotice(fmt.Sprintf("Saved %q", msg.Text))
		return m, tea.Batch(cmd, loadTranslationsCmd(m.store))

	case TranslationsLoadedMsg:
		if msg.Err != nil {
			cmd := m.setError(msg.Err)
			return m, cmd
		}
		m.translations = msg.Translations
		m.selectedSaved = clamp(m.selectedSaved, len(m.translations))
		return m, nil

	case ProgressLoadedMsg:
		if msg.Err != nil {
			cmd := m.setError(msg.Err)
			return m, cmd
		}
		m.completed = msg.Completed
		if m.completed == nil {
			m.completed = map[string]time.Time{}
		}
		return m, nil

	case ErrorMsg:
		cmd := m.setError(msg.Err)
		return m, cmd

	case ClearTransientErrorMsg:
		if m.errorTransient {
			m.errorMessage = ""
			m.errorTransient = false
		}
		return m, nil

	case ClearNoticeMsg:
		m.notice = ""
		return m, nil
	}

	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case KeyQuit, KeyQuitUpper, KeyCtrlC:
		return m.quit()

	case KeyTab:
		return m.switchView((m.view + 1) % viewCount)

	case KeyShiftTab:
		return m.switchView((m.view + viewCount - 1) % viewCount)

	case KeyTheme:
		m.theme = m.theme.Toggle()
		return m, saveThemeCmd(m.store, m.theme.Name)
	}

	switch m.view {
	case ViewTranslator:
		return m.handleTranslatorKey(msg)
	case ViewLibrary:
		return m.handleLibraryKey(msg)
	case ViewSaved:
		return m.handleSavedKey(msg)
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if err := m.session.Close(); err != nil {
		m.log.Warn("closing session", "error", err)
	}
	m.snap = m.session.Snapshot()
	return m, tea.Quit
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.view = v
	switch v {
	case ViewSaved:
		return m, loadTranslationsCmd(m.store)
	case ViewProgress:
		return m, loadProgressCmd(m.store, m.learner())
	}
	return m, nil
}

func (m Model) handleTranslatorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEnableCamera:
		return m, enableCameraCmd(m.session)

	case KeySpace:
		err := m.session.Toggle()
		m.snap = m.session.Snapshot()
		if err != nil {
			cmd := m.setError(err)
			return m, cmd
		}
		return m, nil

	case KeyCalibrate:
		err := m.session.Calibrate()
		m.snap = m.session.Snapshot()
		if err != nil {
			cmd := m.setError(err)
			return m, cmd
		}
		return m, nil

	case KeySave:
		return m, saveCmd(m.session, m.snap.Label)

	case KeySpeak:
		if m.snap.Label != "" {
			m.speaker.Speak(m.snap.Label)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleLibraryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeySearch:
		m.searching = true
		return m, nil

	case KeyEsc:
		m.query = ""
		m.refilter()
		return m, nil

	case KeyJ, KeyDown:
		if m.selectedGesture < len(m.results)-1 {
			m.selectedGesture++
		}
		return m, nil

	case KeyK, KeyUp:
		if m.selectedGesture > 0 {
			m.selectedGesture--
		}
		return m, nil

	case KeyEnter:
		if m.store == nil || m.selectedGesture >= len(m.results) {
			return m, nil
		}
		g := m.results[m.selectedGesture]
		_, done := m.completed[g.ID]
		return m, setCompletedCmd(m.store, m.learner(), g.ID, !done)

	case KeySpeak:
		if m.selectedGesture < len(m.results) {
			m.speaker.Speak(m.results[m.selectedGesture].Name)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.quit()
	case tea.KeyEsc:
		m.searching = false
		m.query = ""
	case tea.KeyEnter:
		m.searching = false
	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.query = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.query += " "
	case tea.KeyRunes:
		m.query += string(msg.Runes)
	default:
		return m, nil
	}
	m.refilter()
	return m, nil
}

func (m Model) handleSavedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyJ, KeyDown:
		if m.selectedSaved < len(m.translations)-1 {
			m.selectedSaved++
		}
		return m, nil

	case KeyK, KeyUp:
		if m.selectedSaved > 0 {
			m.selectedSaved--
		}
		return m, nil

	case KeyDelete:
		if m.store == nil || m.selectedSaved >= len(m.translations) {
			return m, nil
		}
		return m, deleteTranslationCmd(m.store, m.selectedSaved)

	case KeySpeak:
		if m.selectedSaved < len(m.translations) {
			m.speaker.Speak(m.translations[m.selectedSaved].Text)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) refilter() {
	m.results = m.catalog.Search(gestures.Query{Text: m.query})
	m.selectedGesture = clamp(m.selectedGesture, len(m.results))
}

func (m *Model) setError(err error) tea.Cmd {
	m.errorMessage = describeError(err)
	m.errorTransient = true
	return clearTransientErrorCmd()
}

func (m *Model) setNotice(s string) tea.Cmd {
	m.notice = s
	return clearNoticeCmd()
}

// learner is the progress key: the signed-in email, or "" for a guest.
func (m Model) learner() string {
	if m.user == nil {
		return ""
	}
	return m.user.Email
}

func describeError(err error) string {
	switch {
	case errors.Is(err, camera.ErrPermissionDenied):
		return "Camera access is required. Press e to enable the camera."
	case errors.Is(err, session.ErrCalibrating):
		return "Start/stop is disabled while calibrating"
	case errors.Is(err, session.ErrAlreadyCalibrating):
		return "Calibration is already running"
	case errors.Is(err, session.ErrNoStore):
		return "Saving is unavailable: no database"
	default:
		return err.Error()
	}
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	return max(0, i)
}

func (m Model) contentHeight() int {
	if m.height == 0 {
		return 20
	}
	// Reserve: header(1) + status(1) + dividers(2) + message(1) + footer(1)
	return max(5, m.height-6)
}

// View renders the full TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Initializing..."
	}

	divider := m.theme.Divider.Render(strings.Repeat("─", m.width))
	h := m.contentHeight()

	var content []string
	switch m.view {
	case ViewLibrary:
		content = m.renderLibrary(h)
	case ViewProgress:
		content = m.renderProgress()
	case ViewSaved:
		content = m.renderSaved(h)
	default:
		content = m.renderTranslator()
	}

	sections := []string{
		m.renderHeader(),
		m.renderStatusBar(),
		divider,
		strings.Join(fitLines(content, h), "\n"),
		divider,
		m.renderMessage(),
		m.renderFooter(),
	}
	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("ASL TUTOR")
	var tabs []string
	for v := View(0); v < viewCount; v++ {
		if v == m.view {
			tabs = append(tabs, m.theme.TabActive.Render(v.String()))
		} else {
			tabs = append(tabs, m.theme.Tab.Render(v.String()))
		}
	}
	header := title + "  " + strings.Join(tabs, "  ")
	if m.user != nil {
		user := m.theme.Dim.Render(m.user.Name)
		gap := m.width - lipgloss.Width(header) - lipgloss.Width(user)
		if gap > 1 {
			header += strings.Repeat(" ", gap) + user
		}
	}
	return header
}

func (m Model) renderStatusBar() string {
	var dot string
	switch m.snap.State {
	case session.StateCalibrating:
		dot = m.theme.Calibrating.Render(fmt.Sprintf("◌ CALIBRATING %d%%", m.snap.CalibrationProgress))
	case session.StateActive:
		dot = m.theme.ActiveDot.Render("● ACTIVE")
	default:
		dot = m.theme.IdleDot.Render("○ IDLE")
	}

	var cam string
	switch m.snap.Permission {
	case camera.PermissionGranted:
		cam = m.theme.Dim.Render("camera on")
	case camera.PermissionDenied:
		cam = m.theme.ErrorText.Render("camera denied")
	default:
		cam = m.theme.Dim.Render("camera off")
	}

	return dot + "  " + cam + "  " + m.theme.Dim.Render(fmt.Sprintf("%d signs", m.snap.Detections))
}

func (m Model) renderTranslator() []string {
	t := m.theme
	lines := []string{t.Title.Render("TRANSLATOR"), ""}

	switch {
	case m.snap.Label != "":
		conf := t.Confidence(m.snap.Tier()).Render(fmt.Sprintf("%d%%", m.snap.Confidence))
		lines = append(lines,
			"  "+t.Label.Render(strings.ToUpper(m.snap.Label))+"  "+conf+
				t.Dim.Render(fmt.Sprintf(" %s confidence", m.snap.Tier())),
			"  "+t.Timestamp.Render(m.snap.DetectedAt.Format("15:04:05")),
		)
	case m.snap.Active:
		lines = append(lines, t.Dim.Render("  Watching for signs..."))
	case m.snap.Permission != camera.PermissionGranted:
		lines = append(lines, t.Dim.Render("  Press e to enable the camera"))
	default:
		lines = append(lines, t.Dim.Render("  Press Space to start recognition"))
	}

	if m.snap.Calibrating || m.snap.CalibrationProgress > 0 {
		status := fmt.Sprintf(" %d%%", m.snap.CalibrationProgress)
		if !m.snap.Calibrating {
			status = " calibrated"
		}
		lines = append(lines, "", "  Calibration "+t.Bar(m.snap.CalibrationProgress, 20)+t.Dim.Render(status))
	}

	lines = append(lines, "", t.Title.Render("RECENT"))
	if len(m.snap.History) == 0 {
		lines = append(lines, t.Dim.Render("  No signs yet"))
	}
	for i, label := range m.snap.History {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, label))
	}
	return lines
}

func (m Model) renderLibrary(height int) []string {
	t := m.theme
	header := t.Title.Render(fmt.Sprintf("LIBRARY (%d)", len(m.results)))
	var search string
	switch {
	case m.searching:
		search = "Search: " + m.query + "▌"
	case m.query != "":
		search = t.Dim.Render("Search: " + m.query + "  (esc clears)")
	default:
		search = t.Dim.Render("Press / to search")
	}

	var body []string
	selectedLine := 0
	if len(m.results) == 0 {
		body = append(body, t.Dim.Render("  No gestures match"))
	}
	width := max(20, m.width-6)
	for i, g := range m.results {
		marker := "[ ]"
		if _, done := m.completed[g.ID]; done {
			marker = t.Done.Render("[x]")
		}
		meta := t.Dim.Render(fmt.Sprintf("  %s · %s", g.Category, g.Difficulty))
		if i == m.selectedGesture {
			selectedLine = len(body)
			body = append(body, t.Selected.Render("> ")+marker+" "+t.Selected.Render(g.Name)+meta)
			for _, wl := range wrapText(g.Description, width) {
				body = append(body, t.Dim.Render("      "+wl))
			}
			for _, tip := range g.Tips {
				body = append(body, t.Dim.Render("      • "+tip))
			}
			continue
		}
		body = append(body, "  "+marker+" "+g.Name+meta)
	}

	visible := max(1, height-3)
	start := 0
	if selectedLine >= visible {
		start = selectedLine - visible/2
	}
	end := min(len(body), start+visible)
	return append([]string{header, search, ""}, body[start:end]...)
}

func (m Model) renderProgress() []string {
	t := m.theme
	ov := progress.Summarize(m.catalog, m.completed)

	lines := []string{t.Title.Render("PROGRESS"), ""}
	lines = append(lines, fmt.Sprintf("  %-20s %s %d/%d (%d%%)",
		"Overall", t.Bar(ov.Percent, 24), ov.Completed, ov.Total, ov.Percent))
	lines = append(lines, "")
	for _, cc := range ov.Categories {
		pct := 0
		if cc.Total > 0 {
			pct = cc.Completed * 100 / cc.Total
		}
		lines = append(lines, fmt.Sprintf("  %-20s %s %d/%d", cc.Category, t.Bar(pct, 24), cc.Completed, cc.Total))
	}
	lines = append(lines, "")
	if !ov.LastActive.IsZero() {
		lines = append(lines, t.Dim.Render("  Last practiced "+ov.LastActive.Local().Format("Jan 2 15:04")))
	}
	if m.user == nil {
		lines = append(lines, t.Dim.Render("  Practicing as guest. Sign in with `asltutor account signin` to keep separate progress."))
	} else {
		lines = append(lines, t.Dim.Render("  Signed in as "+m.user.Email))
	}
	return lines
}

func (m Model) renderSaved(height int) []string {
	t := m.theme
	lines := []string{t.Title.Render(fmt.Sprintf("SAVED (%d)", len(m.translations))), ""}
	if len(m.translations) == 0 {
		return append(lines, t.Dim.Render("  No saved translations. Press s on the translator to save one."))
	}

	visible := max(1, height-2)
	start := 0
	if m.selectedSaved >= visible {
		start = m.selectedSaved - visible + 1
	}
	end := min(len(m.translations), start+visible)
	for i := start; i < end; i++ {
		tr := m.translations[i]
		ts := t.Timestamp.Render(tr.Timestamp.Local().Format("[Jan 2 15:04:05]"))
		if i == m.selectedSaved {
			lines = append(lines, t.Selected.Render("> ")+ts+" "+t.Selected.Render(tr.Text))
		} else {
			lines = append(lines, "  "+ts+" "+tr.Text)
		}
	}
	return lines
}

func (m Model) renderMessage() string {
	switch {
	case m.errorMessage != "":
		return m.theme.Error.Render("Error: ") + m.theme.ErrorText.Render(m.errorMessage)
	case m.notice != "":
		return m.theme.Notice.Render(m.notice)
	}
	return ""
}

func (m Model) renderFooter() string {
	key := func(k, desc string) string {
		return m.theme.FooterKey.Render(k) + m.theme.FooterDesc.Render(" "+desc)
	}
	var parts []string
	switch m.view {
	case ViewTranslator:
		if m.snap.Permission != camera.PermissionGranted {
			parts = append(parts, key("e", "Camera"))
		}
		if m.snap.Active {
			parts = append(parts, key("Space", "Stop"))
		} else {
			parts = append(parts, key("Space", "Start"))
		}
		parts = append(parts, key("c", "Calibrate"), key("s", "Save"), key("p", "Speak"))
	case ViewLibrary:
		if m.searching {
			return key("Enter", "Done") + "  " + key("Esc", "Clear")
		}
		parts = append(parts, key("/", "Search"), key("j/k", "Nav"), key("Enter", "Learned"), key("p", "Speak"))
	case ViewSaved:
		parts = append(parts, key("j/k", "Nav"), key("d", "Delete"), key("p", "Speak"))
	}
	parts = append(parts, key("Tab", "View"), key("t", "Theme"), key("q", "Quit"))
	return strings.Join(parts, "  ")
}

// Helpers

func fitLines(lines []string, height int) []string {
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines[:height]
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
