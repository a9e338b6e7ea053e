package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/krr-up/clingo-explaid/internal/logging"
)

// Mode selects which explanation the interface shows.
type Mode int

const (
	ModeMUC Mode = iota
	ModeUnsatConstraints
	ModeDecisions
)

var modeNames = map[Mode]string{
	ModeMUC:              "Minimal Unsatisfiable Cores",
	ModeUnsatConstraints: "Unsatisfiable Constraints",
	ModeDecisions:        "Decisions",
}

type computeDoneMsg struct {
	mode   Mode
	output string
	err    error
}

type fileChangedMsg struct {
	path string
}

// fileEntry is one input file in the selector pane; disabled files
// are excluded from the computation.
type fileEntry struct {
	path    string
	enabled bool
}

// App is the top-level interface model: mode tabs at the top, a file
// selector pane on the left and the current computation's output in a
// scrollable viewport beside it.
type App struct {
	opts   Options
	styles Styles

	mode      Mode
	files     []fileEntry
	selected  int
	filesPane bool
	viewport  viewport.Model
	spinner   spinner.Model
	computing bool
	output    string
	err       error

	width  int
	height int

	watcher *fsnotify.Watcher
	lastRun time.Time
}

// NewApp creates the interface for the given files and options. When
// file watching is enabled, changes to any input file re-run the
// current computation.
func NewApp(opts Options) (*App, error) {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	styles := NewStyles()
	sp.Style = styles.Spinner

	vp := viewport.New(0, 0)
	vp.SetContent("Computing...")

	files := make([]fileEntry, len(opts.Files))
	for i, file := range opts.Files {
		files[i] = fileEntry{path: file, enabled: true}
	}

	app := &App{
		opts:     opts,
		styles:   styles,
		files:    files,
		viewport: vp,
		spinner:  sp,
	}

	if opts.WatchFiles {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}
		for _, file := range opts.Files {
			if file == "-" {
				continue
			}
			// Watch the directory: editors often replace files on save,
			// which drops a watch placed on the file itself.
			if err := watcher.Add(filepath.Dir(file)); err != nil {
				watcher.Close()
				return nil, fmt.Errorf("failed to watch %s: %w", file, err)
			}
		}
		app.watcher = watcher
	}
	return app, nil
}

// Close releases the file watcher.
func (a *App) Close() {
	if a.watcher != nil {
		a.watcher.Close()
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick, a.compute()}
	if a.watcher != nil {
		cmds = append(cmds, a.waitForChange())
	}
	a.computing = true
	return tea.Batch(cmds...)
}

func (a *App) enabledFiles() []string {
	var out []string
	for _, f := range a.files {
		if f.enabled {
			out = append(out, f.path)
		}
	}
	return out
}

func (a *App) compute() tea.Cmd {
	mode := a.mode
	opts := a.opts
	opts.Files = a.enabledFiles()
	if len(opts.Files) == 0 {
		return func() tea.Msg {
			return computeDoneMsg{mode: mode, output: "No input files enabled."}
		}
	}
	return func() tea.Msg {
		ctx := context.Background()
		var out string
		var err error
		switch mode {
		case ModeMUC:
			out, err = ComputeMUC(ctx, opts)
		case ModeUnsatConstraints:
			out, err = ComputeUnsatConstraints(ctx, opts)
		case ModeDecisions:
			out, err = ComputeDecisions(ctx, opts)
		}
		return computeDoneMsg{mode: mode, output: out, err: err}
	}
}

// waitForChange blocks on the watcher until one of the input files is
// written, then reports it.
func (a *App) waitForChange() tea.Cmd {
	watched := make(map[string]bool, len(a.opts.Files))
	for _, file := range a.opts.Files {
		abs, err := filepath.Abs(file)
		if err != nil {
			continue
		}
		watched[abs] = true
	}
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-a.watcher.Events:
				if !ok {
					return nil
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				abs, err := filepath.Abs(event.Name)
				if err != nil || !watched[abs] {
					continue
				}
				return fileChangedMsg{path: event.Name}
			case err, ok := <-a.watcher.Errors:
				if !ok {
					return nil
				}
				logging.Get(logging.CategoryTUI).Warn("watcher error: %v", err)
			}
		}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.viewport.Width = msg.Width - a.paneWidth()
		a.viewport.Height = msg.Height - 4
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "tab", "right", "l":
			a.mode = (a.mode + 1) % 3
			return a, a.startCompute()
		case "shift+tab", "left", "h":
			a.mode = (a.mode + 2) % 3
			return a, a.startCompute()
		case "r":
			return a, a.startCompute()
		case "f":
			a.filesPane = !a.filesPane
			return a, nil
		case "up", "k":
			if a.filesPane {
				if a.selected > 0 {
					a.selected--
				}
				return a, nil
			}
		case "down", "j":
			if a.filesPane {
				if a.selected < len(a.files)-1 {
					a.selected++
				}
				return a, nil
			}
		case " ", "enter":
			if a.filesPane && len(a.files) > 0 {
				a.files[a.selected].enabled = !a.files[a.selected].enabled
				return a, a.startCompute()
			}
		}

	case computeDoneMsg:
		if msg.mode != a.mode {
			// Stale result from before a mode switch.
			return a, nil
		}
		a.computing = false
		a.err = msg.err
		a.output = msg.output
		if msg.err != nil {
			a.viewport.SetContent(a.styles.Error.Render("Error: " + msg.err.Error()))
		} else {
			a.viewport.SetContent(msg.output)
		}
		a.viewport.GotoTop()
		return a, nil

	case fileChangedMsg:
		logging.Get(logging.CategoryTUI).Info("input changed: %s", msg.path)
		cmds := []tea.Cmd{a.waitForChange()}
		// Debounce bursts from editors writing in multiple steps.
		if time.Since(a.lastRun) > 200*time.Millisecond {
			cmds = append(cmds, a.startCompute())
		}
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a *App) startCompute() tea.Cmd {
	a.computing = true
	a.lastRun = time.Now()
	a.viewport.SetContent("Computing...")
	return tea.Batch(a.spinner.Tick, a.compute())
}

func (a *App) paneWidth() int {
	width := 12
	for _, f := range a.files {
		if w := len(filepath.Base(f.path)) + 8; w > width {
			width = w
		}
	}
	return width
}

// filesView renders the selector pane, one line per input file with
// its toggle state.
func (a *App) filesView() string {
	var sb strings.Builder
	sb.WriteString(a.styles.Muted.Render("Files"))
	sb.WriteString("\n")
	for i, f := range a.files {
		mark := "[ ]"
		if f.enabled {
			mark = "[x]"
		}
		line := mark + " " + filepath.Base(f.path)
		if a.filesPane && i == a.selected {
			line = a.styles.Success.Render("> " + line)
		} else {
			line = "  " + line
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (a *App) View() string {
	var tabs []string
	for mode := ModeMUC; mode <= ModeDecisions; mode++ {
		style := a.styles.Tab
		if mode == a.mode {
			style = a.styles.ActiveTab
		}
		tabs = append(tabs, style.Render(modeNames[mode]))
	}

	header := a.styles.Header.Render("clingexplaid") + " " + strings.Join(tabs, "")
	status := ""
	if a.computing {
		status = " " + a.spinner.View() + a.styles.Muted.Render("computing")
	}
	footer := a.styles.Footer.Render("tab: mode · f: files · space: toggle · r: re-run · q: quit") + status

	body := lipgloss.JoinHorizontal(lipgloss.Top, a.filesView(), a.viewport.View())
	return header + "\n" +
		a.styles.RenderDivider(a.width) + "\n" +
		body + "\n" +
		footer
}
