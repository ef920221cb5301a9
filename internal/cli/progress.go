package cli

import (
	"context"
	"fmt"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"expertminer/internal/db"
	"expertminer/internal/models"
)

const watchPollInterval = 2 * time.Second

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// tickMsg triggers polling the run status
type tickMsg time.Time

// runUpdateMsg carries the updated run data
type runUpdateMsg struct {
	run *models.Run
	err error
}

// statusProgress maps a run's lifecycle stage onto the progress bar.
var statusProgress = map[models.RunStatus]float64{
	models.RunStatusQueued:     0.10,
	models.RunStatusNeedsLogin: 0.35,
	models.RunStatusRunning:    0.70,
	models.RunStatusCompleted:  1.00,
	models.RunStatusFailed:     1.00,
}

// watchModel is the bubbletea model for run progress.
type watchModel struct {
	db       *db.Client
	runID    string
	run      *models.Run
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
	err      error
}

// newWatchModel creates a new watch model.
func newWatchModel(dbClient *db.Client, run *models.Run) watchModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return watchModel{
		db:       dbClient,
		runID:    models.MustRecordIDString(run.ID),
		run:      run,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init returns the initial command (start polling).
func (m watchModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		return m, m.fetchRun()

	case runUpdateMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("failed to fetch run status: %w", msg.err)
			m.done = true
			return m, tea.Quit
		}
		if msg.run == nil {
			m.err = fmt.Errorf("run %s disappeared", m.runID)
			m.done = true
			return m, tea.Quit
		}

		m.run = msg.run

		switch m.run.Status {
		case models.RunStatusCompleted:
			m.done = true
			return m, tea.Quit
		case models.RunStatusFailed:
			m.done = true
			if m.run.FailureReason != nil {
				m.err = fmt.Errorf("%s", *m.run.FailureReason)
			} else {
				m.err = fmt.Errorf("run failed with unknown error")
			}
			return m, tea.Quit
		}

		// Continue polling for live runs
		return m, tickCmd()

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m watchModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m watchModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	if m.run == nil {
		return "Loading run status...\n"
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.run.Status))
	progressBar := m.progress.ViewAs(statusProgress[m.run.Status])

	hint := m.theme.hintStyle().Render("Press Ctrl+C to continue in background")
	if m.run.Status == models.RunStatusNeedsLogin && m.run.NeedsLoginURL != nil {
		hint = m.theme.hintStyle().Render("Complete login at: "+*m.run.NeedsLoginURL) + "\n" + hint
	}

	return fmt.Sprintf("%s %s\n%s\n", status, progressBar, hint)
}

// finalView renders the completion message.
func (m watchModel) finalView() string {
	if m.quitting {
		msg := fmt.Sprintf("\nRun %s continues in background.\nUse 'expertminer status %s' to check on it.\n",
			m.runID, m.runID)
		return m.theme.hintStyle().Render(msg)
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Run failed: %s\n", m.err))
	}

	if m.run != nil {
		var output string
		output += m.theme.completedStyle().Render("✓ Completed") + "\n\n"
		output += fmt.Sprintf("  Experts analyzed: %d\n", len(m.run.Config.Experts))
		if m.run.TokenEstimate > 0 {
			output += fmt.Sprintf("  Tokens used:      %d (~$%.4f)\n", m.run.TokenEstimate, m.run.CostEstimateUSD)
		}
		output += fmt.Sprintf("\nUse 'expertminer status %s' to see the artifacts.\n", m.runID)
		return output
	}

	return m.theme.completedStyle().Render("✓ Completed\n")
}

// fetchRun fetches the current run status from the database.
// Runs in a separate goroutine (command) to avoid blocking Update().
func (m watchModel) fetchRun() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		run, err := m.db.GetRun(ctx, m.runID)
		return runUpdateMsg{run: run, err: err}
	}
}

// tickCmd returns a command that sends a tick after the poll interval.
func tickCmd() tea.Cmd {
	return tea.Tick(watchPollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// RunWatch runs the interactive progress UI for a run.
// Returns nil on completion or Ctrl+C (background), error on run failure.
func RunWatch(dbClient *db.Client, run *models.Run) error {
	model := newWatchModel(dbClient, run)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(watchModel); ok {
		// Ctrl+C leaves the run going in the background, not an error
		if m.quitting {
			return nil
		}
		if m.err != nil {
			return m.err
		}
	}

	return nil
}
