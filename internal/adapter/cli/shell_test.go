package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lukas-Talaga/TalagaLog/internal/adapter/cli"
	"github.com/Lukas-Talaga/TalagaLog/internal/adapter/memory"
	"github.com/Lukas-Talaga/TalagaLog/internal/adapter/render"
	"github.com/Lukas-Talaga/TalagaLog/internal/app"
	"github.com/Lukas-Talaga/TalagaLog/internal/domain"
)

type session struct {
	db    *memory.DB
	store *app.MetricStore
	out   *bytes.Buffer
	shell *cli.Shell
}

func newSession(script ...string) *session {
	db := memory.New()
	out := &bytes.Buffer{}
	clock := func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local) }
	store := app.NewMetricStore("alice", db, app.WithClock(clock))
	analysis := app.NewAnalysisService(store, render.NewTerminal(out, 5), nil)
	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	return &session{
		db:    db,
		store: store,
		out:   out,
		shell: cli.NewShell(store, analysis, cli.NewLinePrompter(in, out), out, nil),
	}
}

func TestShell_Session(t *testing.T) {
	s := newSession(
		"3", "weight",
		"3", "sleep",
		"4", "weight", "80", "2024-01-01",
		"4", "weight", "79", "2024-01-02",
		"4", "sleep", "7", "2024-01-01",
		"4", "sleep", "8", "2024-01-02",
		"4", "ghost", "1", "",
		"5",
		"7", "weight", "sleep",
		"7", "weight", "nothing",
		"2",
		"x",
		"8",
		"5",
	)
	require.NoError(t, s.shell.Run(context.Background()))

	out := s.out.String()
	assert.Contains(t, out, "Metric ghost does not exist.")
	assert.Contains(t, out, "Available metrics: [weight, sleep]")
	assert.Contains(t, out, "Correlation between weight and sleep: -1.00")
	assert.Contains(t, out, "Correlation coefficient: -1.00 over 2 dates")
	assert.Contains(t, out, "One or both metrics do not exist.")
	assert.Contains(t, out, "Data saved as memory:alice")
	assert.Contains(t, out, "Invalid choice. Please try again.")
	assert.Equal(t, 1, strings.Count(out, "Available metrics:"), "nothing runs after quit")

	assert.Equal(t, 1, s.db.Writes())
	saved, err := s.db.ReadDataset(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"weight", "sleep"}, saved.Names())
	assert.Equal(t, domain.TextCell("2024-01-01|80"), saved.Columns[0].Cells[0])
}

func TestShell_EndOfInputStops(t *testing.T) {
	s := newSession("3", "weight")
	require.NoError(t, s.shell.Run(context.Background()))
	assert.Equal(t, []string{"weight"}, s.store.ViewMetrics())
}

func TestShell_EndOfInputMidCommand(t *testing.T) {
	s := newSession("4", "weight")
	require.NoError(t, s.shell.Run(context.Background()))
}

func TestShell_LoadFailureIsReported(t *testing.T) {
	s := newSession("1", "5", "8")
	require.NoError(t, s.shell.Run(context.Background()))

	out := s.out.String()
	assert.Contains(t, out, "Could not access the dataset")
	assert.Contains(t, out, "Available metrics: []", "loop continues after a failure")
}

func TestShell_LoadAndVisualize(t *testing.T) {
	s := newSession("1", "6", "weight", "6", "ghost", "8")
	s.db.Put("alice", &domain.Table{Columns: []domain.Column{
		{Name: "weight", Cells: []domain.Cell{domain.TextCell("2024-01-01|80"), domain.TextCell("2024-01-02|79")}},
	}})
	require.NoError(t, s.shell.Run(context.Background()))

	out := s.out.String()
	assert.Contains(t, out, "Data loaded from memory:alice")
	assert.Contains(t, out, "weight Over Time")
	assert.Contains(t, out, "Metric ghost does not exist.")
}

func TestShell_NoCommonDates(t *testing.T) {
	s := newSession(
		"3", "a", "3", "b",
		"4", "a", "1", "2024-01-01",
		"4", "b", "2", "2024-02-01",
		"7", "a", "b",
		"8",
	)
	require.NoError(t, s.shell.Run(context.Background()))
	assert.Contains(t, s.out.String(), "No common dates between a and b.")
}

func TestShell_UndoAndDefaults(t *testing.T) {
	s := newSession(
		"3", "sleep",
		"4", "sleep", "7", "",
		"4", "sleep", "9", "not-a-date",
		"9", "sleep",
		"9", "sleep",
		"9", "ghost",
		"8",
	)
	require.NoError(t, s.shell.Run(context.Background()))

	out := s.out.String()
	assert.Contains(t, out, "Dates must look like YYYY-MM-DD.")
	assert.Contains(t, out, "Removed 2024-03-15 7 from sleep.")
	assert.Contains(t, out, "Metric sleep has no entries.")
	assert.Contains(t, out, "Metric ghost does not exist.")
}

func TestShell_ContextCancelled(t *testing.T) {
	s := newSession("5")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.shell.Run(ctx), context.Canceled)
}

func TestSuggestions(t *testing.T) {
	got := cli.Suggestions([]string{"weight", "Water", "sleep"}, "w")
	texts := make([]string, len(got))
	for i, s := range got {
		texts[i] = s.Text
	}
	assert.Equal(t, []string{"weight", "Water"}, texts)
}
