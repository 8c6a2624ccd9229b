// Package cli is the interactive front end: a numbered menu driving the
// metric store and the analysis service.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Lukas-Talaga/TalagaLog/internal/app"
	"github.com/Lukas-Talaga/TalagaLog/internal/domain"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB3BA")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)

type action struct {
	key   string
	label string
	run   func(ctx context.Context) error
}

// Shell runs the menu loop for one user session.
type Shell struct {
	store    *app.MetricStore
	analysis *app.AnalysisService
	prompt   Prompter
	out      io.Writer
	log      *zap.Logger

	actions []action
	quit    bool
}

// NewShell creates a Shell writing to out.
func NewShell(store *app.MetricStore, analysis *app.AnalysisService, p Prompter, out io.Writer, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Shell{store: store, analysis: analysis, prompt: p, out: out, log: log}
	s.actions = []action{
		{"1", "Load data from " + store.DatasetName(), s.load},
		{"2", "Save data to " + store.DatasetName(), s.save},
		{"3", "Add a new metric to track", s.addMetric},
		{"4", "Add data to an existing metric", s.addData},
		{"5", "View available metrics", s.viewMetrics},
		{"6", "Visualize data", s.visualize},
		{"7", "Analyze correlation between metrics", s.correlate},
		{"8", "Quit", func(context.Context) error { s.quit = true; return nil }},
		{"9", "Undo the last entry of a metric", s.undo},
	}
	return s
}

// Run shows the menu until the user quits, input ends, or ctx is done.
// Failed commands are reported and the loop continues.
func (s *Shell) Run(ctx context.Context) error {
	s.quit = false
	for !s.quit {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.menu()
		choice, err := s.prompt.Prompt("Enter your choice: ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read choice: %w", err)
		}

		a, ok := s.lookup(strings.TrimSpace(choice))
		if !ok {
			s.println(errorStyle.Render("Invalid choice. Please try again."))
			continue
		}
		if err := a.run(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.log.Warn("command failed", zap.String("choice", a.key), zap.Error(err))
			s.println(errorStyle.Render(describe(err)))
		}
	}
	return nil
}

func (s *Shell) lookup(key string) (action, bool) {
	for _, a := range s.actions {
		if a.key == key {
			return a, true
		}
	}
	return action{}, false
}

func (s *Shell) menu() {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("*Please only enter numbers or dates*"))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Options:"))
	b.WriteString("\n")
	for _, a := range s.actions {
		fmt.Fprintf(&b, "%s. %s\n", a.key, a.label)
	}
	s.println(b.String())
}

func (s *Shell) println(msg string) {
	_, _ = fmt.Fprintln(s.out, msg)
}

func (s *Shell) ask(label string) (string, error) {
	v, err := s.prompt.Prompt(label)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// describe turns an error into the line shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrDatasetAccess):
		return "Could not access the dataset: " + err.Error()
	case errors.Is(err, domain.ErrMalformedDataset):
		return "The dataset is not valid: " + err.Error()
	case errors.Is(err, domain.ErrMalformedEntry):
		return "Some data cannot be plotted: " + err.Error()
	case errors.Is(err, domain.ErrInvalidDate):
		return "Dates must look like YYYY-MM-DD."
	case errors.Is(err, domain.ErrInvalidName):
		return "Metric names cannot be blank."
	default:
		return "Error: " + err.Error()
	}
}

// --- Commands ---

func (s *Shell) load(ctx context.Context) error {
	if err := s.store.Load(ctx); err != nil {
		return err
	}
	s.println(fmt.Sprintf("Data loaded from %s", s.store.DatasetName()))
	return nil
}

func (s *Shell) save(ctx context.Context) error {
	if err := s.store.Save(ctx); err != nil {
		return err
	}
	s.println(fmt.Sprintf("Data saved as %s", s.store.DatasetName()))
	return nil
}

func (s *Shell) addMetric(context.Context) error {
	name, err := s.ask("Enter the name of a new metric: ")
	if err != nil {
		return err
	}
	return s.store.AddMetric(name)
}

func (s *Shell) addData(context.Context) error {
	name, err := s.ask("Enter the metric name: ")
	if err != nil {
		return err
	}
	value, err := s.ask(fmt.Sprintf("Enter the data for %s: ", name))
	if err != nil {
		return err
	}
	date, err := s.ask("Enter the date (YYYY-MM-DD) or leave blank for today's date: ")
	if err != nil {
		return err
	}

	e, err := s.store.AddData(name, value, date)
	if errors.Is(err, domain.ErrNotFound) {
		s.println(fmt.Sprintf("Metric %s does not exist.", name))
		return nil
	}
	if err != nil {
		return err
	}
	s.log.Info("entry recorded", zap.String("metric", name), zap.String("date", e.Date))
	return nil
}

func (s *Shell) viewMetrics(context.Context) error {
	s.println(fmt.Sprintf("Available metrics: [%s]", strings.Join(s.store.ViewMetrics(), ", ")))
	return nil
}

func (s *Shell) visualize(ctx context.Context) error {
	name, err := s.ask("Enter the metric name to visualize: ")
	if err != nil {
		return err
	}
	_, err = s.analysis.Visualize(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		s.println(fmt.Sprintf("Metric %s does not exist.", name))
		return nil
	}
	return err
}

func (s *Shell) correlate(ctx context.Context) error {
	a, err := s.ask("Enter the first metric: ")
	if err != nil {
		return err
	}
	b, err := s.ask("Enter the second metric: ")
	if err != nil {
		return err
	}

	c, err := s.analysis.Correlate(ctx, a, b)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.println("One or both metrics do not exist.")
		return nil
	case errors.Is(err, domain.ErrEmptyIntersection):
		s.println(fmt.Sprintf("No common dates between %s and %s.", a, b))
		return nil
	case err != nil:
		return err
	}
	if c.Defined {
		s.println(fmt.Sprintf("Correlation coefficient: %.2f over %d dates", c.Coefficient, len(c.X)))
	} else {
		s.println(fmt.Sprintf("Correlation is undefined over %d dates.", len(c.X)))
	}
	return nil
}

func (s *Shell) undo(context.Context) error {
	name, err := s.ask("Enter the metric name: ")
	if err != nil {
		return err
	}
	e, deleted, err := s.store.UndoLast(name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.println(fmt.Sprintf("Metric %s does not exist.", name))
		return nil
	case err != nil:
		return err
	case !deleted:
		s.println(fmt.Sprintf("Metric %s has no entries.", name))
	default:
		s.println(fmt.Sprintf("Removed %s from %s.", e, name))
	}
	return nil
}
