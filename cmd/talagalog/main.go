package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Lukas-Talaga/TalagaLog/internal/adapter/cli"
	"github.com/Lukas-Talaga/TalagaLog/internal/adapter/csvfile"
	"github.com/Lukas-Talaga/TalagaLog/internal/adapter/memory"
	"github.com/Lukas-Talaga/TalagaLog/internal/adapter/parquetfile"
	"github.com/Lukas-Talaga/TalagaLog/internal/adapter/render"
	"github.com/Lukas-Talaga/TalagaLog/internal/adapter/sqlstore"
	"github.com/Lukas-Talaga/TalagaLog/internal/app"
	"github.com/Lukas-Talaga/TalagaLog/internal/config"
	"github.com/Lukas-Talaga/TalagaLog/internal/domain"
	"github.com/Lukas-Talaga/TalagaLog/internal/logging"
)

func main() {
	fs := pflag.NewFlagSet("talagalog", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, fs, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "talagalog:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, fs *pflag.FlagSet, stdin *os.File, stdout io.Writer) error {
	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}

	log, done, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer done()
	log = logging.WithSession(log, uuid.NewString())
	log.Info("starting", zap.String("backend", cfg.Storage.Backend), zap.String("config", cfg.File))

	repo, closeRepo, err := openRepository(cfg, log)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer closeRepo()

	var store *app.MetricStore
	prompter := newPrompter(stdin, stdout, func() []string {
		if store == nil {
			return nil
		}
		return store.ViewMetrics()
	})

	username := cfg.User
	for username == "" {
		v, err := prompter.Prompt("\nEnter your name: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		username = strings.TrimSpace(v)
		if strings.ContainsAny(username, `/\`) {
			fmt.Fprintln(stdout, "Names cannot contain slashes.")
			username = ""
		}
	}
	log = log.With(zap.String("user", username))

	store = app.NewMetricStore(username, repo, app.WithLogger(log))
	analysis := app.NewAnalysisService(store, newRenderer(cfg, stdout, log), log)
	return cli.NewShell(store, analysis, prompter, stdout, log).Run(ctx)
}

// openRepository returns the configured dataset repository and a func that
// releases it.
func openRepository(cfg *config.Config, log *zap.Logger) (domain.DatasetRepository, func(), error) {
	noop := func() {}
	switch cfg.Storage.Backend {
	case config.BackendCSV:
		return csvfile.New(cfg.DataDir, log), noop, nil
	case config.BackendParquet:
		return parquetfile.New(cfg.DataDir, log), noop, nil
	case config.BackendMemory:
		return memory.New(), noop, nil
	case config.BackendSQLite:
		s, err := sqlstore.OpenSQLite(cfg.Storage.DSN, log)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.BackendPostgres:
		s, err := sqlstore.OpenPostgres(cfg.Storage.DSN, log)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Storage.Backend)
	}
}

func newRenderer(cfg *config.Config, out io.Writer, log *zap.Logger) domain.Renderer {
	if cfg.Render.Mode == config.RenderPNG {
		r := render.NewPNG(cfg.Render.OutputDir, log)
		r.OnSave = func(path string) { fmt.Fprintf(out, "Plot saved to %s\n", path) }
		return r
	}
	return render.NewTerminal(out, cfg.Render.Height)
}

// newPrompter uses the interactive prompt on a terminal and plain line
// reading otherwise.
func newPrompter(in *os.File, out io.Writer, names func() []string) cli.Prompter {
	if term.IsTerminal(int(in.Fd())) {
		return cli.NewTTYPrompter(names)
	}
	return cli.NewLinePrompter(in, out)
}
