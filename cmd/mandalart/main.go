package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/alexanderramin/mandalart/internal/api"
	"github.com/alexanderramin/mandalart/internal/cli"
	"github.com/alexanderramin/mandalart/internal/config"
	"github.com/alexanderramin/mandalart/internal/db"
	"github.com/alexanderramin/mandalart/internal/intelligence"
	"github.com/alexanderramin/mandalart/internal/llm"
	"github.com/alexanderramin/mandalart/internal/service"
	"github.com/alexanderramin/mandalart/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The server logs JSON to stdout, the CLI keeps stdout for its own output.
	serving := isServe(os.Args[1:])
	var logOut io.Writer = os.Stderr
	format := config.LogFormatText
	if serving {
		logOut = os.Stdout
		format = config.LogFormatJSON
	}
	logger := cfg.Logger(logOut, format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sessionMetrics, err := session.NewMetrics(reg)
	if err != nil {
		return err
	}
	llmMetrics, err := llm.NewMetricsObserver(reg)
	if err != nil {
		return err
	}

	opts := []session.Option{session.WithLogger(logger), session.WithMetrics(sessionMetrics)}
	if cfg.StrictSteps {
		opts = append(opts, session.WithStrictTransitions())
	}
	stores := session.NewRegistry(session.NewSQLStorage(database), opts...)

	llmCfg := llm.LoadConfig()
	observer := llm.MultiObserver{llmMetrics}
	if llmCfg.LogCalls {
		observer = append(observer, llm.NewLogObserver(logger))
	}
	client, err := llm.NewClient(ctx, llmCfg, observer)
	if err != nil {
		return fmt.Errorf("configuring llm: %w", err)
	}

	wizard := service.NewWizardService(
		stores,
		intelligence.NewServices(client, cfg.Locale),
		cfg.Locale,
		service.NewLogUseCaseObserver(logger),
	)

	app := &cli.App{
		Wizard:      wizard,
		Locale:      cfg.Locale,
		DefaultAddr: cfg.Addr,
		Serve: func(ctx context.Context, addr string) error {
			router := api.NewRouter(api.NewHandler(wizard, logger), api.RouterOptions{
				CORSOrigins: cfg.CORSOrigins,
				Gatherer:    reg,
				RequestLog:  true,
			})
			return api.Serve(ctx, addr, router, logger)
		},
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// isServe reports whether the first non-flag argument is the serve command.
func isServe(args []string) bool {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--session" {
			i++
			continue
		}
		if len(a) > 0 && a[0] == '-' {
			continue
		}
		return a == "serve"
	}
	return false
}
