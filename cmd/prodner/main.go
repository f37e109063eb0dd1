package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/prodner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Stdin feeds the annotate REPL.
	Stdin io.Reader

	// Registry collects process, batch and HTTP metrics.
	Registry *prometheus.Registry
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Main{
		Stdin:    os.Stdin,
		Registry: reg,
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := LoadConfig(ConfigPath(args))
	if err != nil {
		return err
	}

	deps := &Dependencies{
		Ctx:            ctx,
		Stdin:          m.Stdin,
		Stdout:         stdout,
		Stderr:         stderr,
		Registry:       m.Registry,
		NewFetcher:     NewFetcher,
		OpenRecognizer: OpenRecognizer,
	}

	cli := &CLI{}
	parser, err := NewParser(cli, cfg, stdout, stderr, kong.Bind(deps))
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'prodner --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger.Debug("starting", "command", strings.Fields(kongCtx.Command())[0], "config", cli.Config)

	if err := kongCtx.Run(deps); err != nil {
		if msg := prodner.ErrorMessage(err); msg != "Internal error." {
			return fmt.Errorf("%s", msg)
		}
		return err
	}
	return nil
}

// NewParser builds the kong parser. Configuration values become flag
// defaults, so command-line flags and environment variables override them.
func NewParser(cli *CLI, cfg Config, stdout, stderr io.Writer, opts ...kong.Option) (*kong.Kong, error) {
	opts = append([]kong.Option{
		kong.Name("prodner"),
		kong.Description("Find product mentions in web pages and build labeled training corpora."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		cfg.Vars(),
	}, opts...)
	return kong.New(cli, opts...)
}
