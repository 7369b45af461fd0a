// Command mynt2koinly converts Mynt broker statements into Koinly ledgers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ArionMiles/mynt2koinly/pkg/config"
	"github.com/ArionMiles/mynt2koinly/pkg/logging"
)

const usage = `Usage: mynt2koinly <command> [flags] [statement]

Commands:
  convert   Convert a statement into the configured ledgers (default)
  inspect   Show how every candidate line of a statement is classified
  pagedump  Write the extracted text of a statement, one file per page
  setup     Authenticate with Google for the sheets writer
  status    Check configuration and authentication

Statements may be local paths, s3://bucket/key or gs://bucket/object.
Run 'mynt2koinly <command> -h' for command flags.
`

func main() {
	logger := logging.Setup(logging.DefaultConfig())

	cmd, args := "convert", os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		if _, ok := commands[args[0]]; ok {
			cmd, args = args[0], args[1:]
		}
	}

	if cmd == "help" {
		fmt.Fprint(os.Stderr, usage)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if err := commands[cmd](ctx, logger, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

type command func(ctx context.Context, logger *slog.Logger, args []string) error

var commands = map[string]command{
	"convert":  runConvert,
	"inspect":  runInspect,
	"pagedump": runPageDump,
	"setup":    runSetup,
	"status":   runStatus,
	"help":     nil,
}

// options are the flags shared by every command.
type options struct {
	configPath string
	out        string
	writers    string
}

func newFlagSet(name string, opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "optional JSON config file; environment variables take precedence")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: mynt2koinly %s [flags]\n", name)
		fs.PrintDefaults()
	}
	return fs
}

// loadConfig loads the configuration and applies flag overrides.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.out != "" {
		cfg.Output = opts.out
	}
	if opts.writers != "" {
		cfg.Writers = opts.writers
	}
	return cfg, nil
}

// configureLogging replaces the startup logger with one built from the
// LOG_LEVEL and LOG_FORMAT keys of cfg, which may come from the config file.
func configureLogging(cfg *config.Config) *slog.Logger {
	return logging.Setup(logging.ConfigFor(cfg.LogLevel, cfg.LogFormat))
}

// statementArg returns the positional statement location, falling back to
// KOINLY_INPUT.
func statementArg(fs *flag.FlagSet, cfg *config.Config) (string, error) {
	if fs.NArg() > 1 {
		return "", fmt.Errorf("expected one statement, got %d", fs.NArg())
	}
	if fs.NArg() == 1 {
		return fs.Arg(0), nil
	}
	if cfg.Input != "" {
		return cfg.Input, nil
	}
	return "", errors.New("no statement given: pass a path or set KOINLY_INPUT")
}
