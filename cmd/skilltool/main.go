package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/milk9111/actskill/config"
	"github.com/milk9111/actskill/skills"
)

const ConfigPath = "actskill.yaml"

const usage = `usage: skilltool [-config path] <command> [flags] [args]

commands:
  validate <asset...>                         decode assets and report content warnings
  inspect [-state name] <asset>               per-frame ranges and active actions
  simulate [-frames n] [-state name] [-interrupt state:priority@frame] <asset>
  preview [-state name] [-frames n] <asset>   play a timeline at the configured speed
  kinds                                       list action kinds, range kinds and easings
  watch <dir>                                 load a directory and hot-reload it
  copy [-state name] [-what kind] <asset>     copy to the system clipboard as YAML
`

var errUsage = errors.New("skilltool: bad usage")

// env is what every command gets: settings, asset lookup and output.
type env struct {
	cfg    config.Tool
	store  skills.Store
	out    io.Writer
	logger *slog.Logger
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("skilltool", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfgPath := fs.String("config", "", "config file (default $ACTSKILL_CONFIG or "+ConfigPath+")")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	path := *cfgPath
	if path == "" {
		path = ConfigPath
		if p := os.Getenv("ACTSKILL_CONFIG"); p != "" {
			path = p
		}
	}
	cfg, err := config.LoadTool(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	slog.Debug("config loaded", "path", path, "asset_dir", cfg.AssetDir, "script_dir", cfg.ScriptDir)

	e := &env{
		cfg:    cfg,
		store:  skills.Store{AssetDir: cfg.AssetDir, ScriptDir: cfg.ScriptDir},
		out:    out,
		logger: logger,
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("%w: no command", errUsage)
	}
	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "validate":
		return e.validate(cmdArgs)
	case "inspect":
		return e.inspect(cmdArgs)
	case "simulate":
		return e.simulate(cmdArgs)
	case "kinds":
		return e.kinds(cmdArgs)
	case "preview":
		return e.preview(cmdArgs)
	case "watch":
		return e.watch(ctx, cmdArgs)
	case "copy":
		return e.copy(cmdArgs)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}
