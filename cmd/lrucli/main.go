// lrucli drives an LRU cache from the command line, applying write, read,
// remove and clear operations and printing the resulting recency order.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bpowers/lru/simplelru"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	sizeFlag = &cli.IntFlag{
		Name:  "size",
		Usage: "Maximum number of cached entries",
		Value: simplelru.DefaultSize,
	}
	logMissesFlag = &cli.BoolFlag{
		Name:  "log.misses",
		Usage: "Log cache misses (raises verbosity to debug unless logging is silenced)",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug",
		Value: 3,
	}
	logJSONFlag = &cli.BoolFlag{
		Name:  "log.json",
		Usage: "Format logs with JSON",
	}
)

var app = &cli.App{
	Name:  "lrucli",
	Usage: "exercise a fixed size LRU cache",
	Flags: []cli.Flag{
		configFileFlag,
		sizeFlag,
		logMissesFlag,
		verbosityFlag,
		logJSONFlag,
	},
	Commands: []*cli.Command{
		{
			Name:      "run",
			Usage:     "Apply operations given as arguments",
			ArgsUsage: "<op> [operands] ...",
			Action:    runCmd,
		},
		{
			Name:      "replay",
			Usage:     "Apply operations read one per line from a file or stdin",
			ArgsUsage: "[file]",
			Action:    replayCmd,
		},
	},
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func verbosityLevel(v int) slog.Level {
	switch {
	case v <= 1:
		return slog.LevelError
	case v == 2:
		return slog.LevelWarn
	case v == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func newLogHandler(w io.Writer, verbosity int, json, terminal bool) slog.Handler {
	if verbosity <= 0 {
		w = io.Discard
	}
	opts := &slog.HandlerOptions{Level: verbosityLevel(verbosity)}
	if json || !terminal {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// effectiveVerbosity raises the level to debug when misses were asked for,
// since the cache reports them there. Verbosity 0 stays silent.
func effectiveVerbosity(verbosity int, logMisses bool) int {
	if logMisses && verbosity > 0 && verbosity < 4 {
		return 4
	}
	return verbosity
}

// setupLogging installs the default logger. It runs after the config is
// resolved because the miss setting may come from the config file.
func setupLogging(ctx *cli.Context, cfg cacheConfig) {
	fd := os.Stderr.Fd()
	terminal := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"
	verbosity := effectiveVerbosity(ctx.Int(verbosityFlag.Name), cfg.LogMisses)
	handler := newLogHandler(os.Stderr, verbosity, ctx.Bool(logJSONFlag.Name), terminal)
	slog.SetDefault(slog.New(handler))
}

func runCmd(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	setupLogging(ctx, cfg)
	ops, err := parseOps(ctx.Args().Slice())
	if err != nil {
		return err
	}
	return execute(cfg, ops, ctx.App.Writer)
}

func replayCmd(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	setupLogging(ctx, cfg)
	in := io.Reader(os.Stdin)
	if file := ctx.Args().First(); file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	ops, err := readOps(in)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	return execute(cfg, ops, ctx.App.Writer)
}

func execute(cfg cacheConfig, ops []op, out io.Writer) error {
	s, err := newSession(cfg, out)
	if err != nil {
		return err
	}
	slog.Info("Applying cache operations", "size", cfg.Size, "ops", len(ops))
	s.run(ops)
	return nil
}
