// cmdext runs BLCMM and plain-text mod files through the command interpreter.
// Usage: cmdext [--config <file>] [--game-root <dir>] <run|inspect|console|commands> ...
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nathoo/cmdext/builtins"
	"github.com/nathoo/cmdext/cli"
	"github.com/nathoo/cmdext/config"
	"github.com/nathoo/cmdext/engine"
	"github.com/nathoo/cmdext/engine/registry"
	"github.com/nathoo/cmdext/engine/report"
	"github.com/nathoo/cmdext/loader"
	"github.com/nathoo/cmdext/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// flags shared by every subcommand.
type rootFlags struct {
	configFile string
	gameRoot   string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var rf rootFlags
	root := &cobra.Command{
		Use:           "cmdext",
		Short:         "Run mod files through the command interpreter",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rf.configFile, "config", "", "config file (default: search the user config dir and .)")
	root.PersistentFlags().StringVar(&rf.gameRoot, "game-root", "", "directory exec resolves relative paths against")
	root.PersistentFlags().BoolVarP(&rf.verbose, "verbose", "v", false, "log every dispatched command")

	root.AddCommand(
		newRunCmd(&rf),
		newInspectCmd(&rf),
		newConsoleCmd(&rf),
		newCommandsCmd(&rf),
	)
	return root
}

// session is an engine wired to the dry-run game.
type session struct {
	cfg    *config.Config
	logger *log.Logger
	engine *engine.Engine
}

func (s *session) Close() { s.engine.Close() }

func newSession(ctx context.Context, rf *rootFlags) (*session, error) {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: rf.configFile})
	if err != nil {
		return nil, err
	}
	if rf.gameRoot != "" {
		cfg.GameRoot = rf.gameRoot
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "cmdext"})
	logger.SetLevel(cfg.Level())
	if rf.verbose {
		logger.SetLevel(log.DebugLevel)
	}

	reg := registry.New()
	eng := engine.New(reg, nil, logger, cfg.EngineOptions())
	// The host and the dry-run game share eng.Logger; consoles redirect it.
	eng.Host = engine.HostFunc(func(line string) {
		eng.Logger.Info("native", "line", line)
	})
	if _, err := builtins.Register(reg, builtins.DryRun{Logger: eng.Logger}); err != nil {
		eng.Close()
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, engine: eng}, nil
}

func newRunCmd(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <file|dir>...",
		Short: "Parse and dispatch mod files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			files, err := loader.Expand(argv)
			if err != nil {
				return err
			}
			s, err := newSession(cmd.Context(), rf)
			if err != nil {
				return err
			}
			defer s.Close()

			failed := 0
			for _, f := range files {
				if err := s.engine.RunFile(f); err != nil {
					s.logger.Error("run failed", "file", f, "err", err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(files))
			}
			return nil
		},
	}
}

func newInspectCmd(rf *rootFlags) *cobra.Command {
	var (
		format string
		known  []string
	)
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show how a mod file parses without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			s, err := newSession(cmd.Context(), rf)
			if err != nil {
				return err
			}
			defer s.Close()

			data, err := loader.ReadFile(argv[0])
			if err != nil {
				return err
			}
			opts := s.cfg.EngineOptions()
			res, err := engine.Parse(data, engine.ParseOptions{
				Known: func(name string) bool {
					for _, k := range known {
						if strings.EqualFold(k, name) {
							return true
						}
					}
					return s.engine.Known(name)
				},
				Encoding: opts.Encoding,
				Profile:  opts.Profile,
			})
			if err != nil {
				return err
			}
			out, err := report.Render(report.New(argv[0], res), format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: json or yaml")
	cmd.Flags().StringSliceVar(&known, "known", nil, "extra command names to treat as registered")
	return cmd
}

func newConsoleCmd(rf *rootFlags) *cobra.Command {
	var (
		plain  bool
		trace  bool
		script string
	)
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Interactive console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd.Context(), rf)
			if err != nil {
				return err
			}
			defer s.Close()

			// Script mode: read lines from a file, force plain, echo input.
			if script != "" {
				f, err := os.Open(script)
				if err != nil {
					return fmt.Errorf("opening script: %w", err)
				}
				defer f.Close()
				c := cli.New(s.engine)
				c.In = f
				c.Out = cmd.OutOrStdout()
				c.EchoInput = true
				c.Trace = trace
				c.Run()
				return nil
			}

			if plain || !isTerminal() {
				c := cli.New(s.engine)
				c.Out = cmd.OutOrStdout()
				c.Trace = trace
				c.Run()
				return nil
			}
			return tui.Run(s.engine)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "line-oriented console instead of the full-screen UI")
	cmd.Flags().BoolVar(&trace, "trace", false, "print the outcome of every line")
	cmd.Flags().StringVar(&script, "script", "", "read console lines from a file")
	return cmd
}

func newCommandsCmd(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List registered commands and their usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd.Context(), rf)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			for _, name := range s.engine.Registry.Names() {
				c, _ := s.engine.Registry.Lookup(name)
				fmt.Fprintf(out, "%s\n\n", c.Grammar.Usage())
			}
			return nil
		},
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
