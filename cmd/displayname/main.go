// Command displayname inserts React displayName assignments after component
// declarations in JavaScript and TypeScript sources.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnana997/displayname/pkg/transformer"
	"github.com/gnana997/displayname/pkg/util"
)

var version = "0.1.0-dev"

const moduleLevelOnlyUsage = "only label components declared at module level or in namespaces, skipping\n" +
	"function bodies such as test callbacks (the behaviour of the Babel and SWC displayName plugins)"

// exitError carries a process exit code. A nil err exits silently.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// app is the state shared by all commands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	dir    string

	cfg    *Config
	logger *slog.Logger
}

func main() {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "displayname: %v\n", err)
		os.Exit(1)
	}
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, dir: dir}
	os.Exit(a.execute(os.Args[1:]))
}

// execute runs the CLI with args and returns the exit code.
func (a *app) execute(args []string) int {
	root := a.newRootCmd()
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return 0
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintf(a.stderr, "displayname: %v\n", exit.err)
		}
		return exit.code
	}
	fmt.Fprintf(a.stderr, "displayname: %v\n", err)
	return 1
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "displayname",
		Short: "Add displayName labels to React components",
		Long: "displayname finds React component bindings (arrow functions, function declarations\n" +
			"and wrapped components that produce JSX) and inserts `Name.displayName = \"Name\";`\n" +
			"after each one that is not labeled yet. Running it again is a no-op.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default "+defaultConfigPath+")")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text, json")
	pf.Bool("module-level-only", false, moduleLevelOnlyUsage)
	pf.Bool("allow-errors", false, "transform files with syntax errors instead of failing")
	pf.Int("cache-size", 0, "transform result cache entries (0 = default, -1 = disabled)")

	root.AddCommand(
		a.newRunCmd(),
		a.newCheckCmd(),
		a.newPrintCmd(),
		a.newInspectCmd(),
		a.newWatchCmd(),
		a.newServeCmd(),
		a.newHTTPCmd(),
		a.newSetupCmd(),
		a.newVersionCmd(),
	)
	return root
}

// setup loads the configuration and logger before any command runs.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd, a.dir)
	if err != nil {
		return err
	}
	a.cfg = cfg

	lc := cfg.loggerConfig()
	lc.Output = a.stderr
	a.logger = util.NewLogger(lc)
	slog.SetDefault(a.logger)
	return nil
}

func (a *app) newEngine() (*transformer.Engine, error) {
	return transformer.New(a.cfg.engineOptions(), a.logger)
}

// addWorkspaceFlags registers the flags of commands that walk directories.
func addWorkspaceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSlice("include", nil, "doublestar patterns of files to process")
	f.StringSlice("exclude", nil, "doublestar patterns of files and directories to skip")
	f.Int("workers", 0, "files processed in parallel (0 = 2x CPU)")
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(a.stdout, "displayname %s\n", version)
			return nil
		},
	}
}
