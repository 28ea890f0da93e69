package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/displayname/pkg/util"
	"github.com/gnana997/displayname/pkg/workspace"
)

func (a *app) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [path...]",
		Short: "Label components in place",
		Long:  "Transform every source file under the given paths (default: current directory) and rewrite the files that change.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWorkspace(cmd.Context(), args, workspace.ModeWrite)
		},
	}
	addWorkspaceFlags(cmd)
	return cmd
}

func (a *app) newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Report files missing labels",
		Long:  "List the files that `run` would change without writing them. Exits with status 1 when any file would change.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWorkspace(cmd.Context(), args, workspace.ModeCheck)
		},
	}
	addWorkspaceFlags(cmd)
	return cmd
}

// runWorkspace processes every root and prints a summary. Per-file failures
// and, in check mode, pending changes turn into exit status 1.
func (a *app) runWorkspace(ctx context.Context, roots []string, mode workspace.Mode) error {
	if len(roots) == 0 {
		roots = []string{"."}
	}

	engine, err := a.newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	cacheCfg := util.DefaultFileCacheConfig()
	cacheCfg.Logger = a.logger
	processor := workspace.NewProcessor(engine, util.NewFileCache(cacheCfg), mode, a.logger)
	defer processor.Close()

	runner := workspace.NewRunner(processor, a.logger)
	opts := a.cfg.workspaceOptions(mode)

	var total workspace.RunStats
	for _, root := range roots {
		stats, err := runner.Run(ctx, a.resolve(root), opts, nil)
		if err != nil {
			return err
		}
		total.FilesProcessed += stats.FilesProcessed
		total.FilesChanged += stats.FilesChanged
		total.FilesFailed += stats.FilesFailed
		total.LabelsInserted += stats.LabelsInserted
		total.Changed = append(total.Changed, stats.Changed...)
		total.Errors = append(total.Errors, stats.Errors...)
	}

	for _, fe := range total.Errors {
		fmt.Fprintf(a.stderr, "%s: %v\n", a.display(fe.FilePath), fe.Error)
	}

	if mode == workspace.ModeCheck {
		for _, path := range total.Changed {
			fmt.Fprintln(a.stdout, a.display(path))
		}
		if total.HasChanges() {
			fmt.Fprintf(a.stderr, "%d of %d files need displayName labels (%d components)\n",
				total.FilesChanged, total.FilesProcessed+total.FilesFailed, total.LabelsInserted)
			return &exitError{code: 1}
		}
	} else {
		fmt.Fprintf(a.stdout, "labeled %d components in %d of %d files\n",
			total.LabelsInserted, total.FilesChanged, total.FilesProcessed+total.FilesFailed)
	}

	if total.FilesFailed > 0 {
		return &exitError{code: 1, err: fmt.Errorf("%d files failed", total.FilesFailed)}
	}
	return nil
}

func (a *app) newPrintCmd() *cobra.Command {
	var fileName string
	cmd := &cobra.Command{
		Use:   "print <file|->",
		Short: "Print a file with labels added",
		Long:  "Transform one file and write the result to stdout. Use - to read stdin; --filename then selects the grammar.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, name, err := a.readSource(args[0], fileName)
			if err != nil {
				return err
			}

			engine, err := a.newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			res, err := engine.Transform(cmd.Context(), name, src)
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(res.Code)
			return err
		},
	}
	cmd.Flags().StringVar(&fileName, "filename", "stdin.tsx", "file name used to pick the grammar when reading stdin")
	return cmd
}

// readSource reads a file argument, or stdin for "-".
func (a *app) readSource(arg, stdinName string) ([]byte, string, error) {
	if arg == "-" {
		src, err := io.ReadAll(a.stdin)
		return src, stdinName, err
	}
	path := a.resolve(arg)
	src, err := os.ReadFile(path)
	return src, path, err
}

// resolve makes path absolute against the app directory.
func (a *app) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.dir, path)
}

// display shortens path relative to the app directory when possible.
func (a *app) display(path string) string {
	if rel, err := filepath.Rel(a.dir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}
