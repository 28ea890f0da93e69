package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gnana997/displayname/pkg/httpapi"
	mcpserver "github.com/gnana997/displayname/pkg/mcp"
	"github.com/gnana997/displayname/pkg/mcplog"
	"github.com/gnana997/displayname/pkg/util"
	"github.com/gnana997/displayname/pkg/workspace"
)

func (a *app) newWatchCmd() *cobra.Command {
	var initial bool
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Label components as files change",
		Long: "Watch a directory (default: current directory) and transform source files after they change.\n" +
			"With --initial, the whole tree is processed once before watching.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := a.dir
			if len(args) == 1 {
				root = a.resolve(args[0])
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, root, initial)
		},
	}
	addWorkspaceFlags(cmd)
	cmd.Flags().Int("debounce", 0, "milliseconds to wait after the last change to a file")
	cmd.Flags().BoolVar(&initial, "initial", false, "process the whole tree before watching")
	return cmd
}

func (a *app) watch(ctx context.Context, root string, initial bool) error {
	engine, err := a.newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	cacheCfg := util.DefaultFileCacheConfig()
	cacheCfg.Logger = a.logger
	processor := workspace.NewProcessor(engine, util.NewFileCache(cacheCfg), workspace.ModeWrite, a.logger)
	defer processor.Close()

	opts := a.cfg.workspaceOptions(workspace.ModeWrite)
	if initial {
		stats, err := workspace.NewRunner(processor, a.logger).Run(ctx, root, opts, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "labeled %d components in %d files\n", stats.LabelsInserted, stats.FilesChanged)
	}

	w, err := workspace.NewWatcher(processor, opts, func(res workspace.FileResult, err error) {
		if err != nil {
			fmt.Fprintf(a.stderr, "%s: %v\n", a.display(res.FilePath), err)
			return
		}
		if res.Written {
			fmt.Fprintf(a.stdout, "%s: labeled %d components\n", a.display(res.FilePath), len(res.Result.Labels))
		}
	}, a.logger)
	if err != nil {
		return err
	}
	return w.Run(ctx, root)
}

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools on stdio",
		Long:  "Start an MCP server on stdin/stdout exposing add_display_names and find_components.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			callLog, err := mcplog.NewLogger(a.cfg.MCPLog)
			if err != nil {
				return err
			}
			defer callLog.Close()

			return mcpserver.NewServer(engine, callLog, a.logger, version).ServeStdio()
		},
	}
	cmd.Flags().String("mcp-log", "", "append a JSONL entry per tool call to this file")
	return cmd
}

func (a *app) newHTTPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the HTTP API",
		Long:  "Serve POST /v1/transform, POST /v1/components and GET /healthz.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := httpapi.NewServer(engine, a.logger, version)
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Run(ctx, a.cfg.Addr) })
			g.Go(func() error {
				<-ctx.Done()
				stats := engine.Stats()
				a.logger.Info("HTTP API stopped",
					"transforms", stats.Transforms,
					"cache_hits", stats.CacheHits)
				return nil
			})
			return g.Wait()
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	return cmd
}
