package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/five82/skylight/internal/app"
	"github.com/five82/skylight/internal/config"
	"github.com/five82/skylight/internal/gallery"
	"github.com/five82/skylight/internal/logging"
	"github.com/five82/skylight/internal/logtail"
	"github.com/five82/skylight/internal/server"
)

type rootOptions struct {
	configPath string
	prefsPath  string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "skylight [QUERY]",
		Short:        "Browse photo search results as a justified gallery in the terminal",
		SilenceUsage: true,
		Args:         cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := app.Run(ctx, app.Options{
				ConfigPath: opts.configPath,
				PrefsPath:  opts.prefsPath,
				Query:      strings.Join(args, " "),
				Verbose:    opts.verbose,
			})
			if err != nil {
				return err
			}
			return ctx.Err()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/skylight/config.toml)")
	root.PersistentFlags().StringVar(&opts.prefsPath, "prefs", "", "preferences file (default ~/.config/skylight/prefs.toml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newSearchCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newLogsCmd(opts))
	return root
}

// headless loads config and a stderr logger for the non-interactive commands.
func (o *rootOptions) headless(ctx context.Context) (context.Context, config.Config, *log.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return ctx, config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, _, err := app.NewLogger(cfg.Log, o.verbose, false)
	if err != nil {
		return ctx, config.Config{}, nil, err
	}
	return logging.WithLogger(ctx, logger), cfg, logger, nil
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	var (
		pages     int
		width     float64
		rowHeight float64
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search photos and print the arranged rows",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, logger, err := root.headless(cmd.Context())
			if err != nil {
				return err
			}
			svc, err := app.NewServices(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			if rowHeight <= 0 {
				rowHeight = cfg.Gallery.RowHeight
			}
			res, err := gallery.Collect(ctx, svc.Client, gallery.Options{
				Query:     strings.Join(args, " "),
				Pages:     pages,
				PageSize:  cfg.API.PageSize,
				RowWidth:  width,
				RowHeight: rowHeight,
				Scale:     cfg.Gallery.DeviceScale,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return printRows(out, res)
		},
	}

	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to fetch")
	cmd.Flags().Float64Var(&width, "width", 960, "row width in pixels")
	cmd.Flags().Float64Var(&rowHeight, "row-height", 0, "target row height in pixels (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the arrangement as JSON")
	return cmd
}

func printRows(w io.Writer, res gallery.Result) error {
	status := "more available"
	if res.Done {
		status = "end of results"
	}
	if _, err := fmt.Fprintf(w, "%q: %d photos in %d rows from %d pages (%s)\n",
		res.Query, len(res.Tiles), len(res.Rows), res.Pages, status); err != nil {
		return err
	}
	for i, r := range res.Rows {
		kind := "justified"
		if !r.Justified {
			kind = "natural"
		}
		fmt.Fprintf(w, "\nrow %d  height %.1f  %s\n", i+1, r.Height, kind)
		for _, t := range res.Tiles[r.Start:r.End] {
			title := t.Item.Title
			if title == "" {
				title = "untitled"
			}
			fmt.Fprintf(w, "  %7.1f x %-6.1f %-32.32s %s\n", t.Width, t.Height, title, t.Thumb.Source)
		}
	}
	return nil
}

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve arranged galleries and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cfg, logger, err := root.headless(cmd.Context())
			if err != nil {
				return err
			}
			svc, err := app.NewServices(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			if addr == "" {
				addr = cfg.Server.Addr
			}
			srv := server.New(server.Options{
				Fetcher:   svc.Client,
				PageSize:  cfg.API.PageSize,
				RowHeight: cfg.Gallery.RowHeight,
				Scale:     cfg.Gallery.DeviceScale,
				Logger:    logger,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newLogsCmd(root *rootOptions) *cobra.Command {
	var (
		lines int
		level string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the end of the gallery log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			minLevel, err := logging.ParseLevel(level)
			if err != nil {
				return err
			}
			if root.verbose {
				minLevel = log.DebugLevel
			}
			entries, err := logtail.Tail(cfg.Log.File, lines, minLevel)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range entries {
				if _, err := fmt.Fprintln(out, line); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to show (0 for all)")
	cmd.Flags().StringVar(&level, "level", "debug", "minimum level to show")
	return cmd
}
