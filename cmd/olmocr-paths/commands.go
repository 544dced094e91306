package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/amphancm/olmocr/cache"
	"github.com/amphancm/olmocr/errors"
	"github.com/amphancm/olmocr/fs/registry"
	"github.com/amphancm/olmocr/glob"
	"github.com/amphancm/olmocr/internal/config"
	"github.com/amphancm/olmocr/locator"
	"github.com/amphancm/olmocr/transfer"
)

// app holds what every subcommand needs, built once per invocation.
type app struct {
	json   bool
	logger *slog.Logger
	reg    *registry.Registry
	cache  *cache.Cache
	copier *transfer.Copier
	glob   *glob.Expander
	cfg    *config.Config
}

func (a *app) init(cmd *cobra.Command, configPath, logLevel string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level := cfg.Level()
	if logLevel != "" {
		if level, err = config.ParseLevel(logLevel); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	opts := []registry.Option{
		registry.WithLogger(a.logger),
		registry.WithHTTPTimeout(cfg.HTTP.Timeout),
	}
	if m := cfg.MinIO(); m != nil {
		opts = append(opts, registry.WithS3(*m))
	}
	if a.reg, err = registry.New(opts...); err != nil {
		return err
	}

	a.glob = glob.New(a.reg)
	a.copier = transfer.New(
		transfer.WithRegistry(a.reg),
		transfer.WithConcurrency(cfg.Concurrency),
		transfer.WithLogger(a.logger),
	)
	cacheOpts := []cache.Option{
		cache.WithRegistry(a.reg),
		cache.WithAppName(cfg.AppName),
		cache.WithConcurrency(cfg.Concurrency),
		cache.WithLogger(a.logger),
	}
	if cfg.CacheDir != "" {
		cacheOpts = append(cacheOpts, cache.WithDir(cfg.CacheDir))
	}
	a.cache = cache.New(cacheOpts...)
	return nil
}

// print writes v as JSON with --json, otherwise as text.
func (a *app) print(w io.Writer, v any, text string) error {
	if a.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func newRootCmd() *cobra.Command {
	var (
		a          app
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "olmocr-paths",
		Short: "Work with local, S3 and HTTP locators",
		Long:  "Expand globs, fetch into the local cache, decompress, copy and delete across storage backends.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return a.init(cmd, configPath, logLevel)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (yaml, toml or json)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.PersistentFlags().BoolVar(&a.json, "json", false, "Output in JSON format")

	cmd.AddCommand(globCmd(&a))
	cmd.AddCommand(fetchCmd(&a))
	cmd.AddCommand(decompressCmd(&a))
	cmd.AddCommand(copyCmd(&a))
	cmd.AddCommand(rmCmd(&a))
	cmd.AddCommand(sizeCmd(&a))
	cmd.AddCommand(relativeCmd(&a))
	cmd.AddCommand(unifyCmd(&a))

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return errors.Wrap(err, errors.CodeInvalidInput, "invalid flags")
	})
	return cmd
}

// run executes the CLI with args and returns the process exit code. Errors
// go to stderr, as JSON with --json.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		asJSON, _ := root.PersistentFlags().GetBool("json")
		reportError(stderr, asJSON, err)
	}
	return exitCode(err)
}

func reportError(w io.Writer, asJSON bool, err error) {
	if asJSON {
		_ = json.NewEncoder(w).Encode(errors.ToJSON(err))
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

func globCmd(a *app) *cobra.Command {
	var hidden, noAutoglob, recursive, noDirs bool

	cmd := &cobra.Command{
		Use:   "glob <pattern>",
		Short: "Expand a pattern into paths",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq := a.glob.Glob(cmd.Context(), args[0],
				glob.WithHidden(hidden),
				glob.WithAutoglobDirs(!noAutoglob),
				glob.WithRecursiveDirs(recursive),
				glob.WithYieldDirs(!noDirs),
			)

			paths := []string{}
			for p, err := range seq {
				if err != nil {
					return err
				}
				if a.json {
					paths = append(paths, p)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			if a.json {
				return a.print(cmd.OutOrStdout(), paths, "")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&hidden, "hidden", false, "Include entries starting with a dot")
	cmd.Flags().BoolVar(&noAutoglob, "no-autoglob", false, "Yield a directory instead of its children")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "Descend into matched directories")
	cmd.Flags().BoolVar(&noDirs, "no-dirs", false, "Yield files only")
	return cmd
}

func fetchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <locator>",
		Short: "Fetch a resource into the local cache and print its path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.cache.CachedPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), map[string]string{"locator": args[0], "path": path}, path)
		},
	}
}

func decompressCmd(a *app) *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "decompress <path>",
		Short: "Decompress a gz, bz2, xz, zst or lz4 file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.cache.DecompressPath(cmd.Context(), args[0], dest)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), map[string]string{"src": args[0], "path": path}, path)
		},
	}

	cmd.Flags().StringVar(&dest, "dest", "", "Output path (default: cache directory)")
	return cmd
}

func copyCmd(a *app) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "copy <src> <dst>",
		Short: "Copy a file or directory tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, dst := args[0], args[1]

			copier := a.copier
			if concurrency > 0 {
				copier = transfer.New(
					transfer.WithRegistry(a.reg),
					transfer.WithConcurrency(concurrency),
					transfer.WithLogger(a.logger),
				)
			}

			var err error
			if a.reg.IsDir(ctx, src) {
				err = copier.CopyDir(ctx, locator.QuoteMeta(src), dst)
			} else {
				err = copier.CopyFile(ctx, src, dst)
			}
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), map[string]string{"src": src, "dst": dst}, dst)
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel file copies (default from config)")
	return cmd
}

func rmCmd(a *app) *cobra.Command {
	var recursive, ignoreMissing bool

	cmd := &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a file, or a directory with --recursive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				deleted bool
				err     error
			)
			if recursive {
				deleted, err = a.reg.DeleteDir(cmd.Context(), args[0], ignoreMissing)
			} else {
				deleted, err = a.reg.DeleteFile(cmd.Context(), args[0], ignoreMissing)
			}
			if err != nil {
				return err
			}
			text := "not found " + args[0]
			if deleted {
				text = "deleted " + args[0]
			}
			return a.print(cmd.OutOrStdout(), map[string]any{"path": args[0], "deleted": deleted}, text)
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Delete a directory and its contents")
	cmd.Flags().BoolVar(&ignoreMissing, "ignore-missing", false, "Succeed when the path does not exist")
	return cmd
}

func sizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "size <path>",
		Short: "Print the size of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.reg.Size(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			text := fmt.Sprintf("%d\t%s", n, humanize.IBytes(uint64(n)))
			return a.print(cmd.OutOrStdout(), map[string]any{"path": args[0], "size": n}, text)
		},
	}
}

func relativeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "relative <path>...",
		Short: "Print the common root of paths and each path relative to it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, rels, err := locator.MakeRelative(args)
			if err != nil {
				return err
			}
			text := root + "\n" + strings.Join(rels, "\n")
			return a.print(cmd.OutOrStdout(), map[string]any{"root": root, "relative": rels}, text)
		},
	}
}

func unifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unify <path>...",
		Short: "Derive one deterministic path standing for a set of paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := locator.UnifiedPath(args)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), map[string]string{"path": path}, path)
		},
	}
}
