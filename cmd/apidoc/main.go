package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"apidoc/internal/config"
	"apidoc/internal/crawler"
	"apidoc/internal/diag"
	"apidoc/internal/diagfmt"
	"apidoc/internal/extractor"
	"apidoc/internal/git"
	"apidoc/internal/openapi"
	"apidoc/internal/pipeline"
	"apidoc/internal/source"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:           "apidoc",
		Short:         "Merge @openapi comment annotations into one OpenAPI document",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	configPath string
	throwLevel diag.ThrowLevel
	verbose    bool
	useGit     bool

	outPath    string
	outFormat  string
	diagFormat string
	noColor    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the config file (YAML or TOML)")
	rootCmd.PersistentFlags().Var(&throwLevel, "throw-level", "Minimum severity that fails the run: error, warn, info or never")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Report every diagnostic and log per-file progress")
	rootCmd.PersistentFlags().BoolVar(&useGit, "git", false, "List files with git ls-files instead of walking the tree")

	buildCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file, - for stdout (default from config: openapi.json)")
	buildCmd.Flags().StringVarP(&outFormat, "format", "f", "", "Output format: json or yaml (default from the output extension)")
	checkCmd.Flags().StringVar(&diagFormat, "diag-format", "pretty", "Diagnostic format: pretty or json")
	checkCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable coloured output")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
}

// loadSettings layers config file, environment, positional root and flags.
func loadSettings(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Project.Root = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("throw-level") {
		cfg.Build.ThrowLevel = throwLevel.String()
	}
	if flags.Changed("verbose") {
		cfg.Build.Verbose = verbose
	}
	if flags.Changed("git") {
		cfg.Project.Git = useGit
	}
	if flags.Changed("out") {
		cfg.Output.Path = outPath
	}
	if flags.Changed("format") {
		cfg.Output.Format = outFormat
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// collectFiles lists and reads the project files in path order.
func collectFiles(ctx context.Context, cfg *config.Config, ext *extractor.Extractor) ([]source.File, error) {
	cr := crawler.NewCrawler(ext)
	cr.Include = cfg.Project.Include
	cr.Exclude = cfg.Project.Exclude
	cr.Jobs = cfg.Project.Jobs

	root := cfg.Project.Root
	var paths []string
	if cfg.Project.Git {
		tracked, err := git.ListFiles(root)
		if err != nil {
			return nil, err
		}
		paths = cr.Filter(root, tracked)
	} else {
		var err error
		paths, err = cr.ListFiles(root)
		if err != nil {
			return nil, err
		}
	}
	return cr.ReadFiles(ctx, paths)
}

// runPass performs one full build over the configured project.
func runPass(ctx context.Context, cmd *cobra.Command, cfg *config.Config, allDiagnostics bool) (*pipeline.Result, []source.File, error) {
	level, err := cfg.ThrowLevel()
	if err != nil {
		return nil, nil, err
	}
	ext, err := extractor.NewExtractor()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	files, err := collectFiles(ctx, cfg, ext)
	if err != nil {
		return nil, nil, err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "📂 Scanning %s: %d source files\n", cfg.Project.Root, len(files))

	res, err := pipeline.Build(slices.Values(files), pipeline.Options{
		ThrowLevel:     level,
		Verbose:        cfg.Build.Verbose || allDiagnostics,
		OpenAPIVersion: cfg.Build.OpenAPIVersion,
		Extractor:      ext,
		Logger:         newLogger(cmd.ErrOrStderr(), cfg.Build.Verbose),
	})
	return res, files, err
}

func sourcesOf(files []source.File) map[string][]byte {
	m := make(map[string][]byte, len(files))
	for _, f := range files {
		m[f.Path] = f.Content
	}
	return m
}

var buildCmd = &cobra.Command{
	Use:   "build [root]",
	Short: "Build the OpenAPI document from the annotations under root",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings(cmd, args)
		if err != nil {
			return err
		}
		format, err := outputFormat(cfg)
		if err != nil {
			return err
		}

		res, files, err := runPass(cmd.Context(), cmd, cfg, false)
		prettyOpts := diagfmt.PrettyOpts{Color: !color.NoColor, Sources: sourcesOf(files)}
		var agg *diag.AggregateError
		if errors.As(err, &agg) {
			prettyOpts.Summary = true
			if perr := diagfmt.Pretty(cmd.ErrOrStderr(), agg.Diagnostics, prettyOpts); perr != nil {
				return perr
			}
			return fmt.Errorf("build failed at throw level %q", agg.Threshold)
		}
		if err != nil {
			return err
		}
		if err := diagfmt.Pretty(cmd.ErrOrStderr(), res.Diagnostics, prettyOpts); err != nil {
			return err
		}

		if err := writeDocument(cmd.OutOrStdout(), cfg.Output.Path, res.Document, format); err != nil {
			return err
		}
		if cfg.Output.Path != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "✅ OpenAPI document written to %s (%d paths)\n", cfg.Output.Path, res.Document.Paths.Len())
		}
		return nil
	},
}

func outputFormat(cfg *config.Config) (openapi.Format, error) {
	if cfg.Output.Format != "" {
		return openapi.ParseFormat(cfg.Output.Format)
	}
	return openapi.FormatForPath(cfg.Output.Path), nil
}

func writeDocument(stdout io.Writer, path string, doc *openapi.Document, format openapi.Format) error {
	if path == "-" {
		return openapi.Encode(stdout, doc, format)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := openapi.Encode(f, doc, format); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

var checkCmd = &cobra.Command{
	Use:   "check [root]",
	Short: "Report annotation diagnostics without writing a document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings(cmd, args)
		if err != nil {
			return err
		}
		if diagFormat != "pretty" && diagFormat != "json" {
			return fmt.Errorf("invalid diagnostic format %q (want pretty or json)", diagFormat)
		}

		res, files, err := runPass(cmd.Context(), cmd, cfg, true)
		var diags []diag.Diagnostic
		var agg *diag.AggregateError
		switch {
		case errors.As(err, &agg):
			diags = agg.Diagnostics
		case err != nil:
			return err
		default:
			diags = res.Diagnostics
		}

		if diagFormat == "json" {
			if err := diagfmt.JSON(cmd.OutOrStdout(), diags, diagfmt.JSONOpts{Indent: true}); err != nil {
				return err
			}
		} else {
			opts := diagfmt.PrettyOpts{
				Color:   !noColor && !color.NoColor,
				Sources: sourcesOf(files),
				Summary: true,
			}
			if err := diagfmt.Pretty(cmd.OutOrStdout(), diags, opts); err != nil {
				return err
			}
		}

		if agg != nil {
			return fmt.Errorf("check failed at throw level %q", agg.Threshold)
		}
		return nil
	},
}
