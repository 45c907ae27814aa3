package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ambuda-org/proofkit/internal/config"
	"github.com/ambuda-org/proofkit/internal/proofing"
	"github.com/ambuda-org/proofkit/internal/publish"
)

// commonOptions are resolved for every subcommand from the root flags and
// the config file.
type commonOptions struct {
	Config *config.Config
	Logger *slog.Logger
}

// sourceOptions select where pages come from.
type sourceOptions struct {
	Dir     string
	DBPath  string
	Project string
}

type cliOptions struct {
	commonOptions
	sourceOptions
	Format     publish.Format
	OutputPath string
	// DefaultMetadata comes from the config and ranks below the source.
	DefaultMetadata proofing.Metadata
	// Metadata comes from --metadata and --meta and overrides the source.
	Metadata  proofing.Metadata
	Check     bool
	Normalize bool
}

func readCommonOptions(cmd *cobra.Command) (commonOptions, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return commonOptions{}, fmt.Errorf("failed to load config: %w", err)
	}

	logLevel, _ := cmd.Flags().GetString("log-level")
	if logLevel == "" {
		logLevel = cfg.Logging.Level
	}
	logFormat, _ := cmd.Flags().GetString("log-format")
	if logFormat == "" {
		logFormat = cfg.Logging.Format
	}
	verbose, _ := cmd.Flags().GetBool("verbose")

	switch strings.ToLower(logLevel) {
	case "debug", "info", "warn", "error":
	default:
		return commonOptions{}, fmt.Errorf("--log-level must be one of debug, info, warn, error (got %q)", logLevel)
	}
	switch strings.ToLower(logFormat) {
	case "text", "json":
	default:
		return commonOptions{}, fmt.Errorf("--log-format must be text or json (got %q)", logFormat)
	}
	if verbose {
		logLevel = "debug"
	}

	return commonOptions{
		Config: cfg,
		Logger: buildLogger(os.Stderr, logLevel, logFormat),
	}, nil
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("dir", "", "Directory of page files (.txt and .json)")
	cmd.Flags().String("project", "", "Project slug in the proofing database")
	cmd.Flags().String("db", "", "Proofing database path (default from config)")
}

func readSourceOptions(cmd *cobra.Command, args []string, cfg *config.Config) (sourceOptions, error) {
	var opts sourceOptions
	opts.Dir, _ = cmd.Flags().GetString("dir")
	opts.Project, _ = cmd.Flags().GetString("project")
	opts.DBPath, _ = cmd.Flags().GetString("db")

	if opts.Dir == "" && len(args) > 0 {
		opts.Dir = args[0]
	}
	switch {
	case opts.Dir != "" && opts.Project != "":
		return opts, fmt.Errorf("--dir and --project cannot be used together")
	case opts.Dir == "" && opts.Project == "":
		return opts, fmt.Errorf("either --dir or --project is required")
	}
	if opts.DBPath == "" {
		opts.DBPath = cfg.Database.Path
	}
	return opts, nil
}

// addPublishFlags registers the flags of a publishing command. fixed is the
// format implied by the command name, or "" when --format selects it.
func addPublishFlags(cmd *cobra.Command, fixed publish.Format) {
	addSourceFlags(cmd)
	cmd.Flags().StringP("output", "o", "", `Output file path, "-" for stdout (default: source name with format extension)`)
	if fixed == "" {
		cmd.Flags().StringP("format", "f", "", "Output format: text, tei, html (default from config)")
	}
	cmd.Flags().String("metadata", "", "Metadata file (.toml, .yaml, .json) for the TEI header")
	cmd.Flags().StringToString("meta", nil, "Metadata value as key=value (repeatable)")
	cmd.Flags().Bool("check", false, "Re-parse TEI output before writing")
	if fixed == "" || fixed == publish.FormatHTML {
		cmd.Flags().Bool("normalize", false, "Clean up OCR punctuation in HTML output")
	}
}

// readCLIOptions resolves the options of a publishing command. fixed is the
// format implied by the command name, or "" to read --format.
func readCLIOptions(cmd *cobra.Command, args []string, fixed publish.Format) (*cliOptions, error) {
	common, err := readCommonOptions(cmd)
	if err != nil {
		return nil, err
	}
	source, err := readSourceOptions(cmd, args, common.Config)
	if err != nil {
		return nil, err
	}

	format := fixed
	if format == "" {
		name, _ := cmd.Flags().GetString("format")
		if name == "" {
			name = common.Config.Publication.Format
		}
		if format, err = publish.ParseFormat(name); err != nil {
			return nil, fmt.Errorf("--format: %w", err)
		}
	}

	defaults := config.MergeMetadata(nil, common.Config.Publication.Metadata)
	var meta proofing.Metadata
	if path, _ := cmd.Flags().GetString("metadata"); path != "" {
		fileMeta, err := config.LoadMetadata(path)
		if err != nil {
			return nil, fmt.Errorf("--metadata: %w", err)
		}
		meta = config.MergeMetadata(meta, fileMeta)
	}
	flagMeta, _ := cmd.Flags().GetStringToString("meta")
	meta = config.MergeMetadata(meta, flagMeta)
	normalize, _ := cmd.Flags().GetBool("normalize")

	check, _ := cmd.Flags().GetBool("check")
	check = check || common.Config.Publication.Check

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		input := source.Dir
		if source.Project != "" {
			input = source.Project
		}
		outputPath = defaultOutputPath(input, format)
	}

	return &cliOptions{
		commonOptions: common,
		sourceOptions: source,
		Format:        format,
		OutputPath:      outputPath,
		DefaultMetadata: defaults,
		Metadata:        meta,
		Check:           check,
		Normalize:       normalize,
	}, nil
}

// defaultOutputPath names the output after its source: a page directory
// "books/kosambi" becomes "books/kosambi.xml" for TEI.
func defaultOutputPath(input string, format publish.Format) string {
	base := filepath.Clean(input)
	if name := filepath.Base(base); name == "." || name == string(filepath.Separator) {
		base = filepath.Join(base, "book")
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + format.Extension()
}

func buildLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
