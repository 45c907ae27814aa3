package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ambuda-org/proofkit/internal/ocr"
	"github.com/ambuda-org/proofkit/internal/publish"
	"github.com/ambuda-org/proofkit/internal/store"
)

func newPublishCmd(use string, format publish.Format) *cobra.Command {
	short := "Publish a book"
	switch format {
	case publish.FormatText:
		short = "Publish a book as plain text"
	case publish.FormatTEI:
		short = "Publish a book as TEI XML"
	case publish.FormatHTML:
		short = "Render an HTML reading preview"
	}

	cmd := &cobra.Command{
		Use:   use + " [dir]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args, format)
			if err != nil {
				return err
			}
			return runPublish(commandContext(cmd), opts, cmd.OutOrStdout())
		},
	}
	addPublishFlags(cmd, format)
	return cmd
}

// openSource returns the page source selected by opts. The returned close
// function releases the database when one was opened.
func openSource(ctx context.Context, opts sourceOptions) (publish.Source, func(), error) {
	if opts.Dir != "" {
		return publish.DirSource{Dir: opts.Dir}, func() {}, nil
	}
	s, err := store.Open(ctx, opts.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return publish.StoreSource{Store: s, Slug: opts.Project}, func() { _ = s.Close() }, nil
}

func runPublish(ctx context.Context, opts *cliOptions, stdout io.Writer) error {
	source, closeSource, err := openSource(ctx, opts.sourceOptions)
	if err != nil {
		return err
	}
	defer closeSource()

	opts.Logger.Info("publishing", "format", opts.Format, "output", opts.OutputPath)
	popts := publish.PublishOptions{
		Format:          opts.Format,
		Source:          source,
		OutputPath:      opts.OutputPath,
		DefaultMetadata: opts.DefaultMetadata,
		Metadata:        opts.Metadata,
		Check:           opts.Check,
		Logger:          opts.Logger,
		Stdout:          stdout,
	}
	if opts.Normalize {
		popts.TextFilter = ocr.PostProcess
	}
	p := publish.NewPipeline(popts)
	if _, err := p.Publish(ctx); err != nil {
		return fmt.Errorf("publishing failed: %w", err)
	}
	return nil
}
