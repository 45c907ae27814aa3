package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ambuda-org/proofkit/internal/config"
	"github.com/ambuda-org/proofkit/internal/regions"
)

func newRegionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "Mine named verse and footnote regions from structured pages",
	}
	cmd.AddCommand(newRegionsListCmd(), newRegionsDumpCmd(), newRegionsCropCmd())
	return cmd
}

type regionsOptions struct {
	commonOptions
	sourceOptions
}

func readRegionsOptions(cmd *cobra.Command, args []string) (*regionsOptions, error) {
	common, err := readCommonOptions(cmd)
	if err != nil {
		return nil, err
	}
	source, err := readSourceOptions(cmd, args, common.Config)
	if err != nil {
		return nil, err
	}
	return &regionsOptions{commonOptions: common, sourceOptions: source}, nil
}

// loadRegions mines and normalizes the regions of every page of the source.
func loadRegions(cmd *cobra.Command, opts *regionsOptions) ([]regions.Region, error) {
	ctx := commandContext(cmd)
	source, closeSource, err := openSource(ctx, opts.sourceOptions)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	pages, _, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}
	rs, err := regions.ExtractAll(pages)
	if err != nil {
		return nil, err
	}
	rs, err = regions.Normalize(rs, opts.Config.Regions.MaxGroupNumber)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("regions mined", "pages", len(pages), "regions", len(rs))
	return rs, nil
}

func newRegionsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "List regions as a table, or JSON when not on a terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readRegionsOptions(cmd, args)
			if err != nil {
				return err
			}
			rs, err := loadRegions(cmd, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON || !isTerminal(out) {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rs)
			}
			_, err = fmt.Fprintln(out, renderRegionsTable(rs, opts.Config))
			return err
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().Bool("json", false, "Always print JSON")
	return cmd
}

func renderRegionsTable(rs []regions.Region, cfg *config.Config) string {
	columns := []tableColumn{
		{Title: "Name"},
		{Title: "Kind"},
		{Title: "Page", Numeric: true},
		{Title: "X", Numeric: true},
		{Title: "Y", Numeric: true},
		{Title: "Width", Numeric: true},
		{Title: "Height", Numeric: true},
		{Title: "Lines", Numeric: true},
	}
	withURL := cfg.Regions.ImageURLPrefix != ""
	if withURL {
		columns = append(columns, tableColumn{Title: "Crop"})
	}

	rows := make([][]string, 0, len(rs))
	for _, r := range rs {
		row := []string{
			r.Name,
			r.Kind(),
			strconv.FormatInt(r.PageID, 10),
			formatCoord(r.XMin),
			formatCoord(r.YMin),
			formatCoord(r.Width),
			formatCoord(r.Height),
			strconv.Itoa(len(r.Text)),
		}
		if withURL {
			row = append(row, regions.CropURL(cfg.Regions.ImageURLPrefix, r, cfg.Regions.PageWidth, cfg.Regions.PageHeight))
		}
		rows = append(rows, row)
	}
	return renderTable(columns, rows)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func newRegionsDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [dir]",
		Short: "Write grouped regions as JSON for the region viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readRegionsOptions(cmd, args)
			if err != nil {
				return err
			}
			rs, err := loadRegions(cmd, opts)
			if err != nil {
				return err
			}

			cfg := opts.Config.Regions
			dump := regions.Dump{
				TotWidth:       cfg.PageWidth,
				TotHeight:      cfg.PageHeight,
				ImageURLPrefix: cfg.ImageURLPrefix,
				PageURLPrefix:  cfg.PageURLPrefix,
				Regions:        regions.Group(rs),
			}
			data, err := json.Marshal(dump)
			if err != nil {
				return fmt.Errorf("failed to encode regions: %w", err)
			}

			output, _ := cmd.Flags().GetString("output")
			if err := writeOutput(cmd.OutOrStdout(), output, string(data)+"\n"); err != nil {
				return err
			}
			opts.Logger.Info("regions dumped", "groups", len(dump.Regions), "regions", len(rs))
			return nil
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	return cmd
}

func newRegionsCropCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crop [dir]",
		Short: "Crop regions out of local page scans",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readRegionsOptions(cmd, args)
			if err != nil {
				return err
			}
			outDir, _ := cmd.Flags().GetString("out")
			if strings.TrimSpace(outDir) == "" {
				return fmt.Errorf("--out is required")
			}
			kinds, _ := cmd.Flags().GetStringSlice("kind")

			rs, err := loadRegions(cmd, opts)
			if err != nil {
				return err
			}
			rs = filterKinds(rs, kinds)

			cfg := opts.Config
			cropper := &regions.Cropper{
				ImagePath:   cfg.PageImagePath,
				OutDir:      outDir,
				JPEGQuality: cfg.Regions.CropQuality,
				Padding:     cfg.Regions.CropPadding,
			}
			paths, err := cropper.CropAll(rs)
			if err != nil {
				return err
			}
			opts.Logger.Info("regions cropped", "files", len(paths), "dir", outDir)
			return nil
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().String("out", "", "Directory for cropped images")
	cmd.Flags().StringSlice("kind", nil, "Only crop these kinds (verse, footnote)")
	return cmd
}

func filterKinds(rs []regions.Region, kinds []string) []regions.Region {
	if len(kinds) == 0 {
		return rs
	}
	keep := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		keep[strings.ToLower(strings.TrimSpace(k))] = true
	}
	out := rs[:0:0]
	for _, r := range rs {
		if keep[r.Kind()] {
			out = append(out, r)
		}
	}
	return out
}
