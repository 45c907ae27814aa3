package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proofkit",
		Short: "Publish proofread Sanskrit texts",
		Long: `proofkit turns proofread pages into publications.

It reads pages from a directory of .txt (plain text) and .json (structured)
files or from a proofing database, and renders plain text, TEI XML, or an
HTML preview. It also cleans OCR output and mines verse regions from
structured pages.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Config file (default: ~/.config/proofkit/config.toml)")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default from config)")
	cmd.PersistentFlags().String("log-format", "", "Log format: text, json (default from config)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		newPublishCmd("publish", ""),
		newPublishCmd("text", "text"),
		newPublishCmd("tei", "tei"),
		newPublishCmd("html", "html"),
		newOCRCmd(),
		newRegionsCmd(),
		newSeedCmd(),
		newConfigCmd(),
	)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
