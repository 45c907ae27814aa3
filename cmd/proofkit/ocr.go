package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ambuda-org/proofkit/internal/ocr"
)

func newOCRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ocr",
		Short: "Post-process OCR output",
	}
	cmd.AddCommand(newOCRCleanCmd(), newOCRAssembleCmd(), newOCRPruneCmd())
	return cmd
}

func newOCRCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [file]",
		Short: "Normalize dandas and quotes in OCR text",
		Long: `Reads OCR text from a file or stdin, replaces ASCII pipes with dandas
and straightens curly quotes. With --nfc the result is also put in Unicode NFC.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := readCommonOptions(cmd); err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open input: %w", err)
				}
				defer f.Close()
				in = f
			}
			data, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			text := ocr.PostProcess(string(data))
			if nfc, _ := cmd.Flags().GetBool("nfc"); nfc {
				text = ocr.ComposeNFC(text)
			}
			output, _ := cmd.Flags().GetString("output")
			return writeOutput(cmd.OutOrStdout(), output, text)
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().Bool("nfc", false, "Apply Unicode NFC normalization")
	return cmd
}

func newOCRPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune <response.json>",
		Short: "Drop empty and redundant fields from a saved OCR response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			common, err := readCommonOptions(cmd)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}
			pruned, err := ocr.Prune(data)
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("output")
			if err := writeOutput(cmd.OutOrStdout(), output, string(pruned)); err != nil {
				return err
			}
			common.Logger.Debug("OCR response pruned", "before", len(data), "after", len(pruned))
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	return cmd
}

func newOCRAssembleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assemble <response.json>",
		Short: "Assemble page text and word boxes from a saved OCR response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			common, err := readCommonOptions(cmd)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}
			resp, err := ocr.ParseResponse(data)
			if err != nil {
				return err
			}
			res := ocr.Assemble(resp)

			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".txt"
			}
			if err := writeOutput(cmd.OutOrStdout(), output, res.Text); err != nil {
				return err
			}
			if output == "-" {
				return nil
			}

			boxesPath := strings.TrimSuffix(output, filepath.Ext(output)) + common.Config.OCR.BoxesExtension
			if err := os.WriteFile(boxesPath, []byte(ocr.SerializeBoundingBoxes(res.Boxes)), 0o644); err != nil {
				return fmt.Errorf("failed to write bounding boxes: %w", err)
			}
			common.Logger.Info("OCR assembled", "text", output, "boxes", boxesPath, "words", len(res.Boxes))
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", `Text output path, "-" for stdout (default: response name with .txt)`)
	return cmd
}

func writeOutput(stdout io.Writer, path, s string) error {
	if path == "" || path == "-" {
		_, err := io.WriteString(stdout, s)
		return err
	}
	if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
