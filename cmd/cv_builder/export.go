package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a saved CV document as PDF",
	Long:  "Renders a CV document JSON file with the preview layout and prints it to an A4 PDF using a headless Chrome.",
	RunE:  runExport,
}

var (
	exportInput  string
	exportOutput string
	exportColor  string
	exportFont   string
	exportChrome string
)

func init() {
	exportCmd.Flags().StringVarP(&exportInput, "in", "i", "", "Path to CV document JSON file (required)")
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Path to output PDF file (default cv.pdf)")
	exportCmd.Flags().StringVar(&exportColor, "color", "", "Accent color (overrides config)")
	exportCmd.Flags().StringVar(&exportFont, "font", "", "Font family (overrides config)")
	exportCmd.Flags().StringVar(&exportChrome, "chrome", "", "Chrome/Chromium executable (overrides config)")

	if err := exportCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if exportChrome != "" {
		cfg.ChromePath = exportChrome
	}

	doc, err := readDocument(exportInput)
	if err != nil {
		return err
	}
	style, err := resolveStyle(cfg.DefaultStyle(), exportColor, exportFont)
	if err != nil {
		return err
	}

	renderer, err := rendering.New()
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	page, err := renderer.Page(doc, style, 0)
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	markup, err := renderer.ExportMarkup(page)
	if err != nil {
		return fmt.Errorf("failed to prepare print document: %w", err)
	}

	exporter := export.New(
		export.ChromeLoader(export.ChromeConfig{ExecPath: cfg.ChromePath, Verbose: cfg.Verbose}),
		export.WithTimeout(cfg.ExportTimeout),
	)
	defer exporter.Close() //nolint:errcheck

	start := time.Now()
	result, err := exporter.Export(context.Background(), markup)
	if err != nil {
		return err
	}

	out := exportOutput
	if out == "" {
		out = result.Filename
	}
	if dir := filepath.Dir(out); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, result.Data, 0644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	if cfg.Verbose {
		printer := observability.NewPrinter(cmd.OutOrStdout())
		printer.PrintDocument(&doc)
		printer.PrintStyle(style)
		printer.PrintExport(out, len(result.Data), time.Since(start))
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %s (%d bytes)\n", out, len(result.Data))
	return nil
}
