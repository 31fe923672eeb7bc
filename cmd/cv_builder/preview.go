package main

import (
	"fmt"
	"os"

	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a saved CV document as standalone HTML",
	Long:  "Writes the print document that export hands to the browser, useful for checking layout without Chrome.",
	RunE:  runPreview,
}

var (
	previewInput  string
	previewOutput string
	previewColor  string
	previewFont   string
)

func init() {
	previewCmd.Flags().StringVarP(&previewInput, "in", "i", "", "Path to CV document JSON file (required)")
	previewCmd.Flags().StringVarP(&previewOutput, "out", "o", "", "Path to output HTML file (default stdout)")
	previewCmd.Flags().StringVar(&previewColor, "color", "", "Accent color (overrides config)")
	previewCmd.Flags().StringVar(&previewFont, "font", "", "Font family (overrides config)")

	if err := previewCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	doc, err := readDocument(previewInput)
	if err != nil {
		return err
	}
	style, err := resolveStyle(cfg.DefaultStyle(), previewColor, previewFont)
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

	if previewOutput == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), markup)
		return err
	}
	if err := os.WriteFile(previewOutput, []byte(markup), 0644); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", previewOutput)
	return nil
}
