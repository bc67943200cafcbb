package main

import (
	"fmt"
	"io"
	"os"

	"sales-report-api/pkg/models"
	"sales-report-api/pkg/router"
	"sales-report-api/pkg/services"

	"github.com/spf13/cobra"
)

type renderOptions struct {
	input  string
	output string
	format string
	font   string
	bold   string
}

func newRenderCmd() *cobra.Command {
	opts := renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Validate a JSON array of sales records and write the report document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "-", "Path to the JSON records file, or - for stdin")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output path (default: the report's fixed filename)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "pdf", "Document format: pdf or xlsx")
	cmd.Flags().StringVar(&opts.font, "font", "", "TrueType font for PDF text (default: embedded DejaVu Sans)")
	cmd.Flags().StringVar(&opts.bold, "bold-font", "", "TrueType font for bold PDF text (default: --font)")

	return cmd
}

func runRender(cmd *cobra.Command, opts renderOptions) error {
	format, err := services.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	body, err := readInput(cmd, opts.input)
	if err != nil {
		return err
	}

	records, err := models.ParseBatch(body)
	if err != nil {
		return err
	}

	var pdfOpts []services.PDFOption
	if opts.font != "" {
		font, err := services.LoadPDFFont(opts.font, opts.bold)
		if err != nil {
			return err
		}
		pdfOpts = append(pdfOpts, services.WithFont(font))
	}

	report, err := router.NewReportService(pdfOpts...).Generate(cmd.Context(), records, format)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = report.Filename
	}
	if err := os.WriteFile(output, report.Body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d records, %d bytes)\n", output, len(records), len(report.Body))
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return body, nil
}
