package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dpplink/dpplink/internal/domain"
	"github.com/dpplink/dpplink/internal/usecase"
)

func newConvertCommand(h *Handler) *cobra.Command {
	var (
		input   string
		out     string
		path    string
		multi   bool
		sep     string
		columns string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Flatten a JSON payload into an xlsx workbook",
		Long: `Convert a JSON API payload into a workbook. Arrays of objects become
sheets; nested object keys are flattened into columns joined by the
separator.

In single-sheet mode the array is picked by dot path (e.g. "$.data.items"),
falling back to the first array found. With --multi every discovered array
becomes its own sheet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read payload: %w", err)
			}

			if sep == "" {
				sep = h.cfg.Flatten.Separator
			}
			flatten := usecase.NewFlattenService(sep)

			projection := splitColumns(columns)

			var sheets []domain.Sheet
			if multi {
				sheets, err = flatten.MultiSheet(payload, projection)
			} else {
				var sheet domain.Sheet
				sheet, err = flatten.SingleSheet(payload, path, projection)
				sheets = []domain.Sheet{sheet}
			}
			if err != nil {
				return err
			}

			if err := h.writer.WriteWorkbook(out, sheets); err != nil {
				return err
			}

			if len(sheets) == 1 {
				fmt.Printf("Wrote %s (sheet: %s)\n", out, sheets[0].Name)
			} else {
				fmt.Printf("Wrote %s (%d sheets)\n", out, len(sheets))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "payload.json", "JSON payload file")
	cmd.Flags().StringVarP(&out, "out", "o", "payload.xlsx", "Output workbook")
	cmd.Flags().StringVarP(&path, "path", "p", "", `Dot path to an array of objects (e.g. "$.data.items")`)
	cmd.Flags().BoolVar(&multi, "multi", false, "Write every array of objects to its own sheet")
	cmd.Flags().StringVar(&sep, "sep", "", "Separator for flattened nested keys (default from configuration)")
	cmd.Flags().StringVar(&columns, "columns", "", "Comma-separated list of columns to include")

	return cmd
}

func splitColumns(columns string) []string {
	if columns == "" {
		return nil
	}

	selected := []string{}
	for _, column := range strings.Split(columns, ",") {
		if column = strings.TrimSpace(column); column != "" {
			selected = append(selected, column)
		}
	}
	return selected
}
