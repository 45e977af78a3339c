package cli

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newURLsCommand(h *Handler) *cobra.Command {
	return &cobra.Command{
		Use:   "urls [directory]",
		Short: "Generate composite identifier URLs from order/EAN workbook pairs",
		Long: `Scan a directory for <base>_eans and <base>_orders workbook pairs,
join each pair on the normalized product code, and write a <base>_urls.xlsx
workbook with the synthesized URLs and any unmatched orders.

A pair that fails (unreadable file, unresolvable column) is reported and the
remaining pairs are still processed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			results, err := h.batch.ProcessDirectory(dir)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Println("No matching *_eans and *_orders pairs found.")
				return nil
			}

			failed := 0
			for _, result := range results {
				if result.Err != nil {
					failed++
					log.Printf("[BATCH] Failed processing %s: %v", result.Base, result.Err)
					continue
				}

				fmt.Printf("Wrote %s (%d urls, %d unmatched)\n",
					filepath.Base(result.OutputPath), result.Matched, result.Unmatched)
			}

			if failed > 0 {
				fmt.Printf("%d of %d pairs failed\n", failed, len(results))
			}

			return nil
		},
	}
}
