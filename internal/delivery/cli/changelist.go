package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

func newChangelistCommand(h *Handler) *cobra.Command {
	return &cobra.Command{
		Use:   "changelist [directory]",
		Short: "Convert workbook rows into ChangeNode XML change lists",
		Long: `Read every workbook in a directory and write a ChangeNode XML file
next to each one. The first four columns of every row become a ChangeNode
with one ChangeAttribute; rows missing any value are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			results, err := h.changelist.ProcessDirectory(dir)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Println("No workbooks found.")
				return nil
			}

			for _, result := range results {
				if result.Err != nil {
					log.Printf("[CHANGELIST] Failed processing %s: %v", result.InputPath, result.Err)
					continue
				}

				fmt.Printf("Wrote: %s (%d nodes)\n", result.OutputPath, result.Nodes)
			}

			return nil
		},
	}
}
