package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func warrantyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "warranty <service-tag>",
		Short: "Check warranty by service tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := sess.CheckWarranty(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Service tag: %s\n", info.ServiceTag)
			fmt.Printf("Status:      %s\n", info.Status)
			if !info.IsValid {
				return nil
			}

			if info.ProductName != "" {
				fmt.Printf("Product:     %s\n", info.ProductName)
			}
			if info.StartDate != nil && info.EndDate != nil {
				fmt.Printf("Coverage:    %s — %s\n",
					info.StartDate.Format(time.DateOnly), info.EndDate.Format(time.DateOnly))
			}
			if info.ServiceLevel != "" {
				fmt.Printf("Level:       %s\n", info.ServiceLevel)
			}
			return nil
		},
	}
}
