package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	var sortFlag string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}

			order := SortOrder(strings.ToLower(sortFlag))
			if !order.valid() {
				return fmt.Errorf("invalid sort: %s (must be 'rank', 'name' or 'points')", sortFlag)
			}

			cfg, err := a.load(cmd)
			if err != nil {
				return err
			}

			snap, err := loadSnapshot(cfg.OutputFile)
			if err != nil {
				return err
			}

			return WriteSnapshot(cmd.OutOrStdout(), snap, format, order, a.verbose)
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", string(SortByRank), "Sort rows by: rank, name or points")

	return cmd
}
