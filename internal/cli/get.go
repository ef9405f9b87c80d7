// Get command prints one record by collection and natural key.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/pkg/types"
)

func newGetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <key>",
		Short: "Print one record",
		Example: `  docket get cases -Nq3x9
  docket get lawyers ayse@example.com`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			rec := s.store.Get(cmd.Context(), args[0], args[1])
			if rec == nil {
				return userError("%s/%s: %w", args[0], args[1], types.ErrNotFound)
			}
			return writeJSON(cmd, rec)
		},
	}
}
