// First command prints the first record of a collection.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/pkg/types"
)

func newFirstCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "first <collection>",
		Short: "Print the first record of a collection in key order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			rec := s.store.GetFirst(cmd.Context(), args[0])
			if rec == nil {
				return userError("%s: %w", args[0], types.ErrNotFound)
			}
			return writeJSON(cmd, rec)
		},
	}
}
