// List command prints every record of a collection.
package cli

import (
	"github.com/spf13/cobra"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list <collection>",
		Short: "List every record of a collection in key order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			recs := s.store.GetAll(cmd.Context(), args[0])
			if flags.jsonMode {
				return writeJSON(cmd, recs)
			}
			for _, r := range recs {
				printf(cmd, "%s\t%s\n", r.ID(), displayName(r))
			}
			return nil
		},
	}
}
