// Rm command removes a record or a whole collection.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/pkg/audit"
)

func newRmCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>",
		Short: "Remove a record or a whole collection",
		Example: `  docket rm cases/-Nq3x9
  docket rm chat_messages`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			ctx := cmd.Context()
			collection, key := splitPath(args[0])
			var name string
			if key != "" {
				name = displayName(s.store.Get(ctx, collection, key))
			}
			if err := resultError("rm", s.store.Remove(ctx, args[0])); err != nil {
				return err
			}
			s.record(ctx, audit.Entry{
				Action:     audit.ActionDelete,
				Target:     entityFor(collection),
				TargetID:   key,
				TargetName: name,
			})
			if !flags.jsonMode {
				printf(cmd, "removed %s\n", args[0])
			}
			return nil
		},
	}
}
