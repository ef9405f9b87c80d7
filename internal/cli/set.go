// Set command creates or overwrites a record under a natural key.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/pkg/audit"
)

func newSetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <collection> <key> <json>",
		Short: "Create or overwrite a record under a natural key",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, key := args[0], args[1]
			rec, err := parseRecord(args[2])
			if err != nil {
				return err
			}
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			ctx := cmd.Context()
			action := audit.ActionCreate
			if s.store.Get(ctx, collection, key) != nil {
				action = audit.ActionUpdate
			}
			if err := resultError("set", s.store.Set(ctx, collection, key, rec)); err != nil {
				return err
			}
			s.record(ctx, audit.Entry{
				Action:     action,
				Target:     entityFor(collection),
				TargetID:   key,
				TargetName: displayName(rec),
			})
			return writeJSON(cmd, s.store.Get(ctx, collection, key))
		},
	}
}
