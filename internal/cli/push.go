// Push command stores a record under a generated key.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/pkg/audit"
)

func newPushCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "push <collection> <json>",
		Short: "Store a record under a generated key and print the key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection := args[0]
			rec, err := parseRecord(args[1])
			if err != nil {
				return err
			}
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			ctx := cmd.Context()
			res := s.store.Push(ctx, collection, rec)
			if err := resultError("push", res); err != nil {
				return err
			}
			s.record(ctx, audit.Entry{
				Action:     audit.ActionCreate,
				Target:     entityFor(collection),
				TargetID:   res.Key,
				TargetName: displayName(rec),
			})
			if flags.jsonMode {
				return writeJSON(cmd, map[string]string{"key": res.Key})
			}
			printf(cmd, "%s\n", res.Key)
			return nil
		},
	}
}
