package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/pkg/audit"
)

func newLogsCmd(flags *rootFlags) *cobra.Command {
	var (
		target string
		action string
		actor  string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List activity log entries, newest first",
		Example: `  docket logs --limit 20
  docket logs --type Dosya --action DELETE`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return userError("--limit must not be negative")
			}
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			entries := audit.Feed(cmd.Context(), s.store, audit.Filter{
				Target:  audit.EntityType(target),
				Action:  audit.ActionType(action),
				ActorID: actor,
				Limit:   limit,
			})
			if flags.jsonMode {
				return writeJSON(cmd, entries)
			}
			for _, e := range entries {
				printf(cmd, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt, e.UserName, e.ActionType, e.TargetType, e.TargetName, e.ActionDescription)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&target, "type", "", "only entries about this target type, e.g. Dosya or Finansal")
	f.StringVar(&action, "action", "", "only entries with this action: CREATE, UPDATE, DELETE or VIEW")
	f.StringVar(&actor, "user", "", "only entries written by this lawyer id")
	f.IntVar(&limit, "limit", 0, "maximum number of entries (0 for all)")
	return cmd
}
