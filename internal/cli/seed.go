package cli

import (
	"github.com/spf13/cobra"
)

func newSeedCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default case stages when none exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			n, err := s.office().Process.SeedCaseStages(cmd.Context())
			if err != nil {
				return sysError("seed case stages: %w", err)
			}
			if n == 0 {
				printf(cmd, "case stages already present\n")
				return nil
			}
			printf(cmd, "seeded %d case stages\n", n)
			return nil
		},
	}
}
