package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/internal/paths"
	"github.com/mesh-intelligence/docket/pkg/backend"
)

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	var (
		to    string
		toDir string
		toURL string
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy every collection into another backend",
		Example: `  docket migrate --to sqlite --to-dir ./backup
  docket migrate --backend sqlite --to remote --to-url http://office:8420`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if to == "" {
				return userError("--to is required")
			}
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			dstCfg := s.cfg
			dstCfg.Backend = to
			if toDir != "" {
				if dstCfg.DataDir, err = paths.ResolveDataDir(toDir, ""); err != nil {
					return sysError("resolve --to-dir: %w", err)
				}
			}
			if toURL != "" {
				dstCfg.RemoteURL = toURL
			}
			if err := dstCfg.Validate(); err != nil {
				return userError("invalid destination: %w", err)
			}
			if dstCfg.Backend == s.cfg.Backend && backend.DataFile(dstCfg) == backend.DataFile(s.cfg) && dstCfg.RemoteURL == s.cfg.RemoteURL {
				return userError("source and destination are the same")
			}

			dst, err := backend.Open(dstCfg, backend.WithLogger(s.logger))
			if err != nil {
				return sysError("open destination: %w", err)
			}
			n, err := backend.Migrate(cmd.Context(), s.backend, dst)
			if cerr := dst.Close(); err == nil && cerr != nil {
				err = cerr
			}
			if err != nil {
				return sysError("migrate: %w", err)
			}
			printf(cmd, "migrated %d values to %s\n", n, to)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&to, "to", "", "destination backend: memory, sqlite or remote")
	f.StringVar(&toDir, "to-dir", "", "destination data directory (default: the source data directory)")
	f.StringVar(&toURL, "to-url", "", "destination server URL for the remote backend")
	return cmd
}
