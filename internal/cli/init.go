package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/internal/config"
	"github.com/mesh-intelligence/docket/pkg/backend"
	"github.com/mesh-intelligence/docket/pkg/types"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize docket storage",
		Long: "Create the configuration and data directories, write config.yaml with\n" +
			"the effective settings, then initialize the storage backend.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, configDir, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			path, err := config.Write(configDir, cfg)
			if err != nil {
				return sysError("write config: %w", err)
			}

			if cfg.Backend != types.BackendRemote {
				if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
					return sysError("create data directory: %w", err)
				}
			}
			b, err := backend.Open(cfg)
			if err != nil {
				return sysError("initialize storage: %w", err)
			}
			if err := b.Close(); err != nil {
				return sysError("finalize storage: %w", err)
			}

			printf(cmd, "docket initialized\nconfig: %s\n", path)
			if cfg.Backend != types.BackendRemote {
				printf(cmd, "data: %s\n", backend.DataFile(cfg))
			}
			return nil
		},
	}
}
