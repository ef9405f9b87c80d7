package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/pkg/types"
)

func newWatchCmd(flags *rootFlags) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "watch <path>",
		Short: "Print the value at a path and again after every change",
		Long: "Watch prints one JSON line per delivery: the current value first, then\n" +
			"the value after each change, until interrupted or --count lines are printed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var (
				mu      sync.Mutex
				printed int
				failure error
			)
			out := cmd.OutOrStdout()
			l, err := s.store.On(ctx, args[0], func(snap types.Snapshot) {
				mu.Lock()
				defer mu.Unlock()
				if count > 0 && printed >= count {
					return
				}
				line, err := json.Marshal(snapshotLine{Path: args[0], Exists: snap.Exists, Value: snap.Value})
				if err != nil {
					failure = err
					cancel()
					return
				}
				fmt.Fprintln(out, string(line))
				printed++
				if count > 0 && printed >= count {
					cancel()
				}
			})
			if err != nil {
				return classify("watch", err)
			}
			defer s.store.Off(l)

			<-ctx.Done()
			mu.Lock()
			defer mu.Unlock()
			if failure != nil {
				return sysError("watch: %w", failure)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many deliveries (0 watches until interrupted)")
	return cmd
}

type snapshotLine struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	Value  any    `json:"value"`
}
