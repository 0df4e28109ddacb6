package cli

import (
	"encoding/json"
	"fmt"

	"kollab-api/internal/app"

	"github.com/spf13/cobra"
)

// newDispatchCmd runs one automated-update pass and exits. It is meant to be
// triggered by cron or a similar external scheduler.
func newDispatchCmd(opts *rootOptions) *cobra.Command {
	var failOnErrors bool
	cmd := &cobra.Command{
		Use:   "dispatch-updates",
		Short: "Send every client update that is due, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.setup()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			a, err := app.Open(cfg, log)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			res, err := a.Dispatcher.Run(cmd.Context())
			if err != nil {
				return err
			}
			out, err := json.Marshal(res)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if failOnErrors && res.Errors > 0 {
				return fmt.Errorf("%d workflows failed", res.Errors)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&failOnErrors, "fail-on-errors", false, "exit non-zero when any workflow failed")
	return cmd
}
