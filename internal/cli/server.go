package cli

import (
	"botsdash/internal/command"
	"botsdash/internal/router"

	"github.com/spf13/cobra"
)

func newServerCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Bots server commands",
	}
	cmd.AddCommand(newServerShutdownCmd(app))
	return cmd
}

func newServerShutdownCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown",
		Short: "Stop every app and shut the server down",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := app.timeoutContext(cmd)
			defer cancel()
			r, _, err := dialRemote(ctx, app, router.ChannelServer)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer r.Close()

			ev, err := r.request(ctx, router.ChannelServer, command.EventShutdown, (*command.Commands).Shutdown)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, responseView(ev))
		},
	}
}
