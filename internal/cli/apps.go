package cli

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"botsdash/internal/command"
	"botsdash/internal/model"
	"botsdash/internal/router"

	"github.com/spf13/cobra"
)

func newAppsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "Bot app commands",
	}
	cmd.AddCommand(newAppsListCmd(app))
	cmd.AddCommand(newAppsShowCmd(app))
	cmd.AddCommand(newAppsActionCmd(app, "start", "Start an app", command.EventAppStart))
	cmd.AddCommand(newAppsActionCmd(app, "pause", "Pause an app", command.EventAppPause))
	cmd.AddCommand(newAppsActionCmd(app, "reload", "Reload an app", command.EventAppReload))
	cmd.AddCommand(newAppsBulkCmd(app, "start-all", "Start every app", command.EventAppsStart, (*command.Commands).StartAll))
	cmd.AddCommand(newAppsBulkCmd(app, "pause-all", "Pause every app", command.EventAppsPause, (*command.Commands).PauseAll))
	cmd.AddCommand(newAppsBulkCmd(app, "reload-all", "Reload every app", command.EventAppsReload, (*command.Commands).ReloadAll))
	cmd.AddCommand(newAppsRefreshCmd(app))
	cmd.AddCommand(newAppsSchemaCmd(app))
	cmd.AddCommand(newAppsEditCmd(app))
	return cmd
}

// fetchApps returns the collection the server sends on connect.
func fetchApps(cmd *cobra.Command, app *App) ([]model.AppRecord, error) {
	ctx, cancel := app.timeoutContext(cmd)
	defer cancel()
	r, ev, err := dialRemote(ctx, app, router.ChannelAPI)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if full, ok := ev.Update.(router.FullCollection); ok {
		return full.Apps, nil
	}
	return []model.AppRecord{}, nil
}

func newAppsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List apps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apps, err := fetchApps(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": apps})
		},
	}
}

func newAppsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <app-id>",
		Short: "Show one app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			apps, err := fetchApps(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			for _, a := range apps {
				if a.ID == id {
					return writeOut(cmd, app, map[string]any{"data": a})
				}
			}
			return writeErr(cmd, errNotFound("app", id))
		},
	}
}

// runRequest connects to /api, sends, and prints the response envelope.
func runRequest(cmd *cobra.Command, app *App, event string, fn func(*command.Commands) error) error {
	ctx, cancel := app.timeoutContext(cmd)
	defer cancel()
	r, _, err := dialRemote(ctx, app, router.ChannelAPI)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer r.Close()

	ev, err := r.request(ctx, router.ChannelAPI, event, fn)
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, responseView(ev))
}

// responseView is the printable form of a response: status, message, and the
// decoded update (or the raw data when there is none).
func responseView(ev router.Event) map[string]any {
	out := map[string]any{
		"event":   ev.Name,
		"status":  ev.Status,
		"message": ev.Message,
	}
	switch u := ev.Update.(type) {
	case router.SingleRecord:
		out["data"] = u.App
	case router.FullCollection:
		out["data"] = u.Apps
	default:
		if len(ev.Data) > 0 {
			out["data"] = ev.Data
		}
	}
	return out
}

func newAppsActionCmd(app *App, use, short, event string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <app-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return runRequest(cmd, app, event, func(c *command.Commands) error {
				return c.Run(event, id)
			})
		},
	}
}

func newAppsBulkCmd(app *App, use, short, event string, send func(*command.Commands) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, app, event, send)
		},
	}
}

func newAppsRefreshCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [app-id]",
		Short: "Re-read app configs on the server (one app, or all)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runRequest(cmd, app, command.EventAppsConfig, (*command.Commands).RefreshAll)
			}
			id := strings.TrimSpace(args[0])
			return runRequest(cmd, app, command.EventAppConfig, func(c *command.Commands) error {
				return c.Refresh(id)
			})
		},
	}
}

func newAppsSchemaCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <app-id>",
		Short: "Print an app's config schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			ctx, cancel := app.timeoutContext(cmd)
			defer cancel()
			r, _, err := dialRemote(ctx, app, router.ChannelAPI)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer r.Close()

			ev, err := r.request(ctx, router.ChannelAPI, command.EventAppSchema, func(c *command.Commands) error {
				return c.Schema(id)
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			var data struct {
				Schema json.RawMessage `json:"schema"`
			}
			if err := json.Unmarshal(ev.Data, &data); err != nil || len(data.Schema) == 0 {
				return writeErr(cmd, errors.New("server returned no schema"))
			}
			return writeOut(cmd, app, map[string]any{"data": data.Schema})
		},
	}
}

func newAppsEditCmd(app *App) *cobra.Command {
	var (
		config string
		file   string
	)
	cmd := &cobra.Command{
		Use:   "edit <app-id>",
		Short: "Replace an app's config",
		Long: strings.TrimSpace(`
Send a new config for an app. The config must be a strict JSON object.
Invalid input, including comments and trailing commas, is rejected locally
and nothing is sent.`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			text, err := readConfigInput(cmd, config, file)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := command.ParseConfig(text); err != nil {
				return writeErr(cmd, err)
			}
			return runRequest(cmd, app, command.EventAppEdit, func(c *command.Commands) error {
				return c.Edit(id, text)
			})
		},
	}
	cmd.Flags().StringVar(&config, "config", "", "Config as a JSON object")
	cmd.Flags().StringVar(&file, "file", "", "Read the config from a file ('-' for stdin)")
	cmd.MarkFlagsMutuallyExclusive("config", "file")
	cmd.MarkFlagsOneRequired("config", "file")
	return cmd
}

func readConfigInput(cmd *cobra.Command, config, file string) (string, error) {
	switch {
	case file == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	case file != "":
		b, err := os.ReadFile(file)
		return string(b), err
	default:
		return config, nil
	}
}
