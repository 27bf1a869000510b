// Package cmd implements the transitctl terminal dashboard.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/randytsao24/transitdash/internal/client"
)

type TransitCtlApp struct {
	ConfigPath string
	ServerURL  string

	Profile Profile
}

func Execute() error {
	app := &TransitCtlApp{}
	rootCmd := NewRootCmd(app)
	return rootCmd.Execute()
}

func NewRootCmd(app *TransitCtlApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "transitctl",
		Short:         "Live CTA bus, CTA train and Metra arrivals from a transitdash server",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := app.ConfigPath
			required := cmd.Flags().Changed("config")
			if path == "" {
				path = defaultProfilePath()
			}

			profile, err := LoadProfile(path, required)
			if err != nil {
				return err
			}
			if app.ServerURL != "" {
				profile.ServerURL = app.ServerURL
			}
			app.Profile = profile
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(
		&app.ConfigPath,
		"config",
		"",
		"Path to TOML profile (default $HOME/.config/transitctl.toml)",
	)
	cmd.PersistentFlags().StringVar(
		&app.ServerURL,
		"server",
		"",
		"transitdash server URL, overrides the profile",
	)

	cmd.AddCommand(NewBusCmd(app))
	cmd.AddCommand(NewVehiclesCmd(app))
	cmd.AddCommand(NewTrainCmd(app))
	cmd.AddCommand(NewStationsCmd(app))
	cmd.AddCommand(NewMetraCmd(app))
	cmd.AddCommand(NewAlertsCmd(app))

	return cmd
}

// Client builds a proxy client from the loaded profile
func (app *TransitCtlApp) Client() *client.Client {
	return client.New(app.Profile.ServerURL, app.Profile.Timeout())
}

func defaultProfilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "transitctl.toml")
}
