package cli

import (
	"fmt"

	"kombio/internal/config"
	"kombio/internal/ports"
	"kombio/internal/ports/sqlite"

	"github.com/spf13/cobra"
)

// SettingsOptions holds flags for the settings commands.
type SettingsOptions struct {
	*RootOptions
	Database string
}

// NewSettingsCommand creates the settings command group.
func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SettingsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect or change persisted local settings",
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "kombio.db", "path to settings database")

	show := &cobra.Command{
		Use:           "show",
		Short:         "Print the saved settings",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showSettings(opts, cmd)
		},
	}

	var pointLimit int32
	var soundOn bool
	set := &cobra.Command{
		Use:           "set",
		Short:         "Save settings",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setSettings(opts, cmd, pointLimit, soundOn)
		},
	}
	set.Flags().Int32Var(&pointLimit, "point-limit", config.Default().PointLimit, "starting score for new matches")
	set.Flags().BoolVar(&soundOn, "sound", true, "enable sound cues")

	cmd.AddCommand(show)
	cmd.AddCommand(set)

	return cmd
}

func showSettings(opts *SettingsOptions, cmd *cobra.Command) error {
	store, err := sqlite.Open(opts.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	settings, err := store.Load(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if settings == nil {
		fmt.Fprintln(out, "No saved settings.")
		return nil
	}
	fmt.Fprintf(out, "Point limit: %d\n", settings.PointLimit)
	fmt.Fprintf(out, "Sound:       %t\n", settings.SoundOn)
	for _, p := range settings.Roster {
		kind := "human"
		if p.IsAI {
			kind = p.Level
		}
		fmt.Fprintf(out, "Seat:        %s (%s)\n", p.Name, kind)
	}
	return nil
}

func setSettings(opts *SettingsOptions, cmd *cobra.Command, pointLimit int32, soundOn bool) error {
	if pointLimit <= 0 {
		return fmt.Errorf("invalid --point-limit %d: must be positive", pointLimit)
	}

	store, err := sqlite.Open(opts.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	// Preserve the saved roster across settings changes.
	existing, err := store.Load(cmd.Context())
	if err != nil {
		return err
	}
	settings := &ports.Settings{PointLimit: pointLimit, SoundOn: soundOn}
	if existing != nil {
		settings.Roster = existing.Roster
	}

	if err := store.Save(cmd.Context(), settings); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
	return nil
}
