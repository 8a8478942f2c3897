package cli

import (
	"fmt"
	"math/rand"

	"kombio/internal/app"
	"kombio/internal/bot"
	"kombio/internal/config"
	"kombio/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Players    int
	Seed       int64
	PointLimit int32
	MaxRounds  int
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a headless AI-only match",
		Long: `Run a complete match between AI participants and print the result.

Turns fire synchronously without think delays, so a full match resolves in
milliseconds. A fixed seed makes the run reproducible.

Example:
  kombio simulate --players 4 --seed 42
  kombio simulate --players 2 --point-limit 10 --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Players, "players", 4, "number of AI participants (2-4)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "shuffle seed (0 = random)")
	cmd.Flags().Int32Var(&opts.PointLimit, "point-limit", 0, "starting score (0 = config default)")
	cmd.Flags().IntVar(&opts.MaxRounds, "max-rounds", 1000, "abort after this many rounds")

	return cmd
}

func runSimulation(opts *SimulateOptions, cmd *cobra.Command) error {
	if opts.Players < 2 || opts.Players > 4 {
		return fmt.Errorf("invalid --players %d: must be 2-4", opts.Players)
	}

	if err := config.Load(opts.ConfigPath); err != nil {
		return err
	}
	cfg := *config.Get()
	// Turns are pulled by the loop below, never fired on a timer.
	cfg.Debug.DisableAutoPlay = true
	if opts.PointLimit > 0 {
		cfg.PointLimit = opts.PointLimit
	}
	if opts.Seed != 0 {
		cfg.Debug.FixedSeed = opts.Seed
	}

	log := logrus.NewEntry(logrus.StandardLogger())
	var rng *rand.Rand
	if cfg.Debug.FixedSeed != 0 {
		rng = rand.New(rand.NewSource(cfg.Debug.FixedSeed))
	}
	mgr := app.NewManager(&cfg, log, rng)

	roster := make([]app.PlayerSetup, opts.Players)
	for i := range roster {
		identity := bot.GetIdentity(i)
		roster[i] = app.PlayerSetup{
			Name:        identity.Name,
			AvatarIndex: identity.AvatarIndex,
			Control:     domain.ControlAI,
			Level:       bot.ParseLevel(identity.Level),
		}
	}
	if err := mgr.StartNewGame(roster); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	rounds := 0

	for {
		select {
		case err := <-mgr.Fatal():
			return fmt.Errorf("engine failure: %w", err)
		default:
		}

		s := mgr.State()
		switch s.Phase {
		case domain.PhasePlaying:
			if err := mgr.TriggerAIMove(); err != nil {
				return err
			}

		case domain.PhaseRoundOver:
			rounds++
			if dialog := s.PendingDialog; dialog != nil && len(dialog.WinnerNames) > 0 {
				fmt.Fprintf(out, "Round %d won by %s\n", rounds, dialog.WinnerNames[0])
			}
			mgr.AcknowledgeDialog()
			mgr.ConsumeNotifications()
			if rounds >= opts.MaxRounds {
				return fmt.Errorf("aborting after %d rounds without a result", rounds)
			}
			if err := mgr.StartNewRound(); err != nil {
				return err
			}

		case domain.PhaseEnded:
			rounds++
			fmt.Fprintf(out, "Match over after %d rounds.\n", rounds)
			for _, r := range domain.GetRankings(s.Participants) {
				fmt.Fprintf(out, "  %d. %s (%d points)\n", r.Place, r.Participant.Name, r.Participant.Score)
			}
			return nil

		default:
			return fmt.Errorf("simulation stalled in phase %q", s.Phase)
		}
	}
}
