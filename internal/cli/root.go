// Package cli defines the fleetctl cobra commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/fleetops/internal/config"
	"github.com/example/fleetops/internal/ctxutil"
	"github.com/example/fleetops/internal/version"
	"github.com/example/fleetops/internal/wire"
)

// state is shared by the commands of one invocation.
type state struct {
	dir     string
	verbose bool

	cfg       *config.Config
	logger    *slog.Logger
	container *wire.Container
}

// NewRootCmd builds the fleetctl command tree.
func NewRootCmd() *cobra.Command {
	st := &state{}
	root := &cobra.Command{
		Use:     "fleetctl",
		Short:   "Dispatcher client for the fleet operations backend",
		Version: version.String(),
		Long: `fleetctl reads and changes bins, shifts and move requests through a local
cache that is kept fresh by polling and realtime invalidations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if st.container == nil {
				return nil
			}
			return st.container.Close()
		},
	}
	root.PersistentFlags().StringVar(&st.dir, "dir", "", "directory holding .fleet/config.yaml (default: current directory)")
	root.PersistentFlags().BoolVarP(&st.verbose, "verbose", "v", false, "log sync activity to stderr")

	root.AddCommand(
		loginCmd(st),
		logoutCmd(st),
		whoamiCmd(st),
		binsCmd(st),
		driversCmd(st),
		shiftsCmd(st),
		movesCmd(st),
		watchCmd(st),
		edgeCmd(st),
		configCmd(st),
		versionCmd(),
	)
	return root
}

func (st *state) setup(cmd *cobra.Command) error {
	dir := st.dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	st.dir = dir

	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return err
	}
	st.cfg = cfg

	level := slog.LevelWarn
	if st.verbose {
		level = slog.LevelDebug
	}
	st.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx := ctxutil.WithRequestID(cmd.Context(), "")
	if cfg.ActorID != "" {
		ctx = ctxutil.WithActorID(ctx, cfg.ActorID)
	}
	cmd.SetContext(ctx)
	return nil
}

// services builds the container on first use.
func (st *state) services(cmd *cobra.Command) (*wire.Container, error) {
	if st.container != nil {
		return st.container, nil
	}
	c, err := wire.New(cmd.Context(), st.cfg, st.logger)
	if err != nil {
		return nil, err
	}
	st.container = c
	return c, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the fleetctl version",
		// Skip config loading so version works anywhere.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
