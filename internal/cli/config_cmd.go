package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/fleetops/internal/config"
)

func configCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize .fleet/config.yaml",
	}

	var (
		apiURL  string
		actorID string
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := st.cfg
			if apiURL != "" {
				cfg.APIURL = apiURL
			}
			if actorID != "" {
				cfg.ActorID = actorID
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveConfig(st.dir, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", config.Path(st.dir))
			return nil
		},
	}
	initCmd.Flags().StringVar(&apiURL, "api-url", "", "backend base URL")
	initCmd.Flags().StringVar(&actorID, "actor", "", "actor ID sent with every request")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(st.cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", config.Path(st.dir), data)
			fmt.Fprintf(cmd.OutOrStdout(), "# realtime: %s\n", st.cfg.RealtimeURL())
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
