package cli

import (
	"github.com/spf13/cobra"
)

func binsCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bins",
		Short: "Inspect bins",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all bins",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.services(cmd)
			if err != nil {
				return err
			}
			return c.FleetAdapter(cmd.OutOrStdout()).Bins(cmd.Context())
		},
	})
	return cmd
}

func driversCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drivers",
		Short: "Inspect drivers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all drivers",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.services(cmd)
			if err != nil {
				return err
			}
			return c.FleetAdapter(cmd.OutOrStdout()).Drivers(cmd.Context())
		},
	})
	return cmd
}

func shiftsCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shifts",
		Short: "Inspect shifts and their stops",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all shifts",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.services(cmd)
			if err != nil {
				return err
			}
			return c.ShiftAdapter(cmd.OutOrStdout()).List(cmd.Context())
		},
	}, &cobra.Command{
		Use:   "show [shift-id]",
		Short: "Show a shift's ordered stops",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.services(cmd)
			if err != nil {
				return err
			}
			return c.ShiftAdapter(cmd.OutOrStdout()).Show(cmd.Context(), args[0])
		},
	})
	return cmd
}
