package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/fleetops/internal/ports/primary"
)

func loginCmd(st *state) *cobra.Command {
	var (
		email    string
		password string
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		Long:  "Sign in with email and password. The password may also come from FLEET_PASSWORD.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.services(cmd)
			if err != nil {
				return err
			}
			if password == "" {
				password = os.Getenv("FLEET_PASSWORD")
			}
			if email == "" {
				info, err := c.Sessions.CurrentSession(cmd.Context())
				if err == nil {
					email = info.RememberedEmail
				}
			}
			if email == "" {
				return errors.New("--email is required")
			}
			return c.FleetAdapter(cmd.OutOrStdout()).Login(cmd.Context(), primary.LoginRequest{
				Email:    email,
				Password: password,
				Remember: remember,
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email (defaults to the remembered one)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().BoolVar(&remember, "remember", true, "remember the email for the next login")
	return cmd
}

func logoutCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.services(cmd)
			if err != nil {
				return err
			}
			return c.FleetAdapter(cmd.OutOrStdout()).Logout(cmd.Context())
		},
	}
}

func whoamiCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.services(cmd)
			if err != nil {
				return err
			}
			return c.FleetAdapter(cmd.OutOrStdout()).WhoAmI(cmd.Context())
		},
	}
}
