package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/fleetops/internal/gate"
)

func edgeCmd(st *state) *cobra.Command {
	var (
		listen   string
		upstream string
	)
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Run the route gate in front of the dashboard",
		Long: `Serve the dashboard through the route gate. Requests without the auth
cookie are redirected to /login; requests to /login with it go to /.
Public paths pass through untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := gate.NewEdge(upstream, gate.DefaultRoutes(), st.logger)
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: listen, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			fmt.Fprintf(cmd.OutOrStdout(), "edge listening on %s -> %s\n", listen, upstream)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&listen, "listen", ":8081", "address to listen on")
	cmd.Flags().StringVar(&upstream, "upstream", "http://localhost:3000", "dashboard origin to proxy to")
	return cmd
}
