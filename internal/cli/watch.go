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

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/example/fleetops/internal/realtime"
)

func watchCmd(st *state) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the cache live and print realtime events",
		Long: `Prefetch the dashboard, then follow the realtime channel until interrupted.
Each event is printed as it arrives and invalidates the matching cache keys.
Polling runs alongside when refetch_interval is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.services(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			if err := c.Dashboard.Prefetch(ctx); err != nil {
				fmt.Fprintf(out, "%s prefetch incomplete: %v\n", color.YellowString("!"), err)
			}
			unfollow := c.Dashboard.Follow()
			defer unfollow()

			if metricsAddr != "" {
				srv := metricsServer(metricsAddr, c.Registry)
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						st.logger.Error("metrics server failed", "addr", metricsAddr, "error", err)
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
				fmt.Fprintf(out, "metrics on http://%s/metrics\n", metricsAddr)
			}

			ch := c.Realtime(func(m realtime.Message) {
				fmt.Fprintln(out, formatEvent(time.Now(), m))
			})
			fmt.Fprintf(out, "watching %s (ctrl-c to stop)\n", c.Config.RealtimeURL())
			return c.Dashboard.Watch(ctx, ch)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve cache metrics on this address (e.g. :9090)")
	return cmd
}

func metricsServer(addr string, registry *prometheus.Registry) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
}

func formatEvent(at time.Time, m realtime.Message) string {
	subject := ""
	switch {
	case m.MoveRequestID != "":
		subject = "move " + m.MoveRequestID
	case m.ShiftID != "":
		subject = "shift " + m.ShiftID
	case m.BinID != "":
		subject = "bin " + m.BinID
	case m.DriverID != "":
		subject = "driver " + m.DriverID
	}
	return fmt.Sprintf("%s  %-24s %s", at.Format("15:04:05"), color.CyanString(m.Type), subject)
}
