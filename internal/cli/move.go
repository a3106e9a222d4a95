package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/fleetops/internal/ports/primary"
	"github.com/example/fleetops/internal/wire"
)

func movesCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "moves",
		Aliases: []string{"move"},
		Short:   "Manage move requests",
		Long:    "List, assign and advance move requests. Urgency is computed when the list is read.",
	}
	cmd.AddCommand(
		movesListCmd(st),
		movesShowCmd(st),
		movesAssignCmd(st),
		movesBulkAssignCmd(st),
		movesSimpleCmd(st, "clear [move-request-id]", "Return an assigned move request to pending",
			func(c *wire.Container, cmd *cobra.Command, id string) error {
				return c.MoveRequestAdapter(cmd.OutOrStdout()).Clear(cmd.Context(), id)
			}),
		movesSimpleCmd(st, "start [move-request-id]", "Mark an assigned move request in progress",
			func(c *wire.Container, cmd *cobra.Command, id string) error {
				return c.MoveRequestAdapter(cmd.OutOrStdout()).Start(cmd.Context(), id)
			}),
		movesSimpleCmd(st, "complete [move-request-id]", "Mark an in-progress move request completed",
			func(c *wire.Container, cmd *cobra.Command, id string) error {
				return c.MoveRequestAdapter(cmd.OutOrStdout()).Complete(cmd.Context(), id)
			}),
		movesCancelCmd(st),
		movesBulkCancelCmd(st),
	)
	return cmd
}

func movesListCmd(st *state) *cobra.Command {
	var filters primary.MoveRequestFilters
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List move requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.services(cmd)
			if err != nil {
				return err
			}
			return c.MoveRequestAdapter(cmd.OutOrStdout()).List(cmd.Context(), filters)
		},
	}
	cmd.Flags().StringVarP(&filters.Status, "status", "s", "", "filter by status (pending, assigned, in_progress, completed, cancelled)")
	cmd.Flags().StringVar(&filters.ShiftID, "shift", "", "filter by shift")
	cmd.Flags().StringVar(&filters.BinID, "bin", "", "filter by bin")
	return cmd
}

func movesShowCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "show [move-request-id]",
		Short: "Show a move request and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.services(cmd)
			if err != nil {
				return err
			}
			return c.MoveRequestAdapter(cmd.OutOrStdout()).Show(cmd.Context(), args[0])
		},
	}
}

func movesAssignCmd(st *state) *cobra.Command {
	var req primary.AssignMoveRequestRequest
	cmd := &cobra.Command{
		Use:   "assign [move-request-id]",
		Short: "Assign a move request to a shift or a user",
		Long: `Assign a pending move request.

For an active shift, --after places the stop right after the given bin.
For a scheduled shift, --position start|end prepends or appends it.
With neither, the backend picks the position.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.services(cmd)
			if err != nil {
				return err
			}
			req.MoveRequestID = args[0]
			return c.MoveRequestAdapter(cmd.OutOrStdout()).Assign(cmd.Context(), req)
		},
	}
	cmd.Flags().StringVar(&req.ShiftID, "shift", "", "shift to assign to")
	cmd.Flags().StringVar(&req.UserID, "user", "", "user to assign to manually")
	cmd.Flags().StringVar(&req.InsertAfterBinID, "after", "", "insert after this bin (active shifts)")
	cmd.Flags().StringVar(&req.InsertPosition, "position", "", "start or end (scheduled shifts)")
	cmd.MarkFlagsMutuallyExclusive("shift", "user")
	cmd.MarkFlagsOneRequired("shift", "user")
	cmd.MarkFlagsMutuallyExclusive("after", "position")
	return cmd
}

func movesBulkAssignCmd(st *state) *cobra.Command {
	var (
		req   primary.BulkAssignRequest
		order string
	)
	cmd := &cobra.Command{
		Use:   "bulk-assign [move-request-id...]",
		Short: "Assign several move requests, one call at a time",
		Long: `Assign several move requests in sequence. With --after, each request is
placed after the one before it. If a request's bin is already visited
earlier in the shift, the chain cannot be anchored and the batch stops there.
With --position start, each call prepends, so the shift lists the batch in
reverse order; --position end keeps the order. The batch stops at the first
failure and requests already assigned stay assigned.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.services(cmd)
			if err != nil {
				return err
			}
			req.MoveRequestIDs = args
			req.MoveOrder = splitList(order)
			return c.MoveRequestAdapter(cmd.OutOrStdout()).BulkAssign(cmd.Context(), req)
		},
	}
	cmd.Flags().StringVar(&req.ShiftID, "shift", "", "shift to assign to")
	cmd.Flags().StringVar(&req.UserID, "user", "", "user to assign to manually")
	cmd.Flags().StringVar(&req.InsertAfterBinID, "after", "", "insert the first request after this bin (active shifts)")
	cmd.Flags().StringVar(&req.InsertPosition, "position", "", "start or end (scheduled shifts)")
	cmd.Flags().StringVar(&order, "order", "", "comma-separated processing order (a permutation of the IDs)")
	cmd.MarkFlagsMutuallyExclusive("shift", "user")
	cmd.MarkFlagsOneRequired("shift", "user")
	cmd.MarkFlagsMutuallyExclusive("after", "position")
	return cmd
}

func movesCancelCmd(st *state) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "cancel [move-request-id]",
		Short: "Cancel a move request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.services(cmd)
			if err != nil {
				return err
			}
			return c.MoveRequestAdapter(cmd.OutOrStdout()).Cancel(cmd.Context(), args[0], reason)
		},
	}
	cmd.Flags().StringVarP(&reason, "reason", "r", "", "cancellation reason")
	return cmd
}

func movesBulkCancelCmd(st *state) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "bulk-cancel [move-request-id...]",
		Short: "Cancel several move requests, one call at a time",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.services(cmd)
			if err != nil {
				return err
			}
			return c.MoveRequestAdapter(cmd.OutOrStdout()).BulkCancel(cmd.Context(), args, reason)
		},
	}
	cmd.Flags().StringVarP(&reason, "reason", "r", "", "cancellation reason")
	return cmd
}

func movesSimpleCmd(st *state, use, short string, run func(*wire.Container, *cobra.Command, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.services(cmd)
			if err != nil {
				return err
			}
			return run(c, cmd, args[0])
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
