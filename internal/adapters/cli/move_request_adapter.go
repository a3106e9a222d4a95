// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting and delegate
// everything else to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/ports/primary"
)

const rule = "────────────────────────────────────────────────────────────────────────"

// MoveRequestAdapter translates CLI operations to MoveRequestService calls.
type MoveRequestAdapter struct {
	service primary.MoveRequestService
	audit   primary.AuditService
	out     io.Writer
}

// NewMoveRequestAdapter creates a new MoveRequestAdapter. audit may be nil.
func NewMoveRequestAdapter(service primary.MoveRequestService, audit primary.AuditService, out io.Writer) *MoveRequestAdapter {
	return &MoveRequestAdapter{service: service, audit: audit, out: out}
}

// List prints move requests with their urgency.
func (a *MoveRequestAdapter) List(ctx context.Context, filters primary.MoveRequestFilters) error {
	mrs, err := a.service.ListMoveRequests(ctx, filters)
	if err != nil {
		return err
	}
	if len(mrs) == 0 {
		fmt.Fprintln(a.out, "No move requests found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-12s %-10s %-12s %-10s %-17s %s\n", "ID", "BIN", "STATUS", "URGENCY", "SCHEDULED", "ASSIGNED TO")
	fmt.Fprintln(a.out, rule)
	for _, m := range mrs {
		fmt.Fprintf(a.out, "%-12s %-10s %-12s %s %-17s %s\n",
			m.ID, m.BinID, m.Status, UrgencyLabel(m.Urgency),
			m.ScheduledDate.Format("2006-01-02 15:04"), assignee(m))
	}
	fmt.Fprintln(a.out)
	return nil
}

// Show prints one move request and, when available, its audit trail.
func (a *MoveRequestAdapter) Show(ctx context.Context, id string) error {
	m, err := a.service.GetMoveRequest(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\nMove request: %s\n", m.ID)
	fmt.Fprintf(a.out, "Bin:         %s\n", m.BinID)
	fmt.Fprintf(a.out, "Status:      %s\n", m.Status)
	fmt.Fprintf(a.out, "Urgency:     %s\n", strings.TrimSpace(UrgencyLabel(m.Urgency)))
	fmt.Fprintf(a.out, "Scheduled:   %s\n", m.ScheduledDate.Format("2006-01-02 15:04"))
	if m.MoveType != "" {
		fmt.Fprintf(a.out, "Type:        %s\n", m.MoveType)
	}
	if who := assignee(m); who != "" {
		fmt.Fprintf(a.out, "Assigned to: %s\n", who)
	}

	if a.audit == nil {
		return nil
	}
	entries, err := a.audit.GetAuditTrail(ctx, id)
	if err != nil {
		fmt.Fprintf(a.out, "\nHistory unavailable: %v\n", err)
		return nil
	}
	if len(entries) == 0 {
		return nil
	}
	fmt.Fprintln(a.out, "\nHistory:")
	for _, e := range entries {
		fmt.Fprintf(a.out, "  %s  %-14s by %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.ActionType, e.ActorID)
		for _, c := range e.Changes {
			switch c.Kind {
			case "set":
				fmt.Fprintf(a.out, "      %s: set to %s\n", c.Field, c.After)
			case "cleared":
				fmt.Fprintf(a.out, "      %s: cleared (was %s)\n", c.Field, c.Before)
			default:
				fmt.Fprintf(a.out, "      %s: %s → %s\n", c.Field, c.Before, c.After)
			}
		}
	}
	return nil
}

// Assign assigns one move request.
func (a *MoveRequestAdapter) Assign(ctx context.Context, req primary.AssignMoveRequestRequest) error {
	if err := a.service.AssignMoveRequest(ctx, req); err != nil {
		return err
	}
	target := req.ShiftID
	if target == "" {
		target = req.UserID
	}
	fmt.Fprintf(a.out, "✓ Assigned %s to %s\n", req.MoveRequestID, target)
	return nil
}

// BulkAssign assigns several move requests and reports partial progress.
func (a *MoveRequestAdapter) BulkAssign(ctx context.Context, req primary.BulkAssignRequest) error {
	res, err := a.service.BulkAssign(ctx, req)
	a.printBulk("Assigned", res)
	return err
}

// BulkCancel cancels several move requests and reports partial progress.
func (a *MoveRequestAdapter) BulkCancel(ctx context.Context, ids []string, reason string) error {
	res, err := a.service.BulkCancel(ctx, ids, reason)
	a.printBulk("Cancelled", res)
	return err
}

// Clear returns a move request to pending.
func (a *MoveRequestAdapter) Clear(ctx context.Context, id string) error {
	return a.report(a.service.ClearAssignment(ctx, id), "Cleared assignment of %s", id)
}

// Start marks a move request in progress.
func (a *MoveRequestAdapter) Start(ctx context.Context, id string) error {
	return a.report(a.service.StartMoveRequest(ctx, id), "Started %s", id)
}

// Complete marks a move request completed.
func (a *MoveRequestAdapter) Complete(ctx context.Context, id string) error {
	return a.report(a.service.CompleteMoveRequest(ctx, id), "Completed %s", id)
}

// Cancel cancels a move request.
func (a *MoveRequestAdapter) Cancel(ctx context.Context, id, reason string) error {
	return a.report(a.service.CancelMoveRequest(ctx, id, reason), "Cancelled %s", id)
}

func (a *MoveRequestAdapter) report(err error, format string, args ...any) error {
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ "+format+"\n", args...)
	return nil
}

func (a *MoveRequestAdapter) printBulk(verb string, res *primary.BulkResult) {
	if res == nil {
		return
	}
	for _, id := range res.Succeeded {
		fmt.Fprintf(a.out, "✓ %s %s\n", verb, id)
	}
	if !res.Partial() {
		return
	}
	fmt.Fprintf(a.out, "%s %s: %v\n", color.New(color.FgRed).Sprint("✗ Failed"), res.FailedID, res.Err)
	if len(res.Remaining) > 0 {
		fmt.Fprintf(a.out, "  Not attempted: %s\n", strings.Join(res.Remaining, ", "))
	}
	fmt.Fprintln(a.out, color.New(color.FgYellow).Sprint("  Earlier changes were kept; reconcile the remaining requests manually."))
}

func assignee(m *primary.MoveRequest) string {
	switch {
	case m.ShiftID != "":
		return "shift " + m.ShiftID
	case m.UserID != "":
		return "user " + m.UserID
	}
	return ""
}

// UrgencyLabel returns a fixed-width colored urgency label.
func UrgencyLabel(urgency string) string {
	label := fmt.Sprintf("%-10s", urgency)
	switch urgency {
	case "overdue":
		return color.New(color.FgRed, color.Bold).Sprint(label)
	case "urgent":
		return color.New(color.FgRed).Sprint(label)
	case "soon":
		return color.New(color.FgYellow).Sprint(label)
	}
	return color.New(color.FgGreen).Sprint(label)
}

// Hint returns a one-line suggestion for errors the user can act on, or "".
func Hint(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindAuth:
		return "Run 'fleetctl login' to sign in again."
	case apperr.KindAnchorNotFound:
		return "Check the shift's stops with 'fleetctl shifts show <id>'."
	case apperr.KindInvalidTransition:
		return "Check the request's status with 'fleetctl moves show <id>'."
	case apperr.KindNetwork:
		return "Check api_url in .fleet/config.yaml and your connection."
	case apperr.KindMutationInFlight:
		return "Another change to this item is still running; retry shortly."
	}
	return ""
}
