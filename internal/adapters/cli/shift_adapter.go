package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/fleetops/internal/ports/primary"
)

// ShiftAdapter translates CLI operations to ShiftService calls.
type ShiftAdapter struct {
	service primary.ShiftService
	out     io.Writer
}

// NewShiftAdapter creates a new ShiftAdapter.
func NewShiftAdapter(service primary.ShiftService, out io.Writer) *ShiftAdapter {
	return &ShiftAdapter{service: service, out: out}
}

// List prints all shifts.
func (a *ShiftAdapter) List(ctx context.Context) error {
	shifts, err := a.service.ListShifts(ctx)
	if err != nil {
		return err
	}
	if len(shifts) == 0 {
		fmt.Fprintln(a.out, "No shifts found")
		return nil
	}
	fmt.Fprintf(a.out, "\n%-12s %-12s %-10s %s\n", "ID", "DRIVER", "STATUS", "STOPS")
	fmt.Fprintln(a.out, rule)
	for _, s := range shifts {
		fmt.Fprintf(a.out, "%-12s %-12s %s %d\n", s.ID, s.DriverID, statusLabel(s.Status), len(s.Stops))
	}
	fmt.Fprintln(a.out)
	return nil
}

// Show prints a shift and its ordered stops.
func (a *ShiftAdapter) Show(ctx context.Context, id string) error {
	s, err := a.service.GetShift(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\nShift:  %s\n", s.ID)
	fmt.Fprintf(a.out, "Driver: %s\n", s.DriverID)
	fmt.Fprintf(a.out, "Status: %s\n", s.Status)
	if len(s.Stops) == 0 {
		fmt.Fprintln(a.out, "\nNo stops")
		return nil
	}
	fmt.Fprintf(a.out, "\nStops (%d):\n", len(s.Stops))
	for i, st := range s.Stops {
		if st.MoveRequestID != "" {
			fmt.Fprintf(a.out, "  %2d. %s (move %s)\n", i+1, st.BinID, st.MoveRequestID)
			continue
		}
		fmt.Fprintf(a.out, "  %2d. %s\n", i+1, st.BinID)
	}
	return nil
}

func statusLabel(status string) string {
	label := fmt.Sprintf("%-10s", status)
	switch status {
	case "active":
		return color.New(color.FgGreen).Sprint(label)
	case "paused":
		return color.New(color.FgYellow).Sprint(label)
	case "ended", "cancelled":
		return color.New(color.FgHiBlack).Sprint(label)
	}
	return label
}
