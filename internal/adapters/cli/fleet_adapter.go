package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/fleetops/internal/ports/primary"
)

// FleetAdapter translates CLI operations to FleetService and SessionService calls.
type FleetAdapter struct {
	fleet   primary.FleetService
	session primary.SessionService
	out     io.Writer
}

// NewFleetAdapter creates a new FleetAdapter.
func NewFleetAdapter(fleet primary.FleetService, session primary.SessionService, out io.Writer) *FleetAdapter {
	return &FleetAdapter{fleet: fleet, session: session, out: out}
}

// Bins prints all bins.
func (a *FleetAdapter) Bins(ctx context.Context) error {
	bins, err := a.fleet.ListBins(ctx)
	if err != nil {
		return err
	}
	if len(bins) == 0 {
		fmt.Fprintln(a.out, "No bins found")
		return nil
	}
	fmt.Fprintf(a.out, "\n%-12s %-6s %-6s %-10s %s\n", "ID", "NO.", "FILL", "STATUS", "ADDRESS")
	fmt.Fprintln(a.out, rule)
	for _, b := range bins {
		fmt.Fprintf(a.out, "%-12s %-6d %-6s %-10s %s\n", b.ID, b.Number, fmt.Sprintf("%d%%", b.FillPercentage), b.Status, b.Address)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Drivers prints all drivers.
func (a *FleetAdapter) Drivers(ctx context.Context) error {
	drivers, err := a.fleet.ListDrivers(ctx)
	if err != nil {
		return err
	}
	if len(drivers) == 0 {
		fmt.Fprintln(a.out, "No drivers found")
		return nil
	}
	fmt.Fprintf(a.out, "\n%-12s %-20s %-10s %s\n", "ID", "NAME", "STATUS", "SHIFT")
	fmt.Fprintln(a.out, rule)
	for _, d := range drivers {
		fmt.Fprintf(a.out, "%-12s %-20s %-10s %s\n", d.ID, d.Name, d.Status, d.ShiftID)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Login signs in and reports who is logged in.
func (a *FleetAdapter) Login(ctx context.Context, req primary.LoginRequest) error {
	info, err := a.session.Login(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Logged in as %s\n", displayName(info))
	return nil
}

// Logout signs out.
func (a *FleetAdapter) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "✓ Logged out")
	return nil
}

// WhoAmI prints the current session.
func (a *FleetAdapter) WhoAmI(ctx context.Context) error {
	info, err := a.session.CurrentSession(ctx)
	if err != nil {
		return err
	}
	if !info.Authenticated {
		fmt.Fprintln(a.out, "Not logged in")
		if info.RememberedEmail != "" {
			fmt.Fprintf(a.out, "Last login: %s\n", info.RememberedEmail)
		}
		return nil
	}
	fmt.Fprintf(a.out, "%s (%s)\n", displayName(info), info.UserID)
	if info.Role != "" {
		fmt.Fprintf(a.out, "Role: %s\n", info.Role)
	}
	return nil
}

func displayName(info *primary.SessionInfo) string {
	if info.Name != "" {
		return info.Name + " <" + info.Email + ">"
	}
	return info.Email
}
