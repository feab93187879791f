// Package sync reconciles the mesh peer list against the DNS store's
// custom host table.
package sync

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/tailsync/internal/dns"
	"github.com/yuriy-kovalchuk/tailsync/internal/tailscale"
)

// PeerSource provides the current mesh status.
type PeerSource interface {
	Status(ctx context.Context) (*tailscale.Status, error)
}

// Syncer runs one reconciliation: fetch peers, fetch the existing host
// table, compute the desired table, and replace the store's table with it.
type Syncer struct {
	Log    logr.Logger
	Source PeerSource
	Store  dns.Store
	// Suffix is appended to each peer's first DNS label.
	Suffix string
}

// Run performs a single reconciliation. Peer-source, authentication and
// write failures are returned; a read failure degrades to an empty
// existing table, and bad individual peers or addresses are skipped.
func (s *Syncer) Run(ctx context.Context) error {
	s.Log.Info("starting mesh to DNS synchronization")

	status, err := s.Source.Status(ctx)
	if err != nil {
		return fmt.Errorf("fetching mesh status: %w", err)
	}
	peers := status.AllPeers()

	session, err := s.Store.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connecting to DNS store: %w", err)
	}
	defer func() {
		if err := session.Close(ctx); err != nil {
			s.Log.Error(err, "failed to release store session")
		}
	}()

	existing, err := session.ReadHosts(ctx)
	if err != nil {
		// Non-fatal: proceed as if no records were known.
		s.Log.Info("could not read existing host table, assuming empty", "error", err.Error())
		existing = dns.NewRecordSet()
	}

	desired := BuildDesired(s.Log, peers, s.Suffix)

	// The diff is a change report only; the write below always replaces
	// the whole table with the desired set.
	added, removed := existing.Diff(desired)
	for _, r := range added {
		s.Log.Info("adding record", "domain", r.Domain, "ip", r.IP)
	}
	for _, r := range removed {
		s.Log.Info("removing record", "domain", r.Domain, "ip", r.IP)
	}
	if len(added) == 0 && len(removed) == 0 {
		s.Log.Info("host table already up to date", "records", desired.Len())
	}

	if err := session.WriteHosts(ctx, desired); err != nil {
		return fmt.Errorf("writing host table: %w", err)
	}

	s.Log.Info("synchronization completed",
		"peers", len(peers), "records", desired.Len(), "added", len(added), "removed", len(removed))
	return nil
}
