package sync

import (
	"net/netip"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/tailsync/internal/dns"
	"github.com/yuriy-kovalchuk/tailsync/internal/tailscale"
)

// BuildDesired computes the host table that should be published for the
// given peers. One record is emitted per (hostname+suffix, valid address)
// pair of each online peer. Peers without a DNS name or without any usable
// address are skipped with a warning; invalid addresses are dropped
// individually without affecting the peer's other addresses.
func BuildDesired(log logr.Logger, peers []tailscale.Peer, suffix string) dns.RecordSet {
	desired := dns.NewRecordSet()

	for _, peer := range peers {
		if !peer.Online {
			continue
		}

		hostname := dns.FirstLabel(peer.DNSName)
		if hostname == "" {
			log.Info("skipping peer without a DNS name", "id", peer.ID)
			continue
		}

		addrs := peer.TailscaleIPs
		if len(addrs) == 0 && peer.IP != "" {
			addrs = []string{peer.IP}
		}
		if len(addrs) == 0 {
			log.Info("skipping peer without an address", "id", peer.ID, "hostname", hostname)
			continue
		}

		domain := hostname + suffix
		for _, addr := range addrs {
			if _, err := netip.ParseAddr(addr); err != nil {
				log.Info("dropping invalid peer address", "id", peer.ID, "hostname", hostname, "address", addr)
				continue
			}
			desired.Add(dns.Record{Domain: domain, IP: addr})
		}
	}

	return desired
}
