// Package tailscale reads the local mesh client's view of the network by
// invoking its status command and decoding the JSON output.
package tailscale

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sort"

	"github.com/go-logr/logr"
)

// Sentinel errors for classifying status failures with errors.Is.
var (
	// ErrCommandFailed indicates the status command could not run or
	// exited non-zero.
	ErrCommandFailed = errors.New("status command failed")
	// ErrMalformedOutput indicates the command output was not valid JSON.
	ErrMalformedOutput = errors.New("malformed status output")
)

// Peer is one device in the mesh as reported by the status command.
type Peer struct {
	ID           string   `json:"ID"`
	HostName     string   `json:"HostName"`
	DNSName      string   `json:"DNSName"`
	Online       bool     `json:"Online"`
	TailscaleIPs []string `json:"TailscaleIPs"`
	// IP is the legacy single-address field, used as a fallback when
	// TailscaleIPs is empty.
	IP string `json:"IP"`
}

// Status is the decoded output of `tailscale status --json`.
type Status struct {
	Version string           `json:"Version"`
	Self    *Peer            `json:"Self"`
	Peer    map[string]*Peer `json:"Peer"`
}

// AllPeers returns every peer plus the self entry, folded in under its own
// ID when not already present in the peer map. Order is deterministic.
func (s *Status) AllPeers() []Peer {
	seen := make(map[string]bool, len(s.Peer)+1)
	peers := make([]Peer, 0, len(s.Peer)+1)
	for _, p := range s.Peer {
		if p == nil {
			continue
		}
		peers = append(peers, *p)
		seen[p.ID] = true
	}
	if s.Self != nil && !seen[s.Self.ID] {
		peers = append(peers, *s.Self)
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i].ID < peers[j].ID })
	return peers
}

// runner executes the status command and returns its stdout.
type runner func(ctx context.Context) ([]byte, error)

func runStatusCommand(ctx context.Context) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "tailscale", "status", "--json")
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: exit code %d: %s", ErrCommandFailed, exitErr.ExitCode(), exitErr.Stderr)
		}
		return nil, fmt.Errorf("%w: %v", ErrCommandFailed, err)
	}
	return out, nil
}

// Client reads mesh status from the local tailscale daemon.
type Client struct {
	run runner
	log logr.Logger
}

// NewClient creates a Client that shells out to the tailscale binary.
func NewClient(log logr.Logger) *Client {
	return &Client{run: runStatusCommand, log: log}
}

// Status invokes the status command and decodes its output.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	out, err := c.run(ctx)
	if err != nil {
		return nil, err
	}

	var status Status
	if err := json.Unmarshal(out, &status); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	c.log.V(1).Info("read mesh status", "version", status.Version, "peers", len(status.Peer))
	return &status, nil
}
