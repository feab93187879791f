package dns

import (
	"context"
	"errors"
)

// Sentinel errors for classifying store failures with errors.Is.
var (
	// ErrAuth indicates the store rejected the credential, or it was missing.
	ErrAuth = errors.New("authentication failed")
	// ErrRead indicates the host table could not be read. Callers treat
	// this as "no existing records known" rather than aborting.
	ErrRead = errors.New("host table read failed")
	// ErrWrite indicates the store did not accept the replacement table.
	ErrWrite = errors.New("host table write failed")
)

// Store is a DNS back end holding a custom host table. Its single
// capability is replacing that table wholesale through an authenticated
// session.
type Store interface {
	// Connect authenticates and returns a session. The caller must Close
	// the session exactly once, on every exit path.
	Connect(ctx context.Context) (Session, error)
}

// Session is an authenticated handle to the store.
type Session interface {
	// ReadHosts returns the current custom host table.
	ReadHosts(ctx context.Context) (RecordSet, error)
	// WriteHosts replaces the entire custom host table with records.
	WriteHosts(ctx context.Context, records RecordSet) error
	// Close releases the session. Best-effort: callers log failures and
	// never propagate them.
	Close(ctx context.Context) error
}
