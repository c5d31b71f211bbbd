// Package connection models the minimal slice of an IKE connection's state
// that the address pool and identity cores need from their caller: which
// pool it draws from, the peer's identity and authentication method, and
// whether it currently holds a lease. Everything else about a connection
// (SA state, proposals, timers) is out of scope -- this is the "external
// collaborator" spec §6 describes, not a full connection object.
package connection

import (
	"net"

	"github.com/AnandBibhuti/ikepool/addresspool"
	"github.com/AnandBibhuti/ikepool/ident"
)

// Connection is the addresspool/ident-facing view of an IKE connection.
//
// A Connection attaches to at most one Pool at a time via AttachPool, which
// mirrors the original's reference_addresspool: pool_refcount is driven
// exclusively by a connection attaching/detaching, never by installation
// itself (see addresspool.Registry.Install).
type Connection struct {
	// Pool is the address pool this connection draws a lease from, if any.
	Pool *addresspool.Pool
	// PeerID is the remote peer's identity, used as the reuse fingerprint.
	PeerID *ident.ID
	// AuthBy is the negotiated authentication method.
	AuthBy addresspool.AuthMethod
	// UniqueIDs mirrors the daemon-wide uniqueIDs policy flag: whether
	// lease recovery by identity is permitted at all.
	UniqueIDs bool

	// HasLease reports whether ClientAddr currently holds a live lease
	// from Pool.
	HasLease bool
	// ClientAddr is the address currently leased to this connection, valid
	// only while HasLease is true.
	ClientAddr net.IP
}

// AttachPool references pool on registry and binds c to it, mirroring
// reference_addresspool. It is an error to call this while c is already
// attached to a pool.
func (c *Connection) AttachPool(registry *addresspool.Registry, pool *addresspool.Pool) {
	if c.Pool != nil {
		panic("connection: AttachPool called while already attached to a pool")
	}
	registry.Reference(pool)
	c.Pool = pool
}

// DetachPool unreferences c's current pool on registry and clears it,
// mirroring unreference_addresspool. It is a no-op if c is not attached to
// a pool, and a programmer error to call while a lease is still held -- the
// lease must be released first, just as the original requires callers to
// release before a connection's pool reference is dropped.
func (c *Connection) DetachPool(registry *addresspool.Registry) {
	if c.Pool == nil {
		return
	}
	if c.HasLease {
		panic("connection: DetachPool called while a lease is still held")
	}
	registry.Unreference(c.Pool)
	c.Pool = nil
}

// AcquireLease leases an address from c.Pool for c's peer identity and
// records it on c. It is an error to call this while c already holds a
// lease.
func (c *Connection) AcquireLease() (net.IP, error) {
	if c.HasLease {
		panic("connection: AcquireLease called while a lease is already held")
	}
	addr, err := c.Pool.LeaseAnAddress(c.PeerID, c.AuthBy, c.UniqueIDs)
	if err != nil {
		return nil, err
	}
	c.ClientAddr = addr
	c.HasLease = true
	return addr, nil
}

// ReleaseLease returns c's current lease to the pool and clears HasLease.
// It is a no-op if c holds no lease.
func (c *Connection) ReleaseLease() {
	if !c.HasLease {
		return
	}
	c.Pool.RelLeaseAddr(c.ClientAddr)
	c.HasLease = false
	c.ClientAddr = nil
}
