package addresspool

// lease is one slot of a pool's arena. Slot i corresponds to address
// range.Start + i. A slot can be on the free list and on a bucket's reusable
// chain at the same time (a lingering lease is on both), tracked via
// freeEntry/reusableEntry respectively.
type lease struct {
	refcount      uint32
	freeEntry     listEntry
	reusableEntry listEntry
	// reusableName is the peer fingerprint this slot is bound to, or nil for
	// a one-time lease. Non-nil with refcount 0 means "lingering": still
	// free, but the pool will hand this exact slot back to the same peer
	// before any other.
	reusableName []byte
}

func blankLease() lease {
	return lease{
		freeEntry:     listEntry{prev: sentinel, next: sentinel},
		reusableEntry: listEntry{prev: sentinel, next: sentinel},
	}
}
